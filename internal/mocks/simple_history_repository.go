package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// SimpleHistoryRepository is an append-only in-memory ledger for testing
type SimpleHistoryRepository struct {
	mu      sync.RWMutex
	entries []models.HistoryEntry
}

// NewSimpleHistoryRepository creates a new simple history repository
func NewSimpleHistoryRepository() *SimpleHistoryRepository {
	return &SimpleHistoryRepository{}
}

// Append adds one entry to the ledger
func (r *SimpleHistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	r.entries = append(r.entries, *entry)
	return nil
}

// ListForRequest returns a request's entries in creation order
func (r *SimpleHistoryRepository) ListForRequest(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]models.HistoryEntry, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.HistoryEntry
	for _, e := range r.entries {
		if e.RequestID == requestID {
			matched = append(matched, e)
		}
	}

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.HistoryEntry{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

// All returns every entry in the ledger, for test assertions
func (r *SimpleHistoryRepository) All() []models.HistoryEntry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.HistoryEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
