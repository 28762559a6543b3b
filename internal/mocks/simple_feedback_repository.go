package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// SimpleFeedbackRepository is an in-memory feedback store for testing.
// Rows accumulate; CurrentForRequest resolves the latest verdict per field.
type SimpleFeedbackRepository struct {
	mu   sync.RWMutex
	rows []models.ValidationFeedback
}

// NewSimpleFeedbackRepository creates a new simple feedback repository
func NewSimpleFeedbackRepository() *SimpleFeedbackRepository {
	return &SimpleFeedbackRepository{}
}

// Create stores one reviewer verdict
func (r *SimpleFeedbackRepository) Create(ctx context.Context, fb *models.ValidationFeedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if fb.ID == uuid.Nil {
		fb.ID = uuid.New()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now()
	}

	r.rows = append(r.rows, *fb)
	return nil
}

// CurrentForRequest returns the latest verdict per field path
func (r *SimpleFeedbackRepository) CurrentForRequest(ctx context.Context, requestID uuid.UUID) (map[string]models.FieldVerdict, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	current := make(map[string]models.FieldVerdict)
	seen := make(map[string]time.Time)
	for _, row := range r.rows {
		if row.RequestID != requestID {
			continue
		}
		if prev, ok := seen[row.FieldPath]; ok && row.CreatedAt.Before(prev) {
			continue
		}
		seen[row.FieldPath] = row.CreatedAt
		current[row.FieldPath] = models.FieldVerdict{
			Verdict:    row.Verdict,
			Comment:    row.Comment,
			ReviewerID: row.ReviewerID,
			ReviewedAt: row.CreatedAt,
		}
	}
	return current, nil
}

// ListForRequest returns every verdict ever recorded for a request
func (r *SimpleFeedbackRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.ValidationFeedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.ValidationFeedback
	for _, row := range r.rows {
		if row.RequestID == requestID {
			matched = append(matched, row)
		}
	}
	return matched, nil
}
