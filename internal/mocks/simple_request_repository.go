package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/repository"
)

// SimpleRequestRepository is a simple in-memory mock for testing. Status
// writes pair with the history repository the same way the Postgres
// implementation pairs them in a transaction.
type SimpleRequestRepository struct {
	mu       sync.RWMutex
	requests map[uuid.UUID]*models.OnboardingRequest
	history  *SimpleHistoryRepository
}

// NewSimpleRequestRepository creates a new simple request repository
func NewSimpleRequestRepository(history *SimpleHistoryRepository) *SimpleRequestRepository {
	return &SimpleRequestRepository{
		requests: make(map[uuid.UUID]*models.OnboardingRequest),
		history:  history,
	}
}

// Create stores a new request together with its creation history entry
func (r *SimpleRequestRepository) Create(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}

	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now

	stored := *req
	r.requests[req.ID] = &stored

	return r.history.Append(ctx, entry)
}

// GetByID retrieves a request by ID
func (r *SimpleRequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.requests[id]
	if !exists {
		return nil, repository.ErrNotFound
	}

	copy := *req
	return &copy, nil
}

// UpdatePayload persists payload changes, enforcing the version guard
func (r *SimpleRequestRepository) UpdatePayload(ctx context.Context, req *models.OnboardingRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.requests[req.ID]
	if !exists {
		return repository.ErrNotFound
	}
	if stored.Version != req.Version {
		return repository.ErrVersionConflict
	}

	req.Version++
	req.UpdatedAt = time.Now()

	next := *req
	r.requests[req.ID] = &next
	return nil
}

// UpdateStatus persists a status change and its history entry atomically,
// enforcing the version guard.
func (r *SimpleRequestRepository) UpdateStatus(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, exists := r.requests[req.ID]
	if !exists {
		return repository.ErrNotFound
	}
	if stored.Version != req.Version {
		return repository.ErrVersionConflict
	}

	req.Version++
	req.UpdatedAt = time.Now()

	next := *req
	r.requests[req.ID] = &next

	return r.history.Append(ctx, entry)
}

// List returns requests matching the tenant filters, newest first
func (r *SimpleRequestRepository) List(ctx context.Context, bankID, agencyID, statusID *uuid.UUID, limit, offset int) ([]models.OnboardingRequest, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.OnboardingRequest
	for _, req := range r.requests {
		if bankID != nil && req.BankID != *bankID {
			continue
		}
		if agencyID != nil && req.AgencyID != *agencyID {
			continue
		}
		if statusID != nil && req.StatusID != *statusID {
			continue
		}
		matched = append(matched, *req)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := int64(len(matched))
	if offset >= len(matched) {
		return []models.OnboardingRequest{}, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}
