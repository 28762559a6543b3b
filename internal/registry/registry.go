package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/pkg/logger"
)

// ErrStatusNotFound is returned when no catalog entry matches a lookup
var ErrStatusNotFound = errors.New("status not found")

// ErrStatusInactive is returned when a lookup requires an assignable status
// but the catalog entry is disabled
var ErrStatusInactive = errors.New("status is inactive")

const (
	cacheKey = "backoffice:status-catalog"
	cacheTTL = 24 * time.Hour
)

// StatusStore is the persistence surface the registry loads from
type StatusStore interface {
	ListStatuses(ctx context.Context) ([]models.Status, error)
}

// Registry holds the status catalog in memory. It is loaded once at startup
// and refreshed explicitly; lifecycle code never queries the store directly
// for status metadata. A redis snapshot of the catalog lets sibling instances
// boot through a brief store outage.
type Registry struct {
	mu      sync.RWMutex
	byCode  map[string]*models.Status
	byID    map[uuid.UUID]*models.Status
	ordered []models.Status

	store  StatusStore
	cache  *redis.Client // optional
	logger *logger.Logger
}

// New creates an empty registry. Call Load before serving traffic.
func New(store StatusStore, cache *redis.Client, log *logger.Logger) *Registry {
	return &Registry{
		byCode: make(map[string]*models.Status),
		byID:   make(map[uuid.UUID]*models.Status),
		store:  store,
		cache:  cache,
		logger: log,
	}
}

// Load reads the catalog from the store and indexes it. On store failure it
// falls back to the last redis snapshot; if both fail the caller must treat
// the error as a provisioning problem, not user input.
func (r *Registry) Load(ctx context.Context) error {
	statuses, err := r.store.ListStatuses(ctx)
	if err != nil {
		r.logger.Errorf("Failed to load status catalog from store: %v", err)
		statuses, err = r.loadSnapshot(ctx, err)
		if err != nil {
			return err
		}
	} else {
		r.saveSnapshot(ctx, statuses)
	}

	if len(statuses) == 0 {
		return fmt.Errorf("status catalog is empty: seed data missing")
	}

	r.index(statuses)
	r.logger.Info("Status catalog loaded", logger.Int("statuses", len(statuses)))
	return nil
}

func (r *Registry) index(statuses []models.Status) {
	sort.SliceStable(statuses, func(i, j int) bool { return statuses[i].Rank < statuses[j].Rank })

	byCode := make(map[string]*models.Status, len(statuses))
	byID := make(map[uuid.UUID]*models.Status, len(statuses))
	for i := range statuses {
		s := &statuses[i]
		byCode[s.Code] = s
		byID[s.ID] = s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.byCode = byCode
	r.byID = byID
	r.ordered = statuses
}

func (r *Registry) loadSnapshot(ctx context.Context, storeErr error) ([]models.Status, error) {
	if r.cache == nil {
		return nil, fmt.Errorf("failed to load status catalog: %w", storeErr)
	}

	raw, err := r.cache.Get(ctx, cacheKey).Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to load status catalog (no cached snapshot): %w", storeErr)
	}

	var statuses []models.Status
	if err := json.Unmarshal(raw, &statuses); err != nil {
		return nil, fmt.Errorf("failed to decode cached status catalog: %w", err)
	}

	r.logger.Warn("Status catalog served from redis snapshot; store unavailable")
	return statuses, nil
}

func (r *Registry) saveSnapshot(ctx context.Context, statuses []models.Status) {
	if r.cache == nil {
		return
	}
	raw, err := json.Marshal(statuses)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, cacheKey, raw, cacheTTL).Err(); err != nil {
		// Snapshot is best-effort only
		r.logger.Warnf("Failed to cache status catalog snapshot: %v", err)
	}
}

// FindByCode returns the catalog entry for a stable status code
func (r *Registry) FindByCode(code string) (*models.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byCode[code]
	if !ok {
		return nil, fmt.Errorf("%w: code %s", ErrStatusNotFound, code)
	}
	return s, nil
}

// FindActiveByCode returns the entry for a code only if it may still be
// assigned to requests. Used for the fixed initial and submitted statuses;
// a miss here means the deployment is not correctly provisioned.
func (r *Registry) FindActiveByCode(code string) (*models.Status, error) {
	s, err := r.FindByCode(code)
	if err != nil {
		return nil, err
	}
	if !s.IsActive {
		return nil, fmt.Errorf("%w: code %s", ErrStatusInactive, code)
	}
	return s, nil
}

// FindByID returns the catalog entry for a status row id
func (r *Registry) FindByID(id uuid.UUID) (*models.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %s", ErrStatusNotFound, id)
	}
	return s, nil
}

// IsTerminalStep reports whether a status closes the request lifecycle
func (r *Registry) IsTerminalStep(s *models.Status) bool {
	return s != nil && s.IsTerminal()
}

// All returns the catalog ordered by workflow rank
func (r *Registry) All() []models.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Status, len(r.ordered))
	copy(out, r.ordered)
	return out
}
