package models

import (
	"time"

	"github.com/google/uuid"
)

// HistoryEntry is one append-only record of a status transition. Entries are
// never updated or deleted; the creation-time-ordered sequence for a request
// is its complete audit trail. StatusID is the status transitioned to.
type HistoryEntry struct {
	ID         uuid.UUID `json:"id" db:"id"`
	RequestID  uuid.UUID `json:"request_id" db:"request_id"`
	StatusID   uuid.UUID `json:"status_id" db:"status_id"`
	StatusCode string    `json:"status_code,omitempty" db:"-"` // Loaded via join
	ActorID    uuid.UUID `json:"actor_id" db:"actor_id"`
	Comment    *string   `json:"comment,omitempty" db:"comment"`
	Metadata   JSONB     `json:"metadata,omitempty" db:"metadata"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// HistoryListResponse represents a paginated slice of a request's ledger
type HistoryListResponse struct {
	Entries  []HistoryEntry `json:"entries"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}
