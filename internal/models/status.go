package models

import (
	"time"

	"github.com/google/uuid"
)

// StepKind classifies a status as a special workflow step. Statuses without a
// step classification are ordinary review stages.
type StepKind string

const (
	StepSignature StepKind = "signature"
	StepRefuse    StepKind = "refuse"
	StepAccept    StepKind = "accept"
	StepAbandon   StepKind = "abandon"
)

// Status is one entry of the onboarding status catalog. The catalog is
// reference data: it is seeded at deployment time and never mutated by
// lifecycle operations. Transition logic keys off the stable Code, not the
// editable label or message.
type Status struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Code          string    `json:"code" db:"code"`
	Label         string    `json:"label" db:"label"`
	Rank          int       `json:"rank" db:"rank"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	AllowsEdit    bool      `json:"allows_edit" db:"allows_edit"`
	ClientVisible bool      `json:"client_visible" db:"client_visible"`
	ClientMessage *string   `json:"client_message,omitempty" db:"client_message"`
	RequiresCTO   bool      `json:"requires_cto" db:"requires_cto"`
	RequiresN1    bool      `json:"requires_n1" db:"requires_n1"`
	RequiresN2    bool      `json:"requires_n2" db:"requires_n2"`
	Step          *StepKind `json:"step,omitempty" db:"step"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// IsTerminal reports whether a request in this status has reached the end of
// its lifecycle. Payload edits are rejected past a terminal status.
func (s *Status) IsTerminal() bool {
	if s.Step == nil {
		return false
	}
	switch *s.Step {
	case StepAccept, StepRefuse, StepAbandon:
		return true
	}
	return false
}

// RequiresElevatedRole reports whether entering this status needs any of the
// late-stage approval roles.
func (s *Status) RequiresElevatedRole() bool {
	return s.RequiresCTO || s.RequiresN1 || s.RequiresN2
}

// StatusListResponse represents the status catalog as served to clients
type StatusListResponse struct {
	Statuses []Status `json:"statuses"`
	Total    int      `json:"total"`
}

// SetStatusActiveRequest toggles whether a status accepts new transitions
type SetStatusActiveRequest struct {
	Active bool `json:"active"`
}
