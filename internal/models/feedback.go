package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedbackVerdict is a reviewer's judgment on one payload field
type FeedbackVerdict string

const (
	VerdictOK      FeedbackVerdict = "ok"
	VerdictError   FeedbackVerdict = "error"
	VerdictWarning FeedbackVerdict = "warning"
)

// ValidationFeedback records one reviewer verdict for one payload field,
// addressed by dot path (e.g. "personal.email"). Rows accumulate; the most
// recent row per field is the authoritative verdict.
type ValidationFeedback struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	RequestID  uuid.UUID       `json:"request_id" db:"request_id"`
	FieldPath  string          `json:"field_path" db:"field_path"`
	Verdict    FeedbackVerdict `json:"verdict" db:"verdict"`
	Comment    *string         `json:"comment,omitempty" db:"comment"`
	ReviewerID uuid.UUID       `json:"reviewer_id" db:"reviewer_id"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// FieldVerdict is the current (latest) verdict for one field
type FieldVerdict struct {
	Verdict    FeedbackVerdict `json:"verdict"`
	Comment    *string         `json:"comment,omitempty"`
	ReviewerID uuid.UUID       `json:"reviewer_id"`
	ReviewedAt time.Time       `json:"reviewed_at"`
}

// RecordFeedbackRequest is the reviewer-facing DTO for attaching a verdict
type RecordFeedbackRequest struct {
	FieldPath string          `json:"field_path" validate:"required,max=255"`
	Verdict   FeedbackVerdict `json:"verdict" validate:"required,oneof=ok error warning"`
	Comment   *string         `json:"comment,omitempty"`
}
