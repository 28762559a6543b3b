package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// FeedbackRepository stores reviewer verdicts. Rows only accumulate; the
// latest row per field path is the authoritative verdict.
type FeedbackRepository struct {
	db *sql.DB
}

// NewFeedbackRepository creates a new feedback repository
func NewFeedbackRepository(db *sql.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

// Create inserts one verdict row
func (r *FeedbackRepository) Create(ctx context.Context, fb *models.ValidationFeedback) error {
	query := `
		INSERT INTO validation_feedback (id, request_id, field_path, verdict, comment, reviewer_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(
		ctx, query,
		fb.ID, fb.RequestID, fb.FieldPath, fb.Verdict, fb.Comment, fb.ReviewerID, fb.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}
	return nil
}

// CurrentForRequest resolves the latest verdict per field path
func (r *FeedbackRepository) CurrentForRequest(ctx context.Context, requestID uuid.UUID) (map[string]models.FieldVerdict, error) {
	query := `
		SELECT DISTINCT ON (field_path)
		       field_path, verdict, comment, reviewer_id, created_at
		FROM validation_feedback
		WHERE request_id = $1
		ORDER BY field_path, created_at DESC, id DESC`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to load current feedback: %w", err)
	}
	defer rows.Close()

	current := make(map[string]models.FieldVerdict)
	for rows.Next() {
		var fieldPath string
		var verdict models.FieldVerdict
		err := rows.Scan(&fieldPath, &verdict.Verdict, &verdict.Comment, &verdict.ReviewerID, &verdict.ReviewedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		current[fieldPath] = verdict
	}

	return current, rows.Err()
}

// ListForRequest returns every verdict ever recorded for a request, oldest
// first.
func (r *FeedbackRepository) ListForRequest(ctx context.Context, requestID uuid.UUID) ([]models.ValidationFeedback, error) {
	query := `
		SELECT id, request_id, field_path, verdict, comment, reviewer_id, created_at
		FROM validation_feedback
		WHERE request_id = $1
		ORDER BY created_at ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var feedback []models.ValidationFeedback
	for rows.Next() {
		var fb models.ValidationFeedback
		err := rows.Scan(&fb.ID, &fb.RequestID, &fb.FieldPath, &fb.Verdict, &fb.Comment, &fb.ReviewerID, &fb.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, fb)
	}

	return feedback, rows.Err()
}
