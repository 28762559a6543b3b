package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/repository"
)

// RequestRepository handles onboarding request database operations. Status
// writes and their history entries share one transaction so the ledger can
// never drift from the request table.
type RequestRepository struct {
	db *sql.DB
}

// NewRequestRepository creates a new request repository
func NewRequestRepository(db *sql.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `
	id, bank_id, agency_id, agent_id, payload, status_id, version,
	created_by, updated_by, validated_by, validated_at, validation_comment,
	created_at, updated_at`

// Create inserts a new request and its creation history entry atomically
func (r *RequestRepository) Create(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO onboarding_requests (
			id, bank_id, agency_id, agent_id, payload, status_id, version,
			created_by, updated_by, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`

	err = tx.QueryRowContext(
		ctx, query,
		req.ID, req.BankID, req.AgencyID, req.AgentID, req.Payload,
		req.StatusID, req.Version, req.CreatedBy, req.UpdatedBy,
		req.CreatedAt, req.UpdatedAt,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create onboarding request: %w", err)
	}

	if err := insertHistoryEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

// GetByID retrieves a request by ID
func (r *RequestRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.OnboardingRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM onboarding_requests WHERE id = $1`

	req := &models.OnboardingRequest{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&req.ID, &req.BankID, &req.AgencyID, &req.AgentID, &req.Payload,
		&req.StatusID, &req.Version, &req.CreatedBy, &req.UpdatedBy,
		&req.ValidatedBy, &req.ValidatedAt, &req.ValidationComment,
		&req.CreatedAt, &req.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get onboarding request: %w", err)
	}
	return req, nil
}

// UpdatePayload writes the payload under the optimistic version guard
func (r *RequestRepository) UpdatePayload(ctx context.Context, req *models.OnboardingRequest) error {
	query := `
		UPDATE onboarding_requests
		SET payload = $3, updated_by = $4, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		req.ID, req.Version, req.Payload, req.UpdatedBy,
	).Scan(&req.Version, &req.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.versionError(ctx, req.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update payload: %w", err)
	}
	return nil
}

// UpdateStatus writes the status change and appends its history entry in one
// transaction, under the optimistic version guard.
func (r *RequestRepository) UpdateStatus(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		UPDATE onboarding_requests
		SET status_id = $3, updated_by = $4,
		    validated_by = $5, validated_at = $6, validation_comment = $7,
		    version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $2
		RETURNING version, updated_at`

	err = tx.QueryRowContext(
		ctx, query,
		req.ID, req.Version, req.StatusID, req.UpdatedBy,
		req.ValidatedBy, req.ValidatedAt, req.ValidationComment,
	).Scan(&req.Version, &req.UpdatedAt)
	if err == sql.ErrNoRows {
		return r.versionError(ctx, req.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if err := insertHistoryEntry(ctx, tx, entry); err != nil {
		return err
	}

	return tx.Commit()
}

// List retrieves requests with pagination, newest first. Nil filters match
// everything.
func (r *RequestRepository) List(ctx context.Context, bankID, agencyID, statusID *uuid.UUID, limit, offset int) ([]models.OnboardingRequest, int64, error) {
	countQuery := `
		SELECT COUNT(*) FROM onboarding_requests
		WHERE ($1::uuid IS NULL OR bank_id = $1)
		  AND ($2::uuid IS NULL OR agency_id = $2)
		  AND ($3::uuid IS NULL OR status_id = $3)`

	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, bankID, agencyID, statusID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count onboarding requests: %w", err)
	}

	query := `
		SELECT ` + requestColumns + `
		FROM onboarding_requests
		WHERE ($1::uuid IS NULL OR bank_id = $1)
		  AND ($2::uuid IS NULL OR agency_id = $2)
		  AND ($3::uuid IS NULL OR status_id = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`

	rows, err := r.db.QueryContext(ctx, query, bankID, agencyID, statusID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list onboarding requests: %w", err)
	}
	defer rows.Close()

	var requests []models.OnboardingRequest
	for rows.Next() {
		var req models.OnboardingRequest
		err := rows.Scan(
			&req.ID, &req.BankID, &req.AgencyID, &req.AgentID, &req.Payload,
			&req.StatusID, &req.Version, &req.CreatedBy, &req.UpdatedBy,
			&req.ValidatedBy, &req.ValidatedAt, &req.ValidationComment,
			&req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan onboarding request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}

// CountByStatusOlderThan counts requests sitting in a status since before the
// cutoff. Used by the correction-reminder worker.
func (r *RequestRepository) CountByStatusOlderThan(ctx context.Context, statusID uuid.UUID, cutoff time.Time) (int64, error) {
	query := `SELECT COUNT(*) FROM onboarding_requests WHERE status_id = $1 AND updated_at < $2`
	var count int64
	if err := r.db.QueryRowContext(ctx, query, statusID, cutoff).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count stale requests: %w", err)
	}
	return count, nil
}

// ListByStatusOlderThan returns requests sitting in a status since before the
// cutoff, oldest first.
func (r *RequestRepository) ListByStatusOlderThan(ctx context.Context, statusID uuid.UUID, cutoff time.Time, limit int) ([]models.OnboardingRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM onboarding_requests
		WHERE status_id = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, statusID, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale requests: %w", err)
	}
	defer rows.Close()

	var requests []models.OnboardingRequest
	for rows.Next() {
		var req models.OnboardingRequest
		err := rows.Scan(
			&req.ID, &req.BankID, &req.AgencyID, &req.AgentID, &req.Payload,
			&req.StatusID, &req.Version, &req.CreatedBy, &req.UpdatedBy,
			&req.ValidatedBy, &req.ValidatedAt, &req.ValidationComment,
			&req.CreatedAt, &req.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan onboarding request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// versionError distinguishes a stale version from a missing row after an
// UPDATE matched nothing.
func (r *RequestRepository) versionError(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM onboarding_requests WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check request existence: %w", err)
	}
	if exists {
		return repository.ErrVersionConflict
	}
	return repository.ErrNotFound
}

func insertHistoryEntry(ctx context.Context, tx *sql.Tx, entry *models.HistoryEntry) error {
	query := `
		INSERT INTO request_history (id, request_id, status_id, actor_id, comment, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.ExecContext(
		ctx, query,
		entry.ID, entry.RequestID, entry.StatusID, entry.ActorID,
		entry.Comment, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}
