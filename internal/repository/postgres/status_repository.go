package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/repository"
)

// StatusRepository reads the request-status reference table. The table is
// seed-managed; the API surface never writes it.
type StatusRepository struct {
	db *sql.DB
}

// NewStatusRepository creates a new status repository
func NewStatusRepository(db *sql.DB) *StatusRepository {
	return &StatusRepository{db: db}
}

// ListStatuses returns every catalog row, active or not, ordered by rank
func (r *StatusRepository) ListStatuses(ctx context.Context) ([]models.Status, error) {
	query := `
		SELECT id, code, label, rank, is_active, allows_edit, client_visible,
		       client_message, requires_cto, requires_n1, requires_n2, step,
		       created_at, updated_at
		FROM request_statuses
		ORDER BY rank ASC, code ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list request statuses: %w", err)
	}
	defer rows.Close()

	var statuses []models.Status
	for rows.Next() {
		var status models.Status
		var step sql.NullString
		err := rows.Scan(
			&status.ID, &status.Code, &status.Label, &status.Rank,
			&status.IsActive, &status.AllowsEdit, &status.ClientVisible,
			&status.ClientMessage, &status.RequiresCTO, &status.RequiresN1,
			&status.RequiresN2, &step, &status.CreatedAt, &status.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan request status: %w", err)
		}
		if step.Valid {
			kind := models.StepKind(step.String)
			status.Step = &kind
		}
		statuses = append(statuses, status)
	}

	return statuses, rows.Err()
}

// GetByCode retrieves one catalog row by its stable code
func (r *StatusRepository) GetByCode(ctx context.Context, code string) (*models.Status, error) {
	query := `
		SELECT id, code, label, rank, is_active, allows_edit, client_visible,
		       client_message, requires_cto, requires_n1, requires_n2, step,
		       created_at, updated_at
		FROM request_statuses
		WHERE code = $1`

	var status models.Status
	var step sql.NullString
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&status.ID, &status.Code, &status.Label, &status.Rank,
		&status.IsActive, &status.AllowsEdit, &status.ClientVisible,
		&status.ClientMessage, &status.RequiresCTO, &status.RequiresN1,
		&status.RequiresN2, &step, &status.CreatedAt, &status.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get request status: %w", err)
	}
	if step.Valid {
		kind := models.StepKind(step.String)
		status.Step = &kind
	}
	return &status, nil
}

// SetActive toggles a catalog row's assignability
func (r *StatusRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE request_statuses SET is_active = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("failed to update request status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
