package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/models"
)

// HistoryRepository reads the append-only transition ledger. Entries are
// inserted through RequestRepository inside the status-write transaction;
// Append exists for creation paths that manage their own pairing.
type HistoryRepository struct {
	db *sql.DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Append inserts one ledger entry
func (r *HistoryRepository) Append(ctx context.Context, entry *models.HistoryEntry) error {
	query := `
		INSERT INTO request_history (id, request_id, status_id, actor_id, comment, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(
		ctx, query,
		entry.ID, entry.RequestID, entry.StatusID, entry.ActorID,
		entry.Comment, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append history entry: %w", err)
	}
	return nil
}

// ListForRequest returns a request's ledger in creation order, with the
// status code resolved from the catalog.
func (r *HistoryRepository) ListForRequest(ctx context.Context, requestID uuid.UUID, limit, offset int) ([]models.HistoryEntry, int64, error) {
	countQuery := `SELECT COUNT(*) FROM request_history WHERE request_id = $1`
	var total int64
	if err := r.db.QueryRowContext(ctx, countQuery, requestID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count history entries: %w", err)
	}

	query := `
		SELECT h.id, h.request_id, h.status_id, s.code, h.actor_id, h.comment, h.metadata, h.created_at
		FROM request_history h
		JOIN request_statuses s ON s.id = h.status_id
		WHERE h.request_id = $1
		ORDER BY h.created_at ASC, h.id ASC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, requestID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list history entries: %w", err)
	}
	defer rows.Close()

	var entries []models.HistoryEntry
	for rows.Next() {
		var entry models.HistoryEntry
		err := rows.Scan(
			&entry.ID, &entry.RequestID, &entry.StatusID, &entry.StatusCode,
			&entry.ActorID, &entry.Comment, &entry.Metadata, &entry.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, total, rows.Err()
}
