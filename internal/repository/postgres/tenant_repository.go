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

// TenantRepository handles bank and agency database operations
type TenantRepository struct {
	db *sql.DB
}

// NewTenantRepository creates a new tenant repository
func NewTenantRepository(db *sql.DB) *TenantRepository {
	return &TenantRepository{db: db}
}

// CreateBank creates a new bank
func (r *TenantRepository) CreateBank(ctx context.Context, req *models.CreateBankRequest, createdBy uuid.UUID) (*models.Bank, error) {
	bank := &models.Bank{
		ID:        uuid.New(),
		Name:      req.Name,
		Slug:      req.Slug,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		CreatedBy: createdBy,
	}

	query := `
		INSERT INTO banks (id, name, slug, is_active, settings, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		bank.ID, bank.Name, bank.Slug, bank.IsActive, bank.Settings,
		bank.CreatedAt, bank.UpdatedAt, bank.CreatedBy,
	).Scan(&bank.ID, &bank.CreatedAt, &bank.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create bank: %w", err)
	}

	return bank, nil
}

// GetBank retrieves a bank by ID
func (r *TenantRepository) GetBank(ctx context.Context, id uuid.UUID) (*models.Bank, error) {
	bank := &models.Bank{}
	query := `
		SELECT id, name, slug, is_active, settings, created_at, updated_at, created_by
		FROM banks
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&bank.ID, &bank.Name, &bank.Slug, &bank.IsActive, &bank.Settings,
		&bank.CreatedAt, &bank.UpdatedAt, &bank.CreatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}

	return bank, nil
}

// GetBankBySlug retrieves a bank by slug
func (r *TenantRepository) GetBankBySlug(ctx context.Context, slug string) (*models.Bank, error) {
	bank := &models.Bank{}
	query := `
		SELECT id, name, slug, is_active, settings, created_at, updated_at, created_by
		FROM banks
		WHERE slug = $1`

	err := r.db.QueryRowContext(ctx, query, slug).Scan(
		&bank.ID, &bank.Name, &bank.Slug, &bank.IsActive, &bank.Settings,
		&bank.CreatedAt, &bank.UpdatedAt, &bank.CreatedBy,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bank: %w", err)
	}

	return bank, nil
}

// ListBanks retrieves a paginated list of active banks
func (r *TenantRepository) ListBanks(ctx context.Context, page, pageSize int) ([]models.Bank, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM banks WHERE is_active = true`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count banks: %w", err)
	}

	query := `
		SELECT id, name, slug, is_active, settings, created_at, updated_at, created_by
		FROM banks
		WHERE is_active = true
		ORDER BY name ASC
		LIMIT $1 OFFSET $2`

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list banks: %w", err)
	}
	defer rows.Close()

	banks := []models.Bank{}
	for rows.Next() {
		var bank models.Bank
		if err := rows.Scan(
			&bank.ID, &bank.Name, &bank.Slug, &bank.IsActive, &bank.Settings,
			&bank.CreatedAt, &bank.UpdatedAt, &bank.CreatedBy,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan bank: %w", err)
		}
		banks = append(banks, bank)
	}

	return banks, total, rows.Err()
}

// DeactivateBank soft-deletes a bank
func (r *TenantRepository) DeactivateBank(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE banks SET is_active = false, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate bank: %w", err)
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

// CreateAgency creates a new agency under a bank
func (r *TenantRepository) CreateAgency(ctx context.Context, bankID uuid.UUID, req *models.CreateAgencyRequest) (*models.Agency, error) {
	agency := &models.Agency{
		ID:        uuid.New(),
		BankID:    bankID,
		Name:      req.Name,
		Code:      req.Code,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	query := `
		INSERT INTO agencies (id, bank_id, name, code, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(
		ctx, query,
		agency.ID, agency.BankID, agency.Name, agency.Code, agency.IsActive,
		agency.CreatedAt, agency.UpdatedAt,
	).Scan(&agency.ID, &agency.CreatedAt, &agency.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create agency: %w", err)
	}

	return agency, nil
}

// GetAgency retrieves an agency by ID within a bank
func (r *TenantRepository) GetAgency(ctx context.Context, bankID, id uuid.UUID) (*models.Agency, error) {
	agency := &models.Agency{}
	query := `
		SELECT id, bank_id, name, code, is_active, created_at, updated_at
		FROM agencies
		WHERE bank_id = $1 AND id = $2`

	err := r.db.QueryRowContext(ctx, query, bankID, id).Scan(
		&agency.ID, &agency.BankID, &agency.Name, &agency.Code,
		&agency.IsActive, &agency.CreatedAt, &agency.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get agency: %w", err)
	}

	return agency, nil
}

// ListAgencies retrieves the active agencies of a bank
func (r *TenantRepository) ListAgencies(ctx context.Context, bankID uuid.UUID, page, pageSize int) ([]models.Agency, int64, error) {
	var total int64
	countQuery := `SELECT COUNT(*) FROM agencies WHERE bank_id = $1 AND is_active = true`
	if err := r.db.QueryRowContext(ctx, countQuery, bankID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count agencies: %w", err)
	}

	query := `
		SELECT id, bank_id, name, code, is_active, created_at, updated_at
		FROM agencies
		WHERE bank_id = $1 AND is_active = true
		ORDER BY name ASC
		LIMIT $2 OFFSET $3`

	offset := (page - 1) * pageSize
	rows, err := r.db.QueryContext(ctx, query, bankID, pageSize, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list agencies: %w", err)
	}
	defer rows.Close()

	agencies := []models.Agency{}
	for rows.Next() {
		var agency models.Agency
		if err := rows.Scan(
			&agency.ID, &agency.BankID, &agency.Name, &agency.Code,
			&agency.IsActive, &agency.CreatedAt, &agency.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan agency: %w", err)
		}
		agencies = append(agencies, agency)
	}

	return agencies, total, rows.Err()
}

// DeactivateAgency soft-deletes an agency within a bank
func (r *TenantRepository) DeactivateAgency(ctx context.Context, bankID, id uuid.UUID) error {
	query := `UPDATE agencies SET is_active = false, updated_at = NOW() WHERE bank_id = $1 AND id = $2`
	result, err := r.db.ExecContext(ctx, query, bankID, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate agency: %w", err)
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
