package seeds

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/nivobank/backoffice/internal/models"
)

// StatusSeeder seeds the onboarding status catalog. The catalog is reference
// data: seeding is idempotent and upserts by code so label or message edits
// roll out without touching request rows.
type StatusSeeder struct {
	db *sql.DB
}

// NewStatusSeeder creates a new status catalog seeder
func NewStatusSeeder(db *sql.DB) *StatusSeeder {
	return &StatusSeeder{db: db}
}

// StatusDef is one catalog entry to seed
type StatusDef struct {
	Code          string
	Label         string
	Rank          int
	AllowsEdit    bool
	ClientVisible bool
	ClientMessage string
	RequiresCTO   bool
	RequiresN1    bool
	RequiresN2    bool
	Step          *models.StepKind
}

// GetStatusCatalog returns the full onboarding status catalog
func GetStatusCatalog() []StatusDef {
	signature := models.StepSignature
	refuse := models.StepRefuse
	accept := models.StepAccept
	abandon := models.StepAbandon

	return []StatusDef{
		{
			Code: "REQSTATUS00030", Label: "draft", Rank: 10,
			AllowsEdit: true, ClientVisible: true,
			ClientMessage: "Your application is in progress.",
		},
		{
			Code: "REQSTATUS00031", Label: "data-complete", Rank: 20,
		},
		{
			Code: "REQSTATUS00032", Label: "signature-pending", Rank: 30,
			Step: &signature,
		},
		{
			Code: "REQSTATUS00033", Label: "submitted", Rank: 40,
			ClientVisible: true,
			ClientMessage: "Your application is under review.",
		},
		{
			Code: "REQSTATUS00034", Label: "correction-required", Rank: 50,
			AllowsEdit: true, ClientVisible: true,
			ClientMessage: "Your application needs corrections before we can continue.",
		},
		{
			Code: "REQSTATUS00035", Label: "cto-review", Rank: 60,
			RequiresCTO: true,
		},
		{
			Code: "REQSTATUS00036", Label: "n2-review", Rank: 70,
			RequiresN2: true,
		},
		{
			Code: "REQSTATUS00037", Label: "n1-review", Rank: 75,
			RequiresN1: true,
		},
		{
			Code: "REQSTATUS00038", Label: "rejected", Rank: 80,
			ClientVisible: true,
			ClientMessage: "We could not open your account.",
			Step:          &refuse,
		},
		{
			Code: "REQSTATUS00039", Label: "account-opened", Rank: 90,
			ClientVisible: true,
			ClientMessage: "Your account is open. Welcome!",
			Step:          &accept,
		},
		{
			Code: "REQSTATUS00040", Label: "abandoned", Rank: 95,
			Step: &abandon,
		},
	}
}

// SeedAll upserts the full catalog
func (s *StatusSeeder) SeedAll(ctx context.Context) error {
	log.Println("Seeding status catalog...")

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, def := range GetStatusCatalog() {
		var step *string
		if def.Step != nil {
			v := string(*def.Step)
			step = &v
		}

		var msg *string
		if def.ClientMessage != "" {
			msg = &def.ClientMessage
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO request_statuses (
				code, label, rank, is_active, allows_edit,
				client_visible, client_message,
				requires_cto, requires_n1, requires_n2, step,
				created_at, updated_at
			)
			VALUES ($1, $2, $3, true, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
			ON CONFLICT (code) DO UPDATE
			SET label = EXCLUDED.label,
			    rank = EXCLUDED.rank,
			    allows_edit = EXCLUDED.allows_edit,
			    client_visible = EXCLUDED.client_visible,
			    client_message = EXCLUDED.client_message,
			    requires_cto = EXCLUDED.requires_cto,
			    requires_n1 = EXCLUDED.requires_n1,
			    requires_n2 = EXCLUDED.requires_n2,
			    step = EXCLUDED.step,
			    updated_at = NOW()
		`, def.Code, def.Label, def.Rank, def.AllowsEdit,
			def.ClientVisible, msg,
			def.RequiresCTO, def.RequiresN1, def.RequiresN2, step)

		if err != nil {
			return fmt.Errorf("failed to insert status %s: %w", def.Code, err)
		}
		log.Printf("  ✓ Status: %s (%s)", def.Code, def.Label)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Println("Status catalog seeding completed successfully!")
	return nil
}

// Verify checks that every catalog entry exists and is active
func (s *StatusSeeder) Verify(ctx context.Context) error {
	log.Println("Verifying status catalog...")

	for _, def := range GetStatusCatalog() {
		var exists bool
		err := s.db.QueryRowContext(ctx, `
			SELECT EXISTS(SELECT 1 FROM request_statuses WHERE code = $1)
		`, def.Code).Scan(&exists)

		if err != nil {
			return fmt.Errorf("failed to check status %s: %w", def.Code, err)
		}

		if !exists {
			return fmt.Errorf("status %s does not exist", def.Code)
		}
		log.Printf("  ✓ Status: %s", def.Code)
	}

	log.Println("✓ Status catalog verification completed successfully!")
	return nil
}
