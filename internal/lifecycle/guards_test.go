package lifecycle

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/pkg/testutil"
)

func TestCheckTenantScope(t *testing.T) {
	fixtures := testutil.NewFixtureBuilder()
	bankID := uuid.New()
	req := &models.OnboardingRequest{ID: uuid.New(), BankID: bankID, AgencyID: uuid.New()}

	t.Run("matching bank passes", func(t *testing.T) {
		actor := fixtures.Actor(models.RoleBankStaff, bankID, uuid.New())
		assert.NoError(t, checkTenantScope(actor, req))
	})

	t.Run("foreign bank reads as not found", func(t *testing.T) {
		actor := fixtures.Actor(models.RoleBankStaff, uuid.New(), uuid.New())
		err := checkTenantScope(actor, req)

		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("actor without bank reads as not found", func(t *testing.T) {
		actor := models.Actor{UserID: uuid.New(), Role: models.RoleBankStaff}
		err := checkTenantScope(actor, req)

		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})
}

func TestCheckAgentOwnership(t *testing.T) {
	fixtures := testutil.NewFixtureBuilder()
	bankID := uuid.New()
	agencyID := uuid.New()
	owner := fixtures.Actor(models.RoleAgent, bankID, agencyID)
	req := &models.OnboardingRequest{
		ID:       uuid.New(),
		BankID:   bankID,
		AgencyID: agencyID,
		AgentID:  owner.UserID,
	}

	t.Run("owner passes", func(t *testing.T) {
		assert.NoError(t, checkAgentOwnership(owner, req))
	})

	t.Run("agent from another agency is denied", func(t *testing.T) {
		actor := fixtures.Actor(models.RoleAgent, bankID, uuid.New())
		actor.UserID = owner.UserID

		var authErr *AuthorizationError
		assert.ErrorAs(t, checkAgentOwnership(actor, req), &authErr)
	})

	t.Run("different agent of the same agency is denied", func(t *testing.T) {
		actor := fixtures.Actor(models.RoleAgent, bankID, agencyID)

		var authErr *AuthorizationError
		assert.ErrorAs(t, checkAgentOwnership(actor, req), &authErr)
	})

	t.Run("reviewer roles are denied agent operations", func(t *testing.T) {
		actor := fixtures.Actor(models.RoleBankStaff, bankID, agencyID)

		var authErr *AuthorizationError
		assert.ErrorAs(t, checkAgentOwnership(actor, req), &authErr)
	})
}

func TestCheckTransitionRole(t *testing.T) {
	fixtures := testutil.NewFixtureBuilder()
	bankID := uuid.New()
	agencyID := uuid.New()
	abandon := models.StepAbandon

	plain := &models.Status{Code: "REQSTATUS00034", Label: "correction-required"}
	ctoGated := &models.Status{Code: "REQSTATUS00035", Label: "cto-review", RequiresCTO: true}
	n1Gated := &models.Status{Code: "REQSTATUS00037", Label: "n1-review", RequiresN1: true}
	n2Gated := &models.Status{Code: "REQSTATUS00036", Label: "n2-review", RequiresN2: true}
	abandoned := &models.Status{Code: "REQSTATUS00040", Label: "abandoned", Step: &abandon}

	tests := []struct {
		name    string
		role    string
		target  *models.Status
		allowed bool
	}{
		{"plain target accepts any reviewer", models.RoleN1, plain, true},
		{"plain target rejects agents", models.RoleAgent, plain, false},
		{"cto gate admits only cto", models.RoleCTO, ctoGated, true},
		{"cto gate rejects n1", models.RoleN1, ctoGated, false},
		{"n1 gate admits only n1", models.RoleN1, n1Gated, true},
		{"n1 gate rejects n2", models.RoleN2, n1Gated, false},
		{"n2 gate admits only n2", models.RoleN2, n2Gated, true},
		{"n2 gate rejects bank staff", models.RoleBankStaff, n2Gated, false},
		{"abandon admits the agent", models.RoleAgent, abandoned, true},
		{"abandon admits reviewers", models.RoleCTO, abandoned, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := fixtures.Actor(tt.role, bankID, agencyID)
			err := checkTransitionRole(actor, tt.target)
			if tt.allowed {
				assert.NoError(t, err)
			} else {
				var authErr *AuthorizationError
				assert.ErrorAs(t, err, &authErr)
			}
		})
	}

	t.Run("super-admin passes every gate", func(t *testing.T) {
		admin := fixtures.Actor(models.RoleSuperAdmin, bankID, agencyID)
		for _, target := range []*models.Status{plain, ctoGated, n1Gated, n2Gated, abandoned} {
			assert.NoError(t, checkTransitionRole(admin, target))
		}
	})
}
