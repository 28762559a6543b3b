package integration

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/repository"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/internal/seeds"
	"github.com/nivobank/backoffice/pkg/testutil"
)

// tenancy holds the seeded rows a request needs to satisfy its FKs
type tenancy struct {
	BankID   uuid.UUID
	AgencyID uuid.UUID
	AgentID  uuid.UUID
}

// seedTenancy inserts one bank, agency, agent role and agent user, plus the
// full status catalog, so onboarding rows can be written against real FKs.
func seedTenancy(t *testing.T, s *IntegrationSuite, ctx context.Context) tenancy {
	t.Helper()

	require.NoError(t, seeds.NewStatusSeeder(s.DB.DB).SeedAll(ctx))

	tn := tenancy{
		BankID:   uuid.New(),
		AgencyID: uuid.New(),
		AgentID:  uuid.New(),
	}
	roleID := uuid.New()

	_, err := s.DB.DB.ExecContext(ctx,
		`INSERT INTO banks (id, name, slug) VALUES ($1, 'Test Bank', 'test-bank')`, tn.BankID)
	require.NoError(t, err)

	_, err = s.DB.DB.ExecContext(ctx,
		`INSERT INTO agencies (id, bank_id, name, code) VALUES ($1, $2, 'Main Agency', 'AG001')`,
		tn.AgencyID, tn.BankID)
	require.NoError(t, err)

	_, err = s.DB.DB.ExecContext(ctx,
		`INSERT INTO roles (id, name, description) VALUES ($1, 'agent', 'Field agent')`, roleID)
	require.NoError(t, err)

	_, err = s.DB.DB.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role_id, bank_id, agency_id)
		 VALUES ($1, 'agent1', 'agent1@example.com', 'x', $2, $3, $4)`,
		tn.AgentID, roleID, tn.BankID, tn.AgencyID)
	require.NoError(t, err)

	return tn
}

func statusID(t *testing.T, s *IntegrationSuite, ctx context.Context, code string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := s.DB.DB.QueryRowContext(ctx,
		`SELECT id FROM request_statuses WHERE code = $1`, code).Scan(&id)
	require.NoError(t, err)
	return id
}

func newRequestRow(tn tenancy, statusID uuid.UUID, payload models.RequestPayload) *models.OnboardingRequest {
	now := time.Now()
	return &models.OnboardingRequest{
		ID:        uuid.New(),
		BankID:    tn.BankID,
		AgencyID:  tn.AgencyID,
		AgentID:   tn.AgentID,
		Payload:   payload,
		StatusID:  statusID,
		Version:   1,
		CreatedBy: tn.AgentID,
		UpdatedBy: tn.AgentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func creationEntry(req *models.OnboardingRequest) *models.HistoryEntry {
	comment := "Request created"
	return &models.HistoryEntry{
		ID:        uuid.New(),
		RequestID: req.ID,
		StatusID:  req.StatusID,
		ActorID:   req.AgentID,
		Comment:   &comment,
		CreatedAt: time.Now(),
	}
}

func TestRequestRepository_CreateWithHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	suite := SetupSuite(t)
	defer TeardownSuite(t)
	suite.ResetDatabase(t)

	ctx := suite.GetContext(t)
	tn := seedTenancy(t, suite, ctx)

	repo := postgres.NewRequestRepository(suite.DB.DB)
	history := postgres.NewHistoryRepository(suite.DB.DB)

	fixtures := testutil.NewFixtureBuilder()
	draft := statusID(t, suite, ctx, "REQSTATUS00030")

	req := newRequestRow(tn, draft, fixtures.ValidPayload())
	require.NoError(t, repo.Create(ctx, req, creationEntry(req)))

	retrieved, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, tn.BankID, retrieved.BankID)
	assert.Equal(t, draft, retrieved.StatusID)
	assert.Equal(t, 1, retrieved.Version)
	require.NotNil(t, retrieved.Payload.Personal)
	assert.Equal(t, req.Payload.Personal.FirstName, retrieved.Payload.Personal.FirstName)

	// The creation ledger entry lands in the same transaction
	entries, total, err := history.ListForRequest(ctx, req.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, entries, 1)
	assert.Equal(t, "REQSTATUS00030", entries[0].StatusCode)
}

func TestRequestRepository_VersionConflict(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	suite := SetupSuite(t)
	defer TeardownSuite(t)
	suite.ResetDatabase(t)

	ctx := suite.GetContext(t)
	tn := seedTenancy(t, suite, ctx)

	repo := postgres.NewRequestRepository(suite.DB.DB)
	fixtures := testutil.NewFixtureBuilder()
	draft := statusID(t, suite, ctx, "REQSTATUS00030")

	req := newRequestRow(tn, draft, fixtures.ValidPayload())
	require.NoError(t, repo.Create(ctx, req, creationEntry(req)))

	// First writer bumps the version
	first, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)

	first.UpdatedBy = tn.AgentID
	require.NoError(t, repo.UpdatePayload(ctx, first))
	assert.Equal(t, 2, first.Version)

	// Stale writer still carries version 1 and must lose
	stale.UpdatedBy = tn.AgentID
	err = repo.UpdatePayload(ctx, stale)
	require.Error(t, err)
	assert.ErrorIs(t, err, repository.ErrVersionConflict)
}

func TestRequestRepository_UpdateStatusAppendsLedger(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	suite := SetupSuite(t)
	defer TeardownSuite(t)
	suite.ResetDatabase(t)

	ctx := suite.GetContext(t)
	tn := seedTenancy(t, suite, ctx)

	repo := postgres.NewRequestRepository(suite.DB.DB)
	history := postgres.NewHistoryRepository(suite.DB.DB)
	fixtures := testutil.NewFixtureBuilder()

	draft := statusID(t, suite, ctx, "REQSTATUS00030")
	submitted := statusID(t, suite, ctx, "REQSTATUS00033")

	req := newRequestRow(tn, draft, fixtures.ValidPayload())
	require.NoError(t, repo.Create(ctx, req, creationEntry(req)))

	req.StatusID = submitted
	req.UpdatedBy = tn.AgentID
	comment := "Request submitted"
	entry := &models.HistoryEntry{
		ID:        uuid.New(),
		RequestID: req.ID,
		StatusID:  submitted,
		ActorID:   tn.AgentID,
		Comment:   &comment,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.UpdateStatus(ctx, req, entry))
	assert.Equal(t, 2, req.Version)

	entries, total, err := history.ListForRequest(ctx, req.ID, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, "REQSTATUS00030", entries[0].StatusCode)
	assert.Equal(t, "REQSTATUS00033", entries[1].StatusCode)
}

func TestRequestRepository_ListTenantScoped(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	suite := SetupSuite(t)
	defer TeardownSuite(t)
	suite.ResetDatabase(t)

	ctx := suite.GetContext(t)
	tn := seedTenancy(t, suite, ctx)

	repo := postgres.NewRequestRepository(suite.DB.DB)
	fixtures := testutil.NewFixtureBuilder()
	draft := statusID(t, suite, ctx, "REQSTATUS00030")

	for i := 0; i < 3; i++ {
		req := newRequestRow(tn, draft, fixtures.ValidPayload())
		require.NoError(t, repo.Create(ctx, req, creationEntry(req)))
	}

	// Bank-scoped listing sees all three
	results, total, err := repo.List(ctx, &tn.BankID, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, results, 3)

	// A different bank sees nothing
	otherBank := uuid.New()
	results, total, err = repo.List(ctx, &otherBank, nil, nil, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, results)

	// Status filter matches the drafts
	results, total, err = repo.List(ctx, &tn.BankID, nil, &draft, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, results, 3)
}

func TestFeedbackRepository_LatestVerdictWins(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	suite := SetupSuite(t)
	defer TeardownSuite(t)
	suite.ResetDatabase(t)

	ctx := suite.GetContext(t)
	tn := seedTenancy(t, suite, ctx)

	repo := postgres.NewRequestRepository(suite.DB.DB)
	feedback := postgres.NewFeedbackRepository(suite.DB.DB)
	fixtures := testutil.NewFixtureBuilder()
	draft := statusID(t, suite, ctx, "REQSTATUS00030")

	req := newRequestRow(tn, draft, fixtures.ValidPayload())
	require.NoError(t, repo.Create(ctx, req, creationEntry(req)))

	reviewerID := uuid.New()
	record := func(verdict models.FeedbackVerdict, at time.Time) {
		require.NoError(t, feedback.Create(ctx, &models.ValidationFeedback{
			ID:         uuid.New(),
			RequestID:  req.ID,
			FieldPath:  "personal.first_name",
			Verdict:    verdict,
			ReviewerID: reviewerID,
			CreatedAt:  at,
		}))
	}

	base := time.Now().Add(-time.Hour)
	record(models.VerdictError, base)
	record(models.VerdictOK, base.Add(time.Minute))

	current, err := feedback.CurrentForRequest(ctx, req.ID)
	require.NoError(t, err)
	require.Contains(t, current, "personal.first_name")
	assert.Equal(t, models.VerdictOK, current["personal.first_name"].Verdict)

	// The full trail keeps both rows
	trail, err := feedback.ListForRequest(ctx, req.ID)
	require.NoError(t, err)
	assert.Len(t, trail, 2)
}
