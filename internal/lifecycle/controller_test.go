package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/mocks"
	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/repository"
	"github.com/nivobank/backoffice/internal/validation"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/testutil"
)

const (
	codeDraft      = "REQSTATUS00030"
	codeSignature  = "REQSTATUS00032"
	codeSubmitted  = "REQSTATUS00033"
	codeCorrection = "REQSTATUS00034"
	codeCTOReview  = "REQSTATUS00035"
	codeN2Review   = "REQSTATUS00036"
	codeN1Review   = "REQSTATUS00037"
	codeRejected   = "REQSTATUS00038"
	codeAccepted   = "REQSTATUS00039"
	codeAbandoned  = "REQSTATUS00040"
)

type stubStatusStore struct {
	statuses []models.Status
}

func (s *stubStatusStore) ListStatuses(ctx context.Context) ([]models.Status, error) {
	return s.statuses, nil
}

type testEnv struct {
	controller *Controller
	requests   *mocks.SimpleRequestRepository
	history    *mocks.SimpleHistoryRepository
	feedback   *mocks.SimpleFeedbackRepository
	catalog    *registry.Registry
	notifier   *mocks.RecordingNotifier
	feed       *mocks.RecordingPublisher
	fixtures   *testutil.FixtureBuilder

	bankID   uuid.UUID
	agencyID uuid.UUID
	agent    models.Actor
}

func newTestEnv(t *testing.T, statuses []models.Status) *testEnv {
	t.Helper()

	fixtures := testutil.NewFixtureBuilder()
	if statuses == nil {
		statuses = fixtures.StatusCatalog()
	}

	catalog := registry.New(&stubStatusStore{statuses: statuses}, nil, logger.NewForTesting())
	require.NoError(t, catalog.Load(context.Background()))

	history := mocks.NewSimpleHistoryRepository()
	requests := mocks.NewSimpleRequestRepository(history)
	feedback := mocks.NewSimpleFeedbackRepository()
	notifier := mocks.NewRecordingNotifier()
	feed := mocks.NewRecordingPublisher()

	controller := NewController(
		requests, history, feedback,
		catalog, validation.NewEngine(),
		notifier, feed,
		logger.NewForTesting(),
		codeDraft, codeSubmitted,
	)

	bankID := uuid.New()
	agencyID := uuid.New()

	return &testEnv{
		controller: controller,
		requests:   requests,
		history:    history,
		feedback:   feedback,
		catalog:    catalog,
		notifier:   notifier,
		feed:       feed,
		fixtures:   fixtures,
		bankID:     bankID,
		agencyID:   agencyID,
		agent:      fixtures.Actor(models.RoleAgent, bankID, agencyID),
	}
}

func (env *testEnv) reviewer(t *testing.T, role string) models.Actor {
	t.Helper()
	return env.fixtures.Actor(role, env.bankID, env.agencyID)
}

// createRequest opens a request with a strict-valid payload
func (env *testEnv) createRequest(t *testing.T) *models.OnboardingRequest {
	t.Helper()
	req, err := env.controller.Create(context.Background(), env.agent, env.fixtures.ValidPayload())
	require.NoError(t, err)
	return req
}

// forceStatus moves a stored request into the given status through the
// repository, bypassing controller guards, for test arrangement.
func (env *testEnv) forceStatus(t *testing.T, requestID uuid.UUID, code string) {
	t.Helper()
	ctx := context.Background()

	req, err := env.requests.GetByID(ctx, requestID)
	require.NoError(t, err)

	status, err := env.catalog.FindByCode(code)
	require.NoError(t, err)

	req.StatusID = status.ID
	require.NoError(t, env.requests.UpdateStatus(ctx, req, &models.HistoryEntry{
		RequestID: requestID,
		StatusID:  status.ID,
		ActorID:   env.agent.UserID,
	}))
}

func TestCreate(t *testing.T) {
	t.Run("agent opens a request in the initial status", func(t *testing.T) {
		env := newTestEnv(t, nil)

		req, err := env.controller.Create(context.Background(), env.agent, env.fixtures.ValidPayload())
		require.NoError(t, err)

		assert.Equal(t, codeDraft, req.Status.Code)
		assert.Equal(t, 1, req.Version)
		assert.Equal(t, env.bankID, req.BankID)
		assert.Equal(t, env.agencyID, req.AgencyID)
		assert.Equal(t, env.agent.UserID, req.AgentID)

		entries := env.history.All()
		require.Len(t, entries, 1)
		assert.Equal(t, req.ID, entries[0].RequestID)
		assert.Equal(t, req.StatusID, entries[0].StatusID)
		require.NotNil(t, entries[0].Comment)
		assert.Equal(t, "Request created", *entries[0].Comment)
	})

	t.Run("non-agent roles cannot open requests", func(t *testing.T) {
		env := newTestEnv(t, nil)

		for _, role := range []string{models.RoleBankStaff, models.RoleCTO, models.RoleN1, models.RoleN2, models.RoleSuperAdmin} {
			_, err := env.controller.Create(context.Background(), env.reviewer(t, role), models.RequestPayload{})

			var authErr *AuthorizationError
			assert.ErrorAs(t, err, &authErr, "role %s", role)
		}
	})

	t.Run("agent without tenant attachment is rejected", func(t *testing.T) {
		env := newTestEnv(t, nil)
		actor := models.Actor{UserID: uuid.New(), Role: models.RoleAgent}

		_, err := env.controller.Create(context.Background(), actor, models.RequestPayload{})

		var authErr *AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("missing initial status is a configuration failure", func(t *testing.T) {
		fixtures := testutil.NewFixtureBuilder()
		catalog := fixtures.StatusCatalog()
		for i := range catalog {
			if catalog[i].Code == codeDraft {
				catalog[i].IsActive = false
			}
		}
		env := newTestEnv(t, catalog)

		_, err := env.controller.Create(context.Background(), env.agent, models.RequestPayload{})

		var cfgErr *ConfigurationError
		assert.ErrorAs(t, err, &cfgErr)
	})
}

func TestGet(t *testing.T) {
	t.Run("same-bank reviewer can read", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		got, err := env.controller.Get(context.Background(), env.reviewer(t, models.RoleBankStaff), req.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, got.ID)
		assert.Equal(t, codeDraft, got.Status.Code)
	})

	t.Run("cross-bank access reads as not found", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		outsider := env.fixtures.Actor(models.RoleBankStaff, uuid.New(), uuid.New())
		_, err := env.controller.Get(context.Background(), outsider, req.ID)

		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("super-admin crosses tenant boundaries", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		admin := env.fixtures.Actor(models.RoleSuperAdmin, uuid.New(), uuid.New())
		got, err := env.controller.Get(context.Background(), admin, req.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ID, got.ID)
	})

	t.Run("unknown request id", func(t *testing.T) {
		env := newTestEnv(t, nil)

		_, err := env.controller.Get(context.Background(), env.agent, uuid.New())

		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})
}

func TestUpdatePayload(t *testing.T) {
	t.Run("owning agent edits in an editable status", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		updated, err := env.controller.UpdatePayload(context.Background(), env.agent, req.ID, models.UpdatePayloadRequest{
			Personal: &models.PersonalInfo{FirstName: "Moussa", LastName: "Ba"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Moussa", updated.Payload.Personal.FirstName)
		assert.Equal(t, 2, updated.Version)
		// Untouched sections survive a partial update
		assert.NotNil(t, updated.Payload.Business)
	})

	t.Run("another agent of the same agency cannot edit", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		other := env.fixtures.Actor(models.RoleAgent, env.bankID, env.agencyID)
		_, err := env.controller.UpdatePayload(context.Background(), other, req.ID, models.UpdatePayloadRequest{})

		var authErr *AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("non-editable status rejects edits", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeSubmitted)

		_, err := env.controller.UpdatePayload(context.Background(), env.agent, req.ID, models.UpdatePayloadRequest{})

		var guardErr *StateGuardError
		assert.ErrorAs(t, err, &guardErr)
	})

	t.Run("closed request rejects edits", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeRejected)

		_, err := env.controller.UpdatePayload(context.Background(), env.agent, req.ID, models.UpdatePayloadRequest{})

		var guardErr *StateGuardError
		require.ErrorAs(t, err, &guardErr)
		assert.Contains(t, guardErr.Reason, "closed")
	})
}

func TestAttachDocument(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.createRequest(t)

	file := env.fixtures.StoredFile("extra-proof.pdf")
	updated, err := env.controller.AttachDocument(context.Background(), env.agent, req.ID, models.AttachDocumentRequest{
		DocumentType: models.DocTypeAddressProof,
		File:         file,
	})
	require.NoError(t, err)

	// Appends alongside the existing file, never replaces
	assert.Len(t, updated.Payload.Documents[models.DocTypeAddressProof], 2)
	assert.Equal(t, 2, updated.Version)
}

func TestSubmit(t *testing.T) {
	t.Run("incomplete payload is rejected with field errors", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req, err := env.controller.Create(context.Background(), env.agent, models.RequestPayload{})
		require.NoError(t, err)

		_, err = env.controller.Submit(context.Background(), env.agent, req.ID, nil)

		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Contains(t, valErr.Fields, "personal")
		assert.Contains(t, valErr.Fields, "business")
		assert.Contains(t, valErr.Fields, "shareholders")

		// The failed submit leaves no trace in the ledger
		entries := env.history.All()
		assert.Len(t, entries, 1)
	})

	t.Run("valid payload moves to submitted with a ledger entry", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		submitted, err := env.controller.Submit(context.Background(), env.agent, req.ID, nil)
		require.NoError(t, err)

		assert.Equal(t, codeSubmitted, submitted.Status.Code)
		assert.Equal(t, 2, submitted.Version)

		entries := env.history.All()
		require.Len(t, entries, 2)
		assert.Equal(t, submitted.StatusID, entries[1].StatusID)
		assert.Equal(t, codeDraft, entries[1].Metadata["from_status"])
		assert.Equal(t, codeSubmitted, entries[1].Metadata["to_status"])

		events := env.notifier.Events()
		require.Len(t, events, 1)
		assert.Equal(t, "onboarding.submitted", events[0].Event)

		feed := env.feed.Transitions()
		require.Len(t, feed, 1)
		assert.Equal(t, codeSubmitted, feed[0].StatusCode)
	})

	t.Run("only the owning agent submits", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		_, err := env.controller.Submit(context.Background(), env.reviewer(t, models.RoleBankStaff), req.ID, nil)

		var authErr *AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})
}

func TestTransitionRoleGates(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		target  string
		role    string
		allowed bool
	}{
		{name: "bank staff moves to a plain review status", from: codeSubmitted, target: codeCorrection, role: models.RoleBankStaff, allowed: true},
		{name: "agent cannot drive review transitions", from: codeSubmitted, target: codeCorrection, role: models.RoleAgent, allowed: false},
		{name: "cto-gated status accepts cto", from: codeSubmitted, target: codeCTOReview, role: models.RoleCTO, allowed: true},
		{name: "cto-gated status rejects bank staff", from: codeSubmitted, target: codeCTOReview, role: models.RoleBankStaff, allowed: false},
		{name: "cto-gated status rejects n2", from: codeSubmitted, target: codeCTOReview, role: models.RoleN2, allowed: false},
		{name: "n2-gated status accepts n2", from: codeCTOReview, target: codeN2Review, role: models.RoleN2, allowed: true},
		{name: "n2-gated status rejects n1", from: codeCTOReview, target: codeN2Review, role: models.RoleN1, allowed: false},
		{name: "n1-gated status accepts n1", from: codeN2Review, target: codeN1Review, role: models.RoleN1, allowed: true},
		{name: "n1-gated status rejects cto", from: codeN2Review, target: codeN1Review, role: models.RoleCTO, allowed: false},
		{name: "owning agent abandons", from: codeDraft, target: codeAbandoned, role: models.RoleAgent, allowed: true},
		{name: "bank staff abandons", from: codeSubmitted, target: codeAbandoned, role: models.RoleBankStaff, allowed: true},
		{name: "super-admin passes every gate", from: codeSubmitted, target: codeCTOReview, role: models.RoleSuperAdmin, allowed: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, nil)
			req := env.createRequest(t)
			if tt.from != codeDraft {
				env.forceStatus(t, req.ID, tt.from)
			}

			actor := env.agent
			if tt.role != models.RoleAgent {
				actor = env.reviewer(t, tt.role)
			}

			result, err := env.controller.Transition(context.Background(), actor, req.ID, tt.target, nil)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.target, result.Status.Code)
			} else {
				var authErr *AuthorizationError
				assert.ErrorAs(t, err, &authErr)
			}
		})
	}
}

func TestTransition(t *testing.T) {
	t.Run("unknown target status", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		_, err := env.controller.Transition(context.Background(), env.reviewer(t, models.RoleBankStaff), req.ID, "REQSTATUS99999", nil)

		var nfErr *NotFoundError
		assert.ErrorAs(t, err, &nfErr)
	})

	t.Run("inactive target status", func(t *testing.T) {
		fixtures := testutil.NewFixtureBuilder()
		catalog := fixtures.StatusCatalog()
		for i := range catalog {
			if catalog[i].Code == codeCorrection {
				catalog[i].IsActive = false
			}
		}
		env := newTestEnv(t, catalog)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeSubmitted)

		_, err := env.controller.Transition(context.Background(), env.reviewer(t, models.RoleBankStaff), req.ID, codeCorrection, nil)

		var guardErr *StateGuardError
		assert.ErrorAs(t, err, &guardErr)
	})

	t.Run("closed request admits no further transitions", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeAccepted)

		for _, target := range []string{codeCorrection, codeRejected, codeAbandoned} {
			_, err := env.controller.Transition(context.Background(), env.reviewer(t, models.RoleBankStaff), req.ID, target, nil)

			var guardErr *StateGuardError
			require.ErrorAs(t, err, &guardErr, "target %s", target)
			assert.Contains(t, guardErr.Reason, "closed")
		}
	})

	t.Run("repeated transition to the same status appends again", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeSubmitted)

		staff := env.reviewer(t, models.RoleBankStaff)
		_, err := env.controller.Transition(context.Background(), staff, req.ID, codeCorrection, nil)
		require.NoError(t, err)
		_, err = env.controller.Transition(context.Background(), staff, req.ID, codeCorrection, nil)
		require.NoError(t, err)

		correction, err := env.catalog.FindByCode(codeCorrection)
		require.NoError(t, err)

		var count int
		for _, e := range env.history.All() {
			if e.StatusID == correction.ID {
				count++
			}
		}
		assert.Equal(t, 2, count)
	})

	t.Run("reviewer transition stamps the validation audit fields", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeSubmitted)

		cto := env.reviewer(t, models.RoleCTO)
		comment := "KYC documents verified"
		result, err := env.controller.Transition(context.Background(), cto, req.ID, codeCTOReview, &comment)
		require.NoError(t, err)

		require.NotNil(t, result.ValidatedBy)
		assert.Equal(t, cto.UserID, *result.ValidatedBy)
		assert.NotNil(t, result.ValidatedAt)
		require.NotNil(t, result.ValidationComment)
		assert.Equal(t, comment, *result.ValidationComment)
	})
}

func TestTransitionAcceptFeedbackBlock(t *testing.T) {
	setup := func(t *testing.T) (*testEnv, *models.OnboardingRequest, models.Actor) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		env.forceStatus(t, req.ID, codeN1Review)
		return env, req, env.reviewer(t, models.RoleN1)
	}

	t.Run("unresolved error verdict blocks acceptance", func(t *testing.T) {
		env, req, n1 := setup(t)

		_, err := env.controller.RecordFeedback(context.Background(), n1, req.ID, models.RecordFeedbackRequest{
			FieldPath: "personal.tax_id",
			Verdict:   models.VerdictError,
			Comment:   testutil.StringPtr("tax id does not match registry"),
		})
		require.NoError(t, err)

		_, err = env.controller.Transition(context.Background(), env.reviewer(t, models.RoleBankStaff), req.ID, codeAccepted, nil)

		var guardErr *StateGuardError
		require.ErrorAs(t, err, &guardErr)
		assert.Contains(t, guardErr.Reason, "personal.tax_id")
	})

	t.Run("a later ok verdict clears the block", func(t *testing.T) {
		env, req, n1 := setup(t)
		ctx := context.Background()

		_, err := env.controller.RecordFeedback(ctx, n1, req.ID, models.RecordFeedbackRequest{
			FieldPath: "personal.tax_id",
			Verdict:   models.VerdictError,
		})
		require.NoError(t, err)
		_, err = env.controller.RecordFeedback(ctx, n1, req.ID, models.RecordFeedbackRequest{
			FieldPath: "personal.tax_id",
			Verdict:   models.VerdictOK,
		})
		require.NoError(t, err)

		result, err := env.controller.Transition(ctx, env.reviewer(t, models.RoleBankStaff), req.ID, codeAccepted, nil)
		require.NoError(t, err)
		assert.Equal(t, codeAccepted, result.Status.Code)
	})

	t.Run("warning verdicts never block", func(t *testing.T) {
		env, req, n1 := setup(t)
		ctx := context.Background()

		_, err := env.controller.RecordFeedback(ctx, n1, req.ID, models.RecordFeedbackRequest{
			FieldPath: "business.sector",
			Verdict:   models.VerdictWarning,
		})
		require.NoError(t, err)

		_, err = env.controller.Transition(ctx, env.reviewer(t, models.RoleBankStaff), req.ID, codeAccepted, nil)
		assert.NoError(t, err)
	})

	t.Run("refusal is never feedback-blocked", func(t *testing.T) {
		env, req, n1 := setup(t)
		ctx := context.Background()

		_, err := env.controller.RecordFeedback(ctx, n1, req.ID, models.RecordFeedbackRequest{
			FieldPath: "personal.tax_id",
			Verdict:   models.VerdictError,
		})
		require.NoError(t, err)

		result, err := env.controller.Transition(ctx, env.reviewer(t, models.RoleBankStaff), req.ID, codeRejected, nil)
		require.NoError(t, err)
		assert.Equal(t, codeRejected, result.Status.Code)
	})
}

// conflictingRequestRepository simulates a concurrent writer that lands a
// competing status update between the controller's read and its write.
type conflictingRequestRepository struct {
	*mocks.SimpleRequestRepository
	fired bool
}

func (r *conflictingRequestRepository) UpdateStatus(ctx context.Context, req *models.OnboardingRequest, entry *models.HistoryEntry) error {
	if !r.fired {
		r.fired = true
		return repository.ErrVersionConflict
	}
	return r.SimpleRequestRepository.UpdateStatus(ctx, req, entry)
}

func TestTransitionVersionConflict(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.createRequest(t)

	racing := &conflictingRequestRepository{SimpleRequestRepository: env.requests}
	controller := NewController(
		racing, env.history, env.feedback,
		env.catalog, validation.NewEngine(),
		nil, nil,
		logger.NewForTesting(),
		codeDraft, codeSubmitted,
	)

	ctx := context.Background()
	_, err := controller.Submit(ctx, env.agent, req.ID, nil)

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.True(t, errors.Is(err, repository.ErrVersionConflict))

	// The lost writer left no ledger entry and the stored request is intact
	assert.Len(t, env.history.All(), 1)
	stored, getErr := env.requests.GetByID(ctx, req.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, stored.Version)

	// A retry against the fresh version goes through
	result, err := controller.Submit(ctx, env.agent, req.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, codeSubmitted, result.Status.Code)
}

func TestGetHistory(t *testing.T) {
	env := newTestEnv(t, nil)
	req := env.createRequest(t)
	ctx := context.Background()

	_, err := env.controller.Submit(ctx, env.agent, req.ID, nil)
	require.NoError(t, err)
	_, err = env.controller.Transition(ctx, env.reviewer(t, models.RoleBankStaff), req.ID, codeCorrection, nil)
	require.NoError(t, err)

	entries, total, err := env.controller.GetHistory(ctx, env.agent, req.ID, 10, 0)
	require.NoError(t, err)

	assert.Equal(t, int64(3), total)
	require.Len(t, entries, 3)
	// Creation order, with status codes resolved from the catalog
	assert.Equal(t, codeDraft, entries[0].StatusCode)
	assert.Equal(t, codeSubmitted, entries[1].StatusCode)
	assert.Equal(t, codeCorrection, entries[2].StatusCode)

	// Pagination slices the same ordering
	page, total, err := env.controller.GetHistory(ctx, env.agent, req.ID, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, codeSubmitted, page[0].StatusCode)
}

func TestRecordFeedback(t *testing.T) {
	t.Run("agents cannot record verdicts", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)

		_, err := env.controller.RecordFeedback(context.Background(), env.agent, req.ID, models.RecordFeedbackRequest{
			FieldPath: "personal.email",
			Verdict:   models.VerdictOK,
		})

		var authErr *AuthorizationError
		assert.ErrorAs(t, err, &authErr)
	})

	t.Run("latest verdict per field wins", func(t *testing.T) {
		env := newTestEnv(t, nil)
		req := env.createRequest(t)
		ctx := context.Background()
		staff := env.reviewer(t, models.RoleBankStaff)

		for _, rec := range []models.RecordFeedbackRequest{
			{FieldPath: "personal.email", Verdict: models.VerdictError},
			{FieldPath: "business.legal_name", Verdict: models.VerdictOK},
			{FieldPath: "personal.email", Verdict: models.VerdictOK},
		} {
			_, err := env.controller.RecordFeedback(ctx, staff, req.ID, rec)
			require.NoError(t, err)
		}

		current, err := env.controller.CurrentFeedback(ctx, env.agent, req.ID)
		require.NoError(t, err)

		require.Len(t, current, 2)
		assert.Equal(t, models.VerdictOK, current["personal.email"].Verdict)
		assert.Equal(t, models.VerdictOK, current["business.legal_name"].Verdict)
	})
}

func TestList(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	mine := env.createRequest(t)

	// Same bank, different agency
	otherAgent := env.fixtures.Actor(models.RoleAgent, env.bankID, uuid.New())
	otherReq, err := env.controller.Create(ctx, otherAgent, env.fixtures.ValidPayload())
	require.NoError(t, err)

	// Different bank entirely
	foreignAgent := env.fixtures.Actor(models.RoleAgent, uuid.New(), uuid.New())
	_, err = env.controller.Create(ctx, foreignAgent, env.fixtures.ValidPayload())
	require.NoError(t, err)

	t.Run("agent sees only own agency", func(t *testing.T) {
		reqs, total, err := env.controller.List(ctx, env.agent, nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, reqs, 1)
		assert.Equal(t, mine.ID, reqs[0].ID)
	})

	t.Run("bank staff sees the whole bank", func(t *testing.T) {
		_, total, err := env.controller.List(ctx, env.reviewer(t, models.RoleBankStaff), nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
	})

	t.Run("super-admin sees everything", func(t *testing.T) {
		_, total, err := env.controller.List(ctx, env.fixtures.Actor(models.RoleSuperAdmin, uuid.New(), uuid.New()), nil, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
	})

	t.Run("status filter applies", func(t *testing.T) {
		env.forceStatus(t, otherReq.ID, codeSubmitted)
		submitted, err := env.catalog.FindByCode(codeSubmitted)
		require.NoError(t, err)

		reqs, total, err := env.controller.List(ctx, env.reviewer(t, models.RoleBankStaff), &submitted.ID, 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, reqs, 1)
		assert.Equal(t, otherReq.ID, reqs[0].ID)
	})
}
