package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nivobank/backoffice/internal/lifecycle"
	"github.com/nivobank/backoffice/internal/mocks"
	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/validation"
	"github.com/nivobank/backoffice/pkg/auth"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/testutil"
)

type stubStatusStore struct {
	statuses []models.Status
}

func (s *stubStatusStore) ListStatuses(ctx context.Context) ([]models.Status, error) {
	return s.statuses, nil
}

type handlerEnv struct {
	handler  *RequestHandler
	router   *chi.Mux
	fixtures *testutil.FixtureBuilder
	requests *mocks.SimpleRequestRepository

	bankID   uuid.UUID
	agencyID uuid.UUID
	agent    models.Actor
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	fixtures := testutil.NewFixtureBuilder()

	catalog := registry.New(&stubStatusStore{statuses: fixtures.StatusCatalog()}, nil, logger.NewForTesting())
	require.NoError(t, catalog.Load(context.Background()))

	history := mocks.NewSimpleHistoryRepository()
	requests := mocks.NewSimpleRequestRepository(history)
	feedback := mocks.NewSimpleFeedbackRepository()

	controller := lifecycle.NewController(
		requests, history, feedback,
		catalog, validation.NewEngine(),
		nil, nil,
		logger.NewForTesting(),
		"REQSTATUS00030", "REQSTATUS00033",
	)

	handler := NewRequestHandler(logger.NewForTesting(), controller, catalog)

	router := chi.NewRouter()
	router.Post("/requests", handler.Create)
	router.Get("/requests", handler.List)
	router.Get("/requests/{id}", handler.Get)
	router.Put("/requests/{id}/payload", handler.UpdatePayload)
	router.Post("/requests/{id}/submit", handler.Submit)
	router.Post("/requests/{id}/transition", handler.Transition)
	router.Get("/requests/{id}/history", handler.GetHistory)
	router.Post("/requests/{id}/feedback", handler.RecordFeedback)
	router.Get("/requests/{id}/feedback", handler.CurrentFeedback)

	bankID := uuid.New()
	agencyID := uuid.New()

	return &handlerEnv{
		handler:  handler,
		router:   router,
		fixtures: fixtures,
		requests: requests,
		bankID:   bankID,
		agencyID: agencyID,
		agent:    fixtures.Actor(models.RoleAgent, bankID, agencyID),
	}
}

// do performs a request with the actor's claims injected the way the auth
// middleware injects them
func (env *handlerEnv) do(t *testing.T, actor *models.Actor, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	if actor != nil {
		claims := &auth.JWTClaims{
			UserID:   actor.UserID,
			Role:     actor.Role,
			BankID:   actor.BankID,
			AgencyID: actor.AgencyID,
		}
		ctx := context.WithValue(req.Context(), "claims", claims)
		req = req.WithContext(ctx)
	}

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func (env *handlerEnv) createRequest(t *testing.T) *models.OnboardingRequest {
	t.Helper()

	rec := env.do(t, &env.agent, "POST", "/requests", env.fixtures.ValidPayload())
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var req models.OnboardingRequest
	testutil.DecodeJSON(t, rec, &req)
	return &req
}

func TestCreateRequiresAuth(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, nil, "POST", "/requests", env.fixtures.ValidPayload())
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateAsAgent(t *testing.T) {
	env := newHandlerEnv(t)

	req := env.createRequest(t)
	assert.Equal(t, env.bankID, req.BankID)
	assert.Equal(t, env.agencyID, req.AgencyID)
	assert.Equal(t, 1, req.Version)
	testutil.RequireRequestStatus(t, req, "REQSTATUS00030")
}

func TestCreateForbiddenForReviewer(t *testing.T) {
	env := newHandlerEnv(t)
	reviewer := env.fixtures.Actor(models.RoleBankStaff, env.bankID, env.agencyID)

	rec := env.do(t, &reviewer, "POST", "/requests", env.fixtures.ValidPayload())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetUnknownRequest(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, &env.agent, "GET", "/requests/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetInvalidID(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, &env.agent, "GET", "/requests/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOutsideBank(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	// Cross-tenant reads are masked as 404 so request IDs cannot be enumerated.
	outsider := env.fixtures.Actor(models.RoleBankStaff, uuid.New(), uuid.New())
	rec := env.do(t, &outsider, "GET", "/requests/"+req.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListRequests(t *testing.T) {
	env := newHandlerEnv(t)
	env.createRequest(t)
	env.createRequest(t)

	rec := env.do(t, &env.agent, "GET", "/requests?limit=10", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.RequestListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Total)
	assert.Len(t, resp.Requests, 2)
}

func TestListUnknownStatusFilter(t *testing.T) {
	env := newHandlerEnv(t)

	rec := env.do(t, &env.agent, "GET", "/requests?status=REQSTATUS99999", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitIncompletePayload(t *testing.T) {
	env := newHandlerEnv(t)

	// Create with an incomplete payload: draft accepts it, submit must not.
	payload := env.fixtures.ValidPayload()
	payload.Documents = models.DocumentSet{}
	rec := env.do(t, &env.agent, "POST", "/requests", payload)
	require.Equal(t, http.StatusCreated, rec.Code)

	var req models.OnboardingRequest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &req))

	rec = env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Fields)
}

func TestSubmitThenTransition(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	rec := env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	reviewer := env.fixtures.Actor(models.RoleBankStaff, env.bankID, env.agencyID)
	rec = env.do(t, &reviewer, "POST", "/requests/"+req.ID.String()+"/transition",
		models.TransitionRequest{TargetStatusCode: "REQSTATUS00034"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.OnboardingRequest
	testutil.DecodeJSON(t, rec, &updated)
	testutil.RequireRequestStatus(t, &updated, "REQSTATUS00034")
}

func TestTransitionToGatedStatusNeedsRole(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	rec := env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Bank staff cannot enter a CTO-gated status
	reviewer := env.fixtures.Actor(models.RoleBankStaff, env.bankID, env.agencyID)
	rec = env.do(t, &reviewer, "POST", "/requests/"+req.ID.String()+"/transition",
		models.TransitionRequest{TargetStatusCode: "REQSTATUS00035"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	cto := env.fixtures.Actor(models.RoleCTO, env.bankID, env.agencyID)
	rec = env.do(t, &cto, "POST", "/requests/"+req.ID.String()+"/transition",
		models.TransitionRequest{TargetStatusCode: "REQSTATUS00035"})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestTransitionMissingTarget(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	rec := env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/transition",
		map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryLedger(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	rec := env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, &env.agent, "GET", "/requests/"+req.ID.String()+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.HistoryListResponse
	testutil.DecodeJSON(t, rec, &resp)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Entries, 2)
	testutil.AssertLedgerTail(t, resp.Entries, "REQSTATUS00033")
}

func TestRecordAndReadFeedback(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	rec := env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	reviewer := env.fixtures.Actor(models.RoleBankStaff, env.bankID, env.agencyID)
	rec = env.do(t, &reviewer, "POST", "/requests/"+req.ID.String()+"/feedback",
		models.RecordFeedbackRequest{
			FieldPath: "personal.first_name",
			Verdict:   models.VerdictError,
			Comment:   testutil.StringPtr("Name does not match ID document"),
		})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.do(t, &reviewer, "GET", "/requests/"+req.ID.String()+"/feedback", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Fields map[string]models.FieldVerdict `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Fields, "personal.first_name")
	assert.Equal(t, models.VerdictError, resp.Fields["personal.first_name"].Verdict)
}

func TestUpdatePayloadAfterSubmitBlocked(t *testing.T) {
	env := newHandlerEnv(t)
	req := env.createRequest(t)

	rec := env.do(t, &env.agent, "POST", "/requests/"+req.ID.String()+"/submit", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	upd := models.UpdatePayloadRequest{
		Personal: env.fixtures.ValidPayload().Personal,
	}
	rec = env.do(t, &env.agent, "PUT", "/requests/"+req.ID.String()+"/payload", upd)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
