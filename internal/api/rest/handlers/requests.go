package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/api/rest/middleware"
	"github.com/nivobank/backoffice/internal/lifecycle"
	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/validator"
)

// RequestHandler handles onboarding request HTTP endpoints. Every operation
// delegates to the lifecycle controller; the handler only decodes, resolves
// the actor, and maps the lifecycle error taxonomy to HTTP statuses.
type RequestHandler struct {
	logger     *logger.Logger
	controller *lifecycle.Controller
	catalog    *registry.Registry
}

// NewRequestHandler creates a new request handler
func NewRequestHandler(log *logger.Logger, controller *lifecycle.Controller, catalog *registry.Registry) *RequestHandler {
	return &RequestHandler{
		logger:     log,
		controller: controller,
		catalog:    catalog,
	}
}

// Create opens a new onboarding request in the initial status
func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var payload models.RequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.controller.Create(r.Context(), actor, payload)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to create request")
		return
	}

	h.respondJSON(w, http.StatusCreated, req)
}

// Get retrieves a request by ID within the actor's tenant scope
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	req, err := h.controller.Get(r.Context(), actor, id)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to get request")
		return
	}

	h.respondJSON(w, http.StatusOK, req)
}

// List retrieves requests visible to the actor, optionally filtered by
// status code
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	limit, offset := parsePagination(r, 20)

	var statusID *uuid.UUID
	if code := r.URL.Query().Get("status"); code != "" {
		status, err := h.catalog.FindByCode(code)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, "Unknown status code")
			return
		}
		statusID = &status.ID
	}

	requests, total, err := h.controller.List(r.Context(), actor, statusID, limit, offset)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to list requests")
		return
	}

	h.respondJSON(w, http.StatusOK, models.RequestListResponse{
		Requests: requests,
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	})
}

// UpdatePayload merges the submitted sections into the request payload
func (h *RequestHandler) UpdatePayload(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var upd models.UpdatePayloadRequest
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.controller.UpdatePayload(r.Context(), actor, id, upd)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to update request payload")
		return
	}

	h.respondJSON(w, http.StatusOK, req)
}

// AttachDocument appends an uploaded document reference to the request
func (h *RequestHandler) AttachDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var att models.AttachDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&att); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&att); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.controller.AttachDocument(r.Context(), actor, id, att)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to attach document")
		return
	}

	h.respondJSON(w, http.StatusOK, req)
}

// Submit runs the strict completeness pass and hands the file to review
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var body models.SubmitRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			h.respondError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	}

	req, err := h.controller.Submit(r.Context(), actor, id, body.Comment)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to submit request")
		return
	}

	h.respondJSON(w, http.StatusOK, req)
}

// Transition moves the request to the target status under the full guard set
func (h *RequestHandler) Transition(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var body models.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	req, err := h.controller.Transition(r.Context(), actor, id, body.TargetStatusCode, body.Comment)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to transition request")
		return
	}

	h.respondJSON(w, http.StatusOK, req)
}

// GetHistory returns the request's status ledger in creation order
func (h *RequestHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	limit, offset := parsePagination(r, 50)

	entries, total, err := h.controller.GetHistory(r.Context(), actor, id, limit, offset)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to get request history")
		return
	}

	h.respondJSON(w, http.StatusOK, models.HistoryListResponse{
		Entries:  entries,
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	})
}

// RecordFeedback attaches a reviewer verdict to one payload field
func (h *RequestHandler) RecordFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	var rec models.RecordFeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&rec); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	feedback, err := h.controller.RecordFeedback(r.Context(), actor, id, rec)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to record feedback")
		return
	}

	h.respondJSON(w, http.StatusCreated, feedback)
}

// CurrentFeedback returns the latest verdict per field for the request
func (h *RequestHandler) CurrentFeedback(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	verdicts, err := h.controller.CurrentFeedback(r.Context(), actor, id)
	if err != nil {
		h.respondLifecycleError(w, err, "Failed to get feedback")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"fields": verdicts,
	})
}

// Helper methods

// respondLifecycleError maps the lifecycle error taxonomy to HTTP statuses.
// Guard failures are client errors; only configuration problems surface as
// 500s.
func (h *RequestHandler) respondLifecycleError(w http.ResponseWriter, err error, logMsg string) {
	var (
		validationErr *lifecycle.ValidationError
		notFoundErr   *lifecycle.NotFoundError
		authErr       *lifecycle.AuthorizationError
		stateErr      *lifecycle.StateGuardError
		conflictErr   *lifecycle.ConflictError
		configErr     *lifecycle.ConfigurationError
	)

	switch {
	case errors.As(err, &validationErr):
		h.respondJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": validationErr.Fields,
		})
	case errors.As(err, &notFoundErr):
		h.respondError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &authErr):
		h.respondError(w, http.StatusForbidden, err.Error())
	case errors.As(err, &stateErr):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &conflictErr):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.As(err, &configErr):
		h.logger.Errorf("%s: %v", logMsg, err)
		h.respondError(w, http.StatusInternalServerError, "Service misconfigured")
	default:
		h.logger.Errorf("%s: %v", logMsg, err)
		h.respondError(w, http.StatusInternalServerError, logMsg)
	}
}

func (h *RequestHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *RequestHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// parsePagination extracts limit/offset query parameters with defaults
func parsePagination(r *http.Request, defaultLimit int) (limit, offset int) {
	limit = defaultLimit
	if l, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && l > 0 {
		limit = l
	}
	if o, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && o >= 0 {
		offset = o
	}
	return limit, offset
}
