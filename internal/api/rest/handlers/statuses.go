package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/registry"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/pkg/logger"
)

// StatusHandler serves the status catalog. Reads come from the in-memory
// registry; the activation toggle writes through the repository and reloads
// the registry so the catalog stays consistent.
type StatusHandler struct {
	logger     *logger.Logger
	catalog    *registry.Registry
	statusRepo *postgres.StatusRepository
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(log *logger.Logger, catalog *registry.Registry, statusRepo *postgres.StatusRepository) *StatusHandler {
	return &StatusHandler{
		logger:     log,
		catalog:    catalog,
		statusRepo: statusRepo,
	}
}

// List returns the full status catalog ordered by rank
func (h *StatusHandler) List(w http.ResponseWriter, r *http.Request) {
	statuses := h.catalog.All()

	// Client-facing callers only see the client-visible projection.
	if r.URL.Query().Get("visibility") == "client" {
		visible := make([]map[string]interface{}, 0, len(statuses))
		for _, s := range statuses {
			if !s.ClientVisible {
				continue
			}
			visible = append(visible, map[string]interface{}{
				"code":    s.Code,
				"message": s.ClientMessage,
			})
		}
		h.respondJSON(w, http.StatusOK, map[string]interface{}{
			"statuses": visible,
			"total":    len(visible),
		})
		return
	}

	h.respondJSON(w, http.StatusOK, models.StatusListResponse{
		Statuses: statuses,
		Total:    len(statuses),
	})
}

// Get returns a single status by code
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	status, err := h.catalog.FindByCode(code)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Status not found")
		return
	}

	h.respondJSON(w, http.StatusOK, status)
}

// SetActive toggles whether a status can be targeted by new transitions.
// Deactivation never touches requests already parked in the status.
func (h *StatusHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	status, err := h.catalog.FindByCode(code)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Status not found")
		return
	}

	var body models.SetStatusActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.statusRepo.SetActive(r.Context(), status.ID, body.Active); err != nil {
		h.logger.Errorf("Failed to update status activation: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to update status")
		return
	}

	if err := h.catalog.Load(r.Context()); err != nil {
		h.logger.Errorf("Failed to reload status catalog: %v", err)
	}

	updated, err := h.catalog.FindByCode(code)
	if err != nil {
		h.respondError(w, http.StatusInternalServerError, "Failed to reload status")
		return
	}

	h.respondJSON(w, http.StatusOK, updated)
}

// Helper methods

func (h *StatusHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *StatusHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
