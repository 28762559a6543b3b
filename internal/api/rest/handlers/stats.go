package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/api/rest/middleware"
	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/pkg/logger"
)

// StatsHandler serves the back-office dashboard numbers
type StatsHandler struct {
	logger    *logger.Logger
	statsRepo *postgres.StatsRepository
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(log *logger.Logger, statsRepo *postgres.StatsRepository) *StatsHandler {
	return &StatsHandler{
		logger:    log,
		statsRepo: statsRepo,
	}
}

// GetDashboard handles GET /api/v1/stats/dashboard
func (h *StatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	timeRange := r.URL.Query().Get("time_range")
	if timeRange == "" {
		timeRange = "30d"
	}

	// Super-admins see platform-wide numbers unless they scope explicitly.
	bankID := actor.BankID
	if actor.Role == models.RoleSuperAdmin {
		if s := r.URL.Query().Get("bank_id"); s != "" {
			id, err := uuid.Parse(s)
			if err != nil {
				h.respondError(w, http.StatusBadRequest, "Invalid bank_id")
				return
			}
			bankID = &id
		} else {
			bankID = nil
		}
	}

	stats, err := h.statsRepo.GetOnboardingStats(r.Context(), bankID, timeRange)
	if err != nil {
		h.logger.Errorf("Failed to get onboarding stats: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	byStatus, err := h.statsRepo.GetStatusBreakdown(r.Context(), bankID)
	if err != nil {
		h.logger.Errorf("Failed to get status breakdown: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	// Per-agency throughput only makes sense within one bank.
	var agencies []models.AgencyThroughput
	if bankID != nil {
		agencies, err = h.statsRepo.GetAgencyThroughput(r.Context(), *bankID, timeRange)
		if err != nil {
			h.logger.Errorf("Failed to get agency throughput: %v", err)
			agencies = []models.AgencyThroughput{}
		}
	}

	h.respondJSON(w, http.StatusOK, models.StatsResponse{
		Stats:    *stats,
		ByStatus: byStatus,
		Agencies: agencies,
	})
}

// GetStatusBreakdown handles GET /api/v1/stats/statuses
func (h *StatsHandler) GetStatusBreakdown(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	bankID := actor.BankID
	if actor.Role == models.RoleSuperAdmin {
		bankID = nil
	}

	byStatus, err := h.statsRepo.GetStatusBreakdown(r.Context(), bankID)
	if err != nil {
		h.logger.Errorf("Failed to get status breakdown: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to retrieve stats")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"by_status":    byStatus,
		"generated_at": time.Now(),
	})
}

// Helper methods

func (h *StatsHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *StatsHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
