package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nivobank/backoffice/internal/api/rest/middleware"
	"github.com/nivobank/backoffice/internal/models"
	"github.com/nivobank/backoffice/internal/repository/postgres"
	"github.com/nivobank/backoffice/pkg/logger"
	"github.com/nivobank/backoffice/pkg/validator"
)

// TenantHandler manages banks and their agencies. Bank administration is
// reserved to super-admins by router middleware; agency routes additionally
// enforce that non-super-admin callers stay inside their own bank.
type TenantHandler struct {
	logger     *logger.Logger
	tenantRepo *postgres.TenantRepository
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(log *logger.Logger, tenantRepo *postgres.TenantRepository) *TenantHandler {
	return &TenantHandler{
		logger:     log,
		tenantRepo: tenantRepo,
	}
}

// CreateBank provisions a new bank tenant
func (h *TenantHandler) CreateBank(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req models.CreateBankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	bank, err := h.tenantRepo.CreateBank(r.Context(), &req, actor.UserID)
	if err != nil {
		h.logger.Errorf("Failed to create bank: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create bank")
		return
	}

	h.respondJSON(w, http.StatusCreated, bank)
}

// GetBank retrieves a bank by ID
func (h *TenantHandler) GetBank(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bankID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid bank ID")
		return
	}

	bank, err := h.tenantRepo.GetBank(r.Context(), id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Bank not found")
		return
	}

	h.respondJSON(w, http.StatusOK, bank)
}

// ListBanks returns all bank tenants
func (h *TenantHandler) ListBanks(w http.ResponseWriter, r *http.Request) {
	page, pageSize := parsePageParams(r)

	banks, total, err := h.tenantRepo.ListBanks(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Errorf("Failed to list banks: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to list banks")
		return
	}

	h.respondJSON(w, http.StatusOK, models.BankListResponse{
		Banks:    banks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// DeactivateBank disables a bank tenant. Existing requests are preserved;
// new logins and requests for the bank are refused elsewhere.
func (h *TenantHandler) DeactivateBank(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "bankID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid bank ID")
		return
	}

	if err := h.tenantRepo.DeactivateBank(r.Context(), id); err != nil {
		h.logger.Errorf("Failed to deactivate bank: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to deactivate bank")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CreateAgency opens a new agency under a bank
func (h *TenantHandler) CreateAgency(w http.ResponseWriter, r *http.Request) {
	bankID, ok := h.scopedBankID(w, r)
	if !ok {
		return
	}

	var req models.CreateAgencyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validator.Validate(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	agency, err := h.tenantRepo.CreateAgency(r.Context(), bankID, &req)
	if err != nil {
		h.logger.Errorf("Failed to create agency: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to create agency")
		return
	}

	h.respondJSON(w, http.StatusCreated, agency)
}

// GetAgency retrieves an agency within its bank
func (h *TenantHandler) GetAgency(w http.ResponseWriter, r *http.Request) {
	bankID, ok := h.scopedBankID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "agencyID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid agency ID")
		return
	}

	agency, err := h.tenantRepo.GetAgency(r.Context(), bankID, id)
	if err != nil {
		h.respondError(w, http.StatusNotFound, "Agency not found")
		return
	}

	h.respondJSON(w, http.StatusOK, agency)
}

// ListAgencies returns a bank's agencies
func (h *TenantHandler) ListAgencies(w http.ResponseWriter, r *http.Request) {
	bankID, ok := h.scopedBankID(w, r)
	if !ok {
		return
	}

	page, pageSize := parsePageParams(r)

	agencies, total, err := h.tenantRepo.ListAgencies(r.Context(), bankID, page, pageSize)
	if err != nil {
		h.logger.Errorf("Failed to list agencies: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to list agencies")
		return
	}

	h.respondJSON(w, http.StatusOK, models.AgencyListResponse{
		Agencies: agencies,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

// DeactivateAgency disables an agency within its bank
func (h *TenantHandler) DeactivateAgency(w http.ResponseWriter, r *http.Request) {
	bankID, ok := h.scopedBankID(w, r)
	if !ok {
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "agencyID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid agency ID")
		return
	}

	if err := h.tenantRepo.DeactivateAgency(r.Context(), bankID, id); err != nil {
		h.logger.Errorf("Failed to deactivate agency: %v", err)
		h.respondError(w, http.StatusInternalServerError, "Failed to deactivate agency")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Helper methods

// scopedBankID resolves the bank from the URL and rejects callers trying to
// reach outside their own bank. Super-admins may target any bank.
func (h *TenantHandler) scopedBankID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}

	bankID, err := uuid.Parse(chi.URLParam(r, "bankID"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid bank ID")
		return uuid.Nil, false
	}

	if actor.Role != models.RoleSuperAdmin {
		if actor.BankID == nil || *actor.BankID != bankID {
			h.respondError(w, http.StatusForbidden, "Access to this bank is not permitted")
			return uuid.Nil, false
		}
	}

	return bankID, true
}

func (h *TenantHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *TenantHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// parsePageParams extracts page/page_size query parameters with defaults
func parsePageParams(r *http.Request) (page, pageSize int) {
	page, pageSize = 1, 20
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("page_size")); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}
