package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/payments"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// CostCentersHandler handles cost center endpoints.
type CostCentersHandler struct {
	repo store.CostCenterRepository
	svc  *payments.Service
	log  zerolog.Logger
}

// NewCostCentersHandler creates a new cost centers handler.
func NewCostCentersHandler(repo store.CostCenterRepository, svc *payments.Service, log zerolog.Logger) *CostCentersHandler {
	return &CostCentersHandler{repo: repo, svc: svc, log: log}
}

// List handles GET /api/cost-centers
func (h *CostCentersHandler) List(w http.ResponseWriter, r *http.Request) {
	costCenters, err := h.repo.ListCostCenters(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "cost centers")
		return
	}
	if costCenters == nil {
		costCenters = []domain.CostCenter{}
	}
	middleware.WriteJSON(w, http.StatusOK, costCenters)
}

// Categories handles GET /api/cost-centers/categories
func (h *CostCentersHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.Categories(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "categories")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, categories)
}

// Get handles GET /api/cost-centers/{id}
func (h *CostCentersHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	costCenter, err := h.repo.GetCostCenter(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Cost center")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, costCenter)
}

// Create handles POST /api/cost-centers
func (h *CostCentersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CostCenter
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = 0
	if err := req.Validate(); err != nil {
		respondError(w, r, h.log, err, "Cost center")
		return
	}

	costCenter, err := h.repo.CreateCostCenter(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "Cost center")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, costCenter)
}

// Update handles PUT and PATCH /api/cost-centers/{id}
func (h *CostCentersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch domain.CostCenterPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, r, h.log, err, "Cost center")
		return
	}

	costCenter, err := h.repo.UpdateCostCenter(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, h.log, err, "Cost center")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, costCenter)
}

// Delete handles DELETE /api/cost-centers/{id}
func (h *CostCentersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.repo.DeleteCostCenter(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Cost center")
		return
	}
	if !deleted {
		middleware.WriteError(w, http.StatusNotFound, "Cost center not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
