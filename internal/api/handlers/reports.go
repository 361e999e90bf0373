package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/payments"
)

// ReportsHandler serves aggregated views of payments.
type ReportsHandler struct {
	svc *payments.Service
	log zerolog.Logger
}

func NewReportsHandler(svc *payments.Service, log zerolog.Logger) *ReportsHandler {
	return &ReportsHandler{svc: svc, log: log}
}

// Summary handles GET /api/reports/summary
func (h *ReportsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	filter, _, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, h.log, err, "report")
		return
	}

	summary, err := h.svc.Summary(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.log, err, "report")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, summary)
}
