package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/payments"
)

// PaymentsHandler handles payment endpoints.
type PaymentsHandler struct {
	svc          *payments.Service
	maxFileBytes int64
	log          zerolog.Logger
}

// NewPaymentsHandler creates a new payments handler. Uploaded files larger
// than maxFileBytes are rejected.
func NewPaymentsHandler(svc *payments.Service, maxFileBytes int64, log zerolog.Logger) *PaymentsHandler {
	return &PaymentsHandler{svc: svc, maxFileBytes: maxFileBytes, log: log}
}

// List handles GET /api/payments
//
// Without a page parameter the response is the full array in display order.
// With one it is a page envelope.
func (h *PaymentsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, page, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, r, h.log, err, "payments")
		return
	}

	if page > 0 {
		result, err := h.svc.Query(r.Context(), filter, page)
		if err != nil {
			respondError(w, r, h.log, err, "payments")
			return
		}
		middleware.WriteJSON(w, http.StatusOK, result)
		return
	}

	items, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respondError(w, r, h.log, err, "payments")
		return
	}
	if items == nil {
		items = []domain.PaymentWithRelations{}
	}
	middleware.WriteJSON(w, http.StatusOK, items)
}

// Get handles GET /api/payments/{id}
func (h *PaymentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	payment, err := h.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, payment)
}

// Create handles POST /api/payments
func (h *PaymentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	p, err := form.payload.toPayment(h.svc.Engine().Location())
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return
	}

	created, err := h.svc.Create(r.Context(), p, form.uploads)
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, created)
}

// Update handles PUT and PATCH /api/payments/{id}
func (h *PaymentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	form, ok := h.readForm(w, r)
	if !ok {
		return
	}
	defer form.Close()

	patch, err := form.payload.toPatch(h.svc.Engine().Location())
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return
	}

	updated, err := h.svc.Update(r.Context(), id, patch, form.changes())
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/payments/{id}
func (h *PaymentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.svc.Delete(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return
	}
	if !deleted {
		middleware.WriteError(w, http.StatusNotFound, "Payment not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *PaymentsHandler) readForm(w http.ResponseWriter, r *http.Request) (*paymentForm, bool) {
	form, err := readPaymentForm(w, r, h.maxFileBytes)
	if errors.Is(err, errBadPayload) {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if err != nil {
		respondError(w, r, h.log, err, "Payment")
		return nil, false
	}
	return form, true
}
