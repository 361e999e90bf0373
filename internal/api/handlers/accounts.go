package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/domain"
	"github.com/dvloznov/payment-tracker/internal/store"
)

// AccountsHandler handles account endpoints.
type AccountsHandler struct {
	repo store.AccountRepository
	log  zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(repo store.AccountRepository, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{repo: repo, log: log}
}

// List handles GET /api/accounts
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.repo.ListAccounts(r.Context())
	if err != nil {
		respondError(w, r, h.log, err, "accounts")
		return
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	middleware.WriteJSON(w, http.StatusOK, accounts)
}

// Get handles GET /api/accounts/{id}
func (h *AccountsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	account, err := h.repo.GetAccount(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Account")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, account)
}

// Create handles POST /api/accounts
func (h *AccountsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.Account
	if !decodeJSON(w, r, &req) {
		return
	}
	req.ID = 0
	if err := req.Validate(); err != nil {
		respondError(w, r, h.log, err, "Account")
		return
	}

	account, err := h.repo.CreateAccount(r.Context(), req)
	if err != nil {
		respondError(w, r, h.log, err, "Account")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, account)
}

// Update handles PUT and PATCH /api/accounts/{id}
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var patch domain.AccountPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if err := patch.Validate(); err != nil {
		respondError(w, r, h.log, err, "Account")
		return
	}

	account, err := h.repo.UpdateAccount(r.Context(), id, patch)
	if err != nil {
		respondError(w, r, h.log, err, "Account")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, account)
}

// Delete handles DELETE /api/accounts/{id}
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	deleted, err := h.repo.DeleteAccount(r.Context(), id)
	if err != nil {
		respondError(w, r, h.log, err, "Account")
		return
	}
	if !deleted {
		middleware.WriteError(w, http.StatusNotFound, "Account not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
