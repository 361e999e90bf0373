// Package handlers implements the JSON HTTP API over the payment service.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/domain"
)

// respondError maps service errors onto status codes. what names the
// resource in 404 and 500 messages.
func respondError(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error, what string) {
	var verr *domain.ValidationError
	var rerr *domain.RelationNotFoundError
	var aerr *domain.AttachmentIOError

	switch {
	case errors.As(err, &verr):
		middleware.WriteFieldError(w, http.StatusBadRequest, verr.Error(), verr.Field)
	case errors.Is(err, domain.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, what+" not found")
	case errors.As(err, &rerr):
		log.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("Broken payment relation")
		middleware.WriteError(w, http.StatusInternalServerError, rerr.Error())
	case errors.As(err, &aerr):
		log.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("Attachment I/O failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to store attachment")
	default:
		log.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Str("resource", what).Msg("Request failed")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to process "+what)
	}
}

// pathID reads the {id} route variable. It writes a 400 and returns false
// when the id is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		middleware.WriteFieldError(w, http.StatusBadRequest, "Invalid id", "id")
		return 0, false
	}
	return id, true
}

// decodeJSON reads the request body into v. It writes a 400 and returns
// false on malformed input.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
