package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
	"github.com/dvloznov/payment-tracker/internal/attachments"
)

// UploadsHandler serves stored attachment files.
type UploadsHandler struct {
	files attachments.Manager
	log   zerolog.Logger
}

func NewUploadsHandler(files attachments.Manager, log zerolog.Logger) *UploadsHandler {
	return &UploadsHandler{files: files, log: log}
}

// Serve handles GET /api/uploads/{name}
func (h *UploadsHandler) Serve(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if !attachments.ValidName(name) {
		middleware.WriteError(w, http.StatusNotFound, "File not found")
		return
	}

	rc, err := h.files.Open(r.Context(), name)
	if errors.Is(err, attachments.ErrNotExist) {
		h.log.Warn().Str("stored_name", name).Msg("Attachment not found")
		middleware.WriteError(w, http.StatusNotFound, "File not found")
		return
	}
	if err != nil {
		respondError(w, r, h.log, err, "file")
		return
	}
	defer rc.Close()

	contentType, disposition := servedAs(name)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType(disposition, map[string]string{"filename": name}))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	if _, err := io.Copy(w, rc); err != nil {
		h.log.Warn().Err(err).Str("stored_name", name).Msg("Failed to stream attachment")
	}
}

// servedAs picks the response type for a stored file. Only images and PDFs
// are shown inline; anything else is served as a download.
func servedAs(name string) (contentType, disposition string) {
	contentType = mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if (strings.HasPrefix(mediaType, "image/") && mediaType != "image/svg+xml") || mediaType == "application/pdf" {
		return contentType, "inline"
	}
	return "application/octet-stream", "attachment"
}
