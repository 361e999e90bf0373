package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/dvloznov/payment-tracker/internal/api/middleware"
)

// Handlers groups the endpoint handlers mounted by NewRouter.
// Jobs may be nil when cleanup runs inline.
type Handlers struct {
	Accounts    *AccountsHandler
	CostCenters *CostCentersHandler
	Payments    *PaymentsHandler
	Reports     *ReportsHandler
	Uploads     *UploadsHandler
	Jobs        *JobsHandler
}

// NewRouter registers every API route. A non-nil metrics instruments the
// routes and is served on /metrics.
func NewRouter(h Handlers, metrics *middleware.Metrics) *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if metrics != nil {
		r.Use(metrics.Middleware)
		r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/accounts", h.Accounts.List).Methods(http.MethodGet)
	api.HandleFunc("/accounts", h.Accounts.Create).Methods(http.MethodPost)
	api.HandleFunc("/accounts/{id:[0-9]+}", h.Accounts.Get).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{id:[0-9]+}", h.Accounts.Update).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/accounts/{id:[0-9]+}", h.Accounts.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/cost-centers", h.CostCenters.List).Methods(http.MethodGet)
	api.HandleFunc("/cost-centers", h.CostCenters.Create).Methods(http.MethodPost)
	api.HandleFunc("/cost-centers/categories", h.CostCenters.Categories).Methods(http.MethodGet)
	api.HandleFunc("/cost-centers/{id:[0-9]+}", h.CostCenters.Get).Methods(http.MethodGet)
	api.HandleFunc("/cost-centers/{id:[0-9]+}", h.CostCenters.Update).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/cost-centers/{id:[0-9]+}", h.CostCenters.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/payments", h.Payments.List).Methods(http.MethodGet)
	api.HandleFunc("/payments", h.Payments.Create).Methods(http.MethodPost)
	api.HandleFunc("/payments/{id:[0-9]+}", h.Payments.Get).Methods(http.MethodGet)
	api.HandleFunc("/payments/{id:[0-9]+}", h.Payments.Update).Methods(http.MethodPut, http.MethodPatch)
	api.HandleFunc("/payments/{id:[0-9]+}", h.Payments.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/reports/summary", h.Reports.Summary).Methods(http.MethodGet)
	api.HandleFunc("/uploads/{name}", h.Uploads.Serve).Methods(http.MethodGet)

	if h.Jobs != nil {
		api.HandleFunc("/jobs", h.Jobs.ListJobs).Methods(http.MethodGet)
		api.HandleFunc("/jobs/{id}", h.Jobs.GetJob).Methods(http.MethodGet)
	}

	return r
}

// Wrap applies the request-scoped middleware outside the router, so CORS
// preflights and unmatched routes pass through it too.
func Wrap(router http.Handler, log zerolog.Logger, corsOrigin string) http.Handler {
	return middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(corsOrigin)(router),
			),
		),
	)
}
