package handler

import (
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract of the FinanceConsulter web client.
func NewRouter(refSvc *service.ReferenceService, entrySvc *service.EntryService, receiptSvc *service.ReceiptService, adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// Reference data for dialogs and filters
		r.Get("/reference/accounts", listAccountsHandler(refSvc, logger))
		r.Get("/reference/categories", listCategoriesHandler(refSvc, logger))
		r.Get("/reference/tags", listTagsHandler(refSvc, logger))

		// Reference management (settings page)
		r.Post("/reference/accounts", createAccountHandler(adminSvc, metrics, logger))
		r.Put("/reference/accounts/{id}", updateAccountHandler(adminSvc, metrics, logger))
		r.Delete("/reference/accounts/{id}", deleteAccountHandler(adminSvc, metrics, logger))
		r.Post("/reference/categories", createCategoryHandler(adminSvc, metrics, logger))
		r.Put("/reference/categories/{id}", updateCategoryHandler(adminSvc, metrics, logger))
		r.Delete("/reference/categories/{id}", deleteCategoryHandler(adminSvc, metrics, logger))
		r.Post("/reference/tags", createTagHandler(adminSvc, metrics, logger))
		r.Put("/reference/tags/{id}", updateTagHandler(adminSvc, metrics, logger))
		r.Delete("/reference/tags/{id}", deleteTagHandler(adminSvc, metrics, logger))

		// Transactions browse view
		r.Get("/transactions", listTransactionsHandler(entrySvc, logger))
		r.Delete("/transactions/{id}", deleteTransactionHandler(adminSvc, metrics, logger))

		// Quick entry: income / expense / transfer
		r.Post("/entries", createEntryHandler(entrySvc, metrics, logger))

		// Receipt capture flow
		r.Post("/receipts/scan", scanReceiptHandler(receiptSvc, metrics, logger))
		r.Post("/receipts", submitReceiptHandler(receiptSvc, metrics, logger))

		// Counter snapshot for the settings page
		r.Get("/metrics/summary", usageMetricsHandler(metrics))
	})

	return r
}

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func usageMetricsHandler(metrics *observability.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, metrics.GetUsageSnapshot())
	}
}
