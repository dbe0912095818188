package handler

import (
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Reference data — accounts, categories, tags
// ============================================================

func listAccountsHandler(refSvc *service.ReferenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reference/accounts")
		defer span.End()

		accounts, err := refSvc.Accounts(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, accounts)
	}
}

func listCategoriesHandler(refSvc *service.ReferenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reference/categories")
		defer span.End()

		categories, err := refSvc.Categories(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, categories)
	}
}

func listTagsHandler(refSvc *service.ReferenceService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/reference/tags")
		defer span.End()

		tags, err := refSvc.Tags(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, tags)
	}
}
