package handler

import (
	"encoding/json"
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ============================================================
// Reference management — settings page CRUD
// ============================================================

func createAccountHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/reference/accounts")
		defer span.End()

		var account domain.Account
		if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := adminSvc.CreateAccount(ctx, &account)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateAccountHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/reference/accounts/{id}")
		defer span.End()

		var account domain.Account
		if err := json.NewDecoder(r.Body).Decode(&account); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		account.ID = chi.URLParam(r, "id")

		updated, err := adminSvc.UpdateAccount(ctx, &account)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteAccountHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/reference/accounts/{id}")
		defer span.End()

		if err := adminSvc.DeleteAccount(ctx, chi.URLParam(r, "id")); err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		w.WriteHeader(http.StatusNoContent)
	}
}

func createCategoryHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/reference/categories")
		defer span.End()

		var category domain.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := adminSvc.CreateCategory(ctx, &category)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateCategoryHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/reference/categories/{id}")
		defer span.End()

		var category domain.Category
		if err := json.NewDecoder(r.Body).Decode(&category); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		category.ID = chi.URLParam(r, "id")

		updated, err := adminSvc.UpdateCategory(ctx, &category)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteCategoryHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/reference/categories/{id}")
		defer span.End()

		if err := adminSvc.DeleteCategory(ctx, chi.URLParam(r, "id")); err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		w.WriteHeader(http.StatusNoContent)
	}
}

func createTagHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/reference/tags")
		defer span.End()

		var tag domain.Tag
		if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := adminSvc.CreateTag(ctx, &tag)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusCreated, created)
	}
}

func updateTagHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "PUT /v1/reference/tags/{id}")
		defer span.End()

		var tag domain.Tag
		if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		tag.ID = chi.URLParam(r, "id")

		updated, err := adminSvc.UpdateTag(ctx, &tag)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, updated)
	}
}

func deleteTagHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/reference/tags/{id}")
		defer span.End()

		if err := adminSvc.DeleteTag(ctx, chi.URLParam(r, "id")); err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		w.WriteHeader(http.StatusNoContent)
	}
}

func deleteTransactionHandler(adminSvc *service.AdminService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "DELETE /v1/transactions/{id}")
		defer span.End()

		if err := adminSvc.DeleteTransaction(ctx, chi.URLParam(r, "id")); err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}
		metrics.IncrRequest("success")
		w.WriteHeader(http.StatusNoContent)
	}
}
