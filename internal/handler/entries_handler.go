package handler

import (
	"encoding/json"
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"go.uber.org/zap"
)

// ============================================================
// Quick entry — income, expense, transfer
// ============================================================

func createEntryHandler(entrySvc *service.EntryService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/entries")
		defer span.End()

		var req domain.EntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Type == "" {
			req.Type = domain.EntryExpense
		}

		created, err := entrySvc.CreateEntry(ctx, &req)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusCreated, map[string]any{
			"type":         req.Type,
			"transactions": created,
		})
	}
}

func listTransactionsHandler(entrySvc *service.EntryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/transactions")
		defer span.End()

		transactions, err := entrySvc.ListTransactions(ctx)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, transactions)
	}
}
