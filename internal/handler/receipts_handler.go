package handler

import (
	"encoding/json"
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"go.uber.org/zap"
)

// Uploads beyond this size are rejected before touching the scanner.
const maxScanUploadBytes = 15 << 20

// ============================================================
// Receipt capture — scan upload + confirmed draft submission
// ============================================================

func scanReceiptHandler(receiptSvc *service.ReceiptService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/receipts/scan")
		defer span.End()

		r.Body = http.MaxBytesReader(w, r.Body, maxScanUploadBytes)
		if err := r.ParseMultipartForm(maxScanUploadBytes); err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart upload")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "missing 'file' field")
			return
		}
		defer file.Close()

		draft, err := receiptSvc.ScanToDraft(ctx, header.Filename, file)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusOK, draft)
	}
}

func submitReceiptHandler(receiptSvc *service.ReceiptService, metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/receipts")
		defer span.End()

		var draft domain.ReceiptDraft
		if err := json.NewDecoder(r.Body).Decode(&draft); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		created, err := receiptSvc.SubmitDraft(ctx, &draft)
		if err != nil {
			metrics.IncrRequest("error")
			handleServiceError(w, err, logger)
			return
		}

		metrics.IncrRequest("success")
		writeJSON(w, http.StatusCreated, created)
	}
}
