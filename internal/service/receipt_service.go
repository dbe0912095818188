package service

import (
	"context"
	"io"
	"time"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/resilience"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var receiptTracer = otel.Tracer("service/receipt")

// ReceiptService turns scanned receipts into editable drafts and confirmed
// drafts into backend submissions. The reconciliation rules themselves live
// on domain.ReceiptDraft; this service wires them to the scanner and store.
type ReceiptService struct {
	receipts port.ReceiptStore
	scanner  port.ReceiptScanner
	bulkhead *resilience.Bulkhead
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewReceiptService creates the receipt service.
func NewReceiptService(receipts port.ReceiptStore, scanner port.ReceiptScanner, bulkhead *resilience.Bulkhead, metrics *observability.Metrics, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{
		receipts: receipts,
		scanner:  scanner,
		bulkhead: bulkhead,
		metrics:  metrics,
		logger:   logger,
	}
}

// ScanToDraft uploads the file to the backend scanner and normalizes the
// loose extraction result into a draft. Scans are expensive on the backend,
// so concurrent uploads are bounded by the bulkhead.
func (s *ReceiptService) ScanToDraft(ctx context.Context, filename string, file io.Reader) (*domain.ReceiptDraft, error) {
	ctx, span := receiptTracer.Start(ctx, "ReceiptService.ScanToDraft")
	defer span.End()
	span.SetAttributes(attribute.String("filename", filename))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("receipt_scan", time.Since(start)) }()

	if err := s.bulkhead.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.bulkhead.Release()

	raw, err := s.scanner.ScanReceipt(ctx, filename, file)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}

	draft := domain.NewDraftFromScan(raw, time.Now())
	s.logger.Info("receipt scanned",
		zap.String("merchant", draft.MerchantName),
		zap.String("purchase_date", draft.PurchaseDate),
		zap.Int("items", len(draft.Items)),
	)
	return draft, nil
}

// SubmitDraft recomputes the draft total, builds the wire payload and POSTs
// it to the backend. Validation beyond the draft's own rules (at least one
// item, positive total) is the caller's responsibility.
func (s *ReceiptService) SubmitDraft(ctx context.Context, draft *domain.ReceiptDraft) (map[string]any, error) {
	ctx, span := receiptTracer.Start(ctx, "ReceiptService.SubmitDraft")
	defer span.End()
	span.SetAttributes(attribute.String("merchant", draft.MerchantName))

	start := time.Now()
	defer func() { s.metrics.RecordRequestDuration("receipt_submit", time.Since(start)) }()

	draft.RecomputeTotal()
	payload := draft.BuildSubmissionPayload()

	created, err := s.receipts.CreateReceipt(ctx, payload)
	if err != nil {
		s.metrics.IncrReceipt("failed")
		s.metrics.IncrExternalError("fincore")
		s.logger.Error("failed to submit receipt",
			zap.String("merchant", draft.MerchantName),
			zap.Error(err),
		)
		return nil, err
	}

	s.metrics.IncrReceipt("saved")
	s.logger.Info("receipt submitted",
		zap.String("merchant", draft.MerchantName),
		zap.Int64("total_cents", payload.TotalCents),
		zap.Int("line_items", len(payload.LineItems)),
	)
	return created, nil
}
