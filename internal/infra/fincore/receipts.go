package fincore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// --- Receipts (implements port.ReceiptStore and port.ReceiptScanner) ---

// CreateReceipt POSTs a confirmed receipt payload. Like transactions, the
// call is submitted exactly once.
func (c *Client) CreateReceipt(ctx context.Context, payload *domain.ReceiptPayload) (map[string]any, error) {
	ctx, span := tracer.Start(ctx, "Fincore.CreateReceipt")
	defer span.End()
	span.SetAttributes(
		attribute.String("merchant", payload.MerchantName),
		attribute.Int64("total_cents", payload.TotalCents),
	)

	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode receipt: %w", err)
	}

	body, err := c.postOnce(ctx, "/receipt/", "application/json", encoded)
	if err != nil {
		return nil, wrapTransportErr("fincore/receipts", err)
	}
	if body == nil {
		return map[string]any{}, nil
	}

	var created map[string]any
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/receipts", Err: fmt.Errorf("failed to decode receipt response: %w", err)}
	}
	return created, nil
}

// ScanReceipt uploads a receipt image or PDF to the backend scanner and
// returns its raw extraction result. The result is loose by nature; callers
// normalize it immediately via domain.NewDraftFromScan.
func (c *Client) ScanReceipt(ctx context.Context, filename string, file io.Reader) (*domain.RawScanResult, error) {
	ctx, span := tracer.Start(ctx, "Fincore.ScanReceipt")
	defer span.End()
	span.SetAttributes(attribute.String("filename", filename))

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize upload form: %w", err)
	}

	body, err := c.postOnce(ctx, "/receipt/scan", writer.FormDataContentType(), buf.Bytes())
	if err != nil {
		return nil, wrapTransportErr("fincore/scan", err)
	}
	if body == nil {
		return nil, &domain.ErrExternalService{Service: "fincore/scan", Err: fmt.Errorf("empty scan response")}
	}

	var result domain.RawScanResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/scan", Err: fmt.Errorf("failed to decode scan result: %w", err)}
	}
	if result.Error != "" {
		return nil, &domain.ErrExternalService{Service: "fincore/scan", Err: fmt.Errorf("scanner error: %s", result.Error)}
	}
	return &result, nil
}
