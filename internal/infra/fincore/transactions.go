package fincore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// --- Transactions (implements port.TransactionStore) ---

// CreateTransaction POSTs one ledger entry. The call is never retried; a
// write that timed out may still have been applied on the backend.
func (c *Client) CreateTransaction(ctx context.Context, entry *domain.LedgerEntry) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Fincore.CreateTransaction")
	defer span.End()
	span.SetAttributes(
		attribute.String("account.id", entry.AccountID),
		attribute.Int64("amount_cents", entry.AmountCents),
	)

	payload, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("failed to encode transaction: %w", err)
	}

	body, err := c.postOnce(ctx, "/transaction/", "application/json", payload)
	if err != nil {
		return nil, wrapTransportErr("fincore/transactions", err)
	}
	if body == nil {
		return nil, &domain.ErrExternalService{Service: "fincore/transactions", Err: fmt.Errorf("empty response for created transaction")}
	}

	var created domain.Transaction
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/transactions", Err: fmt.Errorf("failed to decode transaction: %w", err)}
	}
	return &created, nil
}

// DeleteTransaction removes a booked transaction.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Fincore.DeleteTransaction")
	defer span.End()
	span.SetAttributes(attribute.String("transaction.id", id))

	return c.deleteEntity(ctx, "/transaction/"+id, "fincore/transactions")
}

// ListTransactions fetches the transaction list for the browse view.
func (c *Client) ListTransactions(ctx context.Context) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Fincore.ListTransactions")
	defer span.End()

	body, err := c.getWithRetry(ctx, "/transaction/")
	if err != nil {
		return nil, wrapTransportErr("fincore/transactions", err)
	}
	if body == nil {
		return []domain.Transaction{}, nil
	}

	var transactions []domain.Transaction
	if err := json.Unmarshal(body, &transactions); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/transactions", Err: fmt.Errorf("failed to decode transactions: %w", err)}
	}
	return transactions, nil
}
