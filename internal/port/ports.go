// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"
	"io"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
)

// ReferenceStore retrieves account/category/tag reference data.
type ReferenceStore interface {
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
}

// ReferenceAdmin manages account/category/tag records on the backend.
// Writes go around the reference cache; callers invalidate it afterwards.
type ReferenceAdmin interface {
	CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	UpdateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error)
	DeleteTag(ctx context.Context, id string) error
}

// TransactionStore creates, lists and deletes ledger transactions.
type TransactionStore interface {
	CreateTransaction(ctx context.Context, entry *domain.LedgerEntry) (*domain.Transaction, error)
	ListTransactions(ctx context.Context) ([]domain.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error
}

// ReceiptStore submits confirmed receipt payloads.
type ReceiptStore interface {
	CreateReceipt(ctx context.Context, payload *domain.ReceiptPayload) (map[string]any, error)
}

// ReceiptScanner runs OCR extraction on an uploaded receipt image or PDF.
type ReceiptScanner interface {
	ScanReceipt(ctx context.Context, filename string, file io.Reader) (*domain.RawScanResult, error)
}

// TokenProvider supplies the bearer token for backend calls.
type TokenProvider interface {
	Token() string
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
