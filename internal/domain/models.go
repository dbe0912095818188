package domain

// Reference data served by the finance backend. The BFF never owns these
// records; it fetches, caches and hands them to the web client.

// Account is a user account (checking, savings, cash, ...).
type Account struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	CurrencyCode string `json:"currency_code"`
	Type         string `json:"type"`
}

// Category classifies transactions ("Groceries", "Banktransfer", ...).
// Categories can nest one level via ParentID.
type Category struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Type     string  `json:"type"`
	ParentID *string `json:"parent_id,omitempty"`
}

// Tag is a free-form label attachable to transactions.
type Tag struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UsageMetrics is the counter snapshot served by GET /v1/metrics/summary.
type UsageMetrics struct {
	EntriesIncome    int64   `json:"entries_income"`
	EntriesExpense   int64   `json:"entries_expense"`
	EntriesTransfer  int64   `json:"entries_transfer"`
	ReceiptsSaved    int64   `json:"receipts_saved"`
	ExternalErrors   int64   `json:"external_errors"`
	CacheHitRate     float64 `json:"cache_hit_rate"`
	RequestErrorRate float64 `json:"request_error_rate"`
}

// Transaction is a booked ledger row as the backend returns it.
// Amounts are integer cents; negative values are debits.
type Transaction struct {
	ID           string `json:"id"`
	AccountID    string `json:"account_id"`
	Date         string `json:"date"`
	Description  string `json:"description"`
	AmountCents  int64  `json:"amount_cents"`
	CurrencyCode string `json:"currency_code"`
	CategoryID   string `json:"category_id,omitempty"`
	Tags         []Tag  `json:"tags,omitempty"`
}
