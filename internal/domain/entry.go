package domain

// EntryType distinguishes the three kinds of manual ledger entry.
type EntryType string

const (
	EntryIncome   EntryType = "income"
	EntryExpense  EntryType = "expense"
	EntryTransfer EntryType = "transfer"
)

// EntryRequest is a user-entered income, expense or transfer as it arrives
// from the web client. Amount is the raw decimal string from the form.
type EntryRequest struct {
	Type            EntryType `json:"type"`
	Amount          string    `json:"amount"`
	Description     string    `json:"description"`
	Date            string    `json:"date"`
	SourceAccountID string    `json:"source_account_id"`
	TargetAccountID string    `json:"target_account_id,omitempty"`
	TagIDs          []string  `json:"tag_ids,omitempty"`
}

// LedgerEntry is one transaction payload as POSTed to the backend
// /transaction/ endpoint. A transfer produces two of these (the legs); an
// income or expense produces one. Tags must be nil (serialized as null)
// rather than an empty slice when no tags apply.
type LedgerEntry struct {
	AccountID    string   `json:"account_id"`
	Date         string   `json:"date"`
	Description  string   `json:"description"`
	AmountCents  int64    `json:"amount_cents"`
	CurrencyCode string   `json:"currency_code"`
	CategoryID   *string  `json:"category_id"`
	Tags         []string `json:"tags"`
}
