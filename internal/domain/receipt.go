package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ============================================================
// Receipt draft — editable line items with a derived total
// ============================================================

// LineItem is one editable row of a receipt draft. Price and Quantity are
// kept as the raw strings the user (or the scanner) produced; they are only
// coerced to numbers when the total is recomputed or the payload is built.
type LineItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// ReceiptDraft is an in-progress, not-yet-submitted receipt. While the item
// list is non-empty, Total is a pure function of the items and is recomputed
// after every edit; a manually entered total survives only on an empty list.
type ReceiptDraft struct {
	MerchantName      string     `json:"merchant_name"`
	PurchaseDate      string     `json:"purchase_date"`
	Total             string     `json:"total"`
	Items             []LineItem `json:"items"`
	CreateTransaction bool       `json:"create_transaction"`
	AccountID         string     `json:"account_id,omitempty"`
}

// ReceiptPayload is the wire shape POSTed to the backend /receipt/ endpoint.
type ReceiptPayload struct {
	MerchantName      string            `json:"merchant_name"`
	PurchaseDate      string            `json:"purchase_date"`
	TotalCents        int64             `json:"total_cents"`
	LineItems         []LineItemPayload `json:"line_items"`
	CreateTransaction bool              `json:"create_transaction"`
	AccountID         *string           `json:"account_id"`
	CategoryID        *string           `json:"category_id"`
}

// LineItemPayload is one receipt line on the wire. TotalPriceCents is always
// derived from this row's own unit price and quantity, never from the
// receipt-level total.
type LineItemPayload struct {
	ProductName     string  `json:"product_name"`
	Quantity        float64 `json:"quantity"`
	UnitPriceCents  int64   `json:"unit_price_cents"`
	TotalPriceCents int64   `json:"total_price_cents"`
}

// CoerceNumericOrZero parses a decimal string, treating anything unparsable
// or non-finite as zero. This is the single leniency policy for receipt
// numbers: a garbled OCR value degrades to 0 instead of failing the edit.
func CoerceNumericOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// AddItem appends a fresh empty row and returns its id.
func (d *ReceiptDraft) AddItem() string {
	item := LineItem{
		ID:       uuid.New().String(),
		Name:     "",
		Price:    "0",
		Quantity: "1",
	}
	d.Items = append(d.Items, item)
	d.RecomputeTotal()
	return item.ID
}

// UpdateItem replaces one field ("name", "price" or "quantity") on the item
// with the given id. Unknown ids and unknown fields are no-ops.
func (d *ReceiptDraft) UpdateItem(id, field, value string) {
	for i := range d.Items {
		if d.Items[i].ID != id {
			continue
		}
		switch field {
		case "name":
			d.Items[i].Name = value
		case "price":
			d.Items[i].Price = value
		case "quantity":
			d.Items[i].Quantity = value
		}
		break
	}
	d.RecomputeTotal()
}

// RemoveItem deletes the item with the given id.
func (d *ReceiptDraft) RemoveItem(id string) {
	items := d.Items[:0]
	for _, item := range d.Items {
		if item.ID != id {
			items = append(items, item)
		}
	}
	d.Items = items
	d.RecomputeTotal()
}

// RecomputeTotal derives Total from the items. With an empty list the total
// is left untouched so a manual entry stays valid.
func (d *ReceiptDraft) RecomputeTotal() {
	if len(d.Items) == 0 {
		return
	}
	var sum float64
	for _, item := range d.Items {
		sum += CoerceNumericOrZero(item.Quantity) * CoerceNumericOrZero(item.Price)
	}
	d.Total = fmt.Sprintf("%.2f", sum)
}

// BuildSubmissionPayload converts the draft to the backend wire shape.
// Deterministic: the same draft state always yields the same payload.
func (d *ReceiptDraft) BuildSubmissionPayload() *ReceiptPayload {
	lineItems := make([]LineItemPayload, 0, len(d.Items))
	for _, item := range d.Items {
		priceCents := int64(math.Round(CoerceNumericOrZero(item.Price) * 100))
		quantity := CoerceNumericOrZero(item.Quantity)
		if quantity == 0 {
			quantity = 1
		}
		lineItems = append(lineItems, LineItemPayload{
			ProductName:     item.Name,
			Quantity:        quantity,
			UnitPriceCents:  priceCents,
			TotalPriceCents: int64(math.Round(float64(priceCents) * quantity)),
		})
	}

	payload := &ReceiptPayload{
		MerchantName:      d.MerchantName,
		PurchaseDate:      d.PurchaseDate,
		TotalCents:        int64(math.Round(CoerceNumericOrZero(d.Total) * 100)),
		LineItems:         lineItems,
		CreateTransaction: d.CreateTransaction,
	}
	if d.CreateTransaction && d.AccountID != "" {
		accountID := d.AccountID
		payload.AccountID = &accountID
	}
	return payload
}

// ============================================================
// Scan-result ingestion — loose OCR output, strict from here on
// ============================================================

// FlexString decodes a JSON value that may arrive as a string, a number or
// null. Scanner output is not consistent about this.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// RawLineItem is one scanner-extracted line. Older scanner versions used
// label/amount instead of name/price; both are accepted.
type RawLineItem struct {
	Name     FlexString `json:"name"`
	Label    FlexString `json:"label"`
	Price    FlexString `json:"price"`
	Amount   FlexString `json:"amount"`
	Quantity FlexString `json:"quantity"`
}

// RawScanResult is the untrusted shape returned by the backend receipt
// scanner. Every field may be missing; normalization happens exactly once,
// in NewDraftFromScan, and the loose shape goes no further.
type RawScanResult struct {
	Merchant FlexString    `json:"merchant"`
	Date     FlexString    `json:"date"`
	Total    FlexString    `json:"total"`
	Currency FlexString    `json:"currency"`
	Items    []RawLineItem `json:"items"`
	Error    string        `json:"error,omitempty"`
}

var scanDatePattern = regexp.MustCompile(`(\d{1,2})[-/](\d{1,2})[-/](\d{2,4})`)

// NormalizePurchaseDate turns a free-form scanned date into YYYY-MM-DD.
// Day/month/year order is assumed for the numeric pattern; 2-digit years get
// a "20" prefix. An unmatched non-empty string passes through unchanged; an
// empty one defaults to now.
func NormalizePurchaseDate(raw string, now time.Time) string {
	if parts := scanDatePattern.FindStringSubmatch(raw); parts != nil {
		year := parts[3]
		if len(year) == 2 {
			year = "20" + year
		}
		return fmt.Sprintf("%s-%s-%s", year, zeroPad2(parts[2]), zeroPad2(parts[1]))
	}
	if raw != "" {
		return raw
	}
	return now.Format("2006-01-02")
}

func zeroPad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// NewDraftFromScan builds a ReceiptDraft from raw scanner output. Malformed
// input never errors; fields degrade to empty or default values. Every item
// gets a fresh client-side id.
func NewDraftFromScan(raw *RawScanResult, now time.Time) *ReceiptDraft {
	draft := &ReceiptDraft{
		MerchantName:      string(raw.Merchant),
		PurchaseDate:      NormalizePurchaseDate(string(raw.Date), now),
		Total:             string(raw.Total),
		CreateTransaction: true,
	}

	for _, ri := range raw.Items {
		name := string(ri.Name)
		if name == "" {
			name = string(ri.Label)
		}
		price := string(ri.Price)
		if price == "" {
			price = string(ri.Amount)
		}
		quantity := string(ri.Quantity)
		if quantity == "" {
			quantity = "1"
		}
		draft.Items = append(draft.Items, LineItem{
			ID:       uuid.New().String(),
			Name:     name,
			Price:    price,
			Quantity: quantity,
		})
	}

	draft.RecomputeTotal()
	return draft
}
