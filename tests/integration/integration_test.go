package integration_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/handler"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/cache"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/credentials"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/fincore"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/resilience"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"go.uber.org/zap"
)

// fakeBackend is an in-memory stand-in for the finance backend REST API.
type fakeBackend struct {
	mu           sync.Mutex
	transactions []domain.LedgerEntry
	receipts     []json.RawMessage
	tags         []domain.Tag
	deletedTxIDs []string
	scanCalls    atomic.Int64
	tagListCalls atomic.Int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{}
}

func (b *fakeBackend) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("GET /account/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, []domain.Account{
			{ID: "acc-1", Name: "Checking", CurrencyCode: "CHF"},
			{ID: "acc-2", Name: "Savings", CurrencyCode: "EUR"},
		})
	})
	mux.HandleFunc("GET /category/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, []domain.Category{
			{ID: "cat-1", Name: "Food"},
			{ID: "cat-2", Name: "Banktransfer"},
		})
	})
	mux.HandleFunc("GET /tag/", func(w http.ResponseWriter, r *http.Request) {
		b.tagListCalls.Add(1)
		b.mu.Lock()
		tags := append([]domain.Tag{{ID: "tag-1", Name: "Bank Transfer"}}, b.tags...)
		b.mu.Unlock()
		writeJSON(w, tags)
	})
	mux.HandleFunc("POST /tag/", func(w http.ResponseWriter, r *http.Request) {
		var tag domain.Tag
		if err := json.NewDecoder(r.Body).Decode(&tag); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		tag.ID = "tag-new"
		b.mu.Lock()
		b.tags = append(b.tags, tag)
		b.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		writeJSON(w, tag)
	})
	mux.HandleFunc("DELETE /tag/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		kept := b.tags[:0]
		for _, tag := range b.tags {
			if tag.ID != r.PathValue("id") {
				kept = append(kept, tag)
			}
		}
		b.tags = kept
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /transaction/{id}", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.deletedTxIDs = append(b.deletedTxIDs, r.PathValue("id"))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /transaction/", func(w http.ResponseWriter, r *http.Request) {
		var entry domain.LedgerEntry
		if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		b.mu.Lock()
		b.transactions = append(b.transactions, entry)
		b.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		writeJSON(w, domain.Transaction{
			ID:           "tx-" + entry.AccountID,
			AccountID:    entry.AccountID,
			Date:         entry.Date,
			Description:  entry.Description,
			AmountCents:  entry.AmountCents,
			CurrencyCode: entry.CurrencyCode,
		})
	})
	mux.HandleFunc("POST /receipt/", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		b.mu.Lock()
		b.receipts = append(b.receipts, body)
		b.mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]any{"id": "receipt-1"})
	})
	mux.HandleFunc("POST /receipt/scan", func(w http.ResponseWriter, r *http.Request) {
		b.scanCalls.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{
			"merchant": "Migros",
			"date":     "05/03/2024",
			"total":    8.5,
			"currency": "CHF",
			"items": []map[string]any{
				{"name": "Milk", "price": "2.50", "quantity": 3},
				{"label": "Bread", "amount": 1.0},
			},
		})
	})

	return httptest.NewServer(mux)
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func newTestStack(t *testing.T, backendURL string) http.Handler {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	cb := resilience.NewCircuitBreaker("integration")
	tokens := credentials.NewStaticProvider("test-token", logger)
	httpClient := &http.Client{Timeout: 5 * time.Second}

	client := fincore.NewClient(httpClient, backendURL, tokens, cb, cfg, logger)

	refSvc := service.NewReferenceService(client, cache.New[any](time.Minute), metrics, logger)
	entrySvc := service.NewEntryService(client, refSvc, metrics, logger)
	receiptSvc := service.NewReceiptService(client, client, resilience.NewBulkhead(2), metrics, logger)
	adminSvc := service.NewAdminService(client, client, refSvc, metrics, logger)

	return handler.NewRouter(refSvc, entrySvc, receiptSvc, adminSvc, metrics, logger)
}

func TestIntegration_TransferFlow(t *testing.T) {
	backend := newFakeBackend()
	server := backend.server(t)
	defer server.Close()

	router := newTestStack(t, server.URL)

	body, _ := json.Marshal(map[string]any{
		"type":              "transfer",
		"amount":            "150.00",
		"description":       "Monthly savings",
		"date":              "2024-03-05",
		"source_account_id": "acc-1",
		"target_account_id": "acc-2",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/entries", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp.Transactions) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(resp.Transactions))
	}

	if len(backend.transactions) != 2 {
		t.Fatalf("expected 2 legs at the backend, got %d", len(backend.transactions))
	}

	var debit, credit *domain.LedgerEntry
	for i := range backend.transactions {
		if backend.transactions[i].AmountCents < 0 {
			debit = &backend.transactions[i]
		} else {
			credit = &backend.transactions[i]
		}
	}
	if debit == nil || credit == nil {
		t.Fatal("expected one debit and one credit leg")
	}
	if debit.AmountCents != -15000 || credit.AmountCents != 15000 {
		t.Errorf("expected ±15000 cents, got %d / %d", debit.AmountCents, credit.AmountCents)
	}
	if debit.Description != "Transfer to: Savings - Monthly savings" {
		t.Errorf("unexpected debit description: %q", debit.Description)
	}
	if credit.Description != "Transfer from: Checking - Monthly savings" {
		t.Errorf("unexpected credit description: %q", credit.Description)
	}
	if debit.CategoryID == nil || *debit.CategoryID != "cat-2" {
		t.Error("expected the transfer category on the debit leg")
	}
	if len(debit.Tags) != 1 || debit.Tags[0] != "tag-1" {
		t.Errorf("expected the auto tag, got %v", debit.Tags)
	}
	if debit.CurrencyCode != "CHF" || credit.CurrencyCode != "EUR" {
		t.Errorf("expected per-account currencies, got %s / %s", debit.CurrencyCode, credit.CurrencyCode)
	}
}

func TestIntegration_ReceiptScanAndSubmit(t *testing.T) {
	backend := newFakeBackend()
	server := backend.server(t)
	defer server.Close()

	router := newTestStack(t, server.URL)

	// --- Scan upload ---
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	part, _ := form.CreateFormFile("file", "receipt.jpg")
	part.Write([]byte("fake image bytes"))
	form.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/receipts/scan", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("scan: expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	var draft domain.ReceiptDraft
	if err := json.NewDecoder(rec.Body).Decode(&draft); err != nil {
		t.Fatalf("failed to decode draft: %v", err)
	}
	if draft.MerchantName != "Migros" {
		t.Errorf("expected merchant 'Migros', got '%s'", draft.MerchantName)
	}
	if draft.PurchaseDate != "2024-03-05" {
		t.Errorf("expected date '2024-03-05', got '%s'", draft.PurchaseDate)
	}
	if len(draft.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(draft.Items))
	}
	if draft.Total != "8.50" {
		t.Errorf("expected total '8.50', got '%s'", draft.Total)
	}
	if backend.scanCalls.Load() != 1 {
		t.Errorf("expected 1 scan call, got %d", backend.scanCalls.Load())
	}

	// --- Submit the (edited) draft ---
	draft.AccountID = "acc-1"
	body, _ := json.Marshal(draft)
	req = httptest.NewRequest(http.MethodPost, "/v1/receipts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	if len(backend.receipts) != 1 {
		t.Fatalf("expected 1 receipt at the backend, got %d", len(backend.receipts))
	}
	var payload domain.ReceiptPayload
	if err := json.Unmarshal(backend.receipts[0], &payload); err != nil {
		t.Fatalf("failed to decode receipt payload: %v", err)
	}
	if payload.TotalCents != 850 {
		t.Errorf("expected total_cents 850, got %d", payload.TotalCents)
	}
	if payload.AccountID == nil || *payload.AccountID != "acc-1" {
		t.Errorf("expected account_id 'acc-1', got %v", payload.AccountID)
	}
	if len(payload.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(payload.LineItems))
	}
	if payload.LineItems[0].TotalPriceCents != 750 {
		t.Errorf("expected first line total 750 cents, got %d", payload.LineItems[0].TotalPriceCents)
	}
}

func TestIntegration_BackendDown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	router := newTestStack(t, server.URL)

	req := httptest.NewRequest(http.MethodGet, "/v1/reference/accounts", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", rec.Code)
	}
}

func TestIntegration_ReferenceCaching(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/account/" {
			calls.Add(1)
			writeJSON(w, []domain.Account{{ID: "acc-1", Name: "Checking"}})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	router := newTestStack(t, server.URL)

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/v1/reference/accounts", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rec.Code)
		}
	}

	if calls.Load() != 1 {
		t.Errorf("expected 1 backend call thanks to the cache, got %d", calls.Load())
	}
}

func TestIntegration_ManagementFlow(t *testing.T) {
	backend := newFakeBackend()
	server := backend.server(t)
	defer server.Close()

	router := newTestStack(t, server.URL)

	// Warm the tag cache.
	req := httptest.NewRequest(http.MethodGet, "/v1/reference/tags", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if backend.tagListCalls.Load() != 1 {
		t.Fatalf("expected 1 tag list call, got %d", backend.tagListCalls.Load())
	}

	// Create a tag through the management endpoint.
	body, _ := json.Marshal(map[string]any{"name": "Vacation"})
	req = httptest.NewRequest(http.MethodPost, "/v1/reference/tags", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create tag: expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var created domain.Tag
	if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
		t.Fatalf("failed to decode created tag: %v", err)
	}
	if created.ID != "tag-new" {
		t.Errorf("expected backend-assigned id, got %q", created.ID)
	}

	// The write must have invalidated the cache: the next read goes
	// back to the backend and sees the new tag.
	req = httptest.NewRequest(http.MethodGet, "/v1/reference/tags", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if backend.tagListCalls.Load() != 2 {
		t.Errorf("expected the cache to be refreshed, got %d tag list calls", backend.tagListCalls.Load())
	}
	var tags []domain.Tag
	if err := json.NewDecoder(rec.Body).Decode(&tags); err != nil {
		t.Fatalf("failed to decode tags: %v", err)
	}
	if len(tags) != 2 {
		t.Fatalf("expected 2 tags after create, got %d", len(tags))
	}

	// A nameless tag is rejected before it reaches the backend.
	body, _ = json.Marshal(map[string]any{"name": "  "})
	req = httptest.NewRequest(http.MethodPost, "/v1/reference/tags", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("blank tag: expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "missing-name") {
		t.Errorf("expected a missing-name error, got %s", rec.Body.String())
	}

	// Deleting a transaction passes straight through.
	req = httptest.NewRequest(http.MethodDelete, "/v1/transactions/tx-42", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete transaction: expected 204, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	if len(backend.deletedTxIDs) != 1 || backend.deletedTxIDs[0] != "tx-42" {
		t.Errorf("expected tx-42 to be deleted at the backend, got %v", backend.deletedTxIDs)
	}
}
