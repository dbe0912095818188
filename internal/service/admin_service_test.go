package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/cache"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/service"

	"go.uber.org/zap"
)

type mockReferenceAdmin struct {
	err      error
	accounts []domain.Account
	tags     []domain.Tag
	deleted  []string
}

func (m *mockReferenceAdmin) CreateAccount(_ context.Context, a *domain.Account) (*domain.Account, error) {
	if m.err != nil {
		return nil, m.err
	}
	a.ID = "acc-new"
	m.accounts = append(m.accounts, *a)
	return a, nil
}

func (m *mockReferenceAdmin) UpdateAccount(_ context.Context, a *domain.Account) (*domain.Account, error) {
	return a, m.err
}

func (m *mockReferenceAdmin) DeleteAccount(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockReferenceAdmin) CreateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	if m.err != nil {
		return nil, m.err
	}
	c.ID = "cat-new"
	return c, nil
}

func (m *mockReferenceAdmin) UpdateCategory(_ context.Context, c *domain.Category) (*domain.Category, error) {
	return c, m.err
}

func (m *mockReferenceAdmin) DeleteCategory(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockReferenceAdmin) CreateTag(_ context.Context, tag *domain.Tag) (*domain.Tag, error) {
	if m.err != nil {
		return nil, m.err
	}
	tag.ID = "tag-new"
	m.tags = append(m.tags, *tag)
	return tag, nil
}

func (m *mockReferenceAdmin) UpdateTag(_ context.Context, tag *domain.Tag) (*domain.Tag, error) {
	return tag, m.err
}

func (m *mockReferenceAdmin) DeleteTag(_ context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return m.err
}

// countingReferenceStore counts backend reads so tests can observe cache
// invalidation.
type countingReferenceStore struct {
	mockReferenceStore
	tagCalls int
}

func (c *countingReferenceStore) ListTags(ctx context.Context) ([]domain.Tag, error) {
	c.tagCalls++
	return c.mockReferenceStore.ListTags(ctx)
}

func newAdminService(store *mockReferenceAdmin, txs *mockTransactionStore, refSvc *service.ReferenceService) *service.AdminService {
	if refSvc == nil {
		refSvc = service.NewReferenceService(&mockReferenceStore{}, cache.New[any](time.Minute), observability.NewMetrics(), zap.NewNop())
	}
	return service.NewAdminService(store, txs, refSvc, observability.NewMetrics(), zap.NewNop())
}

func TestCreateAccount_Validation(t *testing.T) {
	svc := newAdminService(&mockReferenceAdmin{}, &mockTransactionStore{}, nil)

	cases := []struct {
		name    string
		account domain.Account
		code    string
	}{
		{
			name:    "blank name",
			account: domain.Account{Name: "  ", Type: "checking", CurrencyCode: "CHF"},
			code:    "missing-name",
		},
		{
			name:    "missing type",
			account: domain.Account{Name: "Checking", CurrencyCode: "CHF"},
			code:    "missing-type",
		},
		{
			name:    "missing currency",
			account: domain.Account{Name: "Checking", Type: "checking"},
			code:    "missing-currency",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateAccount(context.Background(), &tc.account)
			var verr *domain.ErrValidation
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, verr.Code)
			}
		})
	}
}

func TestCreateAccount_TrimsName(t *testing.T) {
	store := &mockReferenceAdmin{}
	svc := newAdminService(store, &mockTransactionStore{}, nil)

	created, err := svc.CreateAccount(context.Background(), &domain.Account{
		Name: "  Checking  ", Type: "checking", CurrencyCode: "CHF",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if created.Name != "Checking" {
		t.Errorf("expected trimmed name, got %q", created.Name)
	}
}

func TestCreateTag_MissingName(t *testing.T) {
	svc := newAdminService(&mockReferenceAdmin{}, &mockTransactionStore{}, nil)

	_, err := svc.CreateTag(context.Background(), &domain.Tag{Name: ""})
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if verr.Code != "missing-name" {
		t.Errorf("expected code missing-name, got %q", verr.Code)
	}
}

func TestCreateTag_InvalidatesReferenceCache(t *testing.T) {
	refs := &countingReferenceStore{
		mockReferenceStore: mockReferenceStore{tags: []domain.Tag{{ID: "tag-1", Name: "Bank Transfer"}}},
	}
	refSvc := service.NewReferenceService(refs, cache.New[any](time.Minute), observability.NewMetrics(), zap.NewNop())
	svc := newAdminService(&mockReferenceAdmin{}, &mockTransactionStore{}, refSvc)

	// Warm the cache, then confirm a repeat read stays cached.
	for i := 0; i < 2; i++ {
		if _, err := refSvc.Tags(context.Background()); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if refs.tagCalls != 1 {
		t.Fatalf("expected 1 backend read before the write, got %d", refs.tagCalls)
	}

	if _, err := svc.CreateTag(context.Background(), &domain.Tag{Name: "Vacation"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := refSvc.Tags(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if refs.tagCalls != 2 {
		t.Errorf("expected the write to invalidate the cache, got %d backend reads", refs.tagCalls)
	}
}

func TestCreateTag_BackendErrorKeepsCache(t *testing.T) {
	refs := &countingReferenceStore{
		mockReferenceStore: mockReferenceStore{tags: []domain.Tag{{ID: "tag-1", Name: "Bank Transfer"}}},
	}
	refSvc := service.NewReferenceService(refs, cache.New[any](time.Minute), observability.NewMetrics(), zap.NewNop())
	svc := newAdminService(&mockReferenceAdmin{err: errors.New("backend down")}, &mockTransactionStore{}, refSvc)

	if _, err := refSvc.Tags(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.CreateTag(context.Background(), &domain.Tag{Name: "Vacation"}); err == nil {
		t.Fatal("expected the backend error to propagate")
	}

	if _, err := refSvc.Tags(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if refs.tagCalls != 1 {
		t.Errorf("expected the failed write to leave the cache alone, got %d backend reads", refs.tagCalls)
	}
}

func TestDeleteAccount_InvalidatesReferenceCache(t *testing.T) {
	store := &mockReferenceAdmin{}
	refs := &countingReferenceStore{
		mockReferenceStore: mockReferenceStore{tags: []domain.Tag{{ID: "tag-1", Name: "Bank Transfer"}}},
	}
	refSvc := service.NewReferenceService(refs, cache.New[any](time.Minute), observability.NewMetrics(), zap.NewNop())
	svc := newAdminService(store, &mockTransactionStore{}, refSvc)

	if _, err := refSvc.Tags(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.DeleteAccount(context.Background(), "acc-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "acc-1" {
		t.Errorf("expected acc-1 to be deleted, got %v", store.deleted)
	}

	if _, err := refSvc.Tags(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if refs.tagCalls != 2 {
		t.Errorf("expected the delete to invalidate the cache, got %d backend reads", refs.tagCalls)
	}
}

func TestDeleteTransaction_Passthrough(t *testing.T) {
	txs := &mockTransactionStore{}
	svc := newAdminService(&mockReferenceAdmin{}, txs, nil)

	if err := svc.DeleteTransaction(context.Background(), "tx-1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestDeleteTransaction_Error(t *testing.T) {
	txs := &mockTransactionStore{err: errors.New("backend down")}
	svc := newAdminService(&mockReferenceAdmin{}, txs, nil)

	if err := svc.DeleteTransaction(context.Background(), "tx-1"); err == nil {
		t.Fatal("expected the backend error to propagate")
	}
}
