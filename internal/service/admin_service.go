package service

import (
	"context"
	"strings"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var adminTracer = otel.Tracer("service/admin")

// AdminService manages the reference records themselves (accounts,
// categories, tags) and deletes booked transactions. Every successful write
// invalidates the reference cache so the next read sees the change.
type AdminService struct {
	store     port.ReferenceAdmin
	txs       port.TransactionStore
	reference *ReferenceService
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewAdminService creates the management service.
func NewAdminService(store port.ReferenceAdmin, txs port.TransactionStore, reference *ReferenceService, metrics *observability.Metrics, logger *zap.Logger) *AdminService {
	return &AdminService{
		store:     store,
		txs:       txs,
		reference: reference,
		metrics:   metrics,
		logger:    logger,
	}
}

func validateAccount(account *domain.Account) error {
	if strings.TrimSpace(account.Name) == "" {
		return &domain.ErrValidation{Field: "name", Code: "missing-name"}
	}
	if account.Type == "" {
		return &domain.ErrValidation{Field: "type", Code: "missing-type"}
	}
	if account.CurrencyCode == "" {
		return &domain.ErrValidation{Field: "currency_code", Code: "missing-currency"}
	}
	return nil
}

func validateName(name, field string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ErrValidation{Field: field, Code: "missing-name"}
	}
	return nil
}

// CreateAccount creates an account and invalidates the reference cache.
func (s *AdminService) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateAccount")
	defer span.End()

	if err := validateAccount(account); err != nil {
		return nil, err
	}
	account.Name = strings.TrimSpace(account.Name)

	created, err := s.store.CreateAccount(ctx, account)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.reference.Invalidate()
	s.logger.Info("account created", zap.String("account_id", created.ID))
	return created, nil
}

// UpdateAccount updates an account and invalidates the reference cache.
func (s *AdminService) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateAccount")
	defer span.End()

	if err := validateAccount(account); err != nil {
		return nil, err
	}
	account.Name = strings.TrimSpace(account.Name)

	updated, err := s.store.UpdateAccount(ctx, account)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.reference.Invalidate()
	s.logger.Info("account updated", zap.String("account_id", account.ID))
	return updated, nil
}

// DeleteAccount deletes an account and invalidates the reference cache.
func (s *AdminService) DeleteAccount(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteAccount")
	defer span.End()

	if err := s.store.DeleteAccount(ctx, id); err != nil {
		s.metrics.IncrExternalError("fincore")
		return err
	}
	s.reference.Invalidate()
	s.logger.Info("account deleted", zap.String("account_id", id))
	return nil
}

// CreateCategory creates a category and invalidates the reference cache.
func (s *AdminService) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateCategory")
	defer span.End()

	if err := validateName(category.Name, "name"); err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(category.Name)

	created, err := s.store.CreateCategory(ctx, category)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.reference.Invalidate()
	s.logger.Info("category created", zap.String("category_id", created.ID))
	return created, nil
}

// UpdateCategory updates a category and invalidates the reference cache.
func (s *AdminService) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateCategory")
	defer span.End()

	if err := validateName(category.Name, "name"); err != nil {
		return nil, err
	}
	category.Name = strings.TrimSpace(category.Name)

	updated, err := s.store.UpdateCategory(ctx, category)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.reference.Invalidate()
	s.logger.Info("category updated", zap.String("category_id", category.ID))
	return updated, nil
}

// DeleteCategory deletes a category and invalidates the reference cache.
func (s *AdminService) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteCategory")
	defer span.End()

	if err := s.store.DeleteCategory(ctx, id); err != nil {
		s.metrics.IncrExternalError("fincore")
		return err
	}
	s.reference.Invalidate()
	s.logger.Info("category deleted", zap.String("category_id", id))
	return nil
}

// CreateTag creates a tag and invalidates the reference cache.
func (s *AdminService) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.CreateTag")
	defer span.End()

	if err := validateName(tag.Name, "name"); err != nil {
		return nil, err
	}
	tag.Name = strings.TrimSpace(tag.Name)

	created, err := s.store.CreateTag(ctx, tag)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.reference.Invalidate()
	s.logger.Info("tag created", zap.String("tag_id", created.ID))
	return created, nil
}

// UpdateTag updates a tag and invalidates the reference cache.
func (s *AdminService) UpdateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	ctx, span := adminTracer.Start(ctx, "AdminService.UpdateTag")
	defer span.End()

	if err := validateName(tag.Name, "name"); err != nil {
		return nil, err
	}
	tag.Name = strings.TrimSpace(tag.Name)

	updated, err := s.store.UpdateTag(ctx, tag)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.reference.Invalidate()
	s.logger.Info("tag updated", zap.String("tag_id", tag.ID))
	return updated, nil
}

// DeleteTag deletes a tag and invalidates the reference cache.
func (s *AdminService) DeleteTag(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteTag")
	defer span.End()

	if err := s.store.DeleteTag(ctx, id); err != nil {
		s.metrics.IncrExternalError("fincore")
		return err
	}
	s.reference.Invalidate()
	s.logger.Info("tag deleted", zap.String("tag_id", id))
	return nil
}

// DeleteTransaction deletes a booked transaction. Reference data is not
// touched, so the cache stays valid.
func (s *AdminService) DeleteTransaction(ctx context.Context, id string) error {
	ctx, span := adminTracer.Start(ctx, "AdminService.DeleteTransaction")
	defer span.End()

	if err := s.txs.DeleteTransaction(ctx, id); err != nil {
		s.metrics.IncrExternalError("fincore")
		return err
	}
	s.logger.Info("transaction deleted", zap.String("transaction_id", id))
	return nil
}
