package service

import (
	"context"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/observability"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/port"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var refTracer = otel.Tracer("service/reference")

// ReferenceService serves account/category/tag reference data with a TTL
// cache in front of the backend.
type ReferenceService struct {
	store   port.ReferenceStore
	cache   port.Cache[any]
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewReferenceService creates the reference-data service.
func NewReferenceService(store port.ReferenceStore, cache port.Cache[any], metrics *observability.Metrics, logger *zap.Logger) *ReferenceService {
	return &ReferenceService{
		store:   store,
		cache:   cache,
		metrics: metrics,
		logger:  logger,
	}
}

// Accounts returns the user's accounts, cached.
func (s *ReferenceService) Accounts(ctx context.Context) ([]domain.Account, error) {
	ctx, span := refTracer.Start(ctx, "ReferenceService.Accounts")
	defer span.End()

	if cached, ok := s.cache.Get("reference:accounts"); ok {
		if accounts, ok := cached.([]domain.Account); ok {
			s.metrics.IncrCacheHit("reference")
			return accounts, nil
		}
	}
	s.metrics.IncrCacheMiss("reference")

	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.cache.Set("reference:accounts", accounts)
	return accounts, nil
}

// Categories returns the user's categories, cached.
func (s *ReferenceService) Categories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := refTracer.Start(ctx, "ReferenceService.Categories")
	defer span.End()

	if cached, ok := s.cache.Get("reference:categories"); ok {
		if categories, ok := cached.([]domain.Category); ok {
			s.metrics.IncrCacheHit("reference")
			return categories, nil
		}
	}
	s.metrics.IncrCacheMiss("reference")

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.cache.Set("reference:categories", categories)
	return categories, nil
}

// Tags returns the user's tags, cached.
func (s *ReferenceService) Tags(ctx context.Context) ([]domain.Tag, error) {
	ctx, span := refTracer.Start(ctx, "ReferenceService.Tags")
	defer span.End()

	if cached, ok := s.cache.Get("reference:tags"); ok {
		if tags, ok := cached.([]domain.Tag); ok {
			s.metrics.IncrCacheHit("reference")
			return tags, nil
		}
	}
	s.metrics.IncrCacheMiss("reference")

	tags, err := s.store.ListTags(ctx)
	if err != nil {
		s.metrics.IncrExternalError("fincore")
		return nil, err
	}
	s.cache.Set("reference:tags", tags)
	return tags, nil
}

// Invalidate drops all cached reference data. Called after writes that may
// change it.
func (s *ReferenceService) Invalidate() {
	s.cache.Delete("reference:accounts")
	s.cache.Delete("reference:categories")
	s.cache.Delete("reference:tags")
}
