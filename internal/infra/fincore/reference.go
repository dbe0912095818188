package fincore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
)

// --- Reference data (implements port.ReferenceStore) ---

// ListAccounts fetches all accounts of the authenticated user.
func (c *Client) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Fincore.ListAccounts")
	defer span.End()

	body, err := c.getWithRetry(ctx, "/account/")
	if err != nil {
		return nil, wrapTransportErr("fincore/accounts", err)
	}
	if body == nil {
		return []domain.Account{}, nil
	}

	var accounts []domain.Account
	if err := json.Unmarshal(body, &accounts); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/accounts", Err: fmt.Errorf("failed to decode accounts: %w", err)}
	}
	return accounts, nil
}

// ListCategories fetches all categories of the authenticated user.
func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Fincore.ListCategories")
	defer span.End()

	body, err := c.getWithRetry(ctx, "/category/")
	if err != nil {
		return nil, wrapTransportErr("fincore/categories", err)
	}
	if body == nil {
		return []domain.Category{}, nil
	}

	var categories []domain.Category
	if err := json.Unmarshal(body, &categories); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/categories", Err: fmt.Errorf("failed to decode categories: %w", err)}
	}
	return categories, nil
}

// ListTags fetches all tags of the authenticated user.
func (c *Client) ListTags(ctx context.Context) ([]domain.Tag, error) {
	ctx, span := tracer.Start(ctx, "Fincore.ListTags")
	defer span.End()

	body, err := c.getWithRetry(ctx, "/tag/")
	if err != nil {
		return nil, wrapTransportErr("fincore/tags", err)
	}
	if body == nil {
		return []domain.Tag{}, nil
	}

	var tags []domain.Tag
	if err := json.Unmarshal(body, &tags); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/tags", Err: fmt.Errorf("failed to decode tags: %w", err)}
	}
	return tags, nil
}
