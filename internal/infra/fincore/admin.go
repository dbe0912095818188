package fincore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"

	"go.opentelemetry.io/otel/attribute"
)

// --- Reference management (implements port.ReferenceAdmin) ---
//
// The backend's account routes are asymmetric (POST /account/new and
// PUT /account/update with the id in the body) while tags and categories
// write to the collection path. Deletes always carry the id in the URL.

// CreateAccount creates a new account.
func (c *Client) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Fincore.CreateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.name", account.Name))

	return c.writeAccount(ctx, http.MethodPost, "/account/new", account)
}

// UpdateAccount updates an existing account; account.ID selects the record.
func (c *Client) UpdateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Fincore.UpdateAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", account.ID))

	return c.writeAccount(ctx, http.MethodPut, "/account/update", account)
}

// DeleteAccount removes an account.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Fincore.DeleteAccount")
	defer span.End()
	span.SetAttributes(attribute.String("account.id", id))

	return c.deleteEntity(ctx, "/account/"+id, "fincore/accounts")
}

// CreateCategory creates a new category.
func (c *Client) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Fincore.CreateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.name", category.Name))

	return c.writeCategory(ctx, http.MethodPost, category)
}

// UpdateCategory updates an existing category; category.ID selects the record.
func (c *Client) UpdateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Fincore.UpdateCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", category.ID))

	return c.writeCategory(ctx, http.MethodPut, category)
}

// DeleteCategory removes a category.
func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Fincore.DeleteCategory")
	defer span.End()
	span.SetAttributes(attribute.String("category.id", id))

	return c.deleteEntity(ctx, "/category/"+id, "fincore/categories")
}

// CreateTag creates a new tag.
func (c *Client) CreateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	ctx, span := tracer.Start(ctx, "Fincore.CreateTag")
	defer span.End()
	span.SetAttributes(attribute.String("tag.name", tag.Name))

	return c.writeTag(ctx, http.MethodPost, tag)
}

// UpdateTag updates an existing tag; tag.ID selects the record.
func (c *Client) UpdateTag(ctx context.Context, tag *domain.Tag) (*domain.Tag, error) {
	ctx, span := tracer.Start(ctx, "Fincore.UpdateTag")
	defer span.End()
	span.SetAttributes(attribute.String("tag.id", tag.ID))

	return c.writeTag(ctx, http.MethodPut, tag)
}

// DeleteTag removes a tag.
func (c *Client) DeleteTag(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "Fincore.DeleteTag")
	defer span.End()
	span.SetAttributes(attribute.String("tag.id", id))

	return c.deleteEntity(ctx, "/tag/"+id, "fincore/tags")
}

func (c *Client) writeAccount(ctx context.Context, method, path string, account *domain.Account) (*domain.Account, error) {
	payload, err := json.Marshal(account)
	if err != nil {
		return nil, fmt.Errorf("failed to encode account: %w", err)
	}

	body, err := c.writeOnce(ctx, method, path, "application/json", payload)
	if err != nil {
		return nil, wrapTransportErr("fincore/accounts", err)
	}
	if body == nil {
		return nil, &domain.ErrExternalService{Service: "fincore/accounts", Err: fmt.Errorf("empty response for written account")}
	}

	var written domain.Account
	if err := json.Unmarshal(body, &written); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/accounts", Err: fmt.Errorf("failed to decode account: %w", err)}
	}
	return &written, nil
}

func (c *Client) writeCategory(ctx context.Context, method string, category *domain.Category) (*domain.Category, error) {
	payload, err := json.Marshal(category)
	if err != nil {
		return nil, fmt.Errorf("failed to encode category: %w", err)
	}

	body, err := c.writeOnce(ctx, method, "/category/", "application/json", payload)
	if err != nil {
		return nil, wrapTransportErr("fincore/categories", err)
	}
	if body == nil {
		return nil, &domain.ErrExternalService{Service: "fincore/categories", Err: fmt.Errorf("empty response for written category")}
	}

	var written domain.Category
	if err := json.Unmarshal(body, &written); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/categories", Err: fmt.Errorf("failed to decode category: %w", err)}
	}
	return &written, nil
}

func (c *Client) writeTag(ctx context.Context, method string, tag *domain.Tag) (*domain.Tag, error) {
	payload, err := json.Marshal(tag)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tag: %w", err)
	}

	body, err := c.writeOnce(ctx, method, "/tag/", "application/json", payload)
	if err != nil {
		return nil, wrapTransportErr("fincore/tags", err)
	}
	if body == nil {
		return nil, &domain.ErrExternalService{Service: "fincore/tags", Err: fmt.Errorf("empty response for written tag")}
	}

	var written domain.Tag
	if err := json.Unmarshal(body, &written); err != nil {
		return nil, &domain.ErrExternalService{Service: "fincore/tags", Err: fmt.Errorf("failed to decode tag: %w", err)}
	}
	return &written, nil
}

func (c *Client) deleteEntity(ctx context.Context, path, service string) error {
	if _, err := c.writeOnce(ctx, http.MethodDelete, path, "", nil); err != nil {
		return wrapTransportErr(service, err)
	}
	return nil
}
