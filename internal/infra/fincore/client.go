// Package fincore provides the HTTP client for the finance backend REST
// API. It is the only place in the BFF that talks to the backend; all
// persistence lives on the other side of it.
package fincore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/financeconsulter/fc-webapp-bff-go/internal/domain"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/infra/resilience"
	"github.com/financeconsulter/fc-webapp-bff-go/internal/port"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("fincore")

// Client wraps HTTP calls to the finance backend.
type Client struct {
	httpClient *http.Client
	baseURL    string
	tokens     port.TokenProvider
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	logger     *zap.Logger
}

// NewClient creates a finance-backend client.
func NewClient(httpClient *http.Client, baseURL string, tokens port.TokenProvider, cb *gobreaker.CircuitBreaker, cfg resilience.Config, logger *zap.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		tokens:     tokens,
		cb:         cb,
		cfg:        cfg,
		logger:     logger,
	}
}

// doRequest executes an authenticated request against the backend.
// contentType is only set when a body is present.
func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body []byte) ([]byte, error) {
	url := fmt.Sprintf("%s%s", c.baseURL, path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		c.logger.Error("fincore: failed to create request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.tokens.Token()))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("fincore: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.logger.Error("fincore: failed to read response body",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return nil, err
	}

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil // no data
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("fincore: non-2xx response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return nil, fmt.Errorf("backend returned status %d: %s", resp.StatusCode, string(respBody))
	}

	c.logger.Debug("fincore: request OK",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
	)

	return respBody, nil
}

// wrapTransportErr translates transport failures into the domain error
// taxonomy: an open breaker becomes ErrCircuitOpen (503), an exceeded
// deadline ErrTimeout (504), everything else ErrExternalService (502).
func wrapTransportErr(service string, err error) error {
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return &domain.ErrCircuitOpen{Service: service}
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.ErrTimeout{Operation: service}
	default:
		return &domain.ErrExternalService{Service: service, Err: err}
	}
}

// getWithRetry runs an idempotent GET through the circuit breaker with
// retry/backoff.
func (c *Client) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			var innerErr error
			body, innerErr = c.doRequest(ctx, http.MethodGet, path, "", nil)
			return innerErr
		})
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// writeOnce runs a POST, PUT or DELETE through the circuit breaker without
// retries: a write that timed out may still have landed.
func (c *Client) writeOnce(ctx context.Context, method, path, contentType string, payload []byte) ([]byte, error) {
	var body []byte
	_, err := c.cb.Execute(func() (any, error) {
		var innerErr error
		body, innerErr = c.doRequest(ctx, method, path, contentType, payload)
		return nil, innerErr
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// postOnce is writeOnce for the common POST case.
func (c *Client) postOnce(ctx context.Context, path, contentType string, payload []byte) ([]byte, error) {
	return c.writeOnce(ctx, http.MethodPost, path, contentType, payload)
}
