// Package credentials centralizes access to the finance-backend bearer
// token. Every API client takes the provider as a dependency instead of
// reading credentials ad hoc.
package credentials

import (
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

// StaticProvider serves a fixed service token configured at startup.
type StaticProvider struct {
	mu     sync.RWMutex
	token  string
	logger *zap.Logger
}

// NewStaticProvider creates a provider for a fixed token. If the token is a
// JWT, its expiry is inspected (without signature verification) so an
// already-expired or soon-expiring token is visible in the logs at startup
// instead of as a wall of 401s later.
func NewStaticProvider(token string, logger *zap.Logger) *StaticProvider {
	p := &StaticProvider{token: token, logger: logger}

	if exp, ok := p.expiry(); ok {
		switch {
		case time.Now().After(exp):
			logger.Warn("backend token is already expired", zap.Time("expires_at", exp))
		case time.Until(exp) < 24*time.Hour:
			logger.Warn("backend token expires soon", zap.Time("expires_at", exp))
		default:
			logger.Info("backend token loaded", zap.Time("expires_at", exp))
		}
	}

	return p
}

// Token returns the current bearer token.
func (p *StaticProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Rotate replaces the token at runtime.
func (p *StaticProvider) Rotate(token string) {
	p.mu.Lock()
	p.token = token
	p.mu.Unlock()
}

// expiry extracts the exp claim from a JWT-shaped token. Opaque tokens
// return false.
func (p *StaticProvider) expiry() (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(p.token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
