package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/wonny/aegis-advisor/backend/internal/contracts"
)

// Scope headers set by the authenticating gateway
const (
	HeaderPortfolioID = "X-Portfolio-ID"
	HeaderUserID      = "X-User-ID"
)

type scopeKey struct{}

// ScopeFromRequest reads the caller's scope from the gateway headers
func ScopeFromRequest(r *http.Request) contracts.Scope {
	return contracts.Scope{
		PortfolioID: strings.TrimSpace(r.Header.Get(HeaderPortfolioID)),
		UserID:      strings.TrimSpace(r.Header.Get(HeaderUserID)),
	}
}

// WithScope stores the scope in the request context
func WithScope(ctx context.Context, scope contracts.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope stored by WithScope
func ScopeFrom(ctx context.Context) contracts.Scope {
	scope, _ := ctx.Value(scopeKey{}).(contracts.Scope)
	return scope
}
