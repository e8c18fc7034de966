// Package context stores the authenticated principal and refresh claims on
// the request context.
package context

import (
	"context"

	"github.com/dtroode/auth-service/internal/model"
)

type contextKey int

const (
	principalKey contextKey = iota
	refreshClaimsKey
)

var _ model.ContextManager = (*Manager)(nil)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

func (m *Manager) SetPrincipal(ctx context.Context, principal model.Principal) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

func (m *Manager) GetPrincipal(ctx context.Context) (model.Principal, bool) {
	p, ok := ctx.Value(principalKey).(model.Principal)
	return p, ok
}

func (m *Manager) SetRefreshClaims(ctx context.Context, claims model.RefreshTokenClaims) context.Context {
	return context.WithValue(ctx, refreshClaimsKey, claims)
}

func (m *Manager) GetRefreshClaims(ctx context.Context) (model.RefreshTokenClaims, bool) {
	c, ok := ctx.Value(refreshClaimsKey).(model.RefreshTokenClaims)
	return c, ok
}
