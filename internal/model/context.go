package model

import "context"

type ContextManager interface {
	SetPrincipal(ctx context.Context, principal Principal) context.Context
	GetPrincipal(ctx context.Context) (Principal, bool)
	SetRefreshClaims(ctx context.Context, claims RefreshTokenClaims) context.Context
	GetRefreshClaims(ctx context.Context) (RefreshTokenClaims, bool)
}
