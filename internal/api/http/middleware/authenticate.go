package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

const (
	AccessTokenCookie  = "accessToken"
	RefreshTokenCookie = "refreshToken"
)

// Some browser clients send the literal string when no token is stored.
const undefinedToken = "undefined"

// TokenVerifier is the part of the token service the authenticator needs.
type TokenVerifier interface {
	VerifyAccess(token string) (model.Principal, error)
	ValidateRefresh(ctx context.Context, token string) (model.RefreshTokenClaims, error)
}

// Authenticate resolves the caller from an access or refresh token.
type Authenticate struct {
	tokens         TokenVerifier
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewAuthenticate(tokens TokenVerifier, contextManager model.ContextManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{
		tokens:         tokens,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Access requires a valid access token from the Authorization header or,
// failing that, the accessToken cookie.
func (a *Authenticate) Access(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := accessToken(r)
		if token == "" {
			respond.Error(w, r, a.logger, apierrors.NewErrMissingAuthorizationToken())
			return
		}

		principal, err := a.tokens.VerifyAccess(token)
		if err != nil {
			a.logger.DebugContext(r.Context(), "Authenticate: access token rejected",
				"error", err.Error(),
				"request_id", RequestIDFrom(r.Context()))
			respond.Error(w, r, a.logger, apierrors.NewErrInvalidAuthorizationToken())
			return
		}

		ctx := a.contextManager.SetPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Refresh requires a valid, unrevoked refresh token from the refreshToken
// cookie. Both the claims and the principal are stored on the context.
func (a *Authenticate) Refresh(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(RefreshTokenCookie)
		if err != nil || cookie.Value == "" || cookie.Value == undefinedToken {
			respond.Error(w, r, a.logger, apierrors.NewErrMissingAuthorizationToken())
			return
		}

		claims, err := a.tokens.ValidateRefresh(r.Context(), cookie.Value)
		if err != nil {
			a.logger.DebugContext(r.Context(), "Authenticate: refresh token rejected",
				"error", err.Error(),
				"request_id", RequestIDFrom(r.Context()))
			respond.Error(w, r, a.logger, apierrors.NewErrInvalidAuthorizationToken())
			return
		}

		ctx := a.contextManager.SetRefreshClaims(r.Context(), claims)
		ctx = a.contextManager.SetPrincipal(ctx, claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accessToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		token = strings.TrimSpace(token)
		if ok && strings.EqualFold(scheme, "Bearer") && token != "" && token != undefinedToken {
			return token
		}
	}

	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != undefinedToken {
		return cookie.Value
	}
	return ""
}
