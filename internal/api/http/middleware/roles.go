package middleware

import (
	"net/http"

	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// Roles gates routes on the authenticated principal's role.
type Roles struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

func NewRoles(contextManager model.ContextManager, logger *logger.Logger) *Roles {
	return &Roles{contextManager: contextManager, logger: logger}
}

// Require answers 403 when the principal's role is not among roles. It must
// run after Authenticate; without a principal it answers 401.
func (rl *Roles) Require(roles ...model.Role) func(http.Handler) http.Handler {
	allowed := model.NewRoleSet(roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := rl.contextManager.GetPrincipal(r.Context())
			if !ok {
				respond.Error(w, r, rl.logger, apierrors.NewErrMissingAuthorizationToken())
				return
			}
			if !allowed.Contains(principal.Role) {
				rl.logger.InfoContext(r.Context(), "Roles: access denied",
					"user_id", principal.ID,
					"role", principal.Role.String(),
					"path", r.URL.Path)
				respond.Error(w, r, rl.logger, apierrors.NewErrForbidden())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
