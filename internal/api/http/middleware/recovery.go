package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
)

type Recovery struct {
	logger *logger.Logger
}

func NewRecovery(logger *logger.Logger) *Recovery {
	return &Recovery{logger: logger}
}

// Handle turns a handler panic into a 500 envelope.
func (rc *Recovery) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			p := recover()
			if p == nil {
				return
			}
			if p == http.ErrAbortHandler {
				panic(p)
			}
			rc.logger.ErrorContext(r.Context(), "panic recovered in HTTP handler",
				"error", p,
				"method", r.Method,
				"path", r.URL.Path,
				"request_id", RequestIDFrom(r.Context()),
				"stack", string(debug.Stack()))
			err := apierrors.NewErrInternalServerError()
			respond.JSON(w, err.Status, err.Envelope())
		}()
		next.ServeHTTP(w, r)
	})
}
