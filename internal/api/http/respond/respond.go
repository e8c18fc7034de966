// Package respond writes JSON bodies and the error envelope.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/dtroode/auth-service/internal/apierrors"
	"github.com/dtroode/auth-service/internal/logger"
)

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Error renders err as the error envelope. Errors that are not APIErrors are
// logged and hidden behind a 500.
func Error(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	apiErr, ok := apierrors.From(err)
	if !ok {
		log.ErrorContext(r.Context(), "HTTP: unhandled error",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err.Error())
	}
	JSON(w, apiErr.Status, apiErr.Envelope())
}
