package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/dtroode/auth-service/internal/api/http/respond"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

const healthTimeout = 500 * time.Millisecond

type healthResponse struct {
	Status string `json:"status"`
}

// Health answers 200 while the database is reachable and 503 otherwise.
func Health(pinger model.Pinger, log *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			log.WarnContext(r.Context(), "Health: database ping failed", "error", err.Error())
			respond.JSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable"})
			return
		}
		respond.JSON(w, http.StatusOK, healthResponse{Status: "ok"})
	}
}
