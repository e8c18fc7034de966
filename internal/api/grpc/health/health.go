// Package health keeps the gRPC health status in line with the database.
package health

import (
	"context"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/model"
)

// Service is the name probes ask about. The empty name reports the overall
// server status and follows the same value.
const Service = "auth"

const pingTimeout = 2 * time.Second

type Reporter struct {
	server   *health.Server
	pinger   model.Pinger
	interval time.Duration
	logger   *logger.Logger
}

// NewReporter starts out NOT_SERVING until the first successful ping.
func NewReporter(pinger model.Pinger, interval time.Duration, logger *logger.Logger) *Reporter {
	srv := health.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(Service, healthpb.HealthCheckResponse_NOT_SERVING)

	return &Reporter{
		server:   srv,
		pinger:   pinger,
		interval: interval,
		logger:   logger,
	}
}

// Server is registered on the gRPC server.
func (r *Reporter) Server() *health.Server {
	return r.server
}

// Check pings the store once and publishes the result.
func (r *Reporter) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	st := healthpb.HealthCheckResponse_SERVING
	if err := r.pinger.Ping(ctx); err != nil {
		r.logger.Warn("Health: database ping failed", "error", err)
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}

	r.server.SetServingStatus("", st)
	r.server.SetServingStatus(Service, st)
	return st
}

// Run checks on every tick until ctx is done, then marks the server as
// shutting down so load balancers drain it.
func (r *Reporter) Run(ctx context.Context) {
	r.Check(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.server.Shutdown()
			return
		case <-ticker.C:
			r.Check(ctx)
		}
	}
}
