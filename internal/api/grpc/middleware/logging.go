package middleware

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/tracing"
)

// Health probes hit the listener every few seconds; they are only logged at
// debug level.
const healthServicePrefix = "/grpc.health.v1.Health/"

// Logging is a unary and stream interceptor that logs gRPC requests and results.
type Logging struct {
	logger *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(logger *logger.Logger) *Logging {
	return &Logging{logger: logger}
}

// HandleGRPC logs method name, duration and status for each unary request.
func (l *Logging) HandleGRPC(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	level := levelFor(info.FullMethod)

	l.logger.Log(ctx, level, "gRPC request started",
		"method", info.FullMethod,
		"trace_id", tracing.TraceID(ctx))

	resp, err := handler(ctx, req)
	l.completed(ctx, level, info.FullMethod, start, err)

	return resp, err
}

// HandleStream is the streaming counterpart of HandleGRPC. Health Watch is
// the only stream the ops listener serves.
func (l *Logging) HandleStream(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
	ctx := ss.Context()
	start := time.Now()
	level := levelFor(info.FullMethod)

	l.logger.Log(ctx, level, "gRPC stream started", "method", info.FullMethod)

	err := handler(srv, ss)
	l.completed(ctx, level, info.FullMethod, start, err)

	return err
}

func (l *Logging) completed(ctx context.Context, level slog.Level, method string, start time.Time, err error) {
	code := codeOf(err)

	l.logger.Log(ctx, level, "gRPC request completed",
		"method", method,
		"duration_ms", time.Since(start).Milliseconds(),
		"status", code.String())

	if err != nil {
		l.logger.Error("gRPC request failed",
			"method", method,
			"error", err.Error(),
			"status", code.String())
	}
}

func levelFor(method string) slog.Level {
	if strings.HasPrefix(method, healthServicePrefix) {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}

func codeOf(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	if st, ok := status.FromError(err); ok {
		return st.Code()
	}
	return codes.Internal
}
