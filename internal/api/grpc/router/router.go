package router

import (
	grpcprometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/auth-service/internal/api/grpc/health"
	"github.com/dtroode/auth-service/internal/api/grpc/middleware"
	"github.com/dtroode/auth-service/internal/logger"
	"github.com/dtroode/auth-service/internal/tracing"
)

// Router builds the ops gRPC server: health checks and reflection. The
// public API is HTTP; this listener is for orchestrators and grpcurl.
type Router struct {
	health     *health.Reporter
	registerer prometheus.Registerer
	logger     *logger.Logger
}

// New creates new gRPC Router instance. A nil registerer skips gRPC metrics.
func New(health *health.Reporter, registerer prometheus.Registerer, logger *logger.Logger) *Router {
	return &Router{
		health:     health,
		registerer: registerer,
		logger:     logger,
	}
}

// Register returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recovery := middleware.NewRecovery(r.logger)

	unary := []grpc.UnaryServerInterceptor{logging.HandleGRPC, recovery.Unary()}
	stream := []grpc.StreamServerInterceptor{logging.HandleStream, recovery.Stream()}

	var grpcMetrics *grpcprometheus.ServerMetrics
	if r.registerer != nil {
		grpcMetrics = grpcprometheus.NewServerMetrics()
		r.registerer.MustRegister(grpcMetrics)
		unary = append([]grpc.UnaryServerInterceptor{grpcMetrics.UnaryServerInterceptor()}, unary...)
		stream = append([]grpc.StreamServerInterceptor{grpcMetrics.StreamServerInterceptor()}, stream...)
	}

	opts := tracing.GRPCServerOptions()
	opts = append(opts,
		grpc.ChainUnaryInterceptor(unary...),
		grpc.ChainStreamInterceptor(stream...),
	)

	s := grpc.NewServer(opts...)
	healthpb.RegisterHealthServer(s, r.health.Server())
	reflection.Register(s)

	if grpcMetrics != nil {
		grpcMetrics.InitializeMetrics(s)
	}

	return s
}
