package router

import (
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/dtroode/taskboard/internal/api/grpc/middleware"
	"github.com/dtroode/taskboard/internal/logger"
)

// Router builds the gRPC server and its interceptor chain.
type Router struct {
	health *grpchealth.Server
	logger *logger.Logger
}

func New(health *grpchealth.Server, logger *logger.Logger) *Router {
	return &Router{
		health: health,
		logger: logger,
	}
}

// Register returns a server exposing health and reflection services.
// Panics are recovered before the logging interceptor sees the result.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	recoveryOpt := recovery.WithRecoveryHandlerContext(middleware.NewRecovery(r.logger).HandlePanic)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			logging.HandleStream,
			recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	healthpb.RegisterHealthServer(s, r.health)
	reflection.Register(s)

	return s
}
