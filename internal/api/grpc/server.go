package grpc

import (
	"context"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/clintrovert/taskboard/internal/store"
)

// ServiceName is the health service name reported for the task board
const ServiceName = "taskboard.v1.TaskBoard"

// Server reports store readiness through the standard gRPC health service
type Server struct {
	health *health.Server
	store  store.Store
	logger *zap.Logger
}

// NewServer creates a new gRPC health server. Both the overall and the
// task board service start out NOT_SERVING until the first check.
func NewServer(st store.Store, logger *zap.Logger) *Server {
	s := &Server{
		health: health.NewServer(),
		store:  st,
		logger: logger,
	}
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Register registers the server with a gRPC server
func (s *Server) Register(grpcServer *grpc.Server) {
	healthpb.RegisterHealthServer(grpcServer, s.health)
}

// Check pings the store once and publishes the result
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("store ping failed", zap.Error(err))
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.set(status)
	return status
}

// Watch re-checks the store every interval until ctx is done, then marks
// the service as shutting down.
func (s *Server) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("stopping health watch")
			s.health.Shutdown()
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *Server) set(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}
