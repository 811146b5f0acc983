package httpapi

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/JuanPaGargoo/pos-core-api/internal/obs"
)

// readinessChecker reports whether the service's dependencies are reachable.
type readinessChecker interface {
	Check(ctx context.Context) error
}

// GRPCServer exposes the standard gRPC health service so orchestrators can
// probe the process over gRPC as well as HTTP.
type GRPCServer struct {
	grpc_health_v1.UnimplementedHealthServer

	readiness readinessChecker
}

// NewGRPCServer creates the gRPC health service wrapper.
func NewGRPCServer(r readinessChecker) *GRPCServer {
	return &GRPCServer{readiness: r}
}

// Check evaluates readiness, mirroring the HTTP /readyz probe.
func (s *GRPCServer) Check(ctx context.Context, _ *grpc_health_v1.HealthCheckRequest) (*grpc_health_v1.HealthCheckResponse, error) {
	if s.readiness != nil {
		if err := s.readiness.Check(ctx); err != nil {
			obs.SetReady(false)
			return &grpc_health_v1.HealthCheckResponse{
				Status: grpc_health_v1.HealthCheckResponse_NOT_SERVING,
			}, nil
		}
	}
	obs.SetReady(true)
	return &grpc_health_v1.HealthCheckResponse{
		Status: grpc_health_v1.HealthCheckResponse_SERVING,
	}, nil
}

// Watch streams a single snapshot; continuous watch is not supported.
func (s *GRPCServer) Watch(req *grpc_health_v1.HealthCheckRequest, stream grpc_health_v1.Health_WatchServer) error {
	resp, err := s.Check(stream.Context(), req)
	if err != nil {
		return err
	}
	if err := stream.Send(resp); err != nil {
		return status.Errorf(codes.Unavailable, "send health snapshot: %v", err)
	}
	return nil
}

// dbReadiness adapts a ReadyProbe into a readinessChecker.
type dbReadiness struct {
	probe ReadyProbe
}

// NewDBReadiness wraps the probe used by /readyz for gRPC health checks.
func NewDBReadiness(probe ReadyProbe) readinessChecker {
	return dbReadiness{probe: probe}
}

func (d dbReadiness) Check(ctx context.Context) error {
	if d.probe.DB == nil {
		return nil
	}
	return d.probe.DB.PingContext(ctx)
}
