package grpc

import (
	"context"

	"github.com/MKhiriev/go-deck-sync/internal/logger"
	"github.com/MKhiriev/go-deck-sync/internal/service"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Handler serves the standard gRPC health protocol for the sync server.
// It reports SERVING while the authoritative store answers a ping, so
// orchestrators can probe the gRPC port the same way they probe
// GET /api/health.
type Handler struct {
	healthpb.UnimplementedHealthServer

	services *service.Services
	logger   *logger.Logger
}

func NewHandler(services *service.Services, logger *logger.Logger) *Handler {
	logger.Debug().Msg("gRPC handler created")
	return &Handler{
		services: services,
		logger:   logger,
	}
}

// Check implements [healthpb.HealthServer]. Only the overall server ("")
// and the sync service name are known.
func (h *Handler) Check(ctx context.Context, req *healthpb.HealthCheckRequest) (*healthpb.HealthCheckResponse, error) {
	if name := req.GetService(); name != "" && name != ServiceName {
		return nil, status.Errorf(codes.NotFound, "unknown service %q", name)
	}

	if err := h.services.HealthService.Ping(ctx); err != nil {
		h.logger.Warn().Err(err).Str("func", "*Handler.Check").Msg("store ping failed")
		return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_NOT_SERVING}, nil
	}

	return &healthpb.HealthCheckResponse{Status: healthpb.HealthCheckResponse_SERVING}, nil
}

// ServiceName is the name under which the sync service reports health.
const ServiceName = "godecksync.Sync"
