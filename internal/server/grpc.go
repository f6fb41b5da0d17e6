package server

import (
	"fmt"
	"net"

	"github.com/MKhiriev/go-deck-sync/internal/config"
	myGRPC "github.com/MKhiriev/go-deck-sync/internal/handler/grpc"
	"github.com/MKhiriev/go-deck-sync/internal/logger"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type grpcServer struct {
	server          *grpc.Server
	gRPCNetListener net.Listener

	logger *logger.Logger
}

func newGRPCServer(handler *myGRPC.Handler, cfg config.Server, logger *logger.Logger) (*grpcServer, error) {
	listener, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return nil, fmt.Errorf("error listening on gRPC address %s: %w", cfg.GRPCAddress, err)
	}

	server := grpc.NewServer()
	healthpb.RegisterHealthServer(server, handler)

	return &grpcServer{
		server:          server,
		gRPCNetListener: listener,
		logger:          logger,
	}, nil
}

func (g *grpcServer) RunServer() {
	g.logger.Info().Str("address", g.gRPCNetListener.Addr().String()).Msg("gRPC server listening")
	if err := g.server.Serve(g.gRPCNetListener); err != nil {
		g.logger.Err(err).Str("func", "*grpcServer.RunServer").Msg("gRPC server stopped with error")
	}
}

func (g *grpcServer) Shutdown() {
	g.logger.Info().Msg("gRPC server shutdown")
	g.server.GracefulStop()
}
