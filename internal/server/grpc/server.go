// Package grpc serves the gRPC health service behind the same bearer token
// and role checks the HTTP API applies.
package grpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/dmitrijs2005/holocron/internal/logging"
)

type GRPCServer struct {
	address string
	gate    Authenticator
	roles   MethodRoles
	health  *health.Server
	logger  logging.Logger
}

func NewGRPCServer(address string, gate Authenticator, roles MethodRoles, l logging.Logger) *GRPCServer {
	return &GRPCServer{
		address: address,
		gate:    gate,
		roles:   roles,
		health:  health.NewServer(),
		logger:  l.With("module", "grpc_server"),
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())
	return s.serve(ctx, listen)
}

func (s *GRPCServer) serve(ctx context.Context, listen net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.authInterceptor),
		grpc.ChainStreamInterceptor(s.authStreamInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
