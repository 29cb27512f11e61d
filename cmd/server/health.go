package main

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

const healthService = "nurture.Economy"

type healthServer struct {
	listener   net.Listener
	grpcServer *grpc.Server
	health     *health.Server
}

func newHealthServer(addr string) (*healthServer, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}
	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	hs.SetServingStatus(healthService, grpc_health_v1.HealthCheckResponse_SERVING)
	return &healthServer{listener: listener, grpcServer: grpcServer, health: hs}, nil
}

func (s *healthServer) Serve() error { return s.grpcServer.Serve(s.listener) }

// Stop reports NOT_SERVING, then drains in-flight calls.
func (s *healthServer) Stop() {
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
