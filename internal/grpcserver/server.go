// Package grpcserver serves the standard grpc.health.v1 service for the
// board. The "board-service" status follows document store reachability.
package grpcserver

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health entry reported alongside the overall "" status.
const ServiceName = "board-service"

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server wraps a grpc.Server with a health service.
type Server struct {
	grpc   *grpc.Server
	health *health.Server
	pinger Pinger
	every  time.Duration
	done   chan struct{}
}

// NewServer builds the gRPC server. Health is probed every interval.
func NewServer(p Pinger, interval time.Duration) *Server {
	s := &Server{
		grpc:   grpc.NewServer(),
		health: health.NewServer(),
		pinger: p,
		every:  interval,
		done:   make(chan struct{}),
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	return s
}

// Probe pings the store once and updates the health status.
func (s *Server) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(pingCtx); err != nil {
		log.Warn().Err(err).Msg("store ping failed")
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
	return status
}

// Serve probes once, then serves on lis until Stop.
func (s *Server) Serve(lis net.Listener) error {
	s.Probe(context.Background())
	go s.watch()

	log.Info().Str("addr", lis.Addr().String()).Msg("gRPC health server listening")
	if err := s.grpc.Serve(lis); err != nil {
		return fmt.Errorf("grpc serve: %w", err)
	}
	return nil
}

// Stop marks every service NOT_SERVING and drains connections.
func (s *Server) Stop() {
	close(s.done)
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) watch() {
	if s.every <= 0 {
		return
	}
	ticker := time.NewTicker(s.every)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.Probe(context.Background())
		}
	}
}
