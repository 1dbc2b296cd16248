// Package server hosts the daemon's gRPC surface: the standard health
// service and reflection for grpcurl.
package server

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name reported next to the overall "".
const ServiceName = "invoice.v1.Processor"

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	logger *zap.Logger
}

func New(logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	gs := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(gs, hs)
	reflection.Register(gs)

	s := &Server{grpc: gs, health: hs, logger: logger}
	s.SetServing(true)
	return s
}

// SetServing flips both the overall and the processor status.
func (s *Server) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_SERVING
	if !ok {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Serve blocks until the listener fails or Stop is called.
func (s *Server) Serve(lis net.Listener) error {
	s.logger.Info("gRPC serving", zap.String("addr", lis.Addr().String()))
	return s.grpc.Serve(lis)
}

// Stop marks the server as not serving and drains in-flight RPCs.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
	s.logger.Info("gRPC stopped")
}

// Probe is any dependency check, typically a database ping.
type Probe func(ctx context.Context) error

// Monitor runs probe every interval and mirrors its result into the health
// status until ctx is done.
func (s *Server) Monitor(ctx context.Context, interval, timeout time.Duration, probe Probe) {
	check := func() {
		pctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := probe(pctx); err != nil {
			s.logger.Warn("health probe failed", zap.Error(err))
			s.SetServing(false)
			return
		}
		s.SetServing(true)
	}
	check()

	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			check()
		}
	}
}
