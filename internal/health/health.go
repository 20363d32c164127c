// Package health exposes the standard gRPC health service and keeps its
// status in line with a dependency check.
package health

import (
	"context"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/MikeMC777/tiendas-ecom/internal/logging"
)

// Check reports whether a dependency is reachable, e.g. pgxpool.Pool.Ping.
type Check func(ctx context.Context) error

type Server struct {
	grpc   *grpc.Server
	health *health.Server
	lis    net.Listener
}

// Listen binds addr and registers the health service for service and for
// the empty name.
func Listen(addr string) (*Server, error) {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	s := &Server{grpc: grpc.NewServer(), health: health.NewServer(), lis: lis}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	return s, nil
}

func (s *Server) Addr() string { return s.lis.Addr().String() }

// Serve blocks until the server stops.
func (s *Server) Serve() error {
	return s.grpc.Serve(s.lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}

func (s *Server) set(service string, ok bool) {
	st := healthpb.HealthCheckResponse_SERVING
	if !ok {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.health.SetServingStatus("", st)
	if service != "" {
		s.health.SetServingStatus(service, st)
	}
}

// Watch runs check every interval and publishes the result until ctx is done.
func (s *Server) Watch(ctx context.Context, service string, check Check, interval time.Duration) {
	probe := func() {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := check(pctx)
		if err != nil {
			logging.Printf(ctx, "health", "%s health check failed: %v", service, err)
		}
		s.set(service, err == nil)
	}
	probe()
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			probe()
		}
	}
}
