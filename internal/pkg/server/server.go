// Package server runs a service's HTTP and gRPC listeners side by side and
// shuts both down when the context ends.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/jcmexdev/marketplace/internal/pkg/interceptors"
)

const shutdownTimeout = 10 * time.Second

// NewGRPCServer returns a gRPC server with tracing, request metadata
// propagation and the standard health service reporting SERVING.
func NewGRPCServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.UnaryInterceptor(interceptors.TraceServerInterceptor()),
	}, opts...)
	s := grpc.NewServer(opts...)

	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(s, hs)
	return s
}

// Run serves handler on httpAddr and, when grpcAddr is not empty, grpcServer
// on grpcAddr. Both listeners are bound before either serves, so a bad
// address fails fast without leaving the other listener open. It returns
// when ctx is cancelled or a listener fails.
func Run(ctx context.Context, httpAddr string, handler http.Handler, grpcAddr string, grpcServer *grpc.Server) error {
	httpLis, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", httpAddr, err)
	}

	var grpcLis net.Listener
	if grpcAddr != "" && grpcServer != nil {
		grpcLis, err = net.Listen("tcp", grpcAddr)
		if err != nil {
			_ = httpLis.Close()
			return fmt.Errorf("server: listen %s: %w", grpcAddr, err)
		}
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http listener running", "addr", httpLis.Addr().String())
		if err := srv.Serve(httpLis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: http: %w", err)
		}
		return nil
	})

	if grpcLis != nil {
		g.Go(func() error {
			slog.Info("grpc listener running", "addr", grpcLis.Addr().String())
			if err := grpcServer.Serve(grpcLis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				return fmt.Errorf("server: grpc: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-ctx.Done()
		slog.Info("shutting down listeners")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if grpcServer != nil {
			grpcServer.GracefulStop()
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
