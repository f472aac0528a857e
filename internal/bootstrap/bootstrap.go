// Package bootstrap wires the process scaffolding every cmd shares:
// configuration, logging, tracing, storage and authorization.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"google.golang.org/grpc"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/catalog"
	catalogapp "github.com/jcmexdev/marketplace/internal/catalog-service/app"
	identityapp "github.com/jcmexdev/marketplace/internal/identity-service/app"
	"github.com/jcmexdev/marketplace/internal/order-service/ports"
	"github.com/jcmexdev/marketplace/internal/pkg/config"
	"github.com/jcmexdev/marketplace/internal/pkg/server"
	"github.com/jcmexdev/marketplace/internal/pkg/telemetry"
	"github.com/jcmexdev/marketplace/internal/store/memory"
	"github.com/jcmexdev/marketplace/internal/store/postgres"
	"github.com/jcmexdev/marketplace/internal/tenant"
	tenantapp "github.com/jcmexdev/marketplace/internal/tenant-service/app"
	wishlistapp "github.com/jcmexdev/marketplace/internal/wishlist-service/app"
)

// Store is satisfied by both the Postgres and the in-memory store.
type Store interface {
	identityapp.Repository
	tenantapp.Repository
	catalogapp.Repository
	ports.CartRepository
	ports.OrderRepository
	wishlistapp.Repository
}

var (
	_ Store = (*postgres.Store)(nil)
	_ Store = (*memory.Store)(nil)
)

const tracerShutdownTimeout = 5 * time.Second

type Service struct {
	Config config.Config
	Store  Store

	closers []func()
}

// Start loads the configuration for name and opens storage. Postgres is used
// and migrated when DATABASE_URL is set; otherwise state lives in memory.
func Start(ctx context.Context, name, defaultPort string) (*Service, error) {
	cfg, err := config.Load(name, defaultPort)
	if err != nil {
		return nil, err
	}
	telemetry.InitLogger(cfg.ServiceName)

	s := &Service{Config: cfg}

	shutdown, err := telemetry.SetupTracer(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.OnClose(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			slog.Error("tracer shutdown error", "error", err)
		}
	})

	if cfg.DatabaseURL == "" {
		slog.Warn("DATABASE_URL not set, using in-memory store")
		s.Store = memory.New()
		return s, nil
	}

	if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
		s.Close()
		return nil, err
	}
	pg, err := postgres.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	s.OnClose(pg.Close)
	s.Store = pg
	return s, nil
}

// OnClose registers fn to run on Close, in reverse registration order.
func (s *Service) OnClose(fn func()) {
	s.closers = append(s.closers, fn)
}

func (s *Service) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// TenantResolver calls the tenant service when TENANT_SERVICE_URL is set and
// reads the local store otherwise.
func (s *Service) TenantResolver() tenant.Resolver {
	if s.Config.TenantServiceURL != "" {
		return tenant.NewHTTPResolver(s.Config.TenantServiceURL, s.Config.UpstreamTimeout)
	}
	return tenant.NewStoreResolver(s.Store)
}

// Pricer reaches the catalog over gRPC when CATALOG_TRANSPORT is grpc and
// over HTTP otherwise.
func (s *Service) Pricer() (catalog.Pricer, error) {
	if s.Config.CatalogTransport != "grpc" {
		return catalog.NewHTTPPricer(s.Config.CatalogServiceURL, s.Config.UpstreamTimeout), nil
	}
	conn, err := catalog.DialGRPC(s.Config.CatalogGRPCAddr)
	if err != nil {
		return nil, err
	}
	s.OnClose(func() { _ = conn.Close() })
	return catalog.NewGRPCPricer(conn, s.Config.UpstreamTimeout), nil
}

func (s *Service) Chain(tenants tenant.Resolver) *auth.Chain {
	return auth.NewChainFromConfig(s.Config, s.Store, tenants)
}

// Serve blocks until ctx ends or a listener fails. grpcServer may be nil.
func (s *Service) Serve(ctx context.Context, handler http.Handler, grpcServer *grpc.Server) error {
	return server.Run(ctx, s.Config.HTTPAddr(), handler, s.Config.GRPCAddr(), grpcServer)
}
