package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/marketplace/internal/auth"
	"github.com/jcmexdev/marketplace/internal/bootstrap"
	"github.com/jcmexdev/marketplace/internal/identity-service/adapters/httpx"
	"github.com/jcmexdev/marketplace/internal/identity-service/app"
	"github.com/jcmexdev/marketplace/internal/pkg/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Start(ctx, "identity-service", "8888")
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	cfg := svc.Config
	// Signing happens here even when the other services verify remotely.
	if err := cfg.ValidateSigningKeys(); err != nil {
		slog.Error("invalid signing keys", "error", err)
		svc.Close()
		os.Exit(1)
	}
	// The identity service always verifies in process; it is the remote
	// verifier the other services call.
	identity := app.NewService(cfg.TenantID, cfg.AdminTenant(), svc.Store,
		auth.NewIssuer(cfg.JWTSecret, cfg.AdminJWTSecret, cfg.TokenTTL),
		auth.NewJWTVerifier(cfg.JWTSecret, auth.RoleUser, cfg.TenantID, svc.Store),
		auth.NewJWTVerifier(cfg.AdminJWTSecret, auth.RoleAdmin, cfg.AdminTenant(), svc.Store),
	)

	if err := svc.Serve(ctx, httpx.NewRouter(httpx.NewHandler(identity)), server.NewGRPCServer()); err != nil {
		slog.Error("identity service stopped", "error", err)
		os.Exit(1)
	}
}
