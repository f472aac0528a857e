package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/marketplace/internal/bootstrap"
	"github.com/jcmexdev/marketplace/internal/pkg/server"
	"github.com/jcmexdev/marketplace/internal/tenant"
	"github.com/jcmexdev/marketplace/internal/tenant-service/adapters/httpx"
	"github.com/jcmexdev/marketplace/internal/tenant-service/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Start(ctx, "tenant-service", "8889")
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	// The tenant service owns the table, so ownership is checked against it
	// directly.
	chain := svc.Chain(tenant.NewStoreResolver(svc.Store))
	handler := httpx.NewRouter(httpx.NewHandler(app.NewService(svc.Store)), chain)

	if err := svc.Serve(ctx, handler, server.NewGRPCServer()); err != nil {
		slog.Error("tenant service stopped", "error", err)
		os.Exit(1)
	}
}
