package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/marketplace/internal/bootstrap"
	"github.com/jcmexdev/marketplace/internal/pkg/server"
	"github.com/jcmexdev/marketplace/internal/wishlist-service/adapters/httpx"
	"github.com/jcmexdev/marketplace/internal/wishlist-service/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Start(ctx, "wishlist-service", "8892")
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	pricer, err := svc.Pricer()
	if err != nil {
		slog.Error("failed to connect to catalog", "error", err)
		os.Exit(1)
	}

	wishlists := app.NewService(svc.Config.TenantID, svc.Store, pricer)
	handler := httpx.NewRouter(httpx.NewHandler(wishlists), svc.Chain(svc.TenantResolver()))

	if err := svc.Serve(ctx, handler, server.NewGRPCServer()); err != nil {
		slog.Error("wishlist service stopped", "error", err)
		os.Exit(1)
	}
}
