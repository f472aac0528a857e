package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/marketplace/internal/bootstrap"
	"github.com/jcmexdev/marketplace/internal/catalog"
	"github.com/jcmexdev/marketplace/internal/catalog-service/adapters/httpx"
	"github.com/jcmexdev/marketplace/internal/catalog-service/app"
	"github.com/jcmexdev/marketplace/internal/pkg/server"
)

const defaultGRPCPort = "9890"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Start(ctx, "catalog-service", "8890")
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	if svc.Config.GRPCPort == "" {
		svc.Config.GRPCPort = defaultGRPCPort
	}

	products := app.NewService(svc.Config.TenantID, svc.Store)
	handler := httpx.NewRouter(httpx.NewHandler(products), svc.Chain(svc.TenantResolver()), svc.Config.TenantID)

	grpcServer := server.NewGRPCServer()
	catalog.RegisterQuoteServer(grpcServer, products)

	if err := svc.Serve(ctx, handler, grpcServer); err != nil {
		slog.Error("catalog service stopped", "error", err)
		os.Exit(1)
	}
}
