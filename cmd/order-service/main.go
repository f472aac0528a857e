package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jcmexdev/marketplace/internal/bootstrap"
	"github.com/jcmexdev/marketplace/internal/order-service/adapters/httpx"
	"github.com/jcmexdev/marketplace/internal/order-service/app"
	"github.com/jcmexdev/marketplace/internal/order-service/events"
	"github.com/jcmexdev/marketplace/internal/order-service/orderlog/sqlite"
	"github.com/jcmexdev/marketplace/internal/pkg/cache"
	"github.com/jcmexdev/marketplace/internal/pkg/config"
	"github.com/jcmexdev/marketplace/internal/pkg/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := bootstrap.Start(ctx, "order-service", "8891")
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	cfg := svc.Config
	pricer, err := svc.Pricer()
	if err != nil {
		slog.Error("failed to connect to catalog", "error", err)
		os.Exit(1)
	}

	opts := []app.Option{app.WithReplayCache(newReplayCache(cfg, svc))}

	if cfg.OrderLogPath != "" {
		orderLog, err := sqlite.Open(cfg.OrderLogPath)
		if err != nil {
			slog.Error("failed to open order log", "path", cfg.OrderLogPath, "error", err)
			os.Exit(1)
		}
		svc.OnClose(func() { _ = orderLog.Close() })
		opts = append(opts, app.WithTransitionLog(orderLog))
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		svc.OnClose(func() { _ = publisher.Close() })
		opts = append(opts, app.WithPublisher(publisher))
	}

	handler := httpx.NewHandler(
		app.NewOrchestrator(cfg.TenantID, svc.Store, svc.Store, pricer, opts...),
		app.NewCartService(cfg.TenantID, svc.Store, pricer),
	)
	router := httpx.NewRouter(handler, svc.Chain(svc.TenantResolver()))

	if err := svc.Serve(ctx, router, server.NewGRPCServer()); err != nil {
		slog.Error("order service stopped", "error", err)
		os.Exit(1)
	}
}

func newReplayCache(cfg config.Config, svc *bootstrap.Service) cache.Cache {
	var c cache.Cache
	if cfg.RedisAddr != "" {
		c = cache.NewRedisCache(cfg.RedisAddr, cfg.ServiceName)
	} else {
		c = cache.NewMemoryCache(cfg.ServiceName)
	}
	svc.OnClose(func() { _ = c.Close() })
	return c
}
