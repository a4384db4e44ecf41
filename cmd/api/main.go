package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hzpumpworks/workshop-backend/api/routes"
	"github.com/hzpumpworks/workshop-backend/internal/auditlog"
	"github.com/hzpumpworks/workshop-backend/internal/catalog"
	"github.com/hzpumpworks/workshop-backend/internal/inventory"
	"github.com/hzpumpworks/workshop-backend/internal/orders"
	"github.com/hzpumpworks/workshop-backend/internal/purchasing"
	"github.com/hzpumpworks/workshop-backend/internal/requirements"
	"github.com/hzpumpworks/workshop-backend/internal/users"
	"github.com/hzpumpworks/workshop-backend/pkg/auth/session"
	"github.com/hzpumpworks/workshop-backend/pkg/config"
	"github.com/hzpumpworks/workshop-backend/pkg/db"
	"github.com/hzpumpworks/workshop-backend/pkg/logger"
	"github.com/hzpumpworks/workshop-backend/pkg/metrics"
	"github.com/hzpumpworks/workshop-backend/pkg/migrate"
	"github.com/hzpumpworks/workshop-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	catalogDB, err := db.New(context.Background(), "catalog", cfg.CatalogDB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap catalog store", err)
		os.Exit(1)
	}
	defer closeQuietly(logg, "catalog store", catalogDB.Close)

	docsDB, err := db.New(context.Background(), "docs", cfg.DocsDB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap document store", err)
		os.Exit(1)
	}
	defer closeQuietly(logg, "document store", docsDB.Close)

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, catalogDB, docsDB); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer closeQuietly(logg, "redis", redisClient.Close)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	inventoryMetrics := metrics.NewInventoryMetrics(registry)

	auditService, err := auditlog.NewService(docsDB.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create audit log service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogDB.DB(), auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	ledger, err := inventory.NewLedger(catalogDB.DB(), inventoryMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create inventory ledger", err)
		os.Exit(1)
	}

	resolver, err := requirements.NewResolver(catalogDB.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create requirements resolver", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(orders.NewRepository(docsDB.DB()), resolver, ledger, auditService)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	purchasingService, err := purchasing.NewService(
		purchasing.NewRepository(docsDB.DB()),
		catalogService,
		ledger,
		auditService,
		inventoryMetrics,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create purchasing service", err)
		os.Exit(1)
	}

	usersService, err := users.NewService(users.ServiceParams{
		Repo:           users.NewRepository(docsDB.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Audit:          auditService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			catalogDB,
			docsDB,
			redisClient,
			sessionManager,
			registry,
			httpMetrics,
			routes.Services{
				Users:      usersService,
				Catalog:    catalogService,
				Orders:     ordersService,
				Purchasing: purchasingService,
				Logs:       auditService,
			},
		),
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func closeQuietly(logg *logger.Logger, name string, fn func() error) {
	if err := fn(); err != nil {
		logg.Error(context.Background(), "error closing "+name, err)
	}
}
