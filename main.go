package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appOrder "github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/audit"
	httptransport "github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/http"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/oteltrace"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/prometrics"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/telemetry"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/observability/zaplogger"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/minishop-orders/internal/observability"
	"github.com/Zhima-Mochi/minishop-orders/internal/pkg/logging"
)

func main() {
	serviceName := getenvDefault("SERVICE_NAME", "minishop-orders")
	env := getenvDefault("ENV", "dev")
	addr := getenvDefault("ADDR", ":8080")

	systemLogger := logging.MustNewLogger(serviceName, env)
	defer func() { _ = systemLogger.Sync() }()
	zap.ReplaceGlobals(systemLogger)

	appLogger := zaplogger.New(
		observability.F("service", serviceName),
		observability.F("env", env),
	)

	registry := prometrics.New("minishop", "orders")
	tel := telemetry.New(
		oteltrace.New(serviceName),
		appLogger,
		map[observability.MetricKey]observability.Counter{
			observability.MUsecaseRequests: registry.Counter(
				string(observability.MUsecaseRequests),
				"Total number of use case invocations.",
				"use_case", "outcome",
			),
			observability.MHTTPRequests: registry.Counter(
				string(observability.MHTTPRequests),
				"Total number of HTTP requests.",
				"method", "route", "status",
			),
			observability.MEventPublishFailures: registry.Counter(
				string(observability.MEventPublishFailures),
				"Count of order event publish failures.",
				"event",
			),
			observability.MPaidOrderCancelled: registry.Counter(
				string(observability.MPaidOrderCancelled),
				"Count of cancellations applied to already-paid orders.",
			),
		},
		map[observability.MetricKey]observability.Histogram{
			observability.MUsecaseDuration: registry.Histogram(
				string(observability.MUsecaseDuration),
				"Duration of use case execution in seconds.",
				prometheus.DefBuckets,
				"use_case",
			),
			observability.MHTTPRequestDuration: registry.Histogram(
				string(observability.MHTTPRequestDuration),
				"Duration of HTTP request handling in seconds.",
				prometheus.DefBuckets,
				"method", "route",
			),
		},
	)

	store := memory.NewStore()
	seedCatalog(store)

	bus := outbox.NewBus(appLogger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	orderService := appOrder.NewService(
		memory.NewOrderRepository(store),
		memory.NewStockRepository(store),
		memory.NewCatalogRepository(store),
		memory.NewTxManager(store),
		id.NewUUIDGenerator(),
		bus,
		tel,
	)

	auditWorker := audit.New(bus, appLogger)
	auditWorker.Start()

	handler := httptransport.NewHandler(orderService, tel)
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		systemLogger.Info("http_server_start",
			zap.String("addr", server.Addr),
		)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			systemLogger.Error("http_server_error",
				zap.Error(err),
			)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		systemLogger.Error("http_server_shutdown_error",
			zap.Error(err),
		)
	} else {
		systemLogger.Info("http_server_stopped")
	}
}

// seedCatalog loads a demo catalog so the service is usable out of the
// box; real deployments would back the store with durable storage.
func seedCatalog(store *memory.Store) {
	store.SeedProduct(catalog.Product{
		ID:    "sku-coffee",
		Name:  "Coffee Beans 1kg",
		Price: decimal.NewFromInt(500),
	}, 10)
	store.SeedProduct(catalog.Product{
		ID:    "sku-mug",
		Name:  "Ceramic Mug",
		Price: decimal.NewFromFloat(12.50),
	}, 25)
	store.SeedProduct(catalog.Product{
		ID:    "sku-grinder",
		Name:  "Hand Grinder",
		Price: decimal.NewFromInt(80),
	}, 2)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
