package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/boutiq-shop/checkout-service/internal/catalog"
	"github.com/boutiq-shop/checkout-service/internal/clients"
	"github.com/boutiq-shop/checkout-service/internal/config"
	"github.com/boutiq-shop/checkout-service/internal/events"
	"github.com/boutiq-shop/checkout-service/internal/handlers"
	"github.com/boutiq-shop/checkout-service/internal/logging"
	"github.com/boutiq-shop/checkout-service/internal/metrics"
	"github.com/boutiq-shop/checkout-service/internal/repository"
	"github.com/boutiq-shop/checkout-service/internal/server"
	"github.com/boutiq-shop/checkout-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := logging.New("checkout-service", cfg.LogLevel)
	logger.Info("Starting checkout-service", "port", cfg.Server.Port)

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	productRepo := repository.NewPostgresProductRepository(db, logging.For(logger, "products"))
	orderRepo := repository.NewPostgresOrderRepository(db, logging.For(logger, "orders"))
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logging.For(logger, "cache"))

	gateway := clients.NewHTTPPaymentGateway(cfg.Gateway, logging.For(logger, "gateway"))

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logging.For(logger, "events"))
	defer eventPublisher.Close()

	m := metrics.NewDefault()

	orderService := service.NewOrderService(
		productRepo,
		orderRepo,
		orderCache,
		gateway,
		eventPublisher,
		m,
		cfg.Features,
		logging.For(logger, "service"),
	)

	// The catalog is refreshed at startup; a feed outage keeps whatever
	// catalog the database already holds.
	loader := catalog.NewLoader(cfg.Catalog, productRepo, logging.For(logger, "catalog"))
	loadCtx, loadCancel := context.WithTimeout(context.Background(), cfg.Catalog.Timeout)
	if err := loader.Load(loadCtx); err != nil {
		logger.Warn("Catalog refresh failed, serving existing catalog", "error", err)
	}
	loadCancel()

	h := handlers.NewHandlers(orderService, cfg, logging.For(logger, "handlers"))

	srv := server.New(h, cfg)

	go func() {
		logger.Info("Server starting",
			"port", cfg.Server.Port,
			"enable_order_caching", cfg.Features.EnableOrderCaching,
			"enable_order_events", cfg.Features.EnableOrderEvents,
		)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

func initDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("Database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)

	return db, nil
}
