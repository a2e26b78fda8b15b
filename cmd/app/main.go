package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/wichananm65/drone-shop-backend/internal/cart"
	"github.com/wichananm65/drone-shop-backend/internal/category"
	"github.com/wichananm65/drone-shop-backend/internal/config"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/database/postgres"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/events"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/logger"
	"github.com/wichananm65/drone-shop-backend/internal/infrastructure/metrics"
	"github.com/wichananm65/drone-shop-backend/internal/interface/http/router"
	"github.com/wichananm65/drone-shop-backend/internal/order"
	"github.com/wichananm65/drone-shop-backend/internal/product"
	"github.com/wichananm65/drone-shop-backend/internal/upload"
	"github.com/wichananm65/drone-shop-backend/internal/user"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if err := run(cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, zl *zap.Logger) error {
	// prices leave the API as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.DatabaseURL, postgres.PoolConfig{
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	}, zl)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	publisher, err := newPublisher(cfg, zl)
	if err != nil {
		return err
	}
	defer publisher.Close()

	handlers := []router.RouteRegistrar{
		user.NewHandler(user.NewService(user.NewPostgresRepository(db), zl), zl),
		product.NewHandler(product.NewService(product.NewPostgresRepository(db)), zl),
		category.NewHandler(category.NewService(category.NewPostgresRepository(db)), zl),
		cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db)), zl),
		order.NewHandler(order.NewService(order.NewPostgresRepository(db), publisher, m, zl), zl),
		upload.NewHandler(upload.NewStore(cfg.UploadDir, cfg.MaxUploadBytes), zl),
	}

	app := router.New(router.Options{
		Logger:         zl,
		Metrics:        m,
		Gatherer:       reg,
		DB:             db,
		UploadDir:      cfg.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes,
		RequestTimeout: cfg.RequestTimeout,
	}, handlers...)

	errc := make(chan error, 1)
	go func() {
		zl.Info("listening", zap.String("addr", cfg.Addr))
		errc <- app.Listen(cfg.Addr)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	zl.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// newPublisher returns a Kafka-backed publisher when brokers are configured.
func newPublisher(cfg config.Config, zl *zap.Logger) (events.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		zl.Info("kafka brokers not configured, order events disabled")
		return events.Nop{}, nil
	}
	producer, err := events.NewKafkaProducer(cfg.KafkaBrokers)
	if err != nil {
		return nil, err
	}
	return events.NewKafkaPublisher(producer, cfg.OrderEventsTopic, zl), nil
}
