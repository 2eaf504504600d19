package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/surfbook/internal/app"
	"github.com/Freeeeeet/surfbook/internal/auth"
	"github.com/Freeeeeet/surfbook/internal/config"
	"github.com/Freeeeeet/surfbook/internal/controller"
	"github.com/Freeeeeet/surfbook/internal/events"
	"github.com/Freeeeeet/surfbook/internal/repository"
	"github.com/Freeeeeet/surfbook/internal/repository/memory"
	"github.com/Freeeeeet/surfbook/internal/service"
	"github.com/Freeeeeet/surfbook/internal/store"
	"github.com/Freeeeeet/surfbook/migrations"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Service stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting surfbook API",
		zap.String("environment", cfg.Environment),
		zap.String("store", cfg.Store),
		zap.String("http_addr", cfg.HTTPAddr))

	// Трейсинг
	shutdownTracer, err := app.InitTracer(ctx, cfg.OTLPEndpoint, cfg.Environment)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn("⚠️ Tracer shutdown failed", zap.Error(err))
		}
	}()
	if cfg.OTLPEndpoint != "" {
		logger.Info("✅ Tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	}

	// Хранилище
	st, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// Публикация доменных событий
	var publisher events.Publisher = events.Nop{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			return err
		}
		publisher = amqpPublisher
		logger.Info("✅ Connected to RabbitMQ", zap.String("exchange", cfg.AMQPExchange))
	} else {
		logger.Warn("⚠️ AMQP_URL is empty, domain events are not published")
	}
	defer publisher.Close()

	// Сервисы
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	payments := service.NewPaymentService(st, publisher, time.Now, logger)
	services := controller.Services{
		Users:        service.NewUserService(st, tokens, logger),
		Instructors:  service.NewInstructorService(st, time.Now, logger),
		Availability: service.NewAvailabilityService(st, time.Now, logger),
		Bookings:     service.NewBookingService(st, publisher, time.Now, logger),
		Payments:     payments,
		Reviews:      service.NewReviewService(st, publisher, time.Now, logger),
	}

	// Фоновое завершение прошедших занятий
	scheduler := app.NewScheduler(payments, cfg.CompletionSchedule, logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}
	defer scheduler.Stop()

	// HTTP
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           controller.NewHandler(services, tokens, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("✅ HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("🔄 Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}

	logger.Info("✅ Service stopped")
	return nil
}

// openStore поднимает PostgreSQL с миграциями или in-memory хранилище
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		logger.Warn("⚠️ Using in-memory store, data is lost on restart")
		return memory.New(), func() {}, nil
	}

	pool, err := repository.NewPool(ctx, cfg.DBDSN, cfg.DBMaxConns)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("✅ Connected to PostgreSQL")

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			logger.Warn("⚠️ Failed to close migrator", zap.Error(err))
		}
	}()

	if err := migrator.Run(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return repository.NewStore(pool, logger), pool.Close, nil
}
