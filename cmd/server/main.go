package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/nekogravitycat/meeting-scheduler-backend/internal/app"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/config"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/db"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/logging"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/meeting"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/notification"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/pkg/ratelimit"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/scheduling"
	"github.com/nekogravitycat/meeting-scheduler-backend/internal/telemetry"
)

const serviceName = "meeting-scheduler"

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	hours, err := businessHours(cfg)
	if err != nil {
		logger.Fatal("invalid business hours", zap.Error(err))
	}

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:      cfg.OTelEnabled,
		ServiceName:  serviceName,
		OTLPEndpoint: cfg.OTelEndpoint,
		SampleRatio:  cfg.OTelSampleRatio,
	})
	if err != nil {
		logger.Fatal("failed to init tracing", zap.Error(err))
	}

	// Connect DB
	pool, err := db.NewPool(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("failed to connect to db", zap.Error(err))
	}
	defer pool.Close()

	// Meeting events go to Kafka when brokers are configured
	var publisher notification.Publisher = notification.NopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher = notification.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
		logger.Info("publishing meeting events to kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}
	defer func() { _ = publisher.Close() }()

	// Shared rate limit budget when redis is available
	var limiter ratelimit.Limiter = ratelimit.NewMemoryLimiter(cfg.RateLimitPerMinute)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer func() { _ = rdb.Close() }()
		limiter = ratelimit.NewRedisLimiter(rdb, cfg.RateLimitPerMinute, time.Minute, "meetings:rl")
	}

	container := app.NewContainer(app.Config{
		IsProduction:  cfg.IsProduction,
		ProdOrigins:   cfg.ProdOrigins,
		DBPool:        pool,
		JWTSecret:     cfg.JWTSecret,
		JWTTTL:        cfg.JWTAccessTokenTTL,
		PasswordCost:  cfg.BcryptCost,
		Logger:        logger,
		DefaultZone:   cfg.DefaultTimezone,
		BusinessHours: hours,
		Limiter:       limiter,
		Publisher:     publisher,
		Reminders:     meeting.ReminderConfig{Horizon: cfg.ReminderHorizon, Interval: cfg.ReminderInterval},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		container.ReminderWorker.Run(ctx)
	}()

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           otelhttp.NewHandler(container.Router, serviceName),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Run server in separate goroutine
	go func() {
		logger.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logger.Info("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	wg.Wait()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown failed", zap.Error(err))
	}

	logger.Info("server exited gracefully")
}

func businessHours(cfg *config.Config) (scheduling.BusinessHours, error) {
	start, err := scheduling.ParseTimeOfDay(cfg.BusinessHoursStart)
	if err != nil {
		return scheduling.BusinessHours{}, err
	}
	end, err := scheduling.ParseTimeOfDay(cfg.BusinessHoursEnd)
	if err != nil {
		return scheduling.BusinessHours{}, err
	}
	hours := scheduling.BusinessHours{Start: start, End: end}
	return hours, hours.Validate()
}
