package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	risk "github.com/akylbek/payment-system/risk-sdk"
	"github.com/akylbek/payment-system/risk-sdk/internal/api"
	"github.com/akylbek/payment-system/risk-sdk/internal/config"
	"github.com/akylbek/payment-system/risk-sdk/internal/eventlogger"
	"github.com/akylbek/payment-system/risk-sdk/internal/repository"
	"github.com/akylbek/payment-system/risk-sdk/internal/service"
	"github.com/akylbek/payment-system/risk-sdk/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	if err := telemetry.InitTelemetry("risk-sdk-host", cfg.JaegerEndpoint, cfg.LogLevel); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting risk SDK host",
		zap.String("environment", cfg.Environment),
		zap.Bool("frames_mode", cfg.FramesMode),
		zap.String("event_sink", cfg.EventSink),
	)

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	repo := repository.NewPublicationRepository(db)
	if err := repo.InitDB(); err != nil {
		telemetry.Logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisURL,
	})
	defer redisClient.Close()

	opts := []risk.Option{risk.WithLocalLogging(cfg.LogLevel == "debug")}
	switch cfg.EventSink {
	case "kafka":
		kafkaWriter := eventlogger.NewKafkaWriter(cfg.KafkaBrokers)
		defer kafkaWriter.Close()
		opts = append(opts, risk.WithEventProcessor(eventlogger.NewKafkaProcessor(kafkaWriter)))
	case "nats":
		nc, err := nats.Connect(cfg.NatsURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to NATS", zap.Error(err))
		}
		defer nc.Close()
		opts = append(opts, risk.WithEventProcessor(eventlogger.NewNATSProcessor(nc, eventlogger.DefaultSubject)))
	}

	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	r, err := risk.GetInstance(initCtx, cfg.RiskConfig(), opts...)
	cancelInit()
	switch {
	case errors.Is(err, risk.ErrIntegrationDisabled):
		telemetry.Logger.Fatal("Risk fingerprint integration is disabled for this merchant")
	case err != nil:
		telemetry.Logger.Fatal("Failed to initialize risk SDK", zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := r.Close(closeCtx); err != nil {
			telemetry.Logger.Warn("Risk telemetry not fully flushed", zap.Error(err))
		}
	}()

	coordinator := service.NewPublishCoordinator(r, repo, repository.NewRedisPublishLock(redisClient))
	router := api.NewRouter(repo, coordinator)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		telemetry.Logger.Info("Risk SDK host starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
