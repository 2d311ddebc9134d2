package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/cyclone-inference-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/cyclone-inference-service/internal/adapter/kafka"
	"github.com/couchcryptid/cyclone-inference-service/internal/adapter/store"
	"github.com/couchcryptid/cyclone-inference-service/internal/config"
	"github.com/couchcryptid/cyclone-inference-service/internal/model"
	"github.com/couchcryptid/cyclone-inference-service/internal/observability"
	"github.com/couchcryptid/cyclone-inference-service/internal/predictor"
)

// readiness reports ready only when the model is servable and the prediction
// store answers a ping.
type readiness struct {
	model *predictor.Service
	store *store.SQLite
}

func (r *readiness) CheckReadiness(ctx context.Context) error {
	if err := r.model.CheckReadiness(ctx); err != nil {
		return err
	}
	return r.store.Ping(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	db, err := store.Open(cfg.DatabasePath)
	if err != nil {
		logger.Error("failed to open prediction store", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}

	cache := model.NewCache(model.ResolvePath(cfg.ModelPath))
	if cfg.PreloadModel {
		// A missing or broken artifact is reported per-request instead of
		// failing startup, so the service can come up before the model ships.
		if _, err := cache.Load(); err != nil {
			logger.Warn("model preload failed", "error", err)
		} else {
			logger.Info("model preloaded", "path", model.ResolvePath(cfg.ModelPath))
		}
	}

	// Kafka sink is feature-flagged via KAFKA_BROKERS / KAFKA_ENABLED.
	var publisher httpadapter.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka publishing disabled")
	}

	svc := predictor.New(cache, logger, metrics)
	ready := &readiness{model: svc, store: db}

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cache, db, publisher, ready, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
	if err := db.Close(); err != nil {
		logger.Error("prediction store close error", "error", err)
	}

	logger.Info("shutdown complete")
}
