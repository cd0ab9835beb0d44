package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/balloon-proximity-service/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/balloon-proximity-service/internal/adapter/kafka"
	"github.com/couchcryptid/balloon-proximity-service/internal/adapter/mockdata"
	"github.com/couchcryptid/balloon-proximity-service/internal/adapter/nhc"
	"github.com/couchcryptid/balloon-proximity-service/internal/adapter/windborne"
	"github.com/couchcryptid/balloon-proximity-service/internal/analysis"
	"github.com/couchcryptid/balloon-proximity-service/internal/config"
	"github.com/couchcryptid/balloon-proximity-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Select upstream sources (feature-flagged via USE_MOCK_DATA).
	var trailSource analysis.TrailSource
	var stormSource analysis.StormSource
	if cfg.UseMockData {
		src := mockdata.NewSource(clock)
		trailSource, stormSource = src, src
		logger.Info("mock data sources enabled")
	} else {
		trailSource = windborne.NewClient(cfg, logger, clock)
		nhcClient, err := nhc.NewClient(cfg, logger, metrics)
		if err != nil {
			logger.Error("failed to create storm client", "error", err)
			os.Exit(1)
		}
		stormSource = nhcClient
	}

	// Results go to Kafka when brokers are configured; otherwise to the log,
	// with the full result still served over HTTP.
	var publisher analysis.ResultPublisher
	var kafkaWriter *kafkaadapter.Writer
	if cfg.KafkaEnabled() {
		kafkaWriter = kafkaadapter.NewWriter(cfg, logger)
		publisher = kafkaWriter
		logger.Info("kafka publishing enabled",
			"brokers", cfg.KafkaBrokers,
			"topic", cfg.KafkaSinkTopic,
		)
	} else {
		publisher = analysis.NewLogPublisher(logger)
		logger.Info("kafka publishing disabled")
	}

	runner := analysis.New(trailSource, stormSource, publisher, logger, metrics, clock,
		cfg.AnalysisInterval, cfg.ProximityThresholdKm)

	srv := httpadapter.NewServer(cfg.HTTPAddr, runner, runner, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start analysis loop.
	go func() {
		if err := runner.Run(ctx); err != nil {
			logger.Error("analysis runner error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if kafkaWriter != nil {
		if err := kafkaWriter.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
