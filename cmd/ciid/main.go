package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/stratawatch/cii-engine/internal/adapter/http"
	kafkaadapter "github.com/stratawatch/cii-engine/internal/adapter/kafka"
	"github.com/stratawatch/cii-engine/internal/cii"
	"github.com/stratawatch/cii-engine/internal/config"
	"github.com/stratawatch/cii-engine/internal/focal"
	"github.com/stratawatch/cii-engine/internal/geo"
	"github.com/stratawatch/cii-engine/internal/observability"
	"github.com/stratawatch/cii-engine/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// No boundary index is wired yet, so coordinate-only events fall back to
	// hotspot and region attribution.
	attributor := geo.NewAttributor(nil)
	logger.Info("coordinate boundary attribution disabled")

	engine := cii.New(attributor, logger, metrics,
		cii.WithLearningWindow(cfg.LearningWindow),
	)
	engine.StartLearning()

	detector := focal.NewDetector(nil, logger, metrics)
	engine.AttachFocalSource(detector)

	var gridOpts []geo.ConvergenceOption
	if cfg.ConvergenceNames {
		gridOpts = append(gridOpts, geo.WithLocationNames())
	}
	grid := geo.NewConvergenceGrid(gridOpts...)

	reader := kafkaadapter.NewReader(cfg, logger)
	dispatcher := pipeline.NewDispatcher(engine, grid, detector)
	ingestor := pipeline.New(reader, dispatcher, logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, engine, detector, grid,
		ingestor, cfg.ScoreRefreshInterval, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ingest loop.
	go func() {
		if err := ingestor.Run(ctx); err != nil {
			logger.Error("ingest loop error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}

	logger.Info("shutdown complete")
}
