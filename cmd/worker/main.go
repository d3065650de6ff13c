package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/overart/txlogs/internal/config"
	infraBQ "github.com/overart/txlogs/internal/infra/bigquery"
	"github.com/overart/txlogs/internal/jobs/inmemory"
	"github.com/overart/txlogs/internal/logger"
	"github.com/overart/txlogs/internal/pipeline"
	"github.com/overart/txlogs/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("TXLOGS_CONFIG"), "Path to config file (or set TXLOGS_CONFIG env)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		l := logger.New()
		l.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.NewWithLevel(cfg.LogLevel)
	log.Info().Msg("Starting worker service")

	// Create context that cancels on interrupt
	ctx, cancel := context.WithCancel(logger.WithContext(context.Background(), log))
	defer cancel()

	// Initialize storage backend
	var logStore store.Store
	switch cfg.Storage.Backend {
	case "gcs":
		logStore, err = store.NewGCS(ctx, cfg.Storage.Bucket)
	default:
		logStore, err = store.NewLocal(cfg.Storage.DataDir)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize store")
	}
	defer logStore.Close()

	// Optional warehouse mirror
	var sink pipeline.BundleSink
	if cfg.Warehouse.Enabled {
		bqSink, err := infraBQ.NewSink(ctx, cfg.Warehouse.ProjectID, cfg.Warehouse.Dataset, cfg.Warehouse.Table)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create warehouse sink")
		}
		defer bqSink.Close()
		sink = bqSink
	}

	ingestor := pipeline.NewIngestor(store.NewWriter(logStore), cfg.Queue.Workers, sink)

	// Initialize job store and queue
	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Queue.BufferSize, cfg.Queue.Workers, jobStore)

	handler := pipeline.ConvertJobHandler(ingestor, store.FetchURI)

	// Start consuming jobs
	if err := jobQueue.Start(ctx, handler); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	log.Info().Msg("Worker service started, waiting for jobs...")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	// Cancel context to stop workers
	cancel()

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Stop the queue and wait for in-flight jobs
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	log.Info().Msg("Worker service exited")
}
