package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/overart/txlogs/internal/logger"
	"github.com/overart/txlogs/internal/pipeline"
	"github.com/overart/txlogs/internal/store"
)

func main() {
	var (
		inputPath = flag.String("input", "", "Path to a dump file, or - for stdin (required)")
		dataDir   = flag.String("data-dir", "./data", "Directory to write converted records to")
		workers   = flag.Int("workers", 4, "Number of concurrent conversion workers")
		logLevel  = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	)
	flag.Parse()

	log := logger.NewWithLevel(*logLevel)

	if *inputPath == "" {
		log.Fatal().Msg("Usage: convert -input /path/to/dumps.txt [-data-dir ./data] [-workers 4]")
	}

	blob, err := readInput(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Str("input", *inputPath).Msg("Failed to read input")
	}

	// Create context with timeout so CLI doesn't hang
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	logStore, err := store.NewLocal(*dataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open data dir")
	}
	defer logStore.Close()

	ingestor := pipeline.NewIngestor(store.NewWriter(logStore), *workers, nil)

	log.Info().Str("input", *inputPath).Msg("Starting conversion")
	summary, results := ingestor.Run(ctx, blob)

	for _, res := range results {
		if res.Failed() {
			log.Warn().Int("index", res.Index).Err(res.Err).Msg("Record failed")
		}
	}

	fmt.Printf("Converted %d of %d records (%d failed).\n",
		summary.Converted, summary.Total, summary.Failed)

	if summary.Total == 0 || summary.Failed == summary.Total {
		os.Exit(1)
	}
}

func readInput(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", fmt.Errorf("input file %s is empty", path)
	}
	return string(data), nil
}
