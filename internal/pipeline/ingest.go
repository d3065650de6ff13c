package pipeline

import (
	"context"

	"github.com/overart/txlogs/internal/logger"
	"github.com/overart/txlogs/internal/store"
	"github.com/overart/txlogs/internal/txlog"
)

// BundleSink mirrors saved bundles to a secondary destination, such as the
// warehouse. Sink failures are logged and do not fail the batch; the object
// store stays the system of record.
type BundleSink interface {
	InsertBundles(ctx context.Context, bundles []*txlog.Bundle) error
}

// Ingestor converts a dump blob and persists the resulting bundles.
type Ingestor struct {
	writer  *store.Writer
	sink    BundleSink
	workers int
}

// NewIngestor creates an Ingestor saving through the given writer.
// sink may be nil when no warehouse mirroring is configured.
func NewIngestor(w *store.Writer, workers int, sink BundleSink) *Ingestor {
	if workers <= 0 {
		workers = 1
	}
	return &Ingestor{writer: w, sink: sink, workers: workers}
}

// Run converts every record in blob and saves each bundle under its derived
// key. A record that fails to convert or save counts as failed; the rest of
// the batch proceeds. The per-record results are returned alongside the
// summary.
func (in *Ingestor) Run(ctx context.Context, blob string) (Summary, []Result) {
	log := logger.FromContext(ctx)
	results := ConvertAll(ctx, blob, in.workers)

	var saved []*txlog.Bundle
	for i := range results {
		if results[i].Failed() {
			continue
		}
		key, err := in.writer.Save(ctx, results[i].Bundle)
		if err != nil {
			log.Error().Err(err).
				Str("transaction_id", results[i].Bundle.TransactionID).
				Msg("Failed to save bundle")
			results[i].Err = err
			results[i].Bundle = nil
			continue
		}
		log.Info().
			Str("key", key).
			Str("transaction_id", results[i].Bundle.TransactionID).
			Msg("Converted record")
		saved = append(saved, results[i].Bundle)
	}

	if in.sink != nil && len(saved) > 0 {
		if err := in.sink.InsertBundles(ctx, saved); err != nil {
			log.Error().Err(err).Int("bundles", len(saved)).Msg("Warehouse mirror failed")
		}
	}

	return Summarize(results), results
}
