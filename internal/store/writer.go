package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/overart/txlogs/internal/logger"
	"github.com/overart/txlogs/internal/txlog"
)

// Suffixes for the two encodings written per bundle. The .txt object holds
// the raw dump byte-identical to the input; the .json object holds the full
// bundle document.
const (
	RawSuffix  = ".txt"
	JSONSuffix = ".json"
)

// Writer persists bundles to a Store under their derived keys.
type Writer struct {
	store Store
}

// NewWriter creates a Writer on top of the given store.
func NewWriter(s Store) *Writer {
	return &Writer{store: s}
}

// Save writes both encodings of the bundle and returns the base key.
func (w *Writer) Save(ctx context.Context, b *txlog.Bundle) (string, error) {
	key, err := b.Key()
	if err != nil {
		return "", fmt.Errorf("derive storage key: %w", err)
	}

	doc, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode bundle %s: %w", b.TransactionID, err)
	}

	if err := w.store.Put(ctx, key+RawSuffix, []byte(b.RawText)); err != nil {
		return "", fmt.Errorf("save raw text for %s: %w", b.TransactionID, err)
	}
	if err := w.store.Put(ctx, key+JSONSuffix, doc); err != nil {
		return "", fmt.Errorf("save bundle for %s: %w", b.TransactionID, err)
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("key", key).
		Str("transaction_id", b.TransactionID).
		Msg("Saved bundle")

	return key, nil
}
