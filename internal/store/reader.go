package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/overart/txlogs/internal/logger"
	"github.com/overart/txlogs/internal/parser"
	"github.com/overart/txlogs/internal/txlog"
)

// Reader loads bundles back out of a Store. The .json object is the
// authoritative encoding; a .txt object with no .json sibling is re-parsed
// from the raw dump on the fly.
type Reader struct {
	store Store
}

// NewReader creates a Reader on top of the given store.
func NewReader(s Store) *Reader {
	return &Reader{store: s}
}

// LoadByDate returns all bundles filed under the given calendar day.
func (r *Reader) LoadByDate(ctx context.Context, day time.Time) ([]*txlog.Bundle, error) {
	return r.loadPrefix(ctx, txlog.DatePrefix(day))
}

// LoadRecent returns all bundles filed under the last n days, today included.
func (r *Reader) LoadRecent(ctx context.Context, days int) ([]*txlog.Bundle, error) {
	var all []*txlog.Bundle
	now := time.Now().UTC()
	for i := 0; i < days; i++ {
		bundles, err := r.LoadByDate(ctx, now.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		all = append(all, bundles...)
	}
	return all, nil
}

func (r *Reader) loadPrefix(ctx context.Context, prefix string) ([]*txlog.Bundle, error) {
	keys, err := r.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	jsonKeys := make(map[string]bool)
	for _, key := range keys {
		if strings.HasSuffix(key, JSONSuffix) {
			jsonKeys[strings.TrimSuffix(key, JSONSuffix)] = true
		}
	}

	log := logger.FromContext(ctx)
	var bundles []*txlog.Bundle
	for _, key := range keys {
		switch {
		case strings.HasSuffix(key, JSONSuffix):
			b, err := r.loadJSON(ctx, key)
			if err != nil {
				return nil, err
			}
			bundles = append(bundles, b)
		case strings.HasSuffix(key, RawSuffix):
			// Only re-parse raw dumps that have no authoritative encoding.
			if jsonKeys[strings.TrimSuffix(key, RawSuffix)] {
				continue
			}
			b, err := r.loadRaw(ctx, key)
			if err != nil {
				log.Warn().Err(err).Str("key", key).Msg("Skipping unparsable raw object")
				continue
			}
			bundles = append(bundles, b)
		}
	}

	sort.Slice(bundles, func(i, j int) bool {
		return bundles[i].TransactionID < bundles[j].TransactionID
	})
	return bundles, nil
}

func (r *Reader) loadJSON(ctx context.Context, key string) (*txlog.Bundle, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	var b txlog.Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("decode bundle %q: %w", key, err)
	}
	return &b, nil
}

func (r *Reader) loadRaw(ctx context.Context, key string) (*txlog.Bundle, error) {
	data, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	res, err := parser.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse raw dump %q: %w", key, err)
	}
	return txlog.NewBundle(string(data), res.Object)
}
