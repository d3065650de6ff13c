// Package pipeline drives batch conversion of raw transaction dumps into
// output bundles. Each record is converted independently: one malformed
// record is reported as a per-record failure and never aborts the batch.
package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/overart/txlogs/internal/logger"
	"github.com/overart/txlogs/internal/parser"
	"github.com/overart/txlogs/internal/txlog"
)

// recordMarker starts every dump in a blob. Text before the first marker is
// not a record and is ignored.
const recordMarker = "Transaction["

// Result is the outcome for one record of a batch: either a bundle or a
// named failure, never both.
type Result struct {
	Index  int
	Raw    string
	Bundle *txlog.Bundle
	Err    error
}

// Failed reports whether the record could not be converted.
func (r Result) Failed() bool { return r.Err != nil }

// Summary aggregates a batch outcome.
type Summary struct {
	Total     int
	Converted int
	Failed    int
}

// SplitDumps splits a blob holding one or more dumps at record-label
// boundaries. Dumps may be separated by blank lines or packed back to back;
// nested type labels (e.g. TransactionStatus) do not start a new record.
func SplitDumps(blob string) []string {
	var dumps []string
	rest := blob
	start := strings.Index(rest, recordMarker)
	if start < 0 {
		return nil
	}
	rest = rest[start:]
	for len(rest) > 0 {
		next := strings.Index(rest[len(recordMarker):], recordMarker)
		if next < 0 {
			dumps = appendDump(dumps, rest)
			break
		}
		cut := next + len(recordMarker)
		dumps = appendDump(dumps, rest[:cut])
		rest = rest[cut:]
	}
	return dumps
}

func appendDump(dumps []string, chunk string) []string {
	if chunk = strings.TrimSpace(chunk); chunk != "" {
		dumps = append(dumps, chunk)
	}
	return dumps
}

// Convert parses one raw dump and builds its output bundle. The returned
// warnings are non-fatal parse anomalies worth logging.
func Convert(raw string) (*txlog.Bundle, []string, error) {
	res, err := parser.Parse(raw)
	if err != nil {
		return nil, nil, err
	}
	b, err := txlog.NewBundle(raw, res.Object)
	if err != nil {
		return nil, res.Warnings, err
	}
	return b, res.Warnings, nil
}

// ConvertAll converts every dump in a blob, fanning records out over at most
// workers goroutines. Conversion is pure and shares no state between records,
// so no locking is needed beyond the result slots. Results come back in
// record order.
func ConvertAll(ctx context.Context, blob string, workers int) []Result {
	dumps := SplitDumps(blob)
	results := make([]Result, len(dumps))
	if workers < 1 {
		workers = 1
	}

	log := logger.FromContext(ctx)
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, raw := range dumps {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, raw string) {
			defer wg.Done()
			defer func() { <-sem }()

			bundle, warnings, err := Convert(raw)
			for _, w := range warnings {
				log.Warn().Int("record", i).Msg(w)
			}
			if err != nil {
				log.Error().Err(err).Int("record", i).Msg("Record conversion failed")
			}
			results[i] = Result{Index: i, Raw: raw, Bundle: bundle, Err: err}
		}(i, raw)
	}
	wg.Wait()
	return results
}

// Summarize tallies a batch's outcome.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Failed() {
			s.Failed++
		} else {
			s.Converted++
		}
	}
	return s
}
