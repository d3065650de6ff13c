package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/overart/txlogs/internal/store"
	"github.com/overart/txlogs/internal/txlog"
)

const ingestBlob = `Transaction[transactionId=aaa-1, createdAt=2025-12-16T20:23:36Z, status=TransactionStatus[value=authorization_succeeded], amount=100, currency=CAD]

Transaction[transactionId=bbb-2, createdAt=2025-12-17T08:00:00Z, status=TransactionStatus[value=authorization_failed], amount=2.50, currency=USD]`

type captureSink struct {
	bundles []*txlog.Bundle
	err     error
}

func (c *captureSink) InsertBundles(_ context.Context, bundles []*txlog.Bundle) error {
	c.bundles = append(c.bundles, bundles...)
	return c.err
}

func newTestIngestor(t *testing.T, sink BundleSink) (*Ingestor, store.Store) {
	t.Helper()
	s, err := store.NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return NewIngestor(store.NewWriter(s), 2, sink), s
}

func TestIngestor_Run(t *testing.T) {
	sink := &captureSink{}
	in, s := newTestIngestor(t, sink)

	ctx := context.Background()
	summary, results := in.Run(ctx, ingestBlob)

	if summary.Total != 2 || summary.Converted != 2 || summary.Failed != 0 {
		t.Errorf("Summary = %+v, want 2/2/0", summary)
	}
	if len(results) != 2 {
		t.Fatalf("Run() returned %d results, want 2", len(results))
	}

	raw, err := s.Get(ctx, "logs/2025/12/16/transaction_aaa-1"+store.RawSuffix)
	if err != nil {
		t.Fatalf("Get(raw) error = %v", err)
	}
	if len(raw) == 0 {
		t.Error("Saved raw object is empty")
	}
	if _, err := s.Get(ctx, "logs/2025/12/17/transaction_bbb-2"+store.JSONSuffix); err != nil {
		t.Errorf("Get(json) error = %v", err)
	}

	if len(sink.bundles) != 2 {
		t.Errorf("Sink received %d bundles, want 2", len(sink.bundles))
	}
}

func TestIngestor_Run_BadRecordDoesNotAbort(t *testing.T) {
	in, _ := newTestIngestor(t, nil)

	blob := ingestBlob + "\n\nTransaction[createdAt=2025-12-18T00:00:00Z, amount=5]"
	summary, results := in.Run(context.Background(), blob)

	if summary.Total != 3 || summary.Converted != 2 || summary.Failed != 1 {
		t.Errorf("Summary = %+v, want 3/2/1", summary)
	}
	if !errors.Is(results[2].Err, txlog.ErrMissingIdentifier) {
		t.Errorf("results[2].Err = %v, want ErrMissingIdentifier", results[2].Err)
	}
}

func TestIngestor_Run_SinkErrorDoesNotFailBatch(t *testing.T) {
	sink := &captureSink{err: errors.New("warehouse down")}
	in, _ := newTestIngestor(t, sink)

	summary, _ := in.Run(context.Background(), ingestBlob)
	if summary.Failed != 0 {
		t.Errorf("Summary.Failed = %d, want 0 when only the sink fails", summary.Failed)
	}
}
