package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/overart/txlogs/internal/parser"
	"github.com/overart/txlogs/internal/txlog"
)

const sampleDump = "Transaction[transactionId=abc-123.xyz, createdAt=2025-12-16T20:23:36.201957Z, " +
	"status=TransactionStatus[value=authorization_succeeded], amount=1591, currency=CAD]"

func mustBundle(t *testing.T, raw string) *txlog.Bundle {
	t.Helper()
	res, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	b, err := txlog.NewBundle(raw, res.Object)
	if err != nil {
		t.Fatalf("NewBundle() error = %v", err)
	}
	return b
}

func TestWriter_Save(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	b := mustBundle(t, sampleDump)

	key, err := NewWriter(s).Save(ctx, b)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if key != "logs/2025/12/16/transaction_abc-123_xyz" {
		t.Errorf("Save() key = %q", key)
	}

	raw, err := s.Get(ctx, key+RawSuffix)
	if err != nil {
		t.Fatalf("Get(raw) error = %v", err)
	}
	if string(raw) != sampleDump {
		t.Errorf("raw object = %q, want input byte-identical", raw)
	}

	doc, err := s.Get(ctx, key+JSONSuffix)
	if err != nil {
		t.Fatalf("Get(json) error = %v", err)
	}
	if !strings.Contains(string(doc), `"transaction_id": "abc-123.xyz"`) {
		t.Errorf("json object missing transaction_id: %s", doc)
	}
}

func TestReader_LoadByDate(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	w := NewWriter(s)
	if _, err := w.Save(ctx, mustBundle(t, sampleDump)); err != nil {
		t.Fatal(err)
	}
	other := "Transaction[transactionId=def-456, createdAt=2025-12-16T10:00:00Z, " +
		"status=TransactionStatus[value=authorization_failed], amount=2.50, currency=USD]"
	if _, err := w.Save(ctx, mustBundle(t, other)); err != nil {
		t.Fatal(err)
	}

	day := time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC)
	bundles, err := NewReader(s).LoadByDate(ctx, day)
	if err != nil {
		t.Fatalf("LoadByDate() error = %v", err)
	}
	if len(bundles) != 2 {
		t.Fatalf("LoadByDate() returned %d bundles, want 2", len(bundles))
	}
	if bundles[0].TransactionID != "abc-123.xyz" || bundles[1].TransactionID != "def-456" {
		t.Errorf("bundle order = %q, %q", bundles[0].TransactionID, bundles[1].TransactionID)
	}
	if bundles[0].Status != "success" {
		t.Errorf("Status = %q, want %q", bundles[0].Status, "success")
	}
	if bundles[1].Amount.String() != "2.5" && bundles[1].Amount.String() != "2.50" {
		t.Errorf("Amount = %q, want 2.50", bundles[1].Amount.String())
	}
}

func TestReader_LoadByDate_RawOnly(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	ctx := context.Background()
	key := "logs/2025/12/16/transaction_abc-123_xyz"
	if err := s.Put(ctx, key+RawSuffix, []byte(sampleDump)); err != nil {
		t.Fatal(err)
	}

	day := time.Date(2025, 12, 16, 0, 0, 0, 0, time.UTC)
	bundles, err := NewReader(s).LoadByDate(ctx, day)
	if err != nil {
		t.Fatalf("LoadByDate() error = %v", err)
	}
	if len(bundles) != 1 {
		t.Fatalf("LoadByDate() returned %d bundles, want 1", len(bundles))
	}
	if bundles[0].TransactionID != "abc-123.xyz" {
		t.Errorf("TransactionID = %q, want %q", bundles[0].TransactionID, "abc-123.xyz")
	}
	if bundles[0].RawText != sampleDump {
		t.Errorf("RawText not preserved through re-parse")
	}
}

func TestReader_LoadByDate_EmptyDay(t *testing.T) {
	s, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	day := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	bundles, err := NewReader(s).LoadByDate(context.Background(), day)
	if err != nil {
		t.Fatalf("LoadByDate() error = %v", err)
	}
	if len(bundles) != 0 {
		t.Errorf("LoadByDate() = %d bundles, want 0", len(bundles))
	}
}
