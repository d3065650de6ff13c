package txlog

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/overart/txlogs/internal/parser"
)

const sampleDump = `Transaction[type=Optional[transaction], id=2eb38251-7909-4204-9f76-4306738990b2, reconciliationId=1Q7gL6MYhzBJkN54ZIXVSs, merchantAccountId=secure-fields-capture, currency=CAD, amount=1591, status=TransactionStatus [value=authorization_succeeded], authorizedAmount=1591, capturedAmount=0, refundedAmount=0, settledCurrency=JsonNullable[null], settledAmount=0, settled=false, country=JsonNullable[CA], createdAt=2025-12-16T20:23:36.201957Z, updatedAt=2025-12-16T20:23:37.664110Z]`

func TestNewBundle_EndToEnd(t *testing.T) {
	res, err := parser.Parse(sampleDump)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, err := NewBundle(sampleDump, res.Object)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}

	if b.TransactionID != "2eb38251-7909-4204-9f76-4306738990b2" {
		t.Errorf("transaction_id = %q", b.TransactionID)
	}
	if b.Status != "success" {
		t.Errorf("status = %q, want success", b.Status)
	}
	if !b.Amount.Equal(decimal.RequireFromString("15.91")) {
		t.Errorf("amount = %s, want 15.91", b.Amount)
	}
	if b.Currency != "CAD" {
		t.Errorf("currency = %q, want CAD", b.Currency)
	}

	// Raw text round-trips byte-identical.
	if b.RawText != sampleDump {
		t.Error("raw_text differs from the input dump")
	}

	// Compact has no nulls anywhere; full kept the null field.
	if hasNull(b.JSONCompact) {
		t.Errorf("json_compact contains nulls: %v", b.JSONCompact)
	}
	if v, ok := b.JSONFull["settledCurrency"]; !ok || v != nil {
		t.Error("json_full lost the explicit null settledCurrency")
	}
	if _, ok := b.JSONCompact["settledCurrency"]; ok {
		t.Error("json_compact kept the null settledCurrency")
	}

	key, err := b.Key()
	if err != nil {
		t.Fatalf("Key failed: %v", err)
	}
	if key != "logs/2025/12/16/transaction_2eb38251-7909-4204-9f76-4306738990b2" {
		t.Errorf("key = %q", key)
	}
}

func TestBundle_JSONRoundTrip(t *testing.T) {
	res, err := parser.Parse(sampleDump)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, err := NewBundle(sampleDump, res.Object)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var back Bundle
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if back.RawText != sampleDump {
		t.Error("raw_text did not survive the round trip")
	}
	if !back.Amount.Equal(b.Amount) {
		t.Errorf("amount round-tripped to %s, want %s", back.Amount, b.Amount)
	}
	if back.TransactionID != b.TransactionID || back.Status != b.Status {
		t.Error("display fields did not survive the round trip")
	}
}

func TestNewBundle_DegradedInputStillBundles(t *testing.T) {
	// Outer bracket removed: parse degrades, bundle is still produced.
	raw := sampleDump[:len(sampleDump)-1]
	res, err := parser.Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	b, err := NewBundle(raw, res.Object)
	if err != nil {
		t.Fatalf("NewBundle failed: %v", err)
	}
	if b.RawText != raw {
		t.Error("raw_text differs from the degraded input")
	}
	if b.TransactionID == "" {
		t.Error("expected an id even for the degraded input")
	}
}
