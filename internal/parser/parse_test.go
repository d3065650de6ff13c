package parser

import (
	"errors"
	"testing"
)

const sampleDump = `Transaction[type=Optional[transaction], id=2eb38251-7909-4204-9f76-4306738990b2, reconciliationId=1Q7gL6MYhzBJkN54ZIXVSs, merchantAccountId=secure-fields-capture, currency=CAD, amount=1591, status=TransactionStatus [value=authorization_succeeded], authorizedAmount=1591, capturedAmount=0, refundedAmount=0, settledCurrency=JsonNullable[null], settledAmount=0, settled=false, country=JsonNullable[CA], createdAt=2025-12-16T20:23:36.201957Z, updatedAt=2025-12-16T20:23:37.664110Z]`

func TestParse_SampleDump(t *testing.T) {
	res, err := Parse(sampleDump)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	obj := res.Object

	if obj.Type != "Transaction" {
		t.Errorf("type = %q, want Transaction", obj.Type)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", res.Warnings)
	}

	checks := []struct {
		field string
		kind  Kind
	}{
		{"type", KindString},
		{"id", KindString},
		{"currency", KindString},
		{"amount", KindNumber},
		{"status", KindObject},
		{"settledCurrency", KindNull},
		{"settled", KindBool},
		{"country", KindString},
		{"createdAt", KindString},
	}
	for _, c := range checks {
		v, ok := obj.Get(c.field)
		if !ok {
			t.Errorf("field %q missing", c.field)
			continue
		}
		if v.Kind != c.kind {
			t.Errorf("field %q kind = %v, want %v", c.field, v.Kind, c.kind)
		}
	}

	if v, _ := obj.Get("id"); v.Str != "2eb38251-7909-4204-9f76-4306738990b2" {
		t.Errorf("id = %q", v.Str)
	}
	if v, _ := obj.Get("amount"); v.Literal != "1591" || !v.IsInt {
		t.Errorf("amount = %+v, want integer literal 1591", v)
	}
	if v, _ := obj.Get("country"); v.Str != "CA" {
		t.Errorf("country = %q, want CA (unwrapped)", v.Str)
	}
	status, _ := obj.Get("status")
	if inner, ok := status.Obj.Get("value"); !ok || inner.Str != "authorization_succeeded" {
		t.Errorf("status value = %+v", inner)
	}
}

func TestParse_FieldOrderPreserved(t *testing.T) {
	res, err := Parse("T[b=1, a=2, c=3]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	want := []string{"b", "a", "c"}
	for i, f := range res.Object.Fields {
		if f.Name != want[i] {
			t.Errorf("field %d = %q, want %q", i, f.Name, want[i])
		}
	}
}

func TestParse_DuplicateKeyLastWins(t *testing.T) {
	// Last-one-wins is a chosen policy, not observed upstream behavior;
	// duplicates should not occur in well-formed dumps.
	res, err := Parse("T[a=1, b=2, a=3]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Object.Len() != 2 {
		t.Fatalf("len = %d, want 2", res.Object.Len())
	}
	v, _ := res.Object.Get("a")
	if v.Literal != "3" {
		t.Errorf("a = %q, want 3", v.Literal)
	}
	// The duplicate keeps its first-seen position.
	if res.Object.Fields[0].Name != "a" {
		t.Errorf("first field = %q, want a", res.Object.Fields[0].Name)
	}
}

func TestParse_SegmentWithoutEquals(t *testing.T) {
	res, err := Parse("T[a=1, junk, b=2]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Object.Len() != 2 {
		t.Errorf("len = %d, want 2 (junk segment skipped)", res.Object.Len())
	}
	if len(res.Warnings) != 1 {
		t.Errorf("warnings = %v, want exactly one", res.Warnings)
	}
}

func TestParse_UnbalancedOuterBracketDegrades(t *testing.T) {
	// Dropping the final ']' must still yield a parsed object.
	res, err := Parse(sampleDump[:len(sampleDump)-1])
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if v, ok := res.Object.Get("id"); !ok || v.Str != "2eb38251-7909-4204-9f76-4306738990b2" {
		t.Errorf("id = %+v, want parsed id despite missing bracket", v)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the unmatched outer bracket")
	}
}

func TestParse_MalformedNestedValueDemoted(t *testing.T) {
	res, err := Parse("T[a=Foo[x=1, b=2]")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	// The lone ']' pairs with the nested Foo[ instead of the outer bracket,
	// so the degraded parse sees a single field holding a complete nested
	// object. No error escapes either way.
	v, ok := res.Object.Get("a")
	if !ok || v.Kind != KindObject || v.Obj.Type != "Foo" {
		t.Fatalf("a = %+v, want nested Foo object", v)
	}
	if x, _ := v.Obj.Get("x"); x.Literal != "1" {
		t.Errorf("a.x = %+v, want 1", x)
	}
	if len(res.Warnings) == 0 {
		t.Error("expected a warning for the unmatched outer bracket")
	}
}

func TestParse_NotADump(t *testing.T) {
	for _, in := range []string{"", "   ", "just some text", "[1, 2, 3]"} {
		if _, err := Parse(in); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("Parse(%q) error = %v, want ErrMalformedInput", in, err)
		}
	}
}
