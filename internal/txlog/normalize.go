// Package txlog turns parsed transaction dumps into normalized records and
// their stable output representations (raw text, full tree with explicit
// nulls, compact tree with nulls pruned), and derives the date-based storage
// key a record is filed under.
package txlog

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/overart/txlogs/internal/parser"
)

// StatusUnknown is the normalized status for records whose dump carries no
// usable status field.
const StatusUnknown = "unknown"

// statusTable maps raw upstream status tokens to their canonical form.
// Tokens not listed here pass through unchanged; an unrecognized status is
// never an error.
var statusTable = map[string]string{
	"authorization_succeeded": "success",
	"authorization_failed":    "failed",
}

// Record is the normalized view of one parsed transaction dump.
type Record struct {
	TransactionID string
	SanitizedID   string
	Timestamp     string
	Status        string
	Amount        decimal.Decimal
	Currency      string

	// Object is the full parsed tree the record was derived from.
	Object *parser.Object
}

// Normalize derives a Record from the top-level parsed object. A missing or
// null id or createdAt field is fatal to the record; every other absent field
// degrades to a zero value.
func Normalize(obj *parser.Object) (*Record, error) {
	id, err := scalarField(obj, "id")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMissingIdentifier, err)
	}

	ts, ok := obj.Get("createdAt")
	if !ok || ts.Kind == parser.KindNull {
		return nil, fmt.Errorf("%w: no createdAt field", ErrMissingTimestamp)
	}
	if ts.Kind != parser.KindString {
		return nil, fmt.Errorf("%w: createdAt is %s, want an ISO-8601 string", ErrMissingTimestamp, ts.Kind)
	}

	return &Record{
		TransactionID: id,
		SanitizedID:   SanitizeID(id),
		Timestamp:     ts.Str,
		Status:        extractStatus(obj),
		Amount:        extractAmount(obj),
		Currency:      extractCurrency(obj),
		Object:        obj,
	}, nil
}

// NormalizeStatus canonicalizes a raw status token. Unrecognized tokens pass
// through unchanged.
func NormalizeStatus(token string) string {
	if canonical, ok := statusTable[token]; ok {
		return canonical
	}
	return token
}

// ConvertAmount turns a parsed amount value into major units. Integer
// literals are minor units and are divided by 100; decimal literals are
// already major units and are used verbatim, so re-converting an already
// converted amount never divides it again.
func ConvertAmount(v parser.Value) decimal.Decimal {
	if v.Kind != parser.KindNumber {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.Literal)
	if err != nil {
		return decimal.Zero
	}
	if v.IsInt {
		return d.Shift(-2)
	}
	return d
}

// SanitizeID replaces every character outside [A-Za-z0-9_-] with '_' so the
// identifier is safe in file names and object keys.
func SanitizeID(id string) string {
	out := []byte(id)
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}

// scalarField returns the string form of a scalar (string or number) field.
func scalarField(obj *parser.Object, name string) (string, error) {
	v, ok := obj.Get(name)
	if !ok {
		return "", fmt.Errorf("no %s field", name)
	}
	switch v.Kind {
	case parser.KindString:
		return v.Str, nil
	case parser.KindNumber:
		return v.Literal, nil
	case parser.KindNull:
		return "", fmt.Errorf("%s field is null", name)
	default:
		return "", fmt.Errorf("%s field is %s, want a scalar", name, v.Kind)
	}
}

// extractStatus pulls the raw status token out of the dump. The upstream
// serializer emits status as a nested object holding a single "value" field
// (e.g. TransactionStatus [value=authorization_succeeded]); a bare string is
// accepted too, since upstream format drift is expected.
func extractStatus(obj *parser.Object) string {
	v, ok := obj.Get("status")
	if !ok || v.Kind == parser.KindNull {
		return StatusUnknown
	}
	switch v.Kind {
	case parser.KindObject:
		inner, ok := v.Obj.Get("value")
		if !ok || inner.Kind != parser.KindString {
			return StatusUnknown
		}
		return NormalizeStatus(inner.Str)
	case parser.KindString:
		return NormalizeStatus(v.Str)
	default:
		return StatusUnknown
	}
}

func extractAmount(obj *parser.Object) decimal.Decimal {
	v, ok := obj.Get("amount")
	if !ok {
		return decimal.Zero
	}
	return ConvertAmount(v)
}

func extractCurrency(obj *parser.Object) string {
	v, ok := obj.Get("currency")
	if !ok {
		return ""
	}
	switch v.Kind {
	case parser.KindString:
		return v.Str
	case parser.KindNumber:
		return v.Literal
	default:
		return ""
	}
}
