package txlog

import (
	"github.com/shopspring/decimal"

	"github.com/overart/txlogs/internal/parser"
)

// Bundle is the complete output for one ingested dump: the untouched raw
// text, both structured representations, and the normalized display fields.
// A bundle is immutable once built; nothing is shared between bundles.
type Bundle struct {
	TransactionID string          `json:"transaction_id"`
	Timestamp     string          `json:"timestamp"`
	Status        string          `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`

	RawText     string                 `json:"raw_text"`
	JSONFull    map[string]interface{} `json:"json_full"`
	JSONCompact map[string]interface{} `json:"json_compact"`
}

// NewBundle builds the output bundle for one dump from its parsed tree. Both
// representations are rendered from the same tree; there is no second parse
// pass. raw is stored byte-identical to the input.
func NewBundle(raw string, obj *parser.Object) (*Bundle, error) {
	rec, err := Normalize(obj)
	if err != nil {
		return nil, err
	}
	return &Bundle{
		TransactionID: rec.TransactionID,
		Timestamp:     rec.Timestamp,
		Status:        rec.Status,
		Amount:        rec.Amount,
		Currency:      rec.Currency,
		RawText:       raw,
		JSONFull:      RenderFull(obj),
		JSONCompact:   RenderCompact(obj),
	}, nil
}

// Key derives the bundle's storage key fragment.
func (b *Bundle) Key() (string, error) {
	return DeriveKey(b.Timestamp, b.TransactionID)
}
