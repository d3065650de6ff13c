// Package bigquery mirrors converted transaction records into a BigQuery
// table for analytical queries. The object store stays the system of record;
// the warehouse is an optional sink.
package bigquery

import (
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/google/uuid"

	"github.com/overart/txlogs/internal/txlog"
)

// RecordRow represents one converted transaction record in the warehouse.
type RecordRow struct {
	RecordID      string `bigquery:"record_id" json:"record_id"`           // REQUIRED
	TransactionID string `bigquery:"transaction_id" json:"transaction_id"` // REQUIRED

	LogDate civil.Date `bigquery:"log_date" json:"log_date"` // REQUIRED DATE
	LogTS   time.Time  `bigquery:"log_ts" json:"log_ts"`     // REQUIRED TIMESTAMP

	Status   string   `bigquery:"status" json:"status"`     // REQUIRED
	Amount   *big.Rat `bigquery:"amount" json:"amount"`     // NULLABLE NUMERIC
	Currency string   `bigquery:"currency" json:"currency"` // NULLABLE (empty string → "")

	StorageKey string `bigquery:"storage_key" json:"storage_key"` // REQUIRED
	RawText    string `bigquery:"raw_text" json:"raw_text"`       // REQUIRED

	Compact bigquery.NullJSON `bigquery:"compact" json:"compact,omitempty"` // NULLABLE JSON

	IngestedTS time.Time `bigquery:"ingested_ts" json:"ingested_ts"` // REQUIRED (default CURRENT_TIMESTAMP)
}

// MarshalJSON customizes JSON serialization for RecordRow.
// The rational amount is rendered with two decimal places.
func (r RecordRow) MarshalJSON() ([]byte, error) {
	type Alias RecordRow
	var amount *string
	if r.Amount != nil {
		s := r.Amount.FloatString(2)
		amount = &s
	}
	return json.Marshal(&struct {
		Amount *string `json:"amount"`
		*Alias
	}{
		Amount: amount,
		Alias:  (*Alias)(&r),
	})
}

// RowFromBundle builds a warehouse row from a converted bundle.
func RowFromBundle(b *txlog.Bundle) (*RecordRow, error) {
	ts, err := txlog.ParseTimestamp(b.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("row for %s: %w", b.TransactionID, err)
	}
	key, err := b.Key()
	if err != nil {
		return nil, fmt.Errorf("row for %s: %w", b.TransactionID, err)
	}

	var compact bigquery.NullJSON
	if b.JSONCompact != nil {
		enc, err := json.Marshal(b.JSONCompact)
		if err != nil {
			return nil, fmt.Errorf("row for %s: %w", b.TransactionID, err)
		}
		compact = bigquery.NullJSON{JSONVal: string(enc), Valid: true}
	}

	return &RecordRow{
		RecordID:      uuid.New().String(),
		TransactionID: b.TransactionID,
		LogDate:       civil.DateOf(ts),
		LogTS:         ts,
		Status:        b.Status,
		Amount:        b.Amount.Rat(),
		Currency:      b.Currency,
		StorageKey:    key,
		RawText:       b.RawText,
		Compact:       compact,
		IngestedTS:    time.Now().UTC(),
	}, nil
}
