package txlog

import (
	"fmt"
	"time"
)

// keyPrefix is the top of the storage hierarchy records are filed under.
const keyPrefix = "logs"

// timestampLayouts are the accepted timestamp shapes, most specific first.
// RFC3339Nano covers the upstream serializer's usual
// 2025-12-16T20:23:36.201957Z form as well as explicit offsets.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp decomposes a normalized timestamp into calendar components.
func ParseTimestamp(ts string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableTimestamp, ts)
}

// DeriveKey computes the storage key fragment for a record:
// logs/YYYY/MM/DD/transaction_{sanitized_id}. The caller appends a
// format-specific suffix. A timestamp that cannot be decomposed is an error
// that must propagate; guessing a date would file the record in the wrong
// place.
func DeriveKey(timestamp, id string) (string, error) {
	t, err := ParseTimestamp(timestamp)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%04d/%02d/%02d/transaction_%s",
		keyPrefix, t.Year(), int(t.Month()), t.Day(), SanitizeID(id)), nil
}

// Key derives the record's storage key fragment.
func (r *Record) Key() (string, error) {
	return DeriveKey(r.Timestamp, r.TransactionID)
}

// DatePrefix is the storage prefix shared by all records for a calendar day.
func DatePrefix(t time.Time) string {
	return fmt.Sprintf("%s/%04d/%02d/%02d/", keyPrefix, t.Year(), int(t.Month()), t.Day())
}
