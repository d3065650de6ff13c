package txlog

import "errors"

// Record-fatal conditions. Each aborts normalization of the one record it
// occurred in; the batch driver reports it and moves on.
var (
	ErrMissingIdentifier   = errors.New("transaction identifier missing")
	ErrMissingTimestamp    = errors.New("transaction timestamp missing")
	ErrUnparsableTimestamp = errors.New("unparsable timestamp")
)
