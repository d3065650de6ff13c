package parser

import "errors"

var (
	// ErrMalformedInput indicates the input text does not have the expected
	// TypeName[...] shape or contains unbalanced brackets. For sub-values this
	// is recovered locally by demoting the fragment to a string; it is only
	// returned from Parse when the outer label itself is missing.
	ErrMalformedInput = errors.New("malformed input")

	// ErrDepthExceeded indicates the nesting depth ceiling was hit while
	// parsing. It is fatal to the record being parsed.
	ErrDepthExceeded = errors.New("nesting depth exceeded")
)
