// Package parser decodes the upstream object-to-string serialization of
// transaction records ("Transaction[id=..., status=TransactionStatus
// [value=...], ...]") into a typed object tree. Parsing is pure and
// stateless: each call works only on its input and shares nothing with other
// calls, so records can be parsed concurrently without locking.
package parser

import (
	"fmt"
	"strings"
)

// Result carries a parsed object tree plus any non-fatal anomalies observed
// while parsing (demoted fragments, skipped segments, unbalanced brackets).
type Result struct {
	Object   *Object
	Warnings []string
}

// state collects warnings during one parse call. It lives for a single Parse
// invocation only.
type state struct {
	warnings []string
}

func (st *state) warnf(format string, args ...interface{}) {
	st.warnings = append(st.warnings, fmt.Sprintf(format, args...))
}

// Parse decodes one raw dump. The input is expected to begin with a type
// label immediately followed by '[' and to end with the matching ']'
// (surrounding whitespace tolerated). An unbalanced outer bracket degrades to
// a best-effort parse of the remaining body rather than failing; only a
// missing leading label or exceeding the nesting ceiling is an error.
func Parse(raw string) (*Result, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedInput)
	}

	name, rest, ok := splitTypeName(text)
	if !ok {
		return nil, fmt.Errorf("%w: input does not start with a type label", ErrMalformedInput)
	}

	st := &state{}
	var body string
	end, err := matchBracket(rest, 0)
	switch {
	case err != nil:
		// No matching close for the outer bracket: parse what is there.
		st.warnf("unmatched outer bracket, parsing remainder best-effort")
		body = rest[1:]
	case strings.TrimSpace(rest[end+1:]) != "":
		st.warnf("ignoring trailing content after closing bracket")
		body = rest[1:end]
	default:
		body = rest[1:end]
	}

	obj, err := st.parseObjectBody(body, name, 1)
	if err != nil {
		return nil, err
	}
	return &Result{Object: obj, Warnings: st.warnings}, nil
}
