package parser

import "fmt"

// Bracket scanning helpers. The dump grammar nests with both [] and {}, and the
// two kinds share a single depth counter: a comma or '=' only separates fields
// when no bracket of either kind is open. There is no quoting in the grammar,
// so brackets are never escaped.

// matchBracket returns the index of the closing bracket that matches the
// opening bracket at s[start]. Nested brackets of either kind are counted.
func matchBracket(s string, start int) (int, error) {
	if start >= len(s) || (s[start] != '[' && s[start] != '{') {
		return 0, fmt.Errorf("%w: no opening bracket at offset %d", ErrMalformedInput, start)
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 {
				return i, nil
			}
		}
	}
	return 0, fmt.Errorf("%w: unmatched %q at offset %d", ErrMalformedInput, s[start], start)
}

// splitTopLevel splits s on commas that are not inside any bracket pair.
// Segments are returned untrimmed so value fragments keep their exact bytes.
func splitTopLevel(s string) []string {
	var parts []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

// topLevelIndex returns the index of the first occurrence of c outside any
// bracket pair, or -1.
func topLevelIndex(s string, c byte) int {
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[', '{':
			depth++
		case ']', '}':
			depth--
		default:
			if s[i] == c && depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTypeName splits a leading type label from a fragment like
// "TypeName[...]" or "TypeName [...]". It returns the label and the remainder
// starting at the opening bracket. ok is false when the fragment does not
// begin with an identifier followed by '['.
func splitTypeName(s string) (name, rest string, ok bool) {
	i := 0
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == 0 {
		return "", "", false
	}
	j := i
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j >= len(s) || s[j] != '[' {
		return "", "", false
	}
	return s[:i], s[j:], true
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
