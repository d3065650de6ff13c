package parser

import "strings"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	}
	return "unknown"
}

// Value is a parsed field value. Exactly one variant is meaningful, selected
// by Kind. A Value is KindNull only when the source used an explicit null
// token or an empty wrapper body, never because a fragment failed to parse.
type Value struct {
	Kind Kind

	Bool bool

	// Literal is the numeric literal exactly as it appeared in the source.
	// IsInt reports whether it had no fractional part, which downstream
	// amount normalization relies on.
	Literal string
	IsInt   bool

	Str   string
	Items []Value
	Obj   *Object
}

// wrapperNames are the recognized transparent optional/nullable markers.
// Matching is case-sensitive; the wrapper never appears in output.
var wrapperNames = map[string]bool{
	"Optional":     true,
	"JsonNullable": true,
}

// maxDepth bounds recursion so pathological nesting fails with
// ErrDepthExceeded instead of exhausting the stack.
const maxDepth = 100

// parseValue classifies and decodes one raw value fragment. The only error it
// returns is ErrDepthExceeded; malformed fragments are demoted to strings and
// recorded as warnings.
func (st *state) parseValue(s string, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrDepthExceeded
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return Value{Kind: KindNull}, nil
	}

	switch strings.ToLower(s) {
	case "null", "none":
		return Value{Kind: KindNull}, nil
	case "true":
		return Value{Kind: KindBool, Bool: true}, nil
	case "false":
		return Value{Kind: KindBool}, nil
	}

	if name, rest, ok := splitTypeName(s); ok {
		end, err := matchBracket(rest, 0)
		switch {
		case err != nil:
			st.warnf("unbalanced brackets in %q, keeping fragment as string", clip(s))
		case end != len(rest)-1:
			st.warnf("trailing content after %s[...] in %q, keeping fragment as string", name, clip(s))
		default:
			inner := rest[1:end]
			if wrapperNames[name] {
				t := strings.TrimSpace(inner)
				if t == "" || strings.EqualFold(t, "null") {
					return Value{Kind: KindNull}, nil
				}
				return st.parseValue(inner, depth+1)
			}
			obj, err := st.parseObjectBody(inner, name, depth+1)
			if err != nil {
				return Value{}, err
			}
			return Value{Kind: KindObject, Obj: obj}, nil
		}
		return Value{Kind: KindString, Str: s}, nil
	}

	if s[0] == '[' {
		end, err := matchBracket(s, 0)
		if err != nil || end != len(s)-1 {
			st.warnf("unbalanced list brackets in %q, keeping fragment as string", clip(s))
			return Value{Kind: KindString, Str: s}, nil
		}
		return st.parseList(s[1:end], depth+1)
	}

	if s[0] == '{' {
		end, err := matchBracket(s, 0)
		if err != nil || end != len(s)-1 {
			st.warnf("unbalanced map brackets in %q, keeping fragment as string", clip(s))
			return Value{Kind: KindString, Str: s}, nil
		}
		// Map bodies use the same key=value grammar as objects, with no
		// declared type name.
		obj, err := st.parseObjectBody(s[1:end], "", depth+1)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindObject, Obj: obj}, nil
	}

	if isNumericLiteral(s) {
		return Value{
			Kind:    KindNumber,
			Literal: s,
			IsInt:   !strings.Contains(s, "."),
		}, nil
	}

	return Value{Kind: KindString, Str: s}, nil
}

// parseList parses the inside of a bare [...] fragment. Empty segments (from
// trailing commas) are skipped; everything else recurses through parseValue.
func (st *state) parseList(body string, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, ErrDepthExceeded
	}
	items := []Value{}
	if strings.TrimSpace(body) == "" {
		return Value{Kind: KindList, Items: items}, nil
	}
	for _, seg := range splitTopLevel(body) {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		v, err := st.parseValue(seg, depth+1)
		if err != nil {
			return Value{}, err
		}
		items = append(items, v)
	}
	return Value{Kind: KindList, Items: items}, nil
}

// isNumericLiteral reports whether s is a signed integer or decimal literal.
// Exponents and bare fractions like ".5" are not part of the dump grammar.
func isNumericLiteral(s string) bool {
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return false
	}
	if i == len(s) {
		return true
	}
	if s[i] != '.' {
		return false
	}
	i++
	start = i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i > start && i == len(s)
}

// clip shortens a fragment for warning messages.
func clip(s string) string {
	const limit = 60
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
