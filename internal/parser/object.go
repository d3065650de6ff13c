package parser

import "strings"

// Field is one key/value entry of an Object.
type Field struct {
	Name  string
	Value Value
}

// Object is an ordered field mapping tagged with the declared type name from
// the source text ("" for brace-delimited map bodies). Field order follows
// first-seen order; it is kept for reproducibility only.
type Object struct {
	Type   string
	Fields []Field
}

// Get returns the value for name and whether the field is present.
func (o *Object) Get(name string) (Value, bool) {
	for _, f := range o.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Len returns the number of fields.
func (o *Object) Len() int { return len(o.Fields) }

// set inserts or replaces a field. A duplicate key keeps its original
// position and takes the newer value (last-one-wins).
func (o *Object) set(name string, v Value) {
	for i := range o.Fields {
		if o.Fields[i].Name == name {
			o.Fields[i].Value = v
			return
		}
	}
	o.Fields = append(o.Fields, Field{Name: name, Value: v})
}

// parseObjectBody parses the text between an object's brackets into an
// ordered field mapping. Segments are split at top-level commas, then at the
// first top-level '='. A segment without '=' is skipped with a warning rather
// than aborting the object.
func (st *state) parseObjectBody(body, typeName string, depth int) (*Object, error) {
	if depth > maxDepth {
		return nil, ErrDepthExceeded
	}
	obj := &Object{Type: typeName}
	for _, seg := range splitTopLevel(body) {
		if strings.TrimSpace(seg) == "" {
			continue
		}
		eq := topLevelIndex(seg, '=')
		if eq < 0 {
			st.warnf("field segment %q has no '=', skipping", clip(strings.TrimSpace(seg)))
			continue
		}
		name := strings.TrimSpace(seg[:eq])
		if name == "" {
			st.warnf("field segment %q has an empty name, skipping", clip(strings.TrimSpace(seg)))
			continue
		}
		v, err := st.parseValue(seg[eq+1:], depth+1)
		if err != nil {
			return nil, err
		}
		obj.set(name, v)
	}
	return obj, nil
}
