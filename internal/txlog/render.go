package txlog

import (
	"encoding/json"

	"github.com/overart/txlogs/internal/parser"
)

// typeKey carries an object's declared type name into the rendered trees,
// mirroring what readers of the stored bundles expect.
const typeKey = "_type"

// RenderFull renders the parsed tree with every field present, including
// explicit nulls at every depth.
func RenderFull(obj *parser.Object) map[string]interface{} {
	out := make(map[string]interface{}, obj.Len()+1)
	if obj.Type != "" {
		out[typeKey] = obj.Type
	}
	for _, f := range obj.Fields {
		out[f.Name] = renderValue(f.Value, false)
	}
	return out
}

// RenderCompact renders the parsed tree with null-valued map entries removed
// and null list elements dropped, recursively. Objects that become empty stay
// in the tree as empty objects so the field's structural presence survives
// pruning.
func RenderCompact(obj *parser.Object) map[string]interface{} {
	out := make(map[string]interface{}, obj.Len()+1)
	if obj.Type != "" {
		out[typeKey] = obj.Type
	}
	for _, f := range obj.Fields {
		if f.Value.Kind == parser.KindNull {
			continue
		}
		out[f.Name] = renderValue(f.Value, true)
	}
	return out
}

func renderValue(v parser.Value, compact bool) interface{} {
	switch v.Kind {
	case parser.KindNull:
		return nil
	case parser.KindBool:
		return v.Bool
	case parser.KindNumber:
		// json.Number keeps the literal intact when the tree is
		// marshaled, preserving the integer/decimal distinction.
		return json.Number(v.Literal)
	case parser.KindString:
		return v.Str
	case parser.KindList:
		items := make([]interface{}, 0, len(v.Items))
		for _, it := range v.Items {
			if compact && it.Kind == parser.KindNull {
				continue
			}
			items = append(items, renderValue(it, compact))
		}
		return items
	case parser.KindObject:
		if compact {
			return RenderCompact(v.Obj)
		}
		return RenderFull(v.Obj)
	}
	return nil
}
