package metadata

import (
	"fmt"
	"strings"
)

// FormatType renders a deterministic, human-readable signature for a type:
// primitives by their scale-info names, sequences as Vec<T>, arrays as
// [T; N], tuples as (A, B), compacts as Compact<T>, and named types as
// their last path segment with generic parameters rendered recursively.
// The same formatter feeds resolver output and the interactive layer, so a
// displayed signature always matches the declared type.
func FormatType(t *Type, reg *Registry) string {
	return formatType(t, reg, make(map[*Type]bool))
}

func formatType(t *Type, reg *Registry, visiting map[*Type]bool) string {
	// A self-referential named type renders as its bare name on revisit.
	// The resolver rejects such types before prompting; the formatter only
	// has to terminate.
	if visiting[t] {
		return pathName(t)
	}
	visiting[t] = true
	defer delete(visiting, t)

	switch def := t.Def.(type) {
	case PrimitiveDef:
		return def.Kind.String()
	case SequenceDef:
		return "Vec<" + formatID(def.Elem, reg, visiting) + ">"
	case ArrayDef:
		return fmt.Sprintf("[%s; %d]", formatID(def.Elem, reg, visiting), def.Len)
	case TupleDef:
		elems := make([]string, len(def.Elems))
		for i, id := range def.Elems {
			elems[i] = formatID(id, reg, visiting)
		}
		return "(" + strings.Join(elems, ", ") + ")"
	case CompactDef:
		return "Compact<" + formatID(def.Elem, reg, visiting) + ">"
	case BitSequenceDef:
		return "BitVec<" + formatID(def.Store, reg, visiting) + ", " + formatID(def.Order, reg, visiting) + ">"
	case CompositeDef, VariantDef:
		name := pathName(t)
		if len(t.Params) == 0 {
			return name
		}
		params := make([]string, len(t.Params))
		for i, p := range t.Params {
			if p.Type != nil {
				params[i] = formatID(*p.Type, reg, visiting)
			} else {
				params[i] = p.Name
			}
		}
		return name + "<" + strings.Join(params, ", ") + ">"
	default:
		return "unknown"
	}
}

func formatID(id uint32, reg *Registry, visiting map[*Type]bool) string {
	t, ok := reg.Resolve(id)
	if !ok {
		return "?"
	}
	return formatType(t, reg, visiting)
}

func pathName(t *Type) string {
	if len(t.Path) == 0 {
		return "?"
	}
	return t.Path[len(t.Path)-1]
}
