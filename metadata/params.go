package metadata

import (
	"fmt"

	"github.com/wippyai/chaincall/errors"
)

// Param describes one argument of an extrinsic in a form the interactive
// layer can prompt for. A Param is immutable once built.
//
// IsOptional marks a value that may be skipped; TypeName and SubParams then
// describe the inner type, not the Option wrapper itself. IsVariant marks a
// tagged choice whose SubParams hold one synthetic child per arm. Leaves
// (primitives, arrays, sequences, tuples, compacts) carry no children and
// are prompted as free text.
type Param struct {
	Name       string
	TypeName   string
	IsOptional bool
	IsVariant  bool
	SubParams  []Param
}

// runtimeCallType is the last path segment of the chain's dispatchable-call
// aggregate. Any argument that embeds it could carry a full call graph, so
// resolution of the enclosing extrinsic is refused up front instead of
// recursing without bound.
const runtimeCallType = "RuntimeCall"

// runtimeCallParams are the generic-parameter spellings under which the call
// aggregate is smuggled into otherwise ordinary wrapper types.
var runtimeCallParams = [...]string{
	"RuntimeCall",
	"Vec<RuntimeCall>",
	"Vec<<T as Config>::RuntimeCall>",
}

// FieldToParam resolves one declared extrinsic field into its Param tree.
// An unnamed field resolves under the placeholder name "Unnamed".
func FieldToParam(extrinsicName string, field Field, reg *Registry) (Param, error) {
	name := field.Name
	if name == "" {
		name = "Unnamed"
	}
	r := &paramResolver{extrinsic: extrinsicName, reg: reg, visiting: make(map[uint32]bool)}
	return r.resolve(name, field.Type, field.TypeName)
}

// paramResolver carries one resolution pass. visiting holds the type ids on
// the current descent path: the RuntimeCall guard removes the only cycle
// well-formed metadata can contain, and the visited set turns any other
// self-reference into a parse error instead of unbounded recursion.
type paramResolver struct {
	extrinsic string
	reg       *Registry
	visiting  map[uint32]bool
}

// checkElem rejects sequences and arrays whose element is the call
// aggregate. Sequence shapes carry no path of their own, so Vec<RuntimeCall>
// is only recognizable through its element type.
func (r *paramResolver) checkElem(elemID uint32) error {
	elem, ok := r.reg.Resolve(elemID)
	if !ok {
		return nil
	}
	if len(elem.Path) > 0 && elem.Path[len(elem.Path)-1] == runtimeCallType {
		return errors.UnsupportedExtrinsic(r.extrinsic)
	}
	return nil
}

func (r *paramResolver) resolve(name string, typeID uint32, typeName string) (Param, error) {
	t, ok := r.reg.Resolve(typeID)
	if !ok {
		return Param{}, errors.UnknownType(name, typeID)
	}

	// The disallow check runs before any descent into fields.
	if len(t.Path) > 0 && t.Path[len(t.Path)-1] == runtimeCallType {
		return Param{}, errors.UnsupportedExtrinsic(r.extrinsic)
	}
	for _, p := range t.Params {
		for _, disallowed := range runtimeCallParams {
			if p.Name == disallowed {
				return Param{}, errors.UnsupportedExtrinsic(r.extrinsic)
			}
		}
	}

	if r.visiting[typeID] {
		return Param{}, errors.MetadataParsing(name, fmt.Sprintf("recursive type id %d", typeID))
	}
	r.visiting[typeID] = true
	defer delete(r.visiting, typeID)

	// Option<T> resolves to T tagged optional. The optionality is a flag on
	// the result, never a wrapper node, so the prompting layer can offer
	// skip-or-fill without inspecting nested structure.
	if len(t.Path) == 1 && t.Path[0] == "Option" {
		if len(t.Params) == 0 || t.Params[0].Type == nil {
			return Param{}, errors.MetadataParsing(name, "Option without a type parameter")
		}
		sub, err := r.resolve(name, *t.Params[0].Type, typeName)
		if err != nil {
			return Param{}, err
		}
		return Param{
			Name:       name,
			TypeName:   sub.TypeName,
			IsOptional: true,
			SubParams:  sub.SubParams,
			IsVariant:  false,
		}, nil
	}

	switch def := t.Def.(type) {
	case PrimitiveDef:
		return Param{Name: name, TypeName: FormatType(t, r.reg)}, nil

	case CompositeDef:
		subParams := make([]Param, 0, len(def.Fields))
		for _, field := range def.Fields {
			fieldName := field.Name
			if fieldName == "" {
				fieldName = name
			}
			sub, err := r.resolve(fieldName, field.Type, field.TypeName)
			if err != nil {
				return Param{}, err
			}
			subParams = append(subParams, sub)
		}
		return Param{Name: name, TypeName: FormatType(t, r.reg), SubParams: subParams}, nil

	case VariantDef:
		arms := make([]Param, 0, len(def.Variants))
		for _, variant := range def.Variants {
			armSub := make([]Param, 0, len(variant.Fields))
			for _, field := range variant.Fields {
				fieldName := field.Name
				if fieldName == "" {
					fieldName = variant.Name
				}
				sub, err := r.resolve(fieldName, field.Type, field.TypeName)
				if err != nil {
					return Param{}, err
				}
				armSub = append(armSub, sub)
			}
			arms = append(arms, Param{
				Name:      variant.Name,
				TypeName:  "",
				IsVariant: true,
				SubParams: armSub,
			})
		}
		return Param{
			Name:      name,
			TypeName:  FormatType(t, r.reg),
			IsVariant: true,
			SubParams: arms,
		}, nil

	case SequenceDef:
		if err := r.checkElem(def.Elem); err != nil {
			return Param{}, err
		}
		return Param{Name: name, TypeName: FormatType(t, r.reg)}, nil

	case ArrayDef:
		if err := r.checkElem(def.Elem); err != nil {
			return Param{}, err
		}
		return Param{Name: name, TypeName: FormatType(t, r.reg)}, nil

	case TupleDef, CompactDef:
		// Opaque leaves: the interactive layer accepts one delimited
		// free-text value for these rather than a structured form.
		return Param{Name: name, TypeName: FormatType(t, r.reg)}, nil

	default:
		return Param{}, errors.MetadataParsing(name, fmt.Sprintf("no rule for type shape %T", def))
	}
}
