package metadata

// PrimitiveKind enumerates the primitive types a registry can declare,
// in their wire discriminant order.
type PrimitiveKind uint8

const (
	PrimBool PrimitiveKind = iota
	PrimChar
	PrimStr
	PrimU8
	PrimU16
	PrimU32
	PrimU64
	PrimU128
	PrimU256
	PrimI8
	PrimI16
	PrimI32
	PrimI64
	PrimI128
	PrimI256
)

var primitiveNames = [...]string{
	PrimBool: "bool",
	PrimChar: "char",
	PrimStr:  "str",
	PrimU8:   "u8",
	PrimU16:  "u16",
	PrimU32:  "u32",
	PrimU64:  "u64",
	PrimU128: "u128",
	PrimU256: "u256",
	PrimI8:   "i8",
	PrimI16:  "i16",
	PrimI32:  "i32",
	PrimI64:  "i64",
	PrimI128: "i128",
	PrimI256: "i256",
}

func (p PrimitiveKind) String() string {
	if int(p) < len(primitiveNames) {
		return primitiveNames[p]
	}
	return "unknown"
}

// TypeDef is the shape carried by a registry type. Exactly one concrete
// shape implements it per wire discriminant.
type TypeDef interface {
	isTypeDef()
}

// PrimitiveDef is an atomic type such as u64 or bool.
type PrimitiveDef struct {
	Kind PrimitiveKind
}

// CompositeDef is a struct-like type with ordered fields.
type CompositeDef struct {
	Fields []Field
}

// VariantDef is a tagged union with ordered arms.
type VariantDef struct {
	Variants []Variant
}

// SequenceDef is a variable-length collection of one element type.
type SequenceDef struct {
	Elem uint32
}

// ArrayDef is a fixed-length collection of one element type.
type ArrayDef struct {
	Len  uint32
	Elem uint32
}

// TupleDef is an ordered, heterogeneous collection of element types.
type TupleDef struct {
	Elems []uint32
}

// CompactDef is a compact-encoded integer wrapping an inner type.
type CompactDef struct {
	Elem uint32
}

// BitSequenceDef is a bit vector parameterized by store and order types.
type BitSequenceDef struct {
	Store uint32
	Order uint32
}

func (PrimitiveDef) isTypeDef()   {}
func (CompositeDef) isTypeDef()   {}
func (VariantDef) isTypeDef()     {}
func (SequenceDef) isTypeDef()    {}
func (ArrayDef) isTypeDef()       {}
func (TupleDef) isTypeDef()       {}
func (CompactDef) isTypeDef()     {}
func (BitSequenceDef) isTypeDef() {}

// Field is one declared field of a composite or variant arm. Name and
// TypeName are empty when the metadata leaves them unset.
type Field struct {
	Name     string
	Type     uint32
	TypeName string
	Docs     []string
}

// Variant is one arm of a variant type.
type Variant struct {
	Name   string
	Fields []Field
	Index  uint8
	Docs   []string
}

// TypeParam is one generic parameter declared on a type. Type is nil when
// the parameter is unbound in this instantiation.
type TypeParam struct {
	Name string
	Type *uint32
}

// Type is one entry of the portable type registry.
type Type struct {
	Path   []string
	Params []TypeParam
	Def    TypeDef
	Docs   []string
}

// PortableType pairs a registry id with its type definition.
type PortableType struct {
	ID   uint32
	Type Type
}

// Registry is a read-only view over the flat, id-indexed collection of type
// definitions in one metadata snapshot. It is never mutated after
// construction and is safe for concurrent readers.
type Registry struct {
	types map[uint32]*Type
}

// NewRegistry builds a registry from decoded portable types. Duplicate ids
// keep the last definition, matching the behavior of the upstream encoder
// which never emits duplicates.
func NewRegistry(types []PortableType) *Registry {
	m := make(map[uint32]*Type, len(types))
	for i := range types {
		m[types[i].ID] = &types[i].Type
	}
	return &Registry{types: m}
}

// Resolve looks up a type by id. A miss means the snapshot references a type
// absent from its own registry; callers treat that as a hard parsing error.
func (r *Registry) Resolve(id uint32) (*Type, bool) {
	t, ok := r.types[id]
	return t, ok
}

// Len returns the number of registered types.
func (r *Registry) Len() int { return len(r.types) }
