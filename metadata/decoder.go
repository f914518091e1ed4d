package metadata

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/chaincall/errors"
	"github.com/wippyai/chaincall/scale"
)

// Metadata blobs start with the ASCII magic "meta" followed by the format
// version discriminant.
var metadataMagic = [4]byte{'m', 'e', 't', 'a'}

const (
	versionV14 = 14
	versionV15 = 15
)

// DecodeSnapshot decodes a raw metadata blob, as returned by
// state_getMetadata or the Metadata_metadata runtime API, into a Snapshot.
// Format versions 14 and 15 are supported.
func DecodeSnapshot(raw []byte) (*Snapshot, error) {
	d := scale.NewDecoder(raw)

	magic, err := d.Bytes(4)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "metadata magic")
	}
	if [4]byte(magic) != metadataMagic {
		return nil, errors.InvalidData(errors.PhaseDecode, nil,
			fmt.Sprintf("bad metadata magic %x", magic))
	}
	version, err := d.U8()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "metadata version")
	}
	if version != versionV14 && version != versionV15 {
		return nil, errors.Unsupported(errors.PhaseDecode,
			fmt.Sprintf("metadata v%d (v14 and v15 are supported)", version))
	}

	snap := &Snapshot{Version: version}
	dec := &snapshotDecoder{d: d, version: version}

	if snap.Registry, err = dec.registry(); err != nil {
		return nil, err
	}
	if snap.Pallets, err = dec.pallets(); err != nil {
		return nil, err
	}
	if snap.Extrinsic, err = dec.extrinsic(); err != nil {
		return nil, err
	}
	if snap.RuntimeType, err = dec.typeID(); err != nil {
		return nil, err
	}
	if version == versionV15 {
		if snap.APIs, err = dec.runtimeAPIs(); err != nil {
			return nil, err
		}
		if snap.OuterEnums, err = dec.outerEnums(); err != nil {
			return nil, err
		}
		if err = dec.skipCustom(); err != nil {
			return nil, err
		}
	}

	Logger().Debug("decoded metadata snapshot",
		zap.Uint8("version", version),
		zap.Int("types", snap.Registry.Len()),
		zap.Int("pallets", len(snap.Pallets)))
	return snap, nil
}

type snapshotDecoder struct {
	d       *scale.Decoder
	version uint8
}

func (s *snapshotDecoder) fail(what string, err error) error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Cause(err).
		Detail("%s at offset %d", what, s.d.Offset()).
		Build()
}

// typeID decodes a compact-encoded registry type id.
func (s *snapshotDecoder) typeID() (uint32, error) {
	v, err := s.d.Compact()
	if err != nil {
		return 0, err
	}
	if v > 0xffffffff {
		return 0, s.fail(fmt.Sprintf("type id %d overflows u32", v), nil)
	}
	return uint32(v), nil
}

func (s *snapshotDecoder) optionTypeID() (*uint32, error) {
	present, err := s.d.Option()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	id, err := s.typeID()
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (s *snapshotDecoder) optionString() (string, error) {
	present, err := s.d.Option()
	if err != nil {
		return "", err
	}
	if !present {
		return "", nil
	}
	return s.d.String()
}

func (s *snapshotDecoder) registry() (*Registry, error) {
	n, err := s.d.Len()
	if err != nil {
		return nil, s.fail("type registry length", err)
	}
	types := make([]PortableType, 0, n)
	for i := 0; i < n; i++ {
		id, err := s.typeID()
		if err != nil {
			return nil, s.fail(fmt.Sprintf("type %d id", i), err)
		}
		t, err := s.typeEntry()
		if err != nil {
			return nil, s.fail(fmt.Sprintf("type id %d", id), err)
		}
		types = append(types, PortableType{ID: id, Type: t})
	}
	return NewRegistry(types), nil
}

func (s *snapshotDecoder) typeEntry() (Type, error) {
	var t Type
	var err error

	if t.Path, err = s.d.Strings(); err != nil {
		return t, err
	}

	paramCount, err := s.d.Len()
	if err != nil {
		return t, err
	}
	t.Params = make([]TypeParam, 0, paramCount)
	for i := 0; i < paramCount; i++ {
		var p TypeParam
		if p.Name, err = s.d.String(); err != nil {
			return t, err
		}
		if p.Type, err = s.optionTypeID(); err != nil {
			return t, err
		}
		t.Params = append(t.Params, p)
	}

	if t.Def, err = s.typeDef(); err != nil {
		return t, err
	}
	t.Docs, err = s.d.Strings()
	return t, err
}

// Wire discriminants of the type definition union.
const (
	defComposite   = 0
	defVariant     = 1
	defSequence    = 2
	defArray       = 3
	defTuple       = 4
	defPrimitive   = 5
	defCompact     = 6
	defBitSequence = 7
)

func (s *snapshotDecoder) typeDef() (TypeDef, error) {
	tag, err := s.d.Byte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case defComposite:
		fields, err := s.fields()
		if err != nil {
			return nil, err
		}
		return CompositeDef{Fields: fields}, nil

	case defVariant:
		n, err := s.d.Len()
		if err != nil {
			return nil, err
		}
		variants := make([]Variant, 0, n)
		for i := 0; i < n; i++ {
			var v Variant
			if v.Name, err = s.d.String(); err != nil {
				return nil, err
			}
			if v.Fields, err = s.fields(); err != nil {
				return nil, err
			}
			if v.Index, err = s.d.U8(); err != nil {
				return nil, err
			}
			if v.Docs, err = s.d.Strings(); err != nil {
				return nil, err
			}
			variants = append(variants, v)
		}
		return VariantDef{Variants: variants}, nil

	case defSequence:
		elem, err := s.typeID()
		if err != nil {
			return nil, err
		}
		return SequenceDef{Elem: elem}, nil

	case defArray:
		length, err := s.d.U32()
		if err != nil {
			return nil, err
		}
		elem, err := s.typeID()
		if err != nil {
			return nil, err
		}
		return ArrayDef{Len: length, Elem: elem}, nil

	case defTuple:
		n, err := s.d.Len()
		if err != nil {
			return nil, err
		}
		elems := make([]uint32, 0, n)
		for i := 0; i < n; i++ {
			id, err := s.typeID()
			if err != nil {
				return nil, err
			}
			elems = append(elems, id)
		}
		return TupleDef{Elems: elems}, nil

	case defPrimitive:
		kind, err := s.d.U8()
		if err != nil {
			return nil, err
		}
		if kind > uint8(PrimI256) {
			return nil, s.fail(fmt.Sprintf("unknown primitive discriminant %d", kind), nil)
		}
		return PrimitiveDef{Kind: PrimitiveKind(kind)}, nil

	case defCompact:
		elem, err := s.typeID()
		if err != nil {
			return nil, err
		}
		return CompactDef{Elem: elem}, nil

	case defBitSequence:
		store, err := s.typeID()
		if err != nil {
			return nil, err
		}
		order, err := s.typeID()
		if err != nil {
			return nil, err
		}
		return BitSequenceDef{Store: store, Order: order}, nil

	default:
		return nil, s.fail(fmt.Sprintf("unknown type definition discriminant %d", tag), nil)
	}
}

func (s *snapshotDecoder) fields() ([]Field, error) {
	n, err := s.d.Len()
	if err != nil {
		return nil, err
	}
	fields := make([]Field, 0, n)
	for i := 0; i < n; i++ {
		var f Field
		if f.Name, err = s.optionString(); err != nil {
			return nil, err
		}
		if f.Type, err = s.typeID(); err != nil {
			return nil, err
		}
		if f.TypeName, err = s.optionString(); err != nil {
			return nil, err
		}
		if f.Docs, err = s.d.Strings(); err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

func (s *snapshotDecoder) pallets() ([]PalletMeta, error) {
	n, err := s.d.Len()
	if err != nil {
		return nil, s.fail("pallet list length", err)
	}
	pallets := make([]PalletMeta, 0, n)
	for i := 0; i < n; i++ {
		p, err := s.pallet()
		if err != nil {
			return nil, s.fail(fmt.Sprintf("pallet %d", i), err)
		}
		pallets = append(pallets, p)
	}
	return pallets, nil
}

func (s *snapshotDecoder) pallet() (PalletMeta, error) {
	var p PalletMeta
	var err error

	if p.Name, err = s.d.String(); err != nil {
		return p, err
	}

	hasStorage, err := s.d.Option()
	if err != nil {
		return p, err
	}
	if hasStorage {
		if p.Storage, err = s.storage(); err != nil {
			return p, err
		}
	}

	// calls, event and error are Option<{ty}> wrappers around a type id.
	if p.CallType, err = s.optionTypeID(); err != nil {
		return p, err
	}
	if p.EventType, err = s.optionTypeID(); err != nil {
		return p, err
	}

	constCount, err := s.d.Len()
	if err != nil {
		return p, err
	}
	p.Constants = make([]ConstantMeta, 0, constCount)
	for i := 0; i < constCount; i++ {
		var c ConstantMeta
		if c.Name, err = s.d.String(); err != nil {
			return p, err
		}
		if c.Type, err = s.typeID(); err != nil {
			return p, err
		}
		if c.Value, err = s.d.BytesVec(); err != nil {
			return p, err
		}
		if c.Docs, err = s.d.Strings(); err != nil {
			return p, err
		}
		p.Constants = append(p.Constants, c)
	}

	if p.ErrorType, err = s.optionTypeID(); err != nil {
		return p, err
	}
	if p.Index, err = s.d.U8(); err != nil {
		return p, err
	}
	if s.version >= versionV15 {
		if p.Docs, err = s.d.Strings(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (s *snapshotDecoder) storage() (*StorageMeta, error) {
	var st StorageMeta
	var err error

	if st.Prefix, err = s.d.String(); err != nil {
		return nil, err
	}
	n, err := s.d.Len()
	if err != nil {
		return nil, err
	}
	st.Entries = make([]StorageEntry, 0, n)
	for i := 0; i < n; i++ {
		var e StorageEntry
		if e.Name, err = s.d.String(); err != nil {
			return nil, err
		}
		modifier, err := s.d.U8()
		if err != nil {
			return nil, err
		}
		if modifier > uint8(StorageDefault) {
			return nil, s.fail(fmt.Sprintf("unknown storage modifier %d", modifier), nil)
		}
		e.Modifier = StorageModifier(modifier)

		entryKind, err := s.d.U8()
		if err != nil {
			return nil, err
		}
		switch entryKind {
		case 0: // plain value
			id, err := s.typeID()
			if err != nil {
				return nil, err
			}
			e.Plain = &id
		case 1: // map
			hasherCount, err := s.d.Len()
			if err != nil {
				return nil, err
			}
			m := &StorageMap{Hashers: make([]StorageHasher, 0, hasherCount)}
			for j := 0; j < hasherCount; j++ {
				h, err := s.d.U8()
				if err != nil {
					return nil, err
				}
				if h > uint8(HasherIdentity) {
					return nil, s.fail(fmt.Sprintf("unknown storage hasher %d", h), nil)
				}
				m.Hashers = append(m.Hashers, StorageHasher(h))
			}
			if m.Key, err = s.typeID(); err != nil {
				return nil, err
			}
			if m.Value, err = s.typeID(); err != nil {
				return nil, err
			}
			e.Map = m
		default:
			return nil, s.fail(fmt.Sprintf("unknown storage entry kind %d", entryKind), nil)
		}

		if e.Default, err = s.d.BytesVec(); err != nil {
			return nil, err
		}
		if e.Docs, err = s.d.Strings(); err != nil {
			return nil, err
		}
		st.Entries = append(st.Entries, e)
	}
	return &st, nil
}

func (s *snapshotDecoder) extrinsic() (ExtrinsicMeta, error) {
	var ext ExtrinsicMeta
	var err error

	if s.version == versionV14 {
		if ext.Type, err = s.typeID(); err != nil {
			return ext, s.fail("extrinsic type", err)
		}
		if ext.Version, err = s.d.U8(); err != nil {
			return ext, s.fail("extrinsic version", err)
		}
	} else {
		if ext.Version, err = s.d.U8(); err != nil {
			return ext, s.fail("extrinsic version", err)
		}
		if ext.AddressType, err = s.typeID(); err != nil {
			return ext, s.fail("extrinsic address type", err)
		}
		if ext.CallType, err = s.typeID(); err != nil {
			return ext, s.fail("extrinsic call type", err)
		}
		if ext.SignatureType, err = s.typeID(); err != nil {
			return ext, s.fail("extrinsic signature type", err)
		}
		if ext.ExtraType, err = s.typeID(); err != nil {
			return ext, s.fail("extrinsic extra type", err)
		}
	}

	n, err := s.d.Len()
	if err != nil {
		return ext, s.fail("signed extension count", err)
	}
	ext.SignedExtensions = make([]SignedExtension, 0, n)
	for i := 0; i < n; i++ {
		var se SignedExtension
		if se.Identifier, err = s.d.String(); err != nil {
			return ext, s.fail("signed extension identifier", err)
		}
		if se.Type, err = s.typeID(); err != nil {
			return ext, s.fail("signed extension type", err)
		}
		if se.AdditionalSigned, err = s.typeID(); err != nil {
			return ext, s.fail("signed extension additional type", err)
		}
		ext.SignedExtensions = append(ext.SignedExtensions, se)
	}
	return ext, nil
}

func (s *snapshotDecoder) runtimeAPIs() ([]RuntimeAPI, error) {
	n, err := s.d.Len()
	if err != nil {
		return nil, s.fail("runtime API count", err)
	}
	apis := make([]RuntimeAPI, 0, n)
	for i := 0; i < n; i++ {
		var api RuntimeAPI
		if api.Name, err = s.d.String(); err != nil {
			return nil, s.fail("runtime API name", err)
		}
		methodCount, err := s.d.Len()
		if err != nil {
			return nil, s.fail("runtime API method count", err)
		}
		api.Methods = make([]RuntimeAPIMethod, 0, methodCount)
		for j := 0; j < methodCount; j++ {
			var m RuntimeAPIMethod
			if m.Name, err = s.d.String(); err != nil {
				return nil, s.fail("runtime API method name", err)
			}
			inputCount, err := s.d.Len()
			if err != nil {
				return nil, s.fail("runtime API input count", err)
			}
			m.Inputs = make([]RuntimeAPIInput, 0, inputCount)
			for k := 0; k < inputCount; k++ {
				var in RuntimeAPIInput
				if in.Name, err = s.d.String(); err != nil {
					return nil, s.fail("runtime API input name", err)
				}
				if in.Type, err = s.typeID(); err != nil {
					return nil, s.fail("runtime API input type", err)
				}
				m.Inputs = append(m.Inputs, in)
			}
			if m.Output, err = s.typeID(); err != nil {
				return nil, s.fail("runtime API output type", err)
			}
			if m.Docs, err = s.d.Strings(); err != nil {
				return nil, s.fail("runtime API method docs", err)
			}
			api.Methods = append(api.Methods, m)
		}
		if api.Docs, err = s.d.Strings(); err != nil {
			return nil, s.fail("runtime API docs", err)
		}
		apis = append(apis, api)
	}
	return apis, nil
}

func (s *snapshotDecoder) outerEnums() (*OuterEnums, error) {
	var oe OuterEnums
	var err error
	if oe.CallType, err = s.typeID(); err != nil {
		return nil, s.fail("outer call enum type", err)
	}
	if oe.EventType, err = s.typeID(); err != nil {
		return nil, s.fail("outer event enum type", err)
	}
	if oe.ErrorType, err = s.typeID(); err != nil {
		return nil, s.fail("outer error enum type", err)
	}
	return &oe, nil
}

// skipCustom consumes the V15 custom metadata map without retaining it;
// nothing downstream reads it.
func (s *snapshotDecoder) skipCustom() error {
	n, err := s.d.Len()
	if err != nil {
		return s.fail("custom metadata count", err)
	}
	for i := 0; i < n; i++ {
		if _, err = s.d.String(); err != nil {
			return s.fail("custom metadata key", err)
		}
		if _, err = s.typeID(); err != nil {
			return s.fail("custom metadata type", err)
		}
		if _, err = s.d.BytesVec(); err != nil {
			return s.fail("custom metadata value", err)
		}
	}
	return nil
}
