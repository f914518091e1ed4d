package metadata

import "testing"

func TestFormatType(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		typeID uint32
		want   string
	}{
		{0, "u64"},
		{1, "Compact<u64>"},
		{2, "u32"},
		{4, "Vec<u8>"},
		{5, "Option<Vec<u8>>"},
		{9, "[u8; 32]"},
		{10, "MultiAddress<AccountId32, u32>"},
		{11, "Status"},
		{14, "bool"},
		{16, "Lsb0"},
		{19, "(u32, bool)"},
		{22, "Weight"},
	}

	for _, tt := range tests {
		typ, ok := reg.Resolve(tt.typeID)
		if !ok {
			t.Fatalf("type %d missing from fixture", tt.typeID)
		}
		if got := FormatType(typ, reg); got != tt.want {
			t.Errorf("FormatType(%d) = %q, want %q", tt.typeID, got, tt.want)
		}
	}
}

func TestFormatType_BitSequence(t *testing.T) {
	reg := testRegistry()
	typ, _ := reg.Resolve(15)
	if got := FormatType(typ, reg); got != "BitVec<u8, Lsb0>" {
		t.Errorf("got %q", got)
	}
}

func TestFormatType_UnboundParamUsesName(t *testing.T) {
	reg := NewRegistry([]PortableType{
		{ID: 0, Type: Type{
			Path:   []string{"frame", "Call"},
			Params: []TypeParam{{Name: "T"}},
			Def:    VariantDef{},
		}},
	})
	typ, _ := reg.Resolve(0)
	if got := FormatType(typ, reg); got != "Call<T>" {
		t.Errorf("got %q", got)
	}
}

func TestFormatType_MissingElemRendersPlaceholder(t *testing.T) {
	reg := NewRegistry([]PortableType{
		{ID: 0, Type: Type{Def: SequenceDef{Elem: 42}}},
	})
	typ, _ := reg.Resolve(0)
	if got := FormatType(typ, reg); got != "Vec<?>" {
		t.Errorf("got %q", got)
	}
}

func TestFormatType_TerminatesOnSelfReference(t *testing.T) {
	reg := NewRegistry([]PortableType{
		{ID: 0, Type: Type{
			Path:   []string{"node", "RuntimeCall"},
			Params: []TypeParam{{Name: "T", Type: ref(0)}},
			Def:    VariantDef{},
		}},
	})
	typ, _ := reg.Resolve(0)
	if got := FormatType(typ, reg); got != "RuntimeCall<RuntimeCall>" {
		t.Errorf("got %q", got)
	}
}

func TestFormatType_Deterministic(t *testing.T) {
	reg := testRegistry()
	typ, _ := reg.Resolve(10)
	first := FormatType(typ, reg)
	for i := 0; i < 10; i++ {
		if got := FormatType(typ, reg); got != first {
			t.Fatalf("formatting not deterministic: %q then %q", first, got)
		}
	}
}
