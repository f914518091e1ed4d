package metadata

import (
	"testing"

	ccerrors "github.com/wippyai/chaincall/errors"
)

// testSnapshot assembles a snapshot with a supported Timestamp pallet and a
// Utility pallet whose batch extrinsic embeds the call aggregate.
func testSnapshot() *Snapshot {
	types := append(testTypes(),
		PortableType{ID: 30, Type: Type{
			Path:   []string{"pallet_timestamp", "pallet", "Call"},
			Params: []TypeParam{{Name: "T"}},
			Def: VariantDef{Variants: []Variant{
				{
					Name:   "set",
					Fields: []Field{{Name: "now", Type: 1, TypeName: "T::Moment"}},
					Index:  0,
					Docs:   []string{"Set the current time."},
				},
			}},
		}},
		PortableType{ID: 31, Type: Type{
			Path:   []string{"pallet_utility", "pallet", "Call"},
			Params: []TypeParam{{Name: "T"}},
			Def: VariantDef{Variants: []Variant{
				{
					Name:   "batch",
					Fields: []Field{{Name: "calls", Type: 7, TypeName: "Vec<<T as Config>::RuntimeCall>"}},
					Index:  0,
					Docs:   []string{"Send a batch of dispatch calls."},
				},
				{
					Name:  "trigger_defensive",
					Index: 1,
					Docs:  []string{"Dispatch a falsified error."},
				},
			}},
		}},
	)

	callType30 := uint32(30)
	callType31 := uint32(31)
	return &Snapshot{
		Version:  14,
		Registry: NewRegistry(types),
		Pallets: []PalletMeta{
			{Name: "Utility", Index: 40, CallType: &callType31},
			{Name: "Timestamp", Index: 3, CallType: &callType30},
			{Name: "Aura", Index: 23}, // no dispatchables
		},
	}
}

func TestParsePallets(t *testing.T) {
	pallets, err := ParsePallets(testSnapshot())
	if err != nil {
		t.Fatalf("ParsePallets: %v", err)
	}
	if len(pallets) != 3 {
		t.Fatalf("pallets = %d, want 3", len(pallets))
	}
	// Sorted by name.
	if pallets[0].Name != "Aura" || pallets[1].Name != "Timestamp" || pallets[2].Name != "Utility" {
		t.Fatalf("order: %s, %s, %s", pallets[0].Name, pallets[1].Name, pallets[2].Name)
	}
	if len(pallets[0].Extrinsics) != 0 {
		t.Errorf("Aura should expose no extrinsics")
	}
}

func TestParsePallets_TimestampSetRoundTrip(t *testing.T) {
	pallets, err := ParsePallets(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}
	set, err := FindExtrinsic(pallets, "Timestamp", "set")
	if err != nil {
		t.Fatal(err)
	}
	if !set.IsSupported {
		t.Fatal("Timestamp.set must be supported")
	}
	if set.Docs != "Set the current time." {
		t.Errorf("Docs = %q", set.Docs)
	}
	if len(set.Params) != 1 {
		t.Fatalf("params = %d, want 1", len(set.Params))
	}
	now := set.Params[0]
	if now.Name != "now" || now.TypeName != "Compact<u64>" {
		t.Errorf("param: %+v", now)
	}
	if now.IsOptional || now.IsVariant || len(now.SubParams) != 0 {
		t.Errorf("expected bare leaf: %+v", now)
	}
}

func TestParsePallets_BatchUnsupportedSiblingsIntact(t *testing.T) {
	pallets, err := ParsePallets(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	batch, err := FindExtrinsic(pallets, "Utility", "batch")
	if err != nil {
		t.Fatal(err)
	}
	if batch.IsSupported {
		t.Error("batch embeds the call aggregate and must be unsupported")
	}
	if len(batch.Params) != 0 {
		t.Errorf("unsupported extrinsic must carry no params, got %d", len(batch.Params))
	}
	if batch.Docs != ExtrinsicNotSupportedDocs {
		t.Errorf("Docs = %q, want placeholder", batch.Docs)
	}

	// The sibling extrinsic and the other pallets stay intact.
	sibling, err := FindExtrinsic(pallets, "Utility", "trigger_defensive")
	if err != nil {
		t.Fatal(err)
	}
	if !sibling.IsSupported {
		t.Error("sibling extrinsic must stay supported")
	}
	if _, err := FindExtrinsic(pallets, "Timestamp", "set"); err != nil {
		t.Errorf("Timestamp.set lost: %v", err)
	}
}

func TestParsePallets_MissingCallType(t *testing.T) {
	snap := testSnapshot()
	bogus := uint32(9999)
	snap.Pallets[0].CallType = &bogus

	if _, err := ParsePallets(snap); !ccerrors.IsKind(err, ccerrors.KindUnknownType) {
		t.Fatalf("expected unknown_type for dangling call type id, got %v", err)
	}
}

func TestParsePallets_CallTypeNotVariant(t *testing.T) {
	snap := testSnapshot()
	notVariant := uint32(2) // u32 primitive
	snap.Pallets[1].CallType = &notVariant

	if _, err := ParsePallets(snap); !ccerrors.IsKind(err, ccerrors.KindInvalidData) {
		t.Fatalf("expected invalid_data, got %v", err)
	}
}

func TestFindPallet(t *testing.T) {
	pallets, err := ParsePallets(testSnapshot())
	if err != nil {
		t.Fatal(err)
	}

	p, err := FindPallet(pallets, "Timestamp")
	if err != nil {
		t.Fatal(err)
	}
	if p.Index != 3 {
		t.Errorf("Index = %d, want 3", p.Index)
	}

	if _, err := FindPallet(pallets, "Balances"); !ccerrors.IsKind(err, ccerrors.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
	if _, err := FindExtrinsic(pallets, "Timestamp", "warp"); !ccerrors.IsKind(err, ccerrors.KindNotFound) {
		t.Errorf("expected not_found, got %v", err)
	}
}
