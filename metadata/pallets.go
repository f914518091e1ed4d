package metadata

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/chaincall/errors"
)

// ExtrinsicNotSupportedDocs is the fixed placeholder shown for extrinsics
// whose arguments cannot be resolved into a prompt form.
const ExtrinsicNotSupportedDocs = "Extrinsic not supported"

// Pallet is one runtime module with its invocable extrinsics, derived from
// a single snapshot. It carries no identity beyond that snapshot.
type Pallet struct {
	Name       string
	Docs       string
	Index      uint8
	Extrinsics []Extrinsic
}

// Extrinsic is one call variant of a pallet. When IsSupported is false,
// Params is empty and Docs holds ExtrinsicNotSupportedDocs; the form is
// never half-built.
type Extrinsic struct {
	Name        string
	Docs        string
	Params      []Param
	IsSupported bool
}

// ParsePallets resolves every pallet's call variants into the prompt-ready
// model. Pallets resolve concurrently over the shared read-only snapshot.
//
// Resolution errors are extrinsic-local: any of the resolver's error kinds
// (the routine unsupported_extrinsic as well as unknown_type and
// metadata_parsing) marks exactly the affected extrinsic unsupported with
// cleared params, leaving siblings intact. Structural problems — a call
// type id missing from the registry, or a call type that is not a variant —
// still fail the whole parse, because the snapshot itself is broken.
func ParsePallets(snap *Snapshot) ([]Pallet, error) {
	pallets := make([]Pallet, len(snap.Pallets))

	var g errgroup.Group
	for i := range snap.Pallets {
		g.Go(func() error {
			p, err := parsePallet(&snap.Pallets[i], snap.Registry)
			if err != nil {
				return fmt.Errorf("pallet %s: %w", snap.Pallets[i].Name, err)
			}
			pallets[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(pallets, func(i, j int) bool { return pallets[i].Name < pallets[j].Name })
	return pallets, nil
}

func parsePallet(meta *PalletMeta, reg *Registry) (Pallet, error) {
	pallet := Pallet{
		Name:  meta.Name,
		Docs:  strings.Join(meta.Docs, " "),
		Index: meta.Index,
	}
	if meta.CallType == nil {
		return pallet, nil
	}

	callType, ok := reg.Resolve(*meta.CallType)
	if !ok {
		return Pallet{}, errors.New(errors.PhaseDecode, errors.KindUnknownType).
			Path(meta.Name).
			Detail("call type id %d not present in registry", *meta.CallType).
			Build()
	}
	variants, ok := callType.Def.(VariantDef)
	if !ok {
		return Pallet{}, errors.InvalidData(errors.PhaseDecode, []string{meta.Name},
			fmt.Sprintf("call type %d is not a variant", *meta.CallType))
	}

	pallet.Extrinsics = make([]Extrinsic, 0, len(variants.Variants))
	for _, variant := range variants.Variants {
		pallet.Extrinsics = append(pallet.Extrinsics, parseExtrinsic(variant, reg))
	}
	return pallet, nil
}

func parseExtrinsic(variant Variant, reg *Registry) Extrinsic {
	params := make([]Param, 0, len(variant.Fields))
	for _, field := range variant.Fields {
		param, err := FieldToParam(variant.Name, field, reg)
		if err != nil {
			// All-or-nothing: a failed field invalidates the whole form.
			return Extrinsic{
				Name: variant.Name,
				Docs: ExtrinsicNotSupportedDocs,
			}
		}
		params = append(params, param)
	}
	return Extrinsic{
		Name:        variant.Name,
		Docs:        strings.Join(variant.Docs, " "),
		Params:      params,
		IsSupported: true,
	}
}

// FindPallet returns the named pallet from a parsed list.
func FindPallet(pallets []Pallet, name string) (*Pallet, error) {
	for i := range pallets {
		if pallets[i].Name == name {
			return &pallets[i], nil
		}
	}
	return nil, errors.NotFound(errors.PhaseResolve, "pallet", name)
}

// FindExtrinsic returns the named extrinsic of the named pallet.
func FindExtrinsic(pallets []Pallet, palletName, extrinsicName string) (*Extrinsic, error) {
	pallet, err := FindPallet(pallets, palletName)
	if err != nil {
		return nil, err
	}
	for i := range pallet.Extrinsics {
		if pallet.Extrinsics[i].Name == extrinsicName {
			return &pallet.Extrinsics[i], nil
		}
	}
	return nil, errors.NotFound(errors.PhaseResolve, "extrinsic", extrinsicName)
}
