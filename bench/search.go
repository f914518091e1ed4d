package bench

import (
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Listing maps pallet names to their benchmarkable extrinsics.
type Listing map[string][]string

// SearchPallets fuzzy-matches pallets against a comma-separated input.
// Empty input returns up to limit pallets in sorted order.
func SearchPallets(listing Listing, input string, limit int) []string {
	pallets := make([]string, 0, len(listing))
	for name := range listing {
		pallets = append(pallets, name)
	}
	sort.Strings(pallets)
	return searchNames(pallets, input, limit)
}

// SearchExtrinsics fuzzy-matches extrinsics of the given pallets against a
// comma-separated input.
func SearchExtrinsics(listing Listing, pallets []string, input string, limit int) []string {
	var extrinsics []string
	for _, pallet := range pallets {
		extrinsics = append(extrinsics, listing[pallet]...)
	}
	sort.Strings(extrinsics)
	return searchNames(extrinsics, input, limit)
}

func searchNames(names []string, input string, limit int) []string {
	if input == "" {
		if len(names) > limit {
			names = names[:limit]
		}
		return dedup(names)
	}

	var out []string
	for _, query := range strings.Split(input, ",") {
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		matches := fuzzy.Find(query, names)
		if len(matches) > limit {
			matches = matches[:limit]
		}
		for _, m := range matches {
			out = append(out, m.Str)
		}
	}
	return dedup(out)
}

func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := names[:0]
	for _, n := range names {
		if seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
