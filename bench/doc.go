// Package bench orchestrates pallet benchmarking through an external
// frame-omni-bencher binary.
//
// The Runner assembles the bencher's argument list from an explicit Config,
// streams its output, and can ask it for the pallet/extrinsic listing of a
// runtime build. Listings are cached on disk keyed by the build's content
// hash, since producing one means instantiating the runtime. Fuzzy search
// over the listing backs the interactive selection prompts.
package bench
