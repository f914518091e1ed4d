// Package metadata decodes chain metadata snapshots and resolves extrinsic
// arguments into prompt-ready parameter trees.
//
// A Snapshot is decoded once per connection or runtime artifact with
// DecodeSnapshot (format versions 14 and 15). Its Registry is a flat,
// id-indexed collection of type definitions that reference each other by id;
// the registry is never mutated after decoding and may be read concurrently.
//
// ParsePallets walks every pallet's call variants and resolves each declared
// field with FieldToParam into a Param tree: leaves for primitives and
// compact/sequence/array/tuple shapes, nested children for composites, one
// synthetic child per arm for variants, and an optional flag for Option<T>.
// Types that embed the chain's dispatchable-call aggregate (RuntimeCall) are
// refused by name before any descent; the affected extrinsic is marked
// unsupported with its params cleared while its siblings stay intact.
package metadata
