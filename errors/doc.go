// Package errors provides structured error types for chaincall.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes the field path that led to the failure
// and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidData).
//		Path("pallets", "Balances").
//		Detail("truncated call variant").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownType("dest", 42)
//	err := errors.UnsupportedExtrinsic("batch")
//
// All errors implement the standard error interface and support errors.Is/As.
// The three resolver kinds (unknown_type, unsupported_extrinsic,
// metadata_parsing) propagate unchanged through recursive resolution and are
// interpreted only by the per-extrinsic loop in the metadata package.
package errors
