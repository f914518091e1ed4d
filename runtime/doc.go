// Package runtime works with chain runtime wasm builds directly, without a
// node in between.
//
// A runtime build exports its APIs as wasm functions that take an input
// pointer/length pair and return the output pointer and length packed into
// one u64. The Engine compiles a build with wazero, satisfies its host
// imports with generated stub modules, and exposes the calls chaincall
// needs: metadata extraction and genesis preset queries. Anything that
// would actually need host functionality (storage, crypto) is out of reach
// of the stubs and not attempted.
package runtime
