// Package chaincall turns a chain's runtime metadata into prompt-ready
// extrinsic forms and reproducible benchmark invocations.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	chaincall/           Root package, documentation only
//	├── scale/           SCALE codec primitives (compact ints, options, vectors)
//	├── metadata/        Metadata decoding (V14/V15) and parameter resolution
//	├── client/          JSON-RPC websocket client for live nodes
//	├── runtime/         Runtime wasm loading and runtime API calls via wazero
//	├── bench/           frame-omni-bencher driver, listing cache, fuzzy search
//	├── config/          TOML configuration file
//	├── errors/          Structured error types with phase and kind
//	└── cmd/chaincall/   CLI with interactive call assembly
//
// # Quick Start
//
// Fetch metadata from a node and resolve an extrinsic's parameters:
//
//	c, err := client.Dial(ctx, "wss://rpc.example.net")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer c.Close()
//
//	snap, err := c.Metadata(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pallets, err := metadata.ParsePallets(snap)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ex, err := metadata.FindExtrinsic(pallets, "Balances", "transfer_allow_death")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, param := range ex.Params {
//	    fmt.Println(param.Name, param.TypeName)
//	}
//
// The same snapshot can be extracted from a local runtime build without a
// node through runtime.Engine.ExtractMetadata, which stubs the host imports
// a Substrate runtime expects and calls its Metadata_metadata export.
//
// # Parameter Model
//
// metadata.Param is a recursive form description. Composites expand into
// their fields, variants carry one sub-param per arm, optionals wrap their
// inner type with a flag. Extrinsics whose arguments reference the outer
// runtime call enum are marked unsupported as a whole rather than
// half-resolved.
//
// # Thread Safety
//
// Snapshots and parsed pallets are immutable after decoding and safe to
// share. client.Client serializes its websocket; bench.Cache is safe for
// concurrent use.
package chaincall
