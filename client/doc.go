// Package client talks JSON-RPC 2.0 to a chain node over a websocket.
//
// The client is deliberately small: it dials one connection, serializes
// requests over it, and exposes typed helpers for the handful of methods
// chaincall needs. Metadata is fetched through the Metadata_metadata_at_version
// runtime API when the node supports it, falling back to state_getMetadata
// on older runtimes, and decoded into a metadata.Snapshot.
package client
