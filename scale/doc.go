// Package scale implements the SCALE codec primitives needed to decode
// chain metadata snapshots.
//
// Decoder reads little-endian fixed-width integers, booleans, compact
// integers, strings and byte vectors from a byte slice, tracking its offset
// so failures report where the input went bad. Encoder is the mirror image
// and is used to build fixtures and genesis-builder call arguments.
//
// Only the value range representable in a uint64 is supported for compact
// integers; the wider big-integer mode is rejected as invalid data.
package scale
