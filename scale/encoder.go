package scale

import (
	"encoding/binary"

	"github.com/wippyai/chaincall/errors"
)

// Encoder writes SCALE-encoded values into an in-memory buffer.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Bytes returns the encoded output accumulated so far.
func (e *Encoder) Bytes() []byte { return e.buf }

// Raw appends bytes verbatim.
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// Byte appends a single byte.
func (e *Encoder) Byte(b byte) *Encoder {
	e.buf = append(e.buf, b)
	return e
}

// Bool appends a boolean as 0x00/0x01.
func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.Byte(0x01)
	}
	return e.Byte(0x00)
}

// U8 appends an unsigned 8-bit integer.
func (e *Encoder) U8(v uint8) *Encoder {
	return e.Byte(v)
}

// U16 appends a little-endian unsigned 16-bit integer.
func (e *Encoder) U16(v uint16) *Encoder {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
	return e
}

// U32 appends a little-endian unsigned 32-bit integer.
func (e *Encoder) U32(v uint32) *Encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return e
}

// U64 appends a little-endian unsigned 64-bit integer.
func (e *Encoder) U64(v uint64) *Encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

// Compact appends a compact-encoded unsigned integer.
func (e *Encoder) Compact(v uint64) *Encoder {
	switch {
	case v < 1<<6:
		return e.Byte(byte(v) << 2)
	case v < 1<<14:
		return e.U16(uint16(v)<<2 | 0b01)
	case v < 1<<30:
		return e.U32(uint32(v)<<2 | 0b10)
	default:
		n := 0
		for tmp := v; tmp > 0; tmp >>= 8 {
			n++
		}
		e.Byte(byte(n-4)<<2 | 0b11)
		for i := 0; i < n; i++ {
			e.Byte(byte(v >> (8 * i)))
		}
		return e
	}
}

// String appends a length-prefixed UTF-8 string.
func (e *Encoder) String(s string) *Encoder {
	e.Compact(uint64(len(s)))
	e.buf = append(e.buf, s...)
	return e
}

// Strings appends a length-prefixed vector of strings.
func (e *Encoder) Strings(ss []string) *Encoder {
	e.Compact(uint64(len(ss)))
	for _, s := range ss {
		e.String(s)
	}
	return e
}

// BytesVec appends a length-prefixed byte vector.
func (e *Encoder) BytesVec(b []byte) *Encoder {
	e.Compact(uint64(len(b)))
	return e.Raw(b)
}

// OptionNone appends an absent Option.
func (e *Encoder) OptionNone() *Encoder {
	return e.Byte(0x00)
}

// OptionSome appends a present Option discriminant; the caller encodes the
// value immediately after.
func (e *Encoder) OptionSome() *Encoder {
	return e.Byte(0x01)
}

// EncodeOptionString encodes an optional string the way the genesis builder
// runtime API expects its preset id argument.
func EncodeOptionString(s *string) []byte {
	e := NewEncoder()
	if s == nil {
		return e.OptionNone().Bytes()
	}
	return e.OptionSome().String(*s).Bytes()
}

// VerifyExhausted returns an error when a decoder stopped short of the end
// of its input, which means the snapshot and this codec disagree.
func VerifyExhausted(d *Decoder) error {
	if d.Remaining() != 0 {
		return errors.InvalidData(errors.PhaseDecode, nil,
			"trailing bytes after decode")
	}
	return nil
}
