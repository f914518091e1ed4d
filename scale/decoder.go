package scale

import (
	"encoding/binary"
	"unicode/utf8"

	"github.com/wippyai/chaincall/errors"
)

// Decoder reads SCALE-encoded values from a byte slice.
// The zero value is not usable; construct with NewDecoder.
type Decoder struct {
	data []byte
	off  int
}

// NewDecoder returns a decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Offset returns the number of bytes consumed so far.
func (d *Decoder) Offset() int { return d.off }

// Remaining returns the number of bytes left to consume.
func (d *Decoder) Remaining() int { return len(d.data) - d.off }

func (d *Decoder) errf(format string, args ...any) *errors.Error {
	return errors.New(errors.PhaseDecode, errors.KindInvalidData).
		Detail(format, args...).
		Build()
}

// Byte consumes a single byte.
func (d *Decoder) Byte() (byte, error) {
	if d.off >= len(d.data) {
		return 0, d.errf("unexpected end of input at offset %d", d.off)
	}
	b := d.data[d.off]
	d.off++
	return b, nil
}

// Bytes consumes exactly n bytes.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	if n < 0 || d.off+n > len(d.data) {
		return nil, d.errf("need %d bytes at offset %d, have %d", n, d.off, len(d.data)-d.off)
	}
	b := d.data[d.off : d.off+n]
	d.off += n
	return b, nil
}

// Bool consumes a boolean encoded as a single 0x00/0x01 byte.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.Byte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0x00:
		return false, nil
	case 0x01:
		return true, nil
	default:
		return false, d.errf("invalid bool byte 0x%02x at offset %d", b, d.off-1)
	}
}

// U8 consumes an unsigned 8-bit integer.
func (d *Decoder) U8() (uint8, error) {
	return d.Byte()
}

// U16 consumes a little-endian unsigned 16-bit integer.
func (d *Decoder) U16() (uint16, error) {
	b, err := d.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// U32 consumes a little-endian unsigned 32-bit integer.
func (d *Decoder) U32() (uint32, error) {
	b, err := d.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// U64 consumes a little-endian unsigned 64-bit integer.
func (d *Decoder) U64() (uint64, error) {
	b, err := d.Bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// Compact consumes a compact-encoded unsigned integer. The big-integer mode
// is accepted only while the value still fits in a uint64.
func (d *Decoder) Compact() (uint64, error) {
	first, err := d.Byte()
	if err != nil {
		return 0, err
	}
	switch first & 0b11 {
	case 0b00:
		return uint64(first >> 2), nil
	case 0b01:
		second, err := d.Byte()
		if err != nil {
			return 0, err
		}
		v := (uint64(first) | uint64(second)<<8) >> 2
		if v < 1<<6 {
			return 0, d.errf("non-canonical two-byte compact %d at offset %d", v, d.off-2)
		}
		return v, nil
	case 0b10:
		rest, err := d.Bytes(3)
		if err != nil {
			return 0, err
		}
		v := (uint64(first) | uint64(rest[0])<<8 | uint64(rest[1])<<16 | uint64(rest[2])<<24) >> 2
		if v < 1<<14 {
			return 0, d.errf("non-canonical four-byte compact %d at offset %d", v, d.off-4)
		}
		return v, nil
	default:
		n := int(first>>2) + 4
		if n > 8 {
			return 0, d.errf("compact of %d bytes exceeds uint64 range at offset %d", n, d.off-1)
		}
		raw, err := d.Bytes(n)
		if err != nil {
			return 0, err
		}
		var v uint64
		for i := n - 1; i >= 0; i-- {
			v = v<<8 | uint64(raw[i])
		}
		if v < 1<<30 {
			return 0, d.errf("non-canonical big-mode compact %d at offset %d", v, d.off-n-1)
		}
		return v, nil
	}
}

// Len consumes a compact integer used as a collection length, bounded by the
// remaining input so corrupt prefixes fail fast instead of over-allocating.
func (d *Decoder) Len() (int, error) {
	n, err := d.Compact()
	if err != nil {
		return 0, err
	}
	if n > uint64(d.Remaining()) {
		return 0, d.errf("length %d exceeds %d remaining bytes at offset %d", n, d.Remaining(), d.off)
	}
	return int(n), nil
}

// String consumes a length-prefixed UTF-8 string.
func (d *Decoder) String() (string, error) {
	n, err := d.Len()
	if err != nil {
		return "", err
	}
	b, err := d.Bytes(n)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", d.errf("invalid UTF-8 string at offset %d", d.off-n)
	}
	return string(b), nil
}

// Strings consumes a length-prefixed vector of strings.
func (d *Decoder) Strings() ([]string, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		s, err := d.String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// BytesVec consumes a length-prefixed byte vector.
func (d *Decoder) BytesVec() ([]byte, error) {
	n, err := d.Len()
	if err != nil {
		return nil, err
	}
	return d.Bytes(n)
}

// Option consumes an Option discriminant byte and reports whether a value
// follows.
func (d *Decoder) Option() (bool, error) {
	return d.Bool()
}
