package scale

import (
	"bytes"
	"testing"
)

func TestCompactRoundTrip(t *testing.T) {
	values := []uint64{
		0, 1, 42, 63, // single byte
		64, 255, 511, 16383, // two bytes
		16384, 65535, 1<<30 - 1, // four bytes
		1 << 30, 1 << 32, 1<<40 + 7, 1<<63 + 1, ^uint64(0), // big mode
	}

	for _, v := range values {
		enc := NewEncoder().Compact(v).Bytes()
		d := NewDecoder(enc)
		got, err := d.Compact()
		if err != nil {
			t.Fatalf("Compact(%d): decode error: %v", v, err)
		}
		if got != v {
			t.Errorf("Compact(%d): got %d", v, got)
		}
		if d.Remaining() != 0 {
			t.Errorf("Compact(%d): %d trailing bytes", v, d.Remaining())
		}
	}
}

func TestCompactWireFormat(t *testing.T) {
	tests := []struct {
		value uint64
		wire  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x04}},
		{42, []byte{0xa8}},
		{69, []byte{0x15, 0x01}},
		{16384, []byte{0x02, 0x00, 0x01, 0x00}},
		{1 << 32, []byte{0x07, 0x00, 0x00, 0x00, 0x00, 0x01}},
	}

	for _, tt := range tests {
		got := NewEncoder().Compact(tt.value).Bytes()
		if !bytes.Equal(got, tt.wire) {
			t.Errorf("Compact(%d) = %x, want %x", tt.value, got, tt.wire)
		}
	}
}

func TestCompactRejectsNonCanonical(t *testing.T) {
	tests := []struct {
		name string
		wire []byte
	}{
		{"two-byte mode for small value", []byte{0x05, 0x00}},
		{"four-byte mode for small value", []byte{0x06, 0x00, 0x00, 0x00}},
		{"big mode for small value", []byte{0x03, 0x01, 0x00, 0x00, 0x00}},
		{"big mode wider than u64", []byte{0x27, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}},
		{"truncated", []byte{0x02, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDecoder(tt.wire).Compact(); err == nil {
				t.Errorf("decode %x: expected error", tt.wire)
			}
		})
	}
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "now", "Compact<u64>", "таймстамп", "列"} {
		enc := NewEncoder().String(s).Bytes()
		got, err := NewDecoder(enc).String()
		if err != nil {
			t.Fatalf("String(%q): %v", s, err)
		}
		if got != s {
			t.Errorf("String(%q): got %q", s, got)
		}
	}
}

func TestStringRejectsInvalidUTF8(t *testing.T) {
	enc := NewEncoder().Compact(2).Raw([]byte{0xff, 0xfe}).Bytes()
	if _, err := NewDecoder(enc).String(); err == nil {
		t.Error("expected invalid UTF-8 error")
	}
}

func TestStringsRoundTrip(t *testing.T) {
	docs := []string{"Set the current time.", "", "`O(1)`"}
	enc := NewEncoder().Strings(docs).Bytes()
	got, err := NewDecoder(enc).Strings()
	if err != nil {
		t.Fatalf("Strings: %v", err)
	}
	if len(got) != len(docs) {
		t.Fatalf("Strings: got %d entries, want %d", len(got), len(docs))
	}
	for i := range docs {
		if got[i] != docs[i] {
			t.Errorf("Strings[%d] = %q, want %q", i, got[i], docs[i])
		}
	}
}

func TestLenBoundedByRemaining(t *testing.T) {
	// Claims 1000 elements but carries only 2 bytes after the prefix.
	enc := NewEncoder().Compact(1000).Raw([]byte{1, 2}).Bytes()
	if _, err := NewDecoder(enc).Len(); err == nil {
		t.Error("expected length bound error")
	}
}

func TestFixedWidthRoundTrip(t *testing.T) {
	enc := NewEncoder().
		U8(0xab).
		U16(0xbeef).
		U32(0xdeadbeef).
		U64(0x0123456789abcdef).
		Bool(true).
		Bytes()

	d := NewDecoder(enc)
	if v, err := d.U8(); err != nil || v != 0xab {
		t.Errorf("U8 = %x, %v", v, err)
	}
	if v, err := d.U16(); err != nil || v != 0xbeef {
		t.Errorf("U16 = %x, %v", v, err)
	}
	if v, err := d.U32(); err != nil || v != 0xdeadbeef {
		t.Errorf("U32 = %x, %v", v, err)
	}
	if v, err := d.U64(); err != nil || v != 0x0123456789abcdef {
		t.Errorf("U64 = %x, %v", v, err)
	}
	if v, err := d.Bool(); err != nil || !v {
		t.Errorf("Bool = %v, %v", v, err)
	}
	if err := VerifyExhausted(d); err != nil {
		t.Errorf("VerifyExhausted: %v", err)
	}
}

func TestBoolRejectsJunk(t *testing.T) {
	if _, err := NewDecoder([]byte{0x02}).Bool(); err == nil {
		t.Error("expected invalid bool error")
	}
}

func TestOptionDiscriminant(t *testing.T) {
	preset := "development"
	enc := EncodeOptionString(&preset)
	d := NewDecoder(enc)
	present, err := d.Option()
	if err != nil || !present {
		t.Fatalf("Option = %v, %v", present, err)
	}
	got, err := d.String()
	if err != nil || got != preset {
		t.Fatalf("String = %q, %v", got, err)
	}

	if none := EncodeOptionString(nil); !bytes.Equal(none, []byte{0x00}) {
		t.Errorf("EncodeOptionString(nil) = %x", none)
	}
}

func TestDecoderOffsetTracking(t *testing.T) {
	d := NewDecoder([]byte{0x04, 0xff, 0xff})
	if _, err := d.Compact(); err != nil {
		t.Fatal(err)
	}
	if d.Offset() != 1 {
		t.Errorf("Offset = %d, want 1", d.Offset())
	}
	if d.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", d.Remaining())
	}
}
