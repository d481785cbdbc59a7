//go:build unit

package types

import (
	"bytes"
	"testing"
)

func TestRegistryBuiltinOrder(t *testing.T) {
	r := NewRegistry()
	if r.Len() != 4 {
		t.Fatalf("registry has %d types, expected 4", r.Len())
	}
	// Dense, stable IDs for the built-ins.
	for id := Type(0); id < 4; id++ {
		if _, ok := r.Lookup(id); !ok {
			t.Errorf("Lookup(%d) failed", id)
		}
	}
	if _, ok := r.Lookup(4); ok {
		t.Error("Lookup(4) unexpectedly succeeded")
	}
	if _, ok := r.Lookup(-1); ok {
		t.Error("Lookup(-1) unexpectedly succeeded")
	}
}

func TestRegisterEnumAssignsDenseIDs(t *testing.T) {
	r := NewRegistry()
	first, err := r.RegisterEnum("A", "B")
	if err != nil {
		t.Fatal(err)
	}
	second, err := r.RegisterEnum("X", "Y", "Z")
	if err != nil {
		t.Fatal(err)
	}
	if first != 4 || second != 5 {
		t.Errorf("enum ids = %d, %d, expected 4, 5", first, second)
	}
}

func TestIntCodecWidths(t *testing.T) {
	r := NewRegistry()
	codec, _ := r.Lookup(Int)

	tests := []struct {
		name  string
		width int
		text  string
		ok    bool
	}{
		{"int8", 1, "-128", true},
		{"int8 overflow", 1, "128", false},
		{"int16", 2, "-32768", true},
		{"int16 overflow", 2, "40000", false},
		{"int32", 4, "2147483647", true},
		{"int32 overflow", 4, "2147483648", false},
		{"garbage", 4, "12x", false},
		{"unsupported width", 3, "1", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			blob := make([]byte, tc.width)
			err := codec.FromText(blob, tc.text)
			if (err == nil) != tc.ok {
				t.Fatalf("FromText(%q) err = %v, expected ok=%v", tc.text, err, tc.ok)
			}
			if !tc.ok {
				return
			}
			text, err := codec.ToText(blob)
			if err != nil {
				t.Fatal(err)
			}
			if text != tc.text {
				t.Errorf("round trip = %q, expected %q", text, tc.text)
			}
		})
	}
}

func TestFloatCodecRoundTrip(t *testing.T) {
	r := NewRegistry()
	codec, _ := r.Lookup(Float)

	for _, width := range []int{4, 8} {
		blob := make([]byte, width)
		if err := codec.FromText(blob, "3.25"); err != nil {
			t.Fatalf("width %d: %v", width, err)
		}
		text, err := codec.ToText(blob)
		if err != nil {
			t.Fatalf("width %d: %v", width, err)
		}
		if text != "3.25" {
			t.Errorf("width %d: round trip = %q", width, text)
		}
	}

	if err := codec.FromText(make([]byte, 2), "1.0"); err == nil {
		t.Error("expected error for unsupported float width")
	}
}

func TestStringCodec(t *testing.T) {
	r := NewRegistry()
	codec, _ := r.Lookup(String)

	blob := make([]byte, 8)
	if err := codec.FromText(blob, "hello"); err != nil {
		t.Fatal(err)
	}
	text, err := codec.ToText(blob)
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello" {
		t.Errorf("round trip = %q", text)
	}

	// The terminating NUL must fit too.
	if err := codec.FromText(make([]byte, 5), "hello"); err == nil {
		t.Error("expected overflow error")
	}
	if err := codec.FromText(make([]byte, 6), "hello"); err != nil {
		t.Errorf("exact fit failed: %v", err)
	}
}

func TestBoolIsFalseTrueEnum(t *testing.T) {
	r := NewRegistry()
	codec, _ := r.Lookup(Bool)

	blob := []byte{0}
	for _, tc := range []struct {
		text string
		idx  byte
	}{{"False", 0}, {"True", 1}} {
		if err := codec.FromText(blob, tc.text); err != nil {
			t.Fatal(err)
		}
		if blob[0] != tc.idx {
			t.Errorf("%s stored as %d", tc.text, blob[0])
		}
		text, _ := codec.ToText(blob)
		if text != tc.text {
			t.Errorf("round trip = %q", text)
		}
	}

	if err := codec.FromText(blob, "true"); err == nil {
		t.Error("bool match is exact, expected error for lowercase")
	}

	fm, ok := codec.(TypeFormatter)
	if !ok {
		t.Fatal("bool codec has no type descriptor")
	}
	if fm.FormatType() != "enum:False,True" {
		t.Errorf("descriptor = %q", fm.FormatType())
	}
}

func TestEnumCodec(t *testing.T) {
	r := NewRegistry()
	id, err := r.RegisterEnum("Slow", "Medium", "Fast")
	if err != nil {
		t.Fatal(err)
	}
	codec, _ := r.Lookup(id)

	blob := []byte{0}
	if err := codec.FromText(blob, "Fast"); err != nil {
		t.Fatal(err)
	}
	if blob[0] != 2 {
		t.Errorf("index = %d, expected 2", blob[0])
	}
	text, err := codec.ToText(blob)
	if err != nil {
		t.Fatal(err)
	}
	if text != "Fast" {
		t.Errorf("text = %q", text)
	}

	if err := codec.FromText(blob, "Turbo"); err == nil {
		t.Error("expected error for unknown name")
	}

	blob[0] = 3
	if _, err := codec.ToText(blob); err == nil {
		t.Error("expected error for out-of-range index")
	}

	fm := codec.(TypeFormatter)
	if fm.FormatType() != "enum:Slow,Medium,Fast" {
		t.Errorf("descriptor = %q", fm.FormatType())
	}
}

func TestBlobAccessors(t *testing.T) {
	blob := make([]byte, 4)
	EncodeInt32(blob, -123456)
	if DecodeInt32(blob) != -123456 {
		t.Error("int32 round trip failed")
	}

	EncodeFloat32(blob, 1.5)
	if DecodeFloat32(blob) != 1.5 {
		t.Error("float32 round trip failed")
	}

	wide := make([]byte, 8)
	EncodeFloat64(wide, -2.25)
	if DecodeFloat64(wide) != -2.25 {
		t.Error("float64 round trip failed")
	}

	str := make([]byte, 8)
	if !EncodeString(str, "abc") {
		t.Fatal("EncodeString failed")
	}
	if DecodeString(str) != "abc" {
		t.Error("string round trip failed")
	}
	if !bytes.Equal(str[3:], make([]byte, 5)) {
		t.Error("EncodeString left tail bytes set")
	}
	if EncodeString(make([]byte, 3), "abc") {
		t.Error("EncodeString accepted value without room for NUL")
	}
}
