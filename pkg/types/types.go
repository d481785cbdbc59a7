// Package types implements the typed-value codecs of the settings
// protocol and the registry that binds them to dense integer type IDs.
//
// Values live in caller-owned byte slices ("blobs"). The blob length
// selects the storage width: integers are 1, 2 or 4 bytes, floats 4 or
// 8 bytes, enums and bools a single index byte, and strings occupy the
// whole slice as a NUL-terminated buffer. Multi-byte widths are stored
// little-endian.
package types

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type identifies a registered value codec. The four built-in types
// always occupy IDs 0..3; enums registered afterwards get the next free
// ID. IDs are dense and never reused for the lifetime of a registry.
type Type int

const (
	Int Type = iota
	Float
	String
	Bool
)

// Codec converts between a value blob and its printable text form.
type Codec interface {
	// ToText renders the blob as printable text.
	ToText(blob []byte) (string, error)
	// FromText parses text into the blob, writing exactly the blob's
	// width on success. The blob is unspecified on error.
	FromText(blob []byte, text string) error
}

// TypeFormatter is implemented by codecs that carry a type descriptor,
// such as "enum:A,B,C". Codecs without one are described by their
// numeric type ID instead.
type TypeFormatter interface {
	FormatType() string
}

// Registry is an append-only list of codecs keyed by dense Type IDs.
// Registration is not synchronized; it is expected to happen during
// client setup, serialized by the owning client. Lookups after that
// are safe from any goroutine because entries are never moved or
// removed.
type Registry struct {
	codecs []Codec
}

// NewRegistry returns a registry pre-populated with the four built-in
// codecs, in the fixed order that pins Int=0, Float=1, String=2, Bool=3.
func NewRegistry() *Registry {
	r := &Registry{}
	r.Register(intCodec{})
	r.Register(floatCodec{})
	r.Register(stringCodec{})
	r.Register(&EnumCodec{names: []string{"False", "True"}})
	return r
}

// Register appends a codec and returns its assigned type ID.
func (r *Registry) Register(c Codec) Type {
	r.codecs = append(r.codecs, c)
	return Type(len(r.codecs) - 1)
}

// RegisterEnum registers a codec mapping a 1-byte index to the given
// names and returns its type ID.
func (r *Registry) RegisterEnum(names ...string) (Type, error) {
	if len(names) == 0 {
		return 0, fmt.Errorf("enum needs at least one name")
	}
	return r.Register(&EnumCodec{names: append([]string(nil), names...)}), nil
}

// Lookup returns the codec bound to the given type ID.
func (r *Registry) Lookup(t Type) (Codec, bool) {
	if t < 0 || int(t) >= len(r.codecs) {
		return nil, false
	}
	return r.codecs[t], true
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	return len(r.codecs)
}

type intCodec struct{}

func (intCodec) ToText(blob []byte) (string, error) {
	switch len(blob) {
	case 1:
		return strconv.FormatInt(int64(int8(blob[0])), 10), nil
	case 2:
		return strconv.FormatInt(int64(int16(binary.LittleEndian.Uint16(blob))), 10), nil
	case 4:
		return strconv.FormatInt(int64(int32(binary.LittleEndian.Uint32(blob))), 10), nil
	default:
		return "", fmt.Errorf("unsupported int width %d", len(blob))
	}
}

func (intCodec) FromText(blob []byte, text string) error {
	switch len(blob) {
	case 1:
		v, err := strconv.ParseInt(text, 10, 8)
		if err != nil {
			return err
		}
		blob[0] = byte(int8(v))
	case 2:
		v, err := strconv.ParseInt(text, 10, 16)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(blob, uint16(int16(v)))
	case 4:
		v, err := strconv.ParseInt(text, 10, 32)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(blob, uint32(int32(v)))
	default:
		return fmt.Errorf("unsupported int width %d", len(blob))
	}
	return nil
}

// floatPrecision is the significant-digit count used when rendering
// float values. It round-trips every float32; a float64 that needs more
// than 12 significant digits comes back rounded.
const floatPrecision = 12

type floatCodec struct{}

func (floatCodec) ToText(blob []byte) (string, error) {
	switch len(blob) {
	case 4:
		v := math.Float32frombits(binary.LittleEndian.Uint32(blob))
		return strconv.FormatFloat(float64(v), 'g', floatPrecision, 32), nil
	case 8:
		v := math.Float64frombits(binary.LittleEndian.Uint64(blob))
		return strconv.FormatFloat(v, 'g', floatPrecision, 64), nil
	default:
		return "", fmt.Errorf("unsupported float width %d", len(blob))
	}
}

func (floatCodec) FromText(blob []byte, text string) error {
	switch len(blob) {
	case 4:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(blob, math.Float32bits(float32(v)))
	case 8:
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(blob, math.Float64bits(v))
	default:
		return fmt.Errorf("unsupported float width %d", len(blob))
	}
	return nil
}

type stringCodec struct{}

func (stringCodec) ToText(blob []byte) (string, error) {
	return DecodeString(blob), nil
}

func (stringCodec) FromText(blob []byte, text string) error {
	if len(text)+1 > len(blob) {
		return fmt.Errorf("string %q does not fit %d-byte storage", text, len(blob))
	}
	n := copy(blob, text)
	for i := n; i < len(blob); i++ {
		blob[i] = 0
	}
	return nil
}

// EnumCodec maps a 1-byte index onto a fixed name table.
type EnumCodec struct {
	names []string
}

func (e *EnumCodec) ToText(blob []byte) (string, error) {
	if len(blob) < 1 {
		return "", fmt.Errorf("enum storage is empty")
	}
	idx := int(blob[0])
	if idx >= len(e.names) {
		return "", fmt.Errorf("enum index %d out of range (%d names)", idx, len(e.names))
	}
	return e.names[idx], nil
}

func (e *EnumCodec) FromText(blob []byte, text string) error {
	if len(blob) < 1 {
		return fmt.Errorf("enum storage is empty")
	}
	for i, name := range e.names {
		if name == text {
			blob[0] = byte(i)
			return nil
		}
	}
	return fmt.Errorf("%q is not a value of this enum", text)
}

// FormatType renders the "enum:A,B,C" type descriptor.
func (e *EnumCodec) FormatType() string {
	return "enum:" + strings.Join(e.names, ",")
}
