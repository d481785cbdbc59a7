package types

import (
	"encoding/binary"
	"math"
)

// Blob accessors for caller-owned setting storage. The settings client
// reads and writes storage through codecs; these helpers give callers
// the same little-endian view for preparing initial values and reading
// updated ones.

// EncodeInt32 stores v into a 4-byte blob.
func EncodeInt32(blob []byte, v int32) {
	binary.LittleEndian.PutUint32(blob, uint32(v))
}

// DecodeInt32 reads a 4-byte blob.
func DecodeInt32(blob []byte) int32 {
	return int32(binary.LittleEndian.Uint32(blob))
}

// EncodeInt16 stores v into a 2-byte blob.
func EncodeInt16(blob []byte, v int16) {
	binary.LittleEndian.PutUint16(blob, uint16(v))
}

// DecodeInt16 reads a 2-byte blob.
func DecodeInt16(blob []byte) int16 {
	return int16(binary.LittleEndian.Uint16(blob))
}

// EncodeInt8 stores v into a 1-byte blob.
func EncodeInt8(blob []byte, v int8) {
	blob[0] = byte(v)
}

// DecodeInt8 reads a 1-byte blob.
func DecodeInt8(blob []byte) int8 {
	return int8(blob[0])
}

// EncodeFloat32 stores v into a 4-byte blob.
func EncodeFloat32(blob []byte, v float32) {
	binary.LittleEndian.PutUint32(blob, math.Float32bits(v))
}

// DecodeFloat32 reads a 4-byte blob.
func DecodeFloat32(blob []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(blob))
}

// EncodeFloat64 stores v into an 8-byte blob.
func EncodeFloat64(blob []byte, v float64) {
	binary.LittleEndian.PutUint64(blob, math.Float64bits(v))
}

// DecodeFloat64 reads an 8-byte blob.
func DecodeFloat64(blob []byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(blob))
}

// EncodeBool stores v into a 1-byte blob as a False/True enum index.
func EncodeBool(blob []byte, v bool) {
	if v {
		blob[0] = 1
	} else {
		blob[0] = 0
	}
}

// DecodeBool reads a 1-byte blob.
func DecodeBool(blob []byte) bool {
	return blob[0] != 0
}

// EncodeString stores s into the blob as a NUL-terminated string,
// zeroing the remainder. It reports false if s does not fit.
func EncodeString(blob []byte, s string) bool {
	if len(s)+1 > len(blob) {
		return false
	}
	n := copy(blob, s)
	for i := n; i < len(blob); i++ {
		blob[i] = 0
	}
	return true
}

// DecodeString reads the blob up to its first NUL.
func DecodeString(blob []byte) string {
	for i, b := range blob {
		if b == 0 {
			return string(blob[:i])
		}
	}
	return string(blob)
}
