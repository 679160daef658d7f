package common

import (
	"encoding/binary"
	"math"
)

// PutFloat32s writes values as little-endian float32s into buf starting at offset.
//
// Parameters:
//   - buf: destination buffer (must have room for len(values)*4 bytes past offset)
//   - offset: byte offset of the first value
//   - values: the floats to write
//
// Returns:
//   - int: the byte offset just past the last written value
func PutFloat32s(buf []byte, offset int, values ...float32) int {
	for _, v := range values {
		binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
		offset += 4
	}
	return offset
}

// Float32At reads a little-endian float32 from buf at offset.
//
// Parameters:
//   - buf: source buffer
//   - offset: byte offset of the value
//
// Returns:
//   - float32: the decoded value
func Float32At(buf []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

// Uint16sToBytes packs indices as little-endian uint16s for an index buffer upload.
//
// Parameters:
//   - values: the indices to pack
//
// Returns:
//   - []byte: the packed bytes (len(values)*2)
func Uint16sToBytes(values []uint16) []byte {
	buf := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(buf[i*2:], v)
	}
	return buf
}

// Uint32sToBytes packs indices as little-endian uint32s for an index buffer upload.
//
// Parameters:
//   - values: the indices to pack
//
// Returns:
//   - []byte: the packed bytes (len(values)*4)
func Uint32sToBytes(values []uint32) []byte {
	buf := make([]byte, len(values)*4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[i*4:], v)
	}
	return buf
}

// AlignUp rounds n up to the next multiple of align. align must be a power of two.
//
// Parameters:
//   - n: the value to align
//   - align: the alignment (power of two)
//
// Returns:
//   - int: the aligned value
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}
