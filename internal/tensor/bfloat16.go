package tensor

import "math"

// BF16 is a 16-bit brain floating point value: 1 sign bit, 8 exponent
// bits, 7 mantissa bits. It keeps the exponent range of float32 at
// reduced precision, so conversions only round the mantissa.
type BF16 uint16

// ToBF16 converts a float32 to BF16 with round-to-nearest-even.
func ToBF16(f float32) BF16 {
	bits := math.Float32bits(f)
	if bits&0x7F800000 == 0x7F800000 && bits&0x007FFFFF != 0 {
		// NaN: truncate so rounding cannot carry into the exponent.
		return BF16(bits>>16 | 0x0040)
	}
	bits += 0x7FFF + (bits>>16)&1
	return BF16(bits >> 16)
}

// Float32 converts the BF16 back to float32 exactly.
func (b BF16) Float32() float32 {
	return math.Float32frombits(uint32(b) << 16)
}

// BF16Slice wraps a little-endian byte buffer as BF16 values.
type BF16Slice struct {
	data []byte
}

// NewBF16Slice creates a BF16 view over a byte buffer.
func NewBF16Slice(data []byte) BF16Slice {
	return BF16Slice{data: data}
}

// Len returns the number of BF16 elements.
func (s BF16Slice) Len() int {
	return len(s.data) / 2
}

// Get returns the BF16 at index i.
func (s BF16Slice) Get(i int) BF16 {
	return BF16(uint16(s.data[i*2]) | uint16(s.data[i*2+1])<<8)
}

// Set stores the BF16 at index i.
func (s BF16Slice) Set(i int, v BF16) {
	s.data[i*2] = byte(v)
	s.data[i*2+1] = byte(v >> 8)
}

// GetFloat32 returns the value at index i widened to float32.
func (s BF16Slice) GetFloat32(i int) float32 {
	return s.Get(i).Float32()
}

// SetFloat32 rounds and stores a float32 at index i.
func (s BF16Slice) SetFloat32(i int, v float32) {
	s.Set(i, ToBF16(v))
}
