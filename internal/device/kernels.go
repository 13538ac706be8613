package device

import (
	"fmt"

	"github.com/loom-ml/loom/internal/tile"
)

// Native layout primitives. Each takes the 4D dims the engine
// normalized to and the element size in bytes. Primitives that produce
// a new buffer leave the source to the caller: ownership hand-off is
// the engine's job, not the kernel's.
//
// Physical representation: both layouts store dense row-major bytes
// over the padded shape. The layout tag changes which invariants hold
// (tile alignment) and which kernels accept the buffer, so Tilize and
// Untilize validate their contract without reordering bytes.

// Tilize converts a tile-aligned row-major buffer to tile layout in
// place. The last two dims must be multiples of the tile edge.
func (d *Device) Tilize(buf *Buffer, padded4 [4]int) (*Buffer, error) {
	if padded4[2]%tile.Edge != 0 || padded4[3]%tile.Edge != 0 {
		return nil, fmt.Errorf("tilize: dims %v not tile aligned", padded4)
	}
	return buf, nil
}

// Untilize converts a tile-layout buffer back to row-major in place,
// keeping the padded shape.
func (d *Device) Untilize(buf *Buffer, padded4 [4]int) (*Buffer, error) {
	if padded4[2]%tile.Edge != 0 || padded4[3]%tile.Edge != 0 {
		return nil, fmt.Errorf("untilize: dims %v not tile aligned", padded4)
	}
	return buf, nil
}

// TilizeWithPadding zero-pads a row-major buffer of shape dims4 to
// padded4 and converts it to tile layout. Returns a new buffer in the
// same pool as the source.
func (d *Device) TilizeWithPadding(buf *Buffer, dims4, padded4 [4]int, elemSize int) (*Buffer, error) {
	if padded4[2]%tile.Edge != 0 || padded4[3]%tile.Edge != 0 {
		return nil, fmt.Errorf("tilize_with_padding: padded dims %v not tile aligned", padded4)
	}
	for i := range dims4 {
		if padded4[i] < dims4[i] {
			return nil, fmt.Errorf("tilize_with_padding: padded dims %v smaller than %v", padded4, dims4)
		}
	}
	padded := tile.Pad(buf.Data(), dims4[:], padded4[:], elemSize)
	out := d.Allocate(len(padded), buf.Config())
	copy(out.Data(), padded)
	return out, nil
}

// UntilizeWithUnpadding converts a tile-layout buffer of padded shape
// padded4 to an unpadded row-major buffer of shape dims4. The primitive
// only supports an even unpadded width; the engine falls back to the
// host path otherwise.
func (d *Device) UntilizeWithUnpadding(buf *Buffer, padded4, dims4 [4]int, elemSize int) (*Buffer, error) {
	if dims4[3]%2 != 0 {
		return nil, fmt.Errorf("untilize_with_unpadding: width %d is odd", dims4[3])
	}
	unpadded := tile.Unpad(buf.Data(), padded4[:], dims4[:], elemSize)
	out := d.Allocate(len(unpadded), buf.Config())
	copy(out.Data(), unpadded)
	return out, nil
}

// Reshape4D reinterprets a buffer under new 4D dims. The device pages
// row-major data by width, so the buffer itself needs no rewrite; the
// primitive validates that the reinterpretation is volume preserving.
func (d *Device) Reshape4D(buf *Buffer, from4, to4 [4]int) (*Buffer, error) {
	fromVol := from4[0] * from4[1] * from4[2] * from4[3]
	toVol := to4[0] * to4[1] * to4[2] * to4[3]
	if fromVol != toVol {
		return nil, fmt.Errorf("reshape: %v and %v differ in volume", from4, to4)
	}
	return buf, nil
}

// Move relocates a buffer to a fresh allocation in the same pool,
// preserving content exactly. The source is freed: Move consumes it.
func (d *Device) Move(buf *Buffer) *Buffer {
	out := d.Allocate(len(buf.Data()), buf.Config())
	copy(out.Data(), buf.Data())
	d.Free(buf)
	return out
}
