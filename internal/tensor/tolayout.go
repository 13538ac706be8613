package tensor

import (
	"github.com/loom-ml/loom/internal/tile"
)

// Layout conversion. The decision state is the pair (does the layout
// tag change, does the padding change) plus the storage location; the
// transition table below maps each reachable state to its strategy.

// padChange classifies the padding work a conversion needs.
type padChange int

const (
	padNone       padChange = iota // only the layout tag changes
	padToTile                      // pad last two dims up to tile multiples
	padToRowMajor                  // strip padding from every dim
)

type convKey struct {
	pad      padChange
	location StorageKind
}

type convStrategy func(t *Tensor, target Layout) (*Tensor, Disposition, error)

// conversionTable maps each reachable conversion state to its
// strategy. Keys with padNone are only consulted when the layout tag
// changes. Populated in init: the strategies call back into ToLayout,
// so a literal initializer would form an initialization cycle.
var conversionTable = make(map[convKey]convStrategy)

func init() {
	conversionTable[convKey{padNone, DeviceStorage}] = convertTagDevice
	conversionTable[convKey{padNone, HostStorage}] = convertTagHost
	conversionTable[convKey{padToTile, DeviceStorage}] = convertPadToTile
	conversionTable[convKey{padToTile, HostStorage}] = convertPadToTile
	conversionTable[convKey{padToRowMajor, DeviceStorage}] = convertUnpadDevice
	conversionTable[convKey{padToRowMajor, HostStorage}] = convertUnpadHost
}

// needsPaddingChange reports whether converting shape to the target
// layout requires padding work on the last two dimensions.
func needsPaddingChange(target Layout, shape Shape) bool {
	n := shape.Rank()
	lo := n - 2
	if lo < 0 {
		lo = 0
	}
	logical := shape.Dims()[lo:]
	padded := shape.Padded()[lo:]

	switch target {
	case RowMajor:
		return !intsEqual(logical, padded)
	case Tile:
		if !intsEqual(logical, padded) {
			return false
		}
		if len(logical) < 2 {
			return true
		}
		return logical[0]%TileSize != 0 || logical[1]%TileSize != 0
	default:
		return false
	}
}

// ToLayout converts a tensor to the target layout. Requesting RowMajor
// strips the padding from the last two dimensions; requesting Tile pads
// them up to multiples of TileSize. The input is consumed; the
// Disposition states whether the returned tensor still uses its buffer.
func ToLayout(t *Tensor, target Layout) (*Tensor, Disposition, error) {
	if !target.Valid() {
		return nil, 0, &UnsupportedLayoutError{Op: "to_layout", Layout: target}
	}

	pad := padNone
	if needsPaddingChange(target, t.shape) {
		if target == Tile {
			pad = padToTile
		} else {
			pad = padToRowMajor
		}
	}
	layoutChange := t.layout != target

	if pad == padNone && !layoutChange {
		return t, BufferReinterpreted, nil
	}

	strat := conversionTable[convKey{pad, t.StorageKind()}]
	out, disp, err := strat(t, target)
	if err != nil {
		return nil, 0, err
	}
	traceOp("to_layout", "target", target.String(), "shape", out.shape.String(), "disposition", disp.String())
	return out, disp, nil
}

// convertTagDevice handles a pure layout change on device with the
// native in-place tilize/untilize primitives, keeping the memory
// config.
func convertTagDevice(t *Tensor, target Layout) (*Tensor, Disposition, error) {
	shape4, err := t.shape.To4D()
	if err != nil {
		return nil, 0, err
	}
	var padded4 [4]int
	copy(padded4[:], shape4.Padded())

	var err2 error
	switch target {
	case RowMajor:
		_, err2 = t.dev.Untilize(t.buf, padded4)
	case Tile:
		_, err2 = t.dev.Tilize(t.buf, padded4)
	}
	if err2 != nil {
		return nil, 0, err2
	}
	return t.withLayout(target), BufferReinterpreted, nil
}

// convertTagHost handles a pure layout change on host. With trivial or
// tile-aligned padding the physical bytes are identical in both
// layouts, so only the tag changes.
func convertTagHost(t *Tensor, target Layout) (*Tensor, Disposition, error) {
	return t.withLayout(target), BufferReinterpreted, nil
}

// convertPadToTile pads the last two dimensions up to tile multiples
// and tags the result Tile. Works on host buffers directly and through
// the tilize-with-padding primitive on device.
func convertPadToTile(t *Tensor, _ Layout) (*Tensor, Disposition, error) {
	dims := t.shape.Dims()

	height := 1
	width := dims[len(dims)-1]
	var batch []int
	if len(dims) > 1 {
		height = dims[len(dims)-2]
		batch = dims[:len(dims)-2]
	}
	paddedHeight := PadToTile(height)
	paddedWidth := PadToTile(width)

	t4, _, err := reshapeTo4D(t)
	if err != nil {
		return nil, 0, err
	}

	var dims4, padded4 [4]int
	copy(dims4[:], t4.shape.Dims())
	copy(padded4[:], t4.shape.Dims())
	padded4[2] = paddedHeight
	padded4[3] = paddedWidth

	var out *Tensor
	if t4.OnDevice() {
		buf, err := t4.dev.TilizeWithPadding(t4.buf, dims4, padded4, t4.dtype.Size())
		if err != nil {
			return nil, 0, err
		}
		t4.dev.Free(t4.buf)
		shape4, err := NewShapeWithPadding(dims4[:], padded4[:])
		if err != nil {
			return nil, 0, err
		}
		out = newDevice(shape4, t4.dtype, Tile, t4.dev, buf)
	} else {
		data := tile.Pad(t4.host, dims4[:], padded4[:], t4.dtype.Size())
		shape4, err := NewShapeWithPadding(dims4[:], padded4[:])
		if err != nil {
			return nil, 0, err
		}
		out, err = NewHost(shape4, t4.dtype, Tile, data)
		if err != nil {
			return nil, 0, err
		}
	}

	final, err := NewShapeWithPadding(
		append(append([]int(nil), batch...), height, width),
		append(append([]int(nil), batch...), paddedHeight, paddedWidth),
	)
	if err != nil {
		return nil, 0, err
	}
	out, _, err = reshapeShape(out, final)
	if err != nil {
		return nil, 0, err
	}
	return out, BufferReplaced, nil
}

// convertUnpadDevice strips padding on device. The native
// untilize-with-unpadding primitive only accepts an even unpadded
// width; other tensors round-trip through the host and come back to the
// same device and memory config.
func convertUnpadDevice(t *Tensor, target Layout) (*Tensor, Disposition, error) {
	intended := NewShape(t.shape.Dims())
	width := t.shape.Dim(-1)

	if t.layout == Tile && width%2 == 0 {
		t4, _, err := reshapeTo4D(t)
		if err != nil {
			return nil, 0, err
		}
		var padded4, dims4 [4]int
		copy(padded4[:], t4.shape.Padded())
		copy(dims4[:], t4.shape.Dims())

		buf, err := t4.dev.UntilizeWithUnpadding(t4.buf, padded4, dims4, t4.dtype.Size())
		if err != nil {
			return nil, 0, err
		}
		t4.dev.Free(t4.buf)
		out := newDevice(NewShape(dims4[:]), t4.dtype, RowMajor, t4.dev, buf)
		out, _, err = reshapeShape(out, intended)
		if err != nil {
			return nil, 0, err
		}
		return out, BufferReplaced, nil
	}

	dev := t.dev
	config := t.buf.Config()
	host, err := FromDevice(t)
	if err != nil {
		return nil, 0, err
	}
	out, _, err := convertUnpadHostImpl(host, target)
	if err != nil {
		return nil, 0, err
	}
	out, err = ToDevice(out, dev, config)
	if err != nil {
		return nil, 0, err
	}
	return out, BufferReplaced, nil
}

// convertUnpadHost strips padding on host.
func convertUnpadHost(t *Tensor, target Layout) (*Tensor, Disposition, error) {
	return convertUnpadHostImpl(t, target)
}

func convertUnpadHostImpl(t *Tensor, _ Layout) (*Tensor, Disposition, error) {
	intended := NewShape(t.shape.Dims())

	t4, _, err := reshapeTo4D(t)
	if err != nil {
		return nil, 0, err
	}
	data := tile.Unpad(t4.host, t4.shape.Padded(), t4.shape.Dims(), t4.dtype.Size())
	out, err := NewHost(NewShape(t4.shape.Dims()), t4.dtype, RowMajor, data)
	if err != nil {
		return nil, 0, err
	}
	out, _, err = reshapeShape(out, intended)
	if err != nil {
		return nil, 0, err
	}
	return out, BufferReplaced, nil
}
