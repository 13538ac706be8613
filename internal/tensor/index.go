package tensor

import (
	"fmt"

	"github.com/loom-ml/loom/internal/tile"
)

// Slice selects the half-open range [Start, Stop) of one dimension.
// Stop == EndDim means the full remaining extent.
type Slice struct {
	Start int
	Stop  int
}

// EndDim marks a slice that runs to the end of its dimension.
const EndDim = -1

// All selects an entire dimension.
func All() Slice {
	return Slice{Start: 0, Stop: EndDim}
}

// Range selects [start, stop) of a dimension.
func Range(start, stop int) Slice {
	return Slice{Start: start, Stop: stop}
}

// Index copies the region described by spec into a new, disjoint
// tensor. The input must be in row-major layout; tiled tensors fail
// with a LayoutError. Dimensions beyond len(spec) are taken whole. The
// result keeps the input's dtype and storage location but always owns a
// freshly allocated buffer; the input stays valid and is not consumed.
func Index(t *Tensor, spec []Slice) (*Tensor, error) {
	if t.layout != RowMajor {
		return nil, &LayoutError{Op: "index", Required: RowMajor, Actual: t.layout}
	}
	dims := t.shape.Dims()
	if len(spec) > len(dims) {
		return nil, &ShapeError{Op: "index", Reason: fmt.Sprintf("%d slices for rank %d tensor", len(spec), len(dims))}
	}

	start := make([]int, len(dims))
	stop := make([]int, len(dims))
	for i := range dims {
		s := All()
		if i < len(spec) {
			s = spec[i]
		}
		if s.Stop == EndDim {
			s.Stop = dims[i]
		}
		if s.Start < 0 || s.Stop > dims[i] || s.Start > s.Stop {
			return nil, &ShapeError{Op: "index", Reason: fmt.Sprintf("slice [%d:%d) out of range for dimension %d (size %d)", s.Start, s.Stop, i, dims[i])}
		}
		start[i] = s.Start
		stop[i] = s.Stop
	}

	// Always a host round-trip: the slice copies through the host
	// array representation and the result is re-placed afterwards.
	src := t
	onDevice := t.OnDevice()
	dev := t.dev
	config := deviceConfigOrZero(t)
	if onDevice {
		host := make([]byte, len(t.buf.Data()))
		copy(host, t.buf.Data())
		var err error
		src, err = NewHost(t.shape, t.dtype, t.layout, host)
		if err != nil {
			return nil, err
		}
	}

	outDims := make([]int, len(dims))
	for i := range dims {
		outDims[i] = stop[i] - start[i]
	}
	data := tile.Slice(src.host, dims, start, stop, t.dtype.Size())
	out, err := NewHost(NewShape(outDims), t.dtype, RowMajor, data)
	if err != nil {
		return nil, err
	}

	if onDevice {
		out, err = ToDevice(out, dev, config)
		if err != nil {
			return nil, err
		}
	}
	traceOp("index", "shape", out.shape.String())
	return out, nil
}
