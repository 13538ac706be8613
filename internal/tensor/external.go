package tensor

import (
	"fmt"
	"unsafe"
)

// Host-array boundary. The external collaborator exchanges dense,
// row-major, contiguous buffers tagged with an element type; on the Go
// side those are plain typed slices.

// FromSlice wraps a host slice as a row-major host tensor. The element
// type determines the dtype; the slice is copied, not aliased.
func FromSlice[T HostType](data []T, dims []int) (*Tensor, error) {
	var dummy T
	return FromSliceAs(data, dims, inferDataType(dummy))
}

// FromSliceAs wraps a host slice as a row-major host tensor with an
// explicit dtype, converting elements when the dtype differs from the
// slice's element type. float32 data may be narrowed to bfloat16 with
// round-to-nearest-even.
func FromSliceAs[T HostType](data []T, dims []int, dtype DataType) (*Tensor, error) {
	shape := NewShape(dims)
	if shape.Volume() != len(data) {
		return nil, &ShapeError{Op: "from_slice", Reason: fmt.Sprintf("shape %v requires %d elements, got %d", dims, shape.Volume(), len(data))}
	}

	var dummy T
	src := inferDataType(dummy)

	buf := make([]byte, len(data)*dtype.Size())
	switch {
	case src == dtype:
		if len(data) > 0 {
			raw := unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*src.Size())
			copy(buf, raw)
		}
	case src == Float32 && dtype == BFloat16:
		out := NewBF16Slice(buf)
		for i, v := range data {
			out.SetFloat32(i, any(v).(float32))
		}
	default:
		return nil, fmt.Errorf("from_slice: cannot convert %s data to %s", src, dtype)
	}

	t, err := NewHost(shape, dtype, RowMajor, buf)
	if err != nil {
		return nil, err
	}
	traceOp("from_slice", "shape", shape.String(), "dtype", dtype.String())
	return t, nil
}

// ToSlice converts a tensor back to a host slice plus its logical
// dimensions. This is the normalizing boundary: a device tensor is
// brought to host and a tiled tensor is converted to row-major first,
// so the call consumes its input. bfloat16 tensors widen to float32.
func ToSlice[T HostType](t *Tensor) ([]T, []int, error) {
	var err error
	if t.OnDevice() {
		t, err = FromDevice(t)
		if err != nil {
			return nil, nil, err
		}
	}
	if t.layout != RowMajor {
		t, _, err = ToLayout(t, RowMajor)
		if err != nil {
			return nil, nil, err
		}
	}

	var dummy T
	want := inferDataType(dummy)
	dims := t.shape.Dims()
	n := t.Volume()

	out := make([]T, n)
	switch {
	case t.dtype == want:
		if n > 0 {
			raw := unsafe.Slice((*byte)(unsafe.Pointer(&out[0])), n*want.Size())
			copy(raw, t.host)
		}
	case t.dtype == BFloat16 && want == Float32:
		src := NewBF16Slice(t.host)
		for i := range out {
			out[i] = any(src.GetFloat32(i)).(T)
		}
	default:
		return nil, nil, fmt.Errorf("to_slice: cannot convert %s tensor to %s data", t.dtype, want)
	}
	traceOp("to_slice", "shape", t.shape.String(), "dtype", t.dtype.String())
	return out, dims, nil
}
