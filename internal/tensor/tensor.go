package tensor

import (
	"fmt"
	"unsafe"

	"github.com/loom-ml/loom/internal/device"
)

// Tensor is a multi-dimensional array with a logical/padded shape pair,
// a layout tag and a storage location. The buffer is exclusively owned
// by exactly one Tensor value at a time: transforming operations
// consume their input and return a new Tensor together with a
// Disposition, and the consumed value must not be used again.
type Tensor struct {
	shape  Shape
	dtype  DataType
	layout Layout

	host []byte // host storage; nil when on device
	dev  *device.Device
	buf  *device.Buffer // device storage; nil when on host
}

// NewHost wraps a host byte buffer as a tensor. The buffer must hold
// exactly PaddedVolume elements of the given dtype.
func NewHost(shape Shape, dtype DataType, layout Layout, data []byte) (*Tensor, error) {
	if !layout.Valid() {
		return nil, &UnsupportedLayoutError{Op: "new", Layout: layout}
	}
	if !dtype.Valid() {
		return nil, fmt.Errorf("new: unknown dtype %d", int(dtype))
	}
	want := shape.PaddedVolume() * dtype.Size()
	if len(data) != want {
		return nil, &ShapeError{Op: "new", Reason: fmt.Sprintf("buffer holds %d bytes, shape %s needs %d", len(data), shape, want)}
	}
	return &Tensor{shape: shape, dtype: dtype, layout: layout, host: data}, nil
}

// newDevice wraps a device buffer. Used by the transfer and layout
// engines after a primitive hands a buffer over.
func newDevice(shape Shape, dtype DataType, layout Layout, dev *device.Device, buf *device.Buffer) *Tensor {
	return &Tensor{shape: shape, dtype: dtype, layout: layout, dev: dev, buf: buf}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Layout returns the tensor's layout tag.
func (t *Tensor) Layout() Layout {
	return t.layout
}

// StorageKind returns where the tensor's buffer lives.
func (t *Tensor) StorageKind() StorageKind {
	if t.buf != nil {
		return DeviceStorage
	}
	return HostStorage
}

// OnDevice reports whether the tensor lives in device memory.
func (t *Tensor) OnDevice() bool {
	return t.buf != nil
}

// Device returns the device the tensor lives on, or a StorageError for
// host tensors.
func (t *Tensor) Device() (*device.Device, error) {
	if t.dev == nil {
		return nil, &StorageError{Op: "device", Reason: "tensor is not on device"}
	}
	return t.dev, nil
}

// MemoryConfig returns the device memory config, or a StorageError for
// host tensors.
func (t *Tensor) MemoryConfig() (device.MemoryConfig, error) {
	if t.buf == nil {
		return device.MemoryConfig{}, &StorageError{Op: "memory_config", Reason: "tensor is not on device"}
	}
	return t.buf.Config(), nil
}

// Buffer returns the device allocation, or a StorageError for host
// tensors. Exposed for allocator accounting, not for data access.
func (t *Tensor) Buffer() (*device.Buffer, error) {
	if t.buf == nil {
		return nil, &StorageError{Op: "buffer", Reason: "tensor is not on device"}
	}
	return t.buf, nil
}

// Volume returns the number of logical elements.
func (t *Tensor) Volume() int {
	return t.shape.Volume()
}

// ByteSize returns the physically stored size in bytes.
func (t *Tensor) ByteSize() int {
	return t.shape.PaddedVolume() * t.dtype.Size()
}

// HostData returns the raw host bytes. This is the direct accessor: it
// fails loudly on a device tensor instead of transferring. Use ToSlice
// for the normalizing conversion.
func (t *Tensor) HostData() ([]byte, error) {
	if t.buf != nil {
		return nil, &StorageError{Op: "host_data", Reason: "tensor is on device; call FromDevice first"}
	}
	return t.host, nil
}

// AsFloat32 returns a zero-copy float32 view of a host tensor.
// Fails loudly on dtype or location mismatch.
func (t *Tensor) AsFloat32() ([]float32, error) {
	if err := t.wantHost("as_float32", Float32); err != nil {
		return nil, err
	}
	if len(t.host) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&t.host[0])), t.shape.PaddedVolume()), nil
}

// AsUint32 returns a zero-copy uint32 view of a host tensor.
func (t *Tensor) AsUint32() ([]uint32, error) {
	if err := t.wantHost("as_uint32", Uint32); err != nil {
		return nil, err
	}
	if len(t.host) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&t.host[0])), t.shape.PaddedVolume()), nil
}

// AsUint16 returns a zero-copy uint16 view of a host tensor.
func (t *Tensor) AsUint16() ([]uint16, error) {
	if err := t.wantHost("as_uint16", Uint16); err != nil {
		return nil, err
	}
	if len(t.host) == 0 {
		return nil, nil
	}
	return unsafe.Slice((*uint16)(unsafe.Pointer(&t.host[0])), t.shape.PaddedVolume()), nil
}

// AsBF16 returns a BF16 view of a host tensor.
func (t *Tensor) AsBF16() (BF16Slice, error) {
	if err := t.wantHost("as_bf16", BFloat16); err != nil {
		return BF16Slice{}, err
	}
	return NewBF16Slice(t.host), nil
}

func (t *Tensor) wantHost(op string, dtype DataType) error {
	if t.buf != nil {
		return &StorageError{Op: op, Reason: "tensor is on device; call FromDevice first"}
	}
	if t.dtype != dtype {
		return fmt.Errorf("%s: tensor dtype is %s, not %s", op, t.dtype, dtype)
	}
	return nil
}

// String returns a human-readable description.
func (t *Tensor) String() string {
	loc := "host"
	if t.buf != nil {
		loc = fmt.Sprintf("device %d (%s)", t.dev.ID(), t.buf.Config())
	}
	return fmt.Sprintf("Tensor[%s]%s %s on %s", t.dtype, t.shape, t.layout, loc)
}

// withShape returns a metadata-only reinterpretation sharing the same
// buffer. The caller takes over ownership accounting.
func (t *Tensor) withShape(shape Shape) *Tensor {
	out := *t
	out.shape = shape
	return &out
}

// withLayout returns a metadata-only retag sharing the same buffer.
func (t *Tensor) withLayout(layout Layout) *Tensor {
	out := *t
	out.layout = layout
	return &out
}
