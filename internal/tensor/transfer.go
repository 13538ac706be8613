package tensor

import (
	"github.com/loom-ml/loom/internal/device"
)

// Storage transfers. Each call consumes its input tensor: the returned
// value is the sole owner of the data from then on.

// ToDevice copies a host tensor's buffer into the pool named by the
// memory config. Fails with a StorageError if the tensor is already on
// device.
func ToDevice(t *Tensor, dev *device.Device, config device.MemoryConfig) (*Tensor, error) {
	if t.buf != nil {
		return nil, &StorageError{Op: "to_device", Reason: "tensor is already on device"}
	}
	buf := dev.Allocate(len(t.host), config)
	copy(buf.Data(), t.host)
	out := newDevice(t.shape, t.dtype, t.layout, dev, buf)
	traceOp("to_device", "device", dev.ID(), "config", config.String(), "bytes", out.ByteSize())
	return out, nil
}

// FromDevice copies a device tensor's buffer back to host memory and
// frees the device allocation. Fails with a StorageError if the tensor
// is already on host.
func FromDevice(t *Tensor) (*Tensor, error) {
	if t.buf == nil {
		return nil, &StorageError{Op: "from_device", Reason: "tensor is already on host"}
	}
	host := make([]byte, len(t.buf.Data()))
	copy(host, t.buf.Data())
	t.dev.Free(t.buf)
	out, err := NewHost(t.shape, t.dtype, t.layout, host)
	if err != nil {
		return nil, err
	}
	traceOp("from_device", "device", t.dev.ID(), "bytes", out.ByteSize())
	return out, nil
}

// deviceConfigOrZero returns the tensor's memory config when it is on
// device and the zero config otherwise.
func deviceConfigOrZero(t *Tensor) device.MemoryConfig {
	if t.buf != nil {
		return t.buf.Config()
	}
	return device.MemoryConfig{}
}

// Deallocate forces immediate release of the tensor's buffer,
// regardless of any other conceptual reference. The Tensor value is
// undefined afterwards; that is enforced by ownership discipline, not
// by runtime tracking. Repeated deallocation of the same device buffer
// is absorbed by the allocator.
func Deallocate(t *Tensor) error {
	if t.buf != nil {
		t.dev.Free(t.buf)
		traceOp("deallocate", "device", t.dev.ID())
		return nil
	}
	t.host = nil
	traceOp("deallocate", "location", "host")
	return nil
}

// Reallocate moves a device tensor's buffer to a fresh allocation in
// the same pool, preserving content, shape, dtype and layout exactly.
// Used to defragment allocator state. Fails with a StorageError for
// host tensors.
func Reallocate(t *Tensor) (*Tensor, error) {
	if t.buf == nil {
		return nil, &StorageError{Op: "reallocate", Reason: "tensor is not on device"}
	}
	buf := t.dev.Move(t.buf)
	out := newDevice(t.shape, t.dtype, t.layout, t.dev, buf)
	traceOp("reallocate", "device", t.dev.ID(), "buffer", buf.ID().String())
	return out, nil
}
