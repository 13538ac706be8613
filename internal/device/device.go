// Package device implements the reference accelerator device: two
// accounted memory pools and the native layout primitives the tensor
// engine dispatches to. All operations are synchronous; the engine
// issues at most one operation per device at a time, and concurrent
// callers must serialize externally per device id.
package device

import "fmt"

// Device is an open accelerator identified by an id. The open/close
// lifecycle is managed by the caller, and a Device must outlive every
// tensor that references it.
type Device struct {
	id     int
	dram   *allocator
	l1     *allocator
	closed bool
}

// Open opens the device with the given id.
func Open(id int) (*Device, error) {
	if id < 0 {
		return nil, fmt.Errorf("device: invalid id %d", id)
	}
	return &Device{
		id:   id,
		dram: newAllocator(DRAM),
		l1:   newAllocator(L1),
	}, nil
}

// Close releases the device. Buffers still live on the device are
// dropped from the accounting.
func (d *Device) Close() error {
	if d.closed {
		return fmt.Errorf("device %d: already closed", d.id)
	}
	d.closed = true
	return nil
}

// ID returns the device id used for addressing.
func (d *Device) ID() int {
	return d.id
}

// String returns a human-readable device description.
func (d *Device) String() string {
	return fmt.Sprintf("device %d", d.id)
}

// Allocate creates a buffer of the given size in the pool named by the
// config.
func (d *Device) Allocate(size int, config MemoryConfig) *Buffer {
	return d.pool(config.BufferType).allocate(size, config)
}

// Free releases a buffer immediately. Safe to call more than once on
// the same buffer.
func (d *Device) Free(buf *Buffer) {
	buf.owner.free(buf)
}

// Stats returns the accounting snapshot for one pool.
func (d *Device) Stats(pool BufferType) PoolStats {
	return d.pool(pool).snapshot()
}

func (d *Device) pool(t BufferType) *allocator {
	if t == L1 {
		return d.l1
	}
	return d.dram
}
