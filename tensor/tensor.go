// Copyright 2025 Loom ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for the Loom tensor representation
// and conversion layer.
//
// A Tensor pairs a logical shape (what the caller asked for) with a
// padded shape (what is physically stored), carries a row-major or
// tile layout tag, and lives either in host memory or on a device.
// The package converts between any pair of those states while
// preserving logical content:
//
//	dev, _ := device.Open(0)
//	t, _ := tensor.FromSlice(data, []int{10, 64, 32})
//	t, _ = tensor.ToDevice(t, dev, device.DRAMMemoryConfig)
//	t, _, _ = tensor.ToLayout(t, tensor.Tile)
//
// Transforming operations consume their input and return a new Tensor
// together with a Disposition stating whether the buffer was reused or
// replaced. A consumed Tensor value must not be used again.
package tensor

import (
	"github.com/loom-ml/loom/internal/device"
	"github.com/loom-ml/loom/internal/tensor"
	"github.com/loom-ml/loom/internal/tensorfile"
)

// Type aliases for the public API.

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	BFloat16 DataType = tensor.BFloat16
	Float32  DataType = tensor.Float32
	Uint32   DataType = tensor.Uint32
	Uint16   DataType = tensor.Uint16
)

// Layout describes the physical memory layout of a tensor.
type Layout = tensor.Layout

// Layout constants.
const (
	RowMajor Layout = tensor.RowMajor
	Tile     Layout = tensor.Tile
)

// TileSize is the hardware tile edge: tile-layout tensors pad their
// last two dimensions to multiples of this value.
const TileSize = tensor.TileSize

// WildcardDim is the sentinel for a single inferred reshape dimension.
const WildcardDim = tensor.WildcardDim

// StorageKind describes where a tensor's buffer lives.
type StorageKind = tensor.StorageKind

// Storage constants.
const (
	HostStorage   StorageKind = tensor.HostStorage
	DeviceStorage StorageKind = tensor.DeviceStorage
)

// Disposition states what a transforming operation did with its
// input's buffer.
type Disposition = tensor.Disposition

// Disposition constants.
const (
	BufferReinterpreted Disposition = tensor.BufferReinterpreted
	BufferReplaced      Disposition = tensor.BufferReplaced
)

// Shape pairs logical dimensions with the padded dimensions that are
// physically stored.
type Shape = tensor.Shape

// Tensor is a multi-dimensional array with a shape, dtype, layout and
// storage location.
type Tensor = tensor.Tensor

// Slice selects a half-open range of one dimension for Index.
type Slice = tensor.Slice

// Error types raised by the conversion engine.
type (
	// ShapeError reports an invalid shape request.
	ShapeError = tensor.ShapeError
	// LayoutError reports an operation on an unsupported layout.
	LayoutError = tensor.LayoutError
	// StorageError reports an operation in the wrong storage location.
	StorageError = tensor.StorageError
	// UnsupportedLayoutError reports a layout tag outside the
	// enumeration.
	UnsupportedLayoutError = tensor.UnsupportedLayoutError
)

// Tracer observes public engine operations.
type Tracer = tensor.Tracer

// Shape construction.

// NewShape creates a shape with no padding.
func NewShape(dims []int) Shape {
	return tensor.NewShape(dims)
}

// NewShapeWithPadding creates a shape with explicit padded dimensions.
func NewShapeWithPadding(dims, padded []int) (Shape, error) {
	return tensor.NewShapeWithPadding(dims, padded)
}

// Host-array boundary.

// FromSlice wraps a host slice as a row-major host tensor.
func FromSlice[T tensor.HostType](data []T, dims []int) (*Tensor, error) {
	return tensor.FromSlice(data, dims)
}

// FromSliceAs wraps a host slice with an explicit dtype, converting
// elements when needed (float32 narrows to bfloat16).
func FromSliceAs[T tensor.HostType](data []T, dims []int, dtype DataType) (*Tensor, error) {
	return tensor.FromSliceAs(data, dims, dtype)
}

// ToSlice converts a tensor back to a host slice and its logical
// dimensions, normalizing to host row-major first. The input is
// consumed.
func ToSlice[T tensor.HostType](t *Tensor) ([]T, []int, error) {
	return tensor.ToSlice[T](t)
}

// Conversion engine.

// ToLayout converts a tensor to the target layout, padding or
// unpadding the last two dimensions as required.
func ToLayout(t *Tensor, target Layout) (*Tensor, Disposition, error) {
	return tensor.ToLayout(t, target)
}

// Reshape reinterprets or rebuilds a tensor under a new logical shape.
// One requested dimension may be WildcardDim.
func Reshape(t *Tensor, dims []int) (*Tensor, Disposition, error) {
	return tensor.Reshape(t, dims)
}

// Index copies the region described by spec into a new, disjoint
// tensor. Requires row-major layout.
func Index(t *Tensor, spec []Slice) (*Tensor, error) {
	return tensor.Index(t, spec)
}

// All selects an entire dimension in an Index spec.
func All() Slice {
	return tensor.All()
}

// Range selects [start, stop) of a dimension in an Index spec.
func Range(start, stop int) Slice {
	return tensor.Range(start, stop)
}

// Storage transfers.

// ToDevice copies a host tensor to the device pool named by the
// memory config.
func ToDevice(t *Tensor, dev *device.Device, config device.MemoryConfig) (*Tensor, error) {
	return tensor.ToDevice(t, dev, config)
}

// FromDevice copies a device tensor back to host memory.
func FromDevice(t *Tensor) (*Tensor, error) {
	return tensor.FromDevice(t)
}

// Deallocate forces immediate release of the tensor's buffer. The
// Tensor value is undefined afterwards.
func Deallocate(t *Tensor) error {
	return tensor.Deallocate(t)
}

// Reallocate moves a device tensor's buffer to a fresh allocation in
// the same pool, preserving content exactly.
func Reallocate(t *Tensor) (*Tensor, error) {
	return tensor.Reallocate(t)
}

// Persistence.

// Save writes a tensor to a .loom file.
func Save(path string, t *Tensor) error {
	return tensorfile.Save(path, t)
}

// Load reads a tensor from a .loom file.
func Load(path string) (*Tensor, error) {
	return tensorfile.Load(path)
}

// SetTracer installs the tracer called by every public operation.
func SetTracer(t Tracer) {
	tensor.SetTracer(t)
}
