package tensor

import "fmt"

// ShapeError reports an invalid shape request: more than one wildcard
// dimension, a volume mismatch after wildcard resolution, or a rank
// above 4 after normalization.
type ShapeError struct {
	Op     string
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// LayoutError reports an operation invoked on a tensor whose layout it
// does not support.
type LayoutError struct {
	Op       string
	Required Layout
	Actual   Layout
}

func (e *LayoutError) Error() string {
	return fmt.Sprintf("%s: requires %s layout, tensor is %s", e.Op, e.Required, e.Actual)
}

// StorageError reports an operation invoked on a tensor in the wrong
// storage location, such as ToDevice on a tensor already on device.
type StorageError struct {
	Op     string
	Reason string
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// UnsupportedLayoutError reports a layout tag outside the defined
// enumeration.
type UnsupportedLayoutError struct {
	Op     string
	Layout Layout
}

func (e *UnsupportedLayoutError) Error() string {
	return fmt.Sprintf("%s: unsupported layout %d", e.Op, int(e.Layout))
}
