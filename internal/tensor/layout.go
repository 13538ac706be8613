package tensor

// Layout describes the physical memory layout of a tensor.
type Layout int

// Supported layouts.
const (
	// RowMajor stores elements densely in row-major order with no
	// padding: the padded shape equals the logical shape.
	RowMajor Layout = iota
	// Tile stores the last two dimensions padded to multiples of
	// TileSize for the device's tile-based kernels.
	Tile
)

// String returns a human-readable layout name.
func (l Layout) String() string {
	switch l {
	case RowMajor:
		return "row-major"
	case Tile:
		return "tile"
	default:
		return "unknown"
	}
}

// Valid reports whether l is one of the defined layouts.
func (l Layout) Valid() bool {
	return l == RowMajor || l == Tile
}

// StorageKind describes where a tensor's buffer lives.
type StorageKind int

// Supported storage locations.
const (
	HostStorage StorageKind = iota
	DeviceStorage
)

// String returns a human-readable storage name.
func (k StorageKind) String() string {
	switch k {
	case HostStorage:
		return "host"
	case DeviceStorage:
		return "device"
	default:
		return "unknown"
	}
}

// Disposition states what a transforming operation did with its input's
// buffer. Operations consume their input either way; the disposition
// tells the caller whether the bytes moved.
type Disposition int

const (
	// BufferReinterpreted means the result shares the input's buffer
	// and only metadata changed.
	BufferReinterpreted Disposition = iota
	// BufferReplaced means the result owns a freshly allocated buffer
	// and the input's buffer content was copied or rebuilt.
	BufferReplaced
)

// String returns a human-readable disposition name.
func (d Disposition) String() string {
	switch d {
	case BufferReinterpreted:
		return "reinterpreted"
	case BufferReplaced:
		return "replaced"
	default:
		return "unknown"
	}
}
