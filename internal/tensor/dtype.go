// Package tensor provides the core tensor types and the layout, reshape
// and storage-transfer engines for the Loom framework.
package tensor

// HostType is a constraint for Go element types that can cross the
// host-array boundary. BFloat16 tensors are exchanged as float32 or as
// raw uint16 bit patterns.
type HostType interface {
	~float32 | ~uint32 | ~uint16
}

// DataType represents runtime type information for tensors.
type DataType int

// Supported data types for tensors.
const (
	BFloat16 DataType = iota
	Float32
	Uint32
	Uint16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Uint32:
		return 4
	case BFloat16, Uint16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case BFloat16:
		return "bfloat16"
	case Float32:
		return "float32"
	case Uint32:
		return "uint32"
	case Uint16:
		return "uint16"
	default:
		return "unknown"
	}
}

// Valid reports whether dt is one of the defined data types.
func (dt DataType) Valid() bool {
	switch dt {
	case BFloat16, Float32, Uint32, Uint16:
		return true
	default:
		return false
	}
}

// ParseDataType maps a name produced by String back to a DataType.
func ParseDataType(name string) (DataType, bool) {
	switch name {
	case "bfloat16":
		return BFloat16, true
	case "float32":
		return Float32, true
	case "uint32":
		return Uint32, true
	case "uint16":
		return Uint16, true
	default:
		return 0, false
	}
}

// inferDataType infers the DataType for a host element type.
// BFloat16 has no native Go representation, so uint16 maps to Uint16;
// bfloat16 tensors are produced through explicit dtype conversion.
func inferDataType[T HostType](dummy T) DataType {
	switch any(dummy).(type) {
	case float32:
		return Float32
	case uint32:
		return Uint32
	case uint16:
		return Uint16
	default:
		panic("unsupported type")
	}
}
