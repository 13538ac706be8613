// Package tensorfile reads and writes the .loom tensor file format:
// magic bytes, a format version, a JSON header describing dtype, layout
// and shape, alignment padding, and the raw buffer bytes. The format
// guarantees that Load(Save(t)) reproduces dtype, shape, layout and
// content exactly.
package tensorfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/loom-ml/loom/internal/tensor"
)

const (
	// MagicBytes identifies a .loom file.
	MagicBytes = "LOOM"
	// FormatVersion is the current format version.
	FormatVersion = 1
	// HeaderAlignment aligns the data section.
	HeaderAlignment = 64
)

// Header is the JSON metadata block of a .loom file.
type Header struct {
	DType    string            `json:"dtype"`
	Layout   string            `json:"layout"`
	Dims     []int             `json:"dims"`
	Padded   []int             `json:"padded"`
	DataSize int64             `json:"data_size"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Save writes a tensor to path. A device tensor is brought to host
// first (consuming it, like any transfer); the layout and padded shape
// are preserved in the file.
func Save(path string, t *tensor.Tensor) error {
	if t.OnDevice() {
		var err error
		t, err = tensor.FromDevice(t)
		if err != nil {
			return fmt.Errorf("tensorfile: %w", err)
		}
	}
	data, err := t.HostData()
	if err != nil {
		return fmt.Errorf("tensorfile: %w", err)
	}

	header := Header{
		DType:    t.DType().String(),
		Layout:   t.Layout().String(),
		Dims:     t.Shape().Dims(),
		Padded:   t.Shape().Padded(),
		DataSize: int64(len(data)),
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("tensorfile: failed to marshal header: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tensorfile: failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("tensorfile: failed to write magic bytes: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint32(FormatVersion)); err != nil {
		return fmt.Errorf("tensorfile: failed to write version: %w", err)
	}
	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("tensorfile: failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("tensorfile: failed to write header: %w", err)
	}

	pos := int64(4+4+8) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("tensorfile: failed to write padding: %w", err)
		}
	}

	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("tensorfile: failed to write data: %w", err)
	}
	return file.Sync()
}

// Load reads a tensor from path. The result is a host tensor with the
// dtype, layout, shape and content it was saved with.
func Load(path string) (*tensor.Tensor, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tensorfile: failed to open file: %w", err)
	}
	defer file.Close()

	header, dataOffset, err := readHeader(file)
	if err != nil {
		return nil, err
	}

	dtype, ok := tensor.ParseDataType(header.DType)
	if !ok {
		return nil, fmt.Errorf("tensorfile: unknown dtype %q", header.DType)
	}
	layout, ok := parseLayout(header.Layout)
	if !ok {
		return nil, fmt.Errorf("tensorfile: unknown layout %q", header.Layout)
	}
	shape, err := tensor.NewShapeWithPadding(header.Dims, header.Padded)
	if err != nil {
		return nil, fmt.Errorf("tensorfile: invalid shape: %w", err)
	}

	if _, err := file.Seek(dataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("tensorfile: failed to seek to data: %w", err)
	}
	data := make([]byte, header.DataSize)
	if _, err := io.ReadFull(file, data); err != nil {
		return nil, fmt.Errorf("tensorfile: failed to read data: %w", err)
	}

	t, err := tensor.NewHost(shape, dtype, layout, data)
	if err != nil {
		return nil, fmt.Errorf("tensorfile: %w", err)
	}
	return t, nil
}

// Inspect reads only the header of a .loom file.
func Inspect(path string) (Header, error) {
	file, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("tensorfile: failed to open file: %w", err)
	}
	defer file.Close()

	header, _, err := readHeader(file)
	return header, err
}

func readHeader(file *os.File) (Header, int64, error) {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(file, magic); err != nil {
		return Header{}, 0, fmt.Errorf("tensorfile: failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return Header{}, 0, fmt.Errorf("tensorfile: bad magic bytes %q", magic)
	}

	var version uint32
	if err := binary.Read(file, binary.LittleEndian, &version); err != nil {
		return Header{}, 0, fmt.Errorf("tensorfile: failed to read version: %w", err)
	}
	if version != FormatVersion {
		return Header{}, 0, fmt.Errorf("tensorfile: unsupported format version %d", version)
	}

	var headerSize uint64
	if err := binary.Read(file, binary.LittleEndian, &headerSize); err != nil {
		return Header{}, 0, fmt.Errorf("tensorfile: failed to read header size: %w", err)
	}
	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return Header{}, 0, fmt.Errorf("tensorfile: failed to read header: %w", err)
	}

	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return Header{}, 0, fmt.Errorf("tensorfile: failed to parse header: %w", err)
	}

	pos := int64(4+4+8) + int64(headerSize)
	dataOffset := pos + (HeaderAlignment-pos%HeaderAlignment)%HeaderAlignment
	return header, dataOffset, nil
}

func parseLayout(name string) (tensor.Layout, bool) {
	switch name {
	case tensor.RowMajor.String():
		return tensor.RowMajor, true
	case tensor.Tile.String():
		return tensor.Tile, true
	default:
		return 0, false
	}
}
