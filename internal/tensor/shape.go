package tensor

import (
	"fmt"

	"github.com/loom-ml/loom/internal/tile"
)

// TileSize is the edge length of a hardware tile. Tile-layout tensors
// store their last two dimensions padded to multiples of this value.
const TileSize = tile.Edge

// WildcardDim is the sentinel for a single inferred dimension in a
// reshape request.
const WildcardDim = -1

// Shape pairs a tensor's logical dimensions with the padded dimensions
// that are physically stored. padded[i] >= logical[i] for every i; for
// row-major tensors the two sequences are equal.
type Shape struct {
	logical []int
	padded  []int
}

// NewShape creates a shape with no padding (padded == logical).
func NewShape(dims []int) Shape {
	logical := append([]int(nil), dims...)
	return Shape{logical: logical, padded: append([]int(nil), logical...)}
}

// NewShapeWithPadding creates a shape with explicit padded dimensions.
func NewShapeWithPadding(dims, padded []int) (Shape, error) {
	if len(dims) != len(padded) {
		return Shape{}, &ShapeError{Op: "shape", Reason: fmt.Sprintf("logical rank %d != padded rank %d", len(dims), len(padded))}
	}
	for i := range dims {
		if dims[i] < 0 || padded[i] < dims[i] {
			return Shape{}, &ShapeError{Op: "shape", Reason: fmt.Sprintf("padded dim %d (%d) smaller than logical dim (%d)", i, padded[i], dims[i])}
		}
	}
	return Shape{
		logical: append([]int(nil), dims...),
		padded:  append([]int(nil), padded...),
	}, nil
}

// Dims returns a copy of the logical dimensions.
func (s Shape) Dims() []int {
	return append([]int(nil), s.logical...)
}

// Padded returns a copy of the padded dimensions.
func (s Shape) Padded() []int {
	return append([]int(nil), s.padded...)
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s.logical)
}

// Dim returns the logical size of dimension i. Negative i indexes from
// the end (-1 is the fastest-varying dimension).
func (s Shape) Dim(i int) int {
	if i < 0 {
		i += len(s.logical)
	}
	return s.logical[i]
}

// PaddedDim returns the padded size of dimension i, with the same
// negative indexing as Dim.
func (s Shape) PaddedDim(i int) int {
	if i < 0 {
		i += len(s.padded)
	}
	return s.padded[i]
}

// Volume returns the number of logical elements.
func (s Shape) Volume() int {
	return product(s.logical)
}

// PaddedVolume returns the number of physically stored elements.
func (s Shape) PaddedVolume() int {
	return product(s.padded)
}

// PaddingTrivial reports whether padded equals logical in every
// dimension.
func (s Shape) PaddingTrivial() bool {
	for i := range s.logical {
		if s.logical[i] != s.padded[i] {
			return false
		}
	}
	return true
}

// TileAligned reports whether the last two padded dimensions are
// multiples of TileSize. Shapes of rank 1 treat the missing height as 1
// and are never tile aligned.
func (s Shape) TileAligned() bool {
	if len(s.padded) < 2 {
		return false
	}
	h := s.padded[len(s.padded)-2]
	w := s.padded[len(s.padded)-1]
	return h%TileSize == 0 && w%TileSize == 0
}

// Equal reports whether both the logical and padded sequences match.
func (s Shape) Equal(other Shape) bool {
	return intsEqual(s.logical, other.logical) && intsEqual(s.padded, other.padded)
}

// To4D left-pads the logical and padded dimensions with 1s up to rank 4.
// Fails with a ShapeError if the rank exceeds 4.
func (s Shape) To4D() (Shape, error) {
	if len(s.logical) > 4 {
		return Shape{}, &ShapeError{Op: "to4D", Reason: "tensor cannot exceed 4 dimensions"}
	}
	if len(s.logical) == 4 {
		return s, nil
	}
	missing := 4 - len(s.logical)
	logical := make([]int, 4)
	padded := make([]int, 4)
	for i := 0; i < missing; i++ {
		logical[i] = 1
		padded[i] = 1
	}
	copy(logical[missing:], s.logical)
	copy(padded[missing:], s.padded)
	return Shape{logical: logical, padded: padded}, nil
}

// ResolveWildcard resolves a requested dimension list against a target
// volume. At most one entry may be WildcardDim; its value is inferred
// from volume conservation. The resolved dimensions must multiply out
// to exactly volume.
func ResolveWildcard(requested []int, volume int) ([]int, error) {
	wildcard := -1
	known := 1
	for i, d := range requested {
		switch {
		case d == WildcardDim:
			if wildcard >= 0 {
				return nil, &ShapeError{Op: "reshape", Reason: "shape cannot have more than one dimension set to -1"}
			}
			wildcard = i
		case d < 0:
			return nil, &ShapeError{Op: "reshape", Reason: fmt.Sprintf("invalid dimension %d at index %d", d, i)}
		default:
			known *= d
		}
	}

	resolved := append([]int(nil), requested...)
	if wildcard >= 0 {
		if known == 0 || volume%known != 0 {
			return nil, &ShapeError{Op: "reshape", Reason: fmt.Sprintf("cannot infer dimension: volume %d not divisible by %d", volume, known)}
		}
		resolved[wildcard] = volume / known
	} else if known != volume {
		return nil, &ShapeError{Op: "reshape", Reason: fmt.Sprintf("requested shape %v has volume %d, tensor has %d", requested, known, volume)}
	}
	return resolved, nil
}

// String renders the shape, showing padding only when nontrivial.
func (s Shape) String() string {
	if s.PaddingTrivial() {
		return fmt.Sprintf("%v", s.logical)
	}
	return fmt.Sprintf("%v padded %v", s.logical, s.padded)
}

func product(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func intsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// PadToTile returns d rounded up to the next multiple of TileSize.
func PadToTile(d int) int {
	return d + (TileSize-d%TileSize)%TileSize
}
