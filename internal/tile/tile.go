// Package tile implements the raw-buffer padding primitives shared by
// the host conversion paths and the reference device kernels. Buffers
// are dense row-major byte slices; shapes travel alongside as plain
// dimension lists.
package tile

// Edge is the tile edge length. Tile-layout buffers pad their last two
// dimensions to multiples of this value.
const Edge = 32

// CopyBox copies a box-shaped region between two dense row-major
// buffers. dstDims and srcDims describe the full buffers, dstOff and
// srcOff the origin of the region in each, and box its extent. All
// slices must have the same length; the innermost dimension is copied
// row by row.
func CopyBox(dst []byte, dstDims, dstOff []int, src []byte, srcDims, srcOff []int, box []int, elemSize int) {
	rank := len(box)
	if rank == 0 {
		copy(dst[:elemSize], src[:elemSize])
		return
	}
	for _, b := range box {
		if b == 0 {
			return
		}
	}

	dstStrides := strides(dstDims)
	srcStrides := strides(srcDims)
	rowBytes := box[rank-1] * elemSize

	// Odometer over every dimension except the innermost.
	idx := make([]int, rank-1)
	for {
		dstAt := dstOff[rank-1] * dstStrides[rank-1]
		srcAt := srcOff[rank-1] * srcStrides[rank-1]
		for d := 0; d < rank-1; d++ {
			dstAt += (dstOff[d] + idx[d]) * dstStrides[d]
			srcAt += (srcOff[d] + idx[d]) * srcStrides[d]
		}
		dstAt *= elemSize
		srcAt *= elemSize
		copy(dst[dstAt:dstAt+rowBytes], src[srcAt:srcAt+rowBytes])

		d := rank - 2
		for ; d >= 0; d-- {
			idx[d]++
			if idx[d] < box[d] {
				break
			}
			idx[d] = 0
		}
		if d < 0 {
			return
		}
	}
}

// Pad copies a row-major buffer of shape dims into a zero-filled buffer
// of shape padded, leaving the trailing padding region zero.
// padded[i] >= dims[i] must hold for every i.
func Pad(src []byte, dims, padded []int, elemSize int) []byte {
	dst := make([]byte, volume(padded)*elemSize)
	CopyBox(dst, padded, zeros(len(dims)), src, dims, zeros(len(dims)), dims, elemSize)
	return dst
}

// Unpad strips the padding region from a row-major buffer of shape
// padded, keeping the leading dims[i] elements of every dimension.
func Unpad(src []byte, padded, dims []int, elemSize int) []byte {
	dst := make([]byte, volume(dims)*elemSize)
	CopyBox(dst, dims, zeros(len(dims)), src, padded, zeros(len(dims)), dims, elemSize)
	return dst
}

// Slice copies the region [start, stop) of a row-major buffer of shape
// dims into a new dense buffer of shape stop-start.
func Slice(src []byte, dims, start, stop []int, elemSize int) []byte {
	box := make([]int, len(dims))
	for i := range dims {
		box[i] = stop[i] - start[i]
	}
	dst := make([]byte, volume(box)*elemSize)
	CopyBox(dst, box, zeros(len(dims)), src, dims, start, box, elemSize)
	return dst
}

func strides(dims []int) []int {
	s := make([]int, len(dims))
	if len(dims) == 0 {
		return s
	}
	s[len(dims)-1] = 1
	for i := len(dims) - 2; i >= 0; i-- {
		s[i] = s[i+1] * dims[i+1]
	}
	return s
}

func volume(dims []int) int {
	n := 1
	for _, d := range dims {
		n *= d
	}
	return n
}

func zeros(n int) []int {
	return make([]int, n)
}
