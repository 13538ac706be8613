package tensor

// Reshape reinterprets or rebuilds a tensor under a new logical shape.
// At most one requested dimension may be WildcardDim; it is inferred
// from volume conservation. The input is consumed; the Disposition
// states whether only metadata changed.
func Reshape(t *Tensor, requested []int) (*Tensor, Disposition, error) {
	resolved, err := ResolveWildcard(requested, t.Volume())
	if err != nil {
		return nil, 0, err
	}
	if len(resolved) > 4 {
		return nil, 0, &ShapeError{Op: "reshape", Reason: "tensor cannot exceed 4 dimensions"}
	}
	out, disp, err := reshapeShape(t, NewShape(resolved))
	if err != nil {
		return nil, 0, err
	}
	traceOp("reshape", "shape", out.shape.String(), "disposition", disp.String())
	return out, disp, nil
}

// reshapeShape is the engine behind Reshape and the layout converter's
// shape restatements. The target shape may carry padding.
func reshapeShape(t *Tensor, shape Shape) (*Tensor, Disposition, error) {
	if t.shape.Equal(shape) {
		return t, BufferReinterpreted, nil
	}

	// Contiguous fast path: a fully unpadded row-major buffer can be
	// reinterpreted freely on host. On device the page layout is keyed
	// by the trailing dimension, so that dimension must not change.
	if t.layout == RowMajor && t.shape.PaddingTrivial() {
		if !t.OnDevice() || t.shape.Dim(-1) == shape.Dim(-1) {
			return t.withShape(shape), BufferReinterpreted, nil
		}
	}

	// Tile-aligned fast path: a tiled buffer is addressed in whole
	// tiles, so any tile-aligned padded shape is a pure
	// reinterpretation.
	if t.layout == Tile && shape.TileAligned() {
		return t.withShape(shape), BufferReinterpreted, nil
	}

	// 4D device path: the native reshape primitive handles rank-4 to
	// rank-4 directly. Restricted to trivially padded tensors: the
	// primitive only conserves logical volume, so reinterpreting a
	// padded buffer under an unpadded shape would leave the buffer and
	// shape disagreeing on size.
	if t.OnDevice() && t.shape.PaddingTrivial() && t.shape.Rank() == 4 && shape.Rank() == 4 {
		var from4, to4 [4]int
		copy(from4[:], t.shape.Dims())
		copy(to4[:], shape.Dims())
		if _, err := t.dev.Reshape4D(t.buf, from4, to4); err != nil {
			return nil, 0, err
		}
		return t.withShape(shape), BufferReinterpreted, nil
	}

	// General path: a reshape that crosses padding or page boundaries
	// redistributes elements, so rebuild the buffer through the host.
	return reshapeGeneral(t, shape)
}

// reshapeGeneral round-trips through a dense row-major host buffer,
// performing a true copy, and restores the original layout and
// location.
func reshapeGeneral(t *Tensor, shape Shape) (*Tensor, Disposition, error) {
	origLayout := t.layout
	wasOnDevice := t.OnDevice()
	var origDev = t.dev
	var origConfig = deviceConfigOrZero(t)

	cur := t
	var err error
	if wasOnDevice {
		cur, err = FromDevice(cur)
		if err != nil {
			return nil, 0, err
		}
	}
	cur, _, err = ToLayout(cur, RowMajor)
	if err != nil {
		return nil, 0, err
	}

	// The buffer is now dense logical row-major; the reshape is a
	// fresh copy under the new dimensions.
	data := make([]byte, len(cur.host))
	copy(data, cur.host)
	out, err := NewHost(NewShape(shape.Dims()), cur.dtype, RowMajor, data)
	if err != nil {
		return nil, 0, err
	}

	if origLayout == Tile {
		out, _, err = ToLayout(out, Tile)
		if err != nil {
			return nil, 0, err
		}
	}
	if wasOnDevice {
		out, err = ToDevice(out, origDev, origConfig)
		if err != nil {
			return nil, 0, err
		}
	}
	out, _, err = reshapeShape(out, reconcileShape(out.shape, shape))
	if err != nil {
		return nil, 0, err
	}
	return out, BufferReplaced, nil
}

// reconcileShape keeps the physically produced padding when the
// requested shape carried none.
func reconcileShape(produced, requested Shape) Shape {
	if requested.PaddingTrivial() && !produced.PaddingTrivial() {
		return produced
	}
	return requested
}

// reshapeTo4D left-pads the shape with 1s up to rank 4, the
// normalization required by the 4D device primitives.
func reshapeTo4D(t *Tensor) (*Tensor, Disposition, error) {
	if t.shape.Rank() == 4 {
		return t, BufferReinterpreted, nil
	}
	shape4, err := t.shape.To4D()
	if err != nil {
		return nil, 0, err
	}
	return reshapeShape(t, shape4)
}
