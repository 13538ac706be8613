package tile

import (
	"bytes"
	"testing"
)

func seq(n int) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(i % 251)
	}
	return out
}

func TestPadZeroFills(t *testing.T) {
	// 2x3 buffer padded to 4x4, one byte per element.
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := Pad(src, []int{2, 3}, []int{4, 4}, 1)

	want := []byte{
		1, 2, 3, 0,
		4, 5, 6, 0,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}
	if !bytes.Equal(dst, want) {
		t.Errorf("Pad = %v, want %v", dst, want)
	}
}

func TestUnpadInvertsPad(t *testing.T) {
	dims := []int{2, 3, 5}
	padded := []int{2, 4, 8}
	src := seq(2 * 3 * 5 * 4)

	roundTrip := Unpad(Pad(src, dims, padded, 4), padded, dims, 4)
	if !bytes.Equal(roundTrip, src) {
		t.Error("Unpad(Pad(x)) should reproduce x")
	}
}

func TestPadMultiByteElements(t *testing.T) {
	// 1x2 of 2-byte elements padded to 2x2.
	src := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	dst := Pad(src, []int{1, 2}, []int{2, 2}, 2)

	want := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0, 0, 0, 0}
	if !bytes.Equal(dst, want) {
		t.Errorf("Pad = %v, want %v", dst, want)
	}
}

func TestSliceCopiesRegion(t *testing.T) {
	// 3x4 buffer, slice rows [1:3) and cols [1:3).
	src := []byte{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
	}
	dst := Slice(src, []int{3, 4}, []int{1, 1}, []int{3, 3}, 1)

	want := []byte{5, 6, 9, 10}
	if !bytes.Equal(dst, want) {
		t.Errorf("Slice = %v, want %v", dst, want)
	}
}

func TestSliceFullExtentIsCopy(t *testing.T) {
	src := seq(24)
	dst := Slice(src, []int{2, 3, 4}, []int{0, 0, 0}, []int{2, 3, 4}, 1)

	if !bytes.Equal(dst, src) {
		t.Error("full-extent slice should equal the source")
	}
	dst[0] ^= 0xFF
	if dst[0] == src[0] {
		t.Error("slice must be a disjoint copy")
	}
}

func TestCopyBoxZeroExtent(t *testing.T) {
	src := seq(12)
	dst := make([]byte, 0)

	// A zero-extent box selects nothing; the copy must not touch
	// either buffer.
	CopyBox(dst, []int{0, 4}, []int{0, 0}, src, []int{3, 4}, []int{1, 0}, []int{0, 4}, 1)
	CopyBox(dst, []int{3, 0}, []int{0, 0}, src, []int{3, 4}, []int{0, 1}, []int{3, 0}, 1)
}

func TestSliceEmptyRange(t *testing.T) {
	src := seq(12)
	dst := Slice(src, []int{3, 4}, []int{1, 0}, []int{1, 4}, 1)
	if len(dst) != 0 {
		t.Errorf("empty slice produced %d bytes", len(dst))
	}
}

func TestCopyBoxRank1(t *testing.T) {
	src := []byte{1, 2, 3, 4, 5}
	dst := make([]byte, 3)
	CopyBox(dst, []int{3}, []int{0}, src, []int{5}, []int{1}, []int{3}, 1)

	want := []byte{2, 3, 4}
	if !bytes.Equal(dst, want) {
		t.Errorf("CopyBox = %v, want %v", dst, want)
	}
}
