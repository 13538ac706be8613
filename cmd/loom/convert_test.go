package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loom-ml/loom/tensor"
)

func TestParseLayout(t *testing.T) {
	layout, err := parseLayout("row-major")
	require.NoError(t, err)
	assert.Equal(t, tensor.RowMajor, layout)

	layout, err = parseLayout("tile")
	require.NoError(t, err)
	assert.Equal(t, tensor.Tile, layout)

	_, err = parseLayout("column-major")
	assert.Error(t, err)
}

func TestConvertDType(t *testing.T) {
	src, err := tensor.FromSlice([]float32{1.5, 2.5, 3.5, 4.5}, []int{2, 2})
	require.NoError(t, err)

	out, err := convertDType(src, "bfloat16")
	require.NoError(t, err)
	assert.Equal(t, tensor.BFloat16, out.DType())

	// Values representable in bfloat16 survive the round trip.
	back, err := convertDType(out, "float32")
	require.NoError(t, err)
	got, dims, err := tensor.ToSlice[float32](back)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, dims)
	assert.Equal(t, []float32{1.5, 2.5, 3.5, 4.5}, got)
}

func TestConvertDTypeUnknown(t *testing.T) {
	src, err := tensor.FromSlice([]float32{1}, []int{1})
	require.NoError(t, err)
	_, err = convertDType(src, "int8")
	assert.Error(t, err)
}
