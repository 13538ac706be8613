package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenClose(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	assert.Equal(t, 0, dev.ID())
	assert.Equal(t, "device 0", dev.String())

	require.NoError(t, dev.Close())
	assert.Error(t, dev.Close(), "double close should fail")

	_, err = Open(-1)
	assert.Error(t, err)
}

func TestAllocateAccounting(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	a := dev.Allocate(1024, DRAMMemoryConfig)
	b := dev.Allocate(512, DRAMMemoryConfig)
	c := dev.Allocate(256, L1MemoryConfig)

	dram := dev.Stats(DRAM)
	assert.Equal(t, int64(1536), dram.LiveBytes)
	assert.Equal(t, 2, dram.LiveBuffers)
	assert.Equal(t, int64(2), dram.TotalAllocs)

	l1 := dev.Stats(L1)
	assert.Equal(t, int64(256), l1.LiveBytes)
	assert.Equal(t, 1, l1.LiveBuffers)

	dev.Free(a)
	dram = dev.Stats(DRAM)
	assert.Equal(t, int64(512), dram.LiveBytes)
	assert.Equal(t, int64(1536), dram.PeakBytes, "peak should persist after free")
	assert.Equal(t, int64(1), dram.TotalFrees)

	assert.NotEqual(t, b.ID(), c.ID())
}

func TestFreeIdempotent(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	buf := dev.Allocate(128, L1MemoryConfig)
	dev.Free(buf)
	dev.Free(buf)

	stats := dev.Stats(L1)
	assert.Equal(t, int64(0), stats.LiveBytes)
	assert.Equal(t, int64(1), stats.TotalFrees, "second free must not double count")
}

func TestMove(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	buf := dev.Allocate(16, L1MemoryConfig)
	for i := range buf.Data() {
		buf.Data()[i] = byte(i)
	}
	oldID := buf.ID()

	moved := dev.Move(buf)
	assert.NotEqual(t, oldID, moved.ID())
	assert.Equal(t, L1MemoryConfig, moved.Config())
	for i, v := range moved.Data() {
		require.Equal(t, byte(i), v)
	}

	stats := dev.Stats(L1)
	assert.Equal(t, 1, stats.LiveBuffers, "source should be freed by the move")
}

func TestTilizeValidatesAlignment(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	buf := dev.Allocate(64*32*4, DRAMMemoryConfig)
	_, err = dev.Tilize(buf, [4]int{1, 1, 64, 32})
	assert.NoError(t, err)
	_, err = dev.Tilize(buf, [4]int{1, 1, 64, 20})
	assert.Error(t, err)
	_, err = dev.Untilize(buf, [4]int{1, 1, 60, 32})
	assert.Error(t, err)
}

func TestTilizeWithPadding(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	// 1x1x2x3 of uint8-sized elements, padded up to a full tile.
	src := dev.Allocate(6, DRAMMemoryConfig)
	copy(src.Data(), []byte{1, 2, 3, 4, 5, 6})

	out, err := dev.TilizeWithPadding(src, [4]int{1, 1, 2, 3}, [4]int{1, 1, 32, 32}, 1)
	require.NoError(t, err)
	assert.Equal(t, 32*32, out.Size())
	assert.Equal(t, byte(1), out.Data()[0])
	assert.Equal(t, byte(4), out.Data()[32], "second row starts at the padded stride")
	assert.Equal(t, byte(0), out.Data()[3], "padding must be zero filled")

	_, err = dev.TilizeWithPadding(src, [4]int{1, 1, 2, 3}, [4]int{1, 1, 32, 20}, 1)
	assert.Error(t, err, "unaligned padded dims should be rejected")
	_, err = dev.TilizeWithPadding(src, [4]int{1, 1, 2, 3}, [4]int{1, 1, 32, 0}, 1)
	assert.Error(t, err, "padded dims below logical dims should be rejected")
}

func TestUntilizeWithUnpadding(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	src := dev.Allocate(6, DRAMMemoryConfig)
	copy(src.Data(), []byte{1, 2, 3, 4, 5, 6})
	padded, err := dev.TilizeWithPadding(src, [4]int{1, 1, 3, 2}, [4]int{1, 1, 32, 32}, 1)
	require.NoError(t, err)

	out, err := dev.UntilizeWithUnpadding(padded, [4]int{1, 1, 32, 32}, [4]int{1, 1, 3, 2}, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, out.Data())

	_, err = dev.UntilizeWithUnpadding(padded, [4]int{1, 1, 32, 32}, [4]int{1, 1, 3, 3}, 1)
	assert.Error(t, err, "odd width is outside the primitive's contract")
}

func TestReshape4D(t *testing.T) {
	dev, err := Open(0)
	require.NoError(t, err)
	defer dev.Close()

	buf := dev.Allocate(24, DRAMMemoryConfig)
	out, err := dev.Reshape4D(buf, [4]int{1, 2, 3, 4}, [4]int{1, 1, 6, 4})
	require.NoError(t, err)
	assert.Same(t, buf, out)

	_, err = dev.Reshape4D(buf, [4]int{1, 2, 3, 4}, [4]int{1, 1, 5, 5})
	assert.Error(t, err)
}
