package tensor

import (
	"errors"
	"testing"

	"github.com/loom-ml/loom/internal/device"
)

func TestNeedsPaddingChange(t *testing.T) {
	padded10x20, _ := NewShapeWithPadding([]int{10, 20}, []int{32, 32})
	cases := []struct {
		name   string
		target Layout
		shape  Shape
		want   bool
	}{
		{"row-major unpadded", RowMajor, NewShape([]int{10, 20}), false},
		{"row-major padded", RowMajor, padded10x20, true},
		{"tile unaligned", Tile, NewShape([]int{10, 20}), true},
		{"tile aligned", Tile, NewShape([]int{64, 32}), false},
		{"tile already padded", Tile, padded10x20, false},
		{"tile rank 1", Tile, NewShape([]int{7}), true},
	}
	for _, tc := range cases {
		if got := needsPaddingChange(tc.target, tc.shape); got != tc.want {
			t.Errorf("%s: needsPaddingChange = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestConversionTableComplete(t *testing.T) {
	for _, pad := range []padChange{padNone, padToTile, padToRowMajor} {
		for _, loc := range []StorageKind{HostStorage, DeviceStorage} {
			if conversionTable[convKey{pad, loc}] == nil {
				t.Errorf("no strategy for (%d, %s)", pad, loc)
			}
		}
	}
}

func TestToLayoutNoOp(t *testing.T) {
	ts := hostTensor(t, []int{64, 32})
	out, disp, err := ToLayout(ts, RowMajor)
	if err != nil {
		t.Fatalf("ToLayout failed: %v", err)
	}
	if out != ts || disp != BufferReinterpreted {
		t.Error("converting to the current layout should be a no-op")
	}
}

func TestToLayoutUnsupportedTarget(t *testing.T) {
	ts := hostTensor(t, []int{2, 2})
	_, _, err := ToLayout(ts, Layout(42))
	var layoutErr *UnsupportedLayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("ToLayout(42) = %v, want UnsupportedLayoutError", err)
	}
}

func TestToLayoutHostTilePadsToTileMultiples(t *testing.T) {
	ts := hostTensor(t, []int{10, 64, 20})
	out, disp, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) failed: %v", err)
	}
	if disp != BufferReplaced {
		t.Errorf("disposition = %v, want replaced", disp)
	}
	if out.Layout() != Tile {
		t.Errorf("layout = %v, want tile", out.Layout())
	}
	if !intsEqual(out.Shape().Dims(), []int{10, 64, 20}) {
		t.Errorf("logical dims = %v, want [10 64 20]", out.Shape().Dims())
	}
	// Padded last two dims are the smallest multiples of 32 >= 64 and 20.
	if !intsEqual(out.Shape().Padded(), []int{10, 64, 32}) {
		t.Errorf("padded dims = %v, want [10 64 32]", out.Shape().Padded())
	}
}

func TestToLayoutHostRoundTripPreservesContent(t *testing.T) {
	data := make([]float32, 10*64*20)
	for i := range data {
		data[i] = float32(i)*0.25 - 100
	}
	ts, err := FromSlice(data, []int{10, 64, 20})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	tiled, _, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) failed: %v", err)
	}
	back, disp, err := ToLayout(tiled, RowMajor)
	if err != nil {
		t.Fatalf("ToLayout(RowMajor) failed: %v", err)
	}
	if disp != BufferReplaced {
		t.Errorf("unpad disposition = %v, want replaced", disp)
	}
	if !back.Shape().Equal(NewShape([]int{10, 64, 20})) {
		t.Errorf("shape after round trip = %v", back.Shape())
	}

	got, _, err := ToSlice[float32](back)
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("element %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestToLayoutAlignedHostIsTagOnly(t *testing.T) {
	ts := hostTensor(t, []int{64, 32})
	out, disp, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout failed: %v", err)
	}
	if disp != BufferReinterpreted {
		t.Errorf("tile-aligned host conversion disposition = %v, want reinterpreted", disp)
	}
	if out.Layout() != Tile {
		t.Errorf("layout = %v", out.Layout())
	}
	if !out.Shape().PaddingTrivial() {
		t.Errorf("padding should stay trivial, got %v", out.Shape())
	}
}

func TestToLayoutRankOneBecomesRankTwo(t *testing.T) {
	ts := hostTensor(t, []int{20})
	out, _, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout failed: %v", err)
	}
	if !intsEqual(out.Shape().Dims(), []int{1, 20}) {
		t.Errorf("logical dims = %v, want [1 20]", out.Shape().Dims())
	}
	if !intsEqual(out.Shape().Padded(), []int{32, 32}) {
		t.Errorf("padded dims = %v, want [32 32]", out.Shape().Padded())
	}
}

func TestToLayoutDeviceTilize(t *testing.T) {
	dev := openDevice(t)
	ts, err := ToDevice(hostTensor(t, []int{2, 10, 64, 20}), dev, device.L1MemoryConfig)
	if err != nil {
		t.Fatalf("ToDevice failed: %v", err)
	}

	out, disp, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) on device failed: %v", err)
	}
	if disp != BufferReplaced {
		t.Errorf("disposition = %v, want replaced", disp)
	}
	if !out.OnDevice() {
		t.Fatal("result should stay on device")
	}
	cfg, err := out.MemoryConfig()
	if err != nil {
		t.Fatalf("MemoryConfig failed: %v", err)
	}
	if cfg != device.L1MemoryConfig {
		t.Errorf("memory config = %v, want L1", cfg)
	}
	if !intsEqual(out.Shape().Padded(), []int{2, 10, 64, 32}) {
		t.Errorf("padded dims = %v, want [2 10 64 32]", out.Shape().Padded())
	}
}

func TestToLayoutDeviceUnpadEvenWidth(t *testing.T) {
	dev := openDevice(t)
	data := make([]float32, 10*64*20)
	for i := range data {
		data[i] = float32(i)
	}
	ts, err := FromSlice(data, []int{10, 64, 20})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	ts, err = ToDevice(ts, dev, device.DRAMMemoryConfig)
	if err != nil {
		t.Fatalf("ToDevice failed: %v", err)
	}
	ts, _, err = ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) failed: %v", err)
	}

	// Width 20 is even: the native untilize-with-unpadding path applies
	// and the result stays on device.
	out, disp, err := ToLayout(ts, RowMajor)
	if err != nil {
		t.Fatalf("ToLayout(RowMajor) failed: %v", err)
	}
	if disp != BufferReplaced {
		t.Errorf("disposition = %v, want replaced", disp)
	}
	if !out.OnDevice() {
		t.Fatal("even-width unpad should stay on device")
	}
	if !out.Shape().Equal(NewShape([]int{10, 64, 20})) {
		t.Errorf("shape = %v", out.Shape())
	}

	got, _, err := ToSlice[float32](out)
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("element %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestToLayoutDeviceUnpadOddWidthFallsBack(t *testing.T) {
	dev := openDevice(t)
	data := make([]float32, 8*21)
	for i := range data {
		data[i] = float32(i)
	}
	ts, err := FromSlice(data, []int{8, 21})
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	ts, err = ToDevice(ts, dev, device.DRAMMemoryConfig)
	if err != nil {
		t.Fatalf("ToDevice failed: %v", err)
	}
	ts, _, err = ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) failed: %v", err)
	}

	// Width 21 is odd: the primitive cannot unpad, so the conversion
	// round-trips through the host and transfers back.
	out, _, err := ToLayout(ts, RowMajor)
	if err != nil {
		t.Fatalf("ToLayout(RowMajor) failed: %v", err)
	}
	if !out.OnDevice() {
		t.Fatal("fallback should transfer back to the device")
	}
	if !out.Shape().Equal(NewShape([]int{8, 21})) {
		t.Errorf("shape = %v", out.Shape())
	}

	got, _, err := ToSlice[float32](out)
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}
	for i := range data {
		if got[i] != data[i] {
			t.Fatalf("element %d = %v, want %v", i, got[i], data[i])
		}
	}
}

func TestToLayoutDeviceTagOnlyChange(t *testing.T) {
	dev := openDevice(t)
	ts, err := ToDevice(hostTensor(t, []int{64, 32}), dev, device.DRAMMemoryConfig)
	if err != nil {
		t.Fatalf("ToDevice failed: %v", err)
	}

	// Tile-aligned shape: pure layout change through the in-place
	// device primitive.
	tiled, disp, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) failed: %v", err)
	}
	if disp != BufferReinterpreted {
		t.Errorf("disposition = %v, want reinterpreted", disp)
	}
	back, disp, err := ToLayout(tiled, RowMajor)
	if err != nil {
		t.Fatalf("ToLayout(RowMajor) failed: %v", err)
	}
	if disp != BufferReinterpreted {
		t.Errorf("disposition = %v, want reinterpreted", disp)
	}
	if back.Layout() != RowMajor {
		t.Errorf("layout = %v", back.Layout())
	}
}

func TestToLayoutBFloat16RoundTrip(t *testing.T) {
	data := []float32{1.5, -2.25, 3.14159, 0, 42, -0.001, 7, 1e5}
	ts, err := FromSliceAs(data, []int{2, 4}, BFloat16)
	if err != nil {
		t.Fatalf("FromSliceAs failed: %v", err)
	}
	want, _, err := ToSlice[float32](ts)
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}

	ts, err = FromSliceAs(data, []int{2, 4}, BFloat16)
	if err != nil {
		t.Fatalf("FromSliceAs failed: %v", err)
	}
	tiled, _, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout(Tile) failed: %v", err)
	}
	got, _, err := ToSlice[float32](tiled)
	if err != nil {
		t.Fatalf("ToSlice failed: %v", err)
	}

	// Content equality up to the bfloat16 rounding already applied at
	// ingest: the layout round trip itself is exact.
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %v, want %v", i, got[i], want[i])
		}
	}
}
