package tensor

import (
	"testing"
)

type recordingTracer struct {
	ops []string
}

func (r *recordingTracer) Op(name string, attrs ...any) {
	r.ops = append(r.ops, name)
}

func TestTracerObservesOperations(t *testing.T) {
	rec := &recordingTracer{}
	SetTracer(rec)
	defer SetTracer(nil)

	ts := hostTensor(t, []int{10, 20})
	tiled, _, err := ToLayout(ts, Tile)
	if err != nil {
		t.Fatalf("ToLayout failed: %v", err)
	}
	if _, _, err := Reshape(tiled, []int{20, 10}); err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}

	seen := make(map[string]bool)
	for _, op := range rec.ops {
		seen[op] = true
	}
	for _, want := range []string{"from_slice", "to_layout", "reshape"} {
		if !seen[want] {
			t.Errorf("tracer did not observe %q (saw %v)", want, rec.ops)
		}
	}
}

func TestSetTracerNilRestoresNop(t *testing.T) {
	rec := &recordingTracer{}
	SetTracer(rec)
	SetTracer(nil)

	hostTensor(t, []int{2, 2})
	if len(rec.ops) != 0 {
		t.Errorf("removed tracer still observed %v", rec.ops)
	}
}
