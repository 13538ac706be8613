package tensor

import "sync/atomic"

// Tracer observes public engine entry points. Op receives the operation
// name and alternating key/value attributes describing inputs and
// outputs. Tracing is a cross-cutting hook, not part of the conversion
// contract: implementations must not mutate the tensors they see.
type Tracer interface {
	Op(name string, attrs ...any)
}

type nopTracer struct{}

func (nopTracer) Op(string, ...any) {}

// tracerBox gives atomic.Value a single concrete type to store.
type tracerBox struct {
	t Tracer
}

var tracer atomic.Value

func init() {
	tracer.Store(tracerBox{t: nopTracer{}})
}

// SetTracer installs the tracer called by every public operation.
// Passing nil restores the no-op tracer.
func SetTracer(t Tracer) {
	if t == nil {
		t = nopTracer{}
	}
	tracer.Store(tracerBox{t: t})
}

func traceOp(name string, attrs ...any) {
	tracer.Load().(tracerBox).t.Op(name, attrs...)
}
