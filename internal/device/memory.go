package device

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// BufferType names a device memory pool.
type BufferType int

// Device memory pools.
const (
	// DRAM is the bulk off-chip pool.
	DRAM BufferType = iota
	// L1 is the fast local pool.
	L1
)

// String returns a human-readable pool name.
func (b BufferType) String() string {
	switch b {
	case DRAM:
		return "DRAM"
	case L1:
		return "L1"
	default:
		return "unknown"
	}
}

// MemoryConfig selects the pool and bank interleaving for a device
// allocation. There is no implicit default: every transfer names its
// config explicitly.
type MemoryConfig struct {
	BufferType  BufferType
	Interleaved bool
}

// The two supported presets.
var (
	DRAMMemoryConfig = MemoryConfig{BufferType: DRAM, Interleaved: true}
	L1MemoryConfig   = MemoryConfig{BufferType: L1, Interleaved: true}
)

// String returns a human-readable config description.
func (m MemoryConfig) String() string {
	if m.Interleaved {
		return m.BufferType.String() + " interleaved"
	}
	return m.BufferType.String()
}

// Buffer is a device allocation. Exactly one Tensor owns a Buffer at a
// time; use after Free is a caller error and is not tracked.
type Buffer struct {
	id     uuid.UUID
	data   []byte
	config MemoryConfig
	owner  *allocator
	freed  bool
}

// ID returns the allocation identity.
func (b *Buffer) ID() uuid.UUID {
	return b.id
}

// Size returns the allocation size in bytes.
func (b *Buffer) Size() int {
	return len(b.data)
}

// Config returns the memory config the buffer was allocated with.
func (b *Buffer) Config() MemoryConfig {
	return b.config
}

// Data returns the backing bytes of the allocation.
func (b *Buffer) Data() []byte {
	return b.data
}

// PoolStats is a point-in-time snapshot of one pool's accounting.
type PoolStats struct {
	LiveBytes   int64
	PeakBytes   int64
	LiveBuffers int
	TotalAllocs int64
	TotalFrees  int64
}

// allocator tracks allocations for a single pool. Frees update the
// counters immediately; there is no deferred reclamation.
type allocator struct {
	mu    sync.Mutex
	pool  BufferType
	live  map[uuid.UUID]*Buffer
	stats PoolStats
}

func newAllocator(pool BufferType) *allocator {
	return &allocator{
		pool: pool,
		live: make(map[uuid.UUID]*Buffer),
	}
}

func (a *allocator) allocate(size int, config MemoryConfig) *Buffer {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := &Buffer{
		id:     uuid.New(),
		data:   make([]byte, size),
		config: config,
		owner:  a,
	}
	a.live[buf.id] = buf
	a.stats.LiveBytes += int64(size)
	a.stats.LiveBuffers++
	a.stats.TotalAllocs++
	if a.stats.LiveBytes > a.stats.PeakBytes {
		a.stats.PeakBytes = a.stats.LiveBytes
	}
	return buf
}

// free releases a buffer. Repeated frees of the same buffer are safe
// and do not disturb the accounting.
func (a *allocator) free(buf *Buffer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if buf.freed {
		return
	}
	buf.freed = true
	delete(a.live, buf.id)
	a.stats.LiveBytes -= int64(len(buf.data))
	a.stats.LiveBuffers--
	a.stats.TotalFrees++
	buf.data = nil
}

func (a *allocator) snapshot() PoolStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

func (a *allocator) String() string {
	s := a.snapshot()
	return fmt.Sprintf("%s: %d buffers, %d bytes live (peak %d)", a.pool, s.LiveBuffers, s.LiveBytes, s.PeakBytes)
}
