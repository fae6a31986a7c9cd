package buffer

import (
	"sync"
	"sync/atomic"
)

// Options configures a Pool.
type Options struct {
	// Rows and Cols are the dimensions of every buffer in the pool.
	Rows int
	Cols int
	// InitialSize is the number of buffers allocated up front.
	InitialSize int
	// MaxSize caps how many returned buffers the pool retains.
	MaxSize int
}

// DefaultOptions returns the default pool configuration.
func DefaultOptions() Options {
	return Options{
		Rows:        24,
		Cols:        80,
		InitialSize: 2,
		MaxSize:     8,
	}
}

// Pool recycles buffers of one fixed dimension. Get returns a cleared
// buffer, allocating when the pool is empty; Put retains up to MaxSize
// buffers and discards the rest. A Pool is safe for concurrent use.
type Pool struct {
	mu   sync.Mutex
	free []*Buffer

	rows    int
	cols    int
	maxSize int

	gets     atomic.Uint64
	puts     atomic.Uint64
	allocs   atomic.Uint64
	discards atomic.Uint64
}

// NewPool creates a pool and pre-allocates InitialSize buffers.
// InitialSize is clamped to MaxSize.
func NewPool(opts Options) *Pool {
	if opts.Rows <= 0 || opts.Cols <= 0 {
		def := DefaultOptions()
		if opts.Rows <= 0 {
			opts.Rows = def.Rows
		}
		if opts.Cols <= 0 {
			opts.Cols = def.Cols
		}
	}
	if opts.MaxSize < 0 {
		opts.MaxSize = 0
	}
	if opts.InitialSize > opts.MaxSize {
		opts.InitialSize = opts.MaxSize
	}
	p := &Pool{
		rows:    opts.Rows,
		cols:    opts.Cols,
		maxSize: opts.MaxSize,
	}
	p.free = make([]*Buffer, 0, opts.MaxSize)
	for i := 0; i < opts.InitialSize; i++ {
		p.free = append(p.free, New(opts.Rows, opts.Cols))
	}
	return p
}

// Rows returns the row count of buffers served by this pool.
func (p *Pool) Rows() int { return p.rows }

// Cols returns the column count of buffers served by this pool.
func (p *Pool) Cols() int { return p.cols }

// Get returns a cleared buffer, reusing a pooled one when available.
func (p *Pool) Get() *Buffer {
	p.gets.Add(1)

	p.mu.Lock()
	var b *Buffer
	if n := len(p.free); n > 0 {
		b = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if b == nil {
		p.allocs.Add(1)
		return New(p.rows, p.cols)
	}
	b.Clear()
	b.ClearDirty()
	return b
}

// Put returns a buffer to the pool. Buffers beyond MaxSize and
// buffers of mismatched dimensions are discarded.
func (p *Pool) Put(b *Buffer) {
	if b == nil {
		return
	}
	p.puts.Add(1)
	if b.Rows() != p.rows || b.Cols() != p.cols {
		p.discards.Add(1)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.free) >= p.maxSize {
		p.discards.Add(1)
		return
	}
	p.free = append(p.free, b)
}

// Size returns the number of buffers currently pooled.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// PoolStats is a snapshot of pool counters. Allocs counts only
// demand allocations; pre-allocated buffers are not misses.
type PoolStats struct {
	Gets     uint64
	Puts     uint64
	Allocs   uint64
	Discards uint64
}

// Stats returns current pool statistics.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Gets:     p.gets.Load(),
		Puts:     p.puts.Load(),
		Allocs:   p.allocs.Load(),
		Discards: p.discards.Load(),
	}
}

var (
	globalMu    sync.Mutex
	globalPools = make(map[[2]int]*Pool)
)

// Global returns the shared pool for the given dimensions, creating
// it on first use. All callers asking for the same dimensions share
// one pool. Non-positive dimensions fall back to the defaults so the
// registry key always matches the pool's real dimensions.
func Global(rows, cols int) *Pool {
	def := DefaultOptions()
	if rows <= 0 {
		rows = def.Rows
	}
	if cols <= 0 {
		cols = def.Cols
	}
	key := [2]int{rows, cols}
	globalMu.Lock()
	defer globalMu.Unlock()
	if p, ok := globalPools[key]; ok {
		return p
	}
	opts := DefaultOptions()
	opts.Rows, opts.Cols = rows, cols
	p := NewPool(opts)
	globalPools[key] = p
	return p
}

// ResetGlobal drops every globally registered pool. Tests use it to
// isolate pool state.
func ResetGlobal() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalPools = make(map[[2]int]*Pool)
}
