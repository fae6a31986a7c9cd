// Package profile collects per-frame timing from the render
// pipeline. A Collector keeps a ring of recent frames for live
// inspection and forwards every record to a Sink for persistence.
package profile

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// FrameMetrics is the timing record for one rendered frame. Phase
// durations cover the pipeline stages; Total spans the whole frame.
type FrameMetrics struct {
	Seq    uint64
	Time   time.Time
	Size   time.Duration
	Layout time.Duration
	Raster time.Duration
	Diff   time.Duration
	Write  time.Duration
	Total  time.Duration

	CellsChanged int
	BytesWritten int
	FullRedraw   bool
}

// Sink receives frame records. Implementations must tolerate
// concurrent Record calls.
type Sink interface {
	Record(FrameMetrics) error
	Close() error
}

// NopSink discards every record.
type NopSink struct{}

func (NopSink) Record(FrameMetrics) error { return nil }
func (NopSink) Close() error              { return nil }

// Collector stamps frames with a sequence number, keeps the most
// recent ones in a ring and forwards each to the sink. Sink errors
// are counted, not propagated; profiling must never fail a frame.
type Collector struct {
	session string
	sink    Sink

	seq        atomic.Uint64
	frames     atomic.Uint64
	redraws    atomic.Uint64
	sinkErrors atomic.Uint64

	mu   sync.Mutex
	ring []FrameMetrics
	next int
	full bool
}

// NewCollector creates a Collector holding the last size frames. A
// nil sink means ring-only collection. Sinks that already carry a
// session id (such as JSONLSink) share it with the collector so the
// ring and the persisted records name the same run.
func NewCollector(size int, sink Sink) *Collector {
	if size < 1 {
		size = 1
	}
	if sink == nil {
		sink = NopSink{}
	}
	session := ""
	if s, ok := sink.(interface{ Session() string }); ok {
		session = s.Session()
	}
	if session == "" {
		session = uuid.New().String()
	}
	return &Collector{
		session: session,
		sink:    sink,
		ring:    make([]FrameMetrics, size),
	}
}

// Session identifies this collector's run in persisted records.
func (c *Collector) Session() string { return c.session }

// Record stamps m and stores it.
func (c *Collector) Record(m FrameMetrics) {
	m.Seq = c.seq.Add(1)
	c.frames.Add(1)
	if m.FullRedraw {
		c.redraws.Add(1)
	}

	c.mu.Lock()
	c.ring[c.next] = m
	c.next++
	if c.next == len(c.ring) {
		c.next = 0
		c.full = true
	}
	c.mu.Unlock()

	if err := c.sink.Record(m); err != nil {
		c.sinkErrors.Add(1)
	}
}

// Frames returns the ring contents, oldest first.
func (c *Collector) Frames() []FrameMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.full {
		out := make([]FrameMetrics, c.next)
		copy(out, c.ring[:c.next])
		return out
	}
	out := make([]FrameMetrics, 0, len(c.ring))
	out = append(out, c.ring[c.next:]...)
	out = append(out, c.ring[:c.next]...)
	return out
}

// Close closes the sink.
func (c *Collector) Close() error { return c.sink.Close() }

// Summary aggregates the collector's state: cumulative counters
// plus averages over the ring window.
type Summary struct {
	Session     string
	Frames      uint64
	FullRedraws uint64
	SinkErrors  uint64
	Window      int
	AvgTotal    time.Duration
	MaxTotal    time.Duration
	AvgCells    int
}

func (c *Collector) Summary() Summary {
	s := Summary{
		Session:     c.session,
		Frames:      c.frames.Load(),
		FullRedraws: c.redraws.Load(),
		SinkErrors:  c.sinkErrors.Load(),
	}
	window := c.Frames()
	s.Window = len(window)
	if len(window) == 0 {
		return s
	}
	var total time.Duration
	var cells int
	for _, m := range window {
		total += m.Total
		cells += m.CellsChanged
		if m.Total > s.MaxTotal {
			s.MaxTotal = m.Total
		}
	}
	s.AvgTotal = total / time.Duration(len(window))
	s.AvgCells = cells / len(window)
	return s
}
