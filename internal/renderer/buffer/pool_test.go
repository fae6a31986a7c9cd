package buffer

import (
	"testing"

	"github.com/dshills/tessera/internal/renderer/core"
)

func TestPool_ReuseAndCap(t *testing.T) {
	p := NewPool(Options{Rows: 5, Cols: 10, InitialSize: 3, MaxSize: 3})
	if got := p.Size(); got != 3 {
		t.Fatalf("initial Size() = %d, want 3", got)
	}

	// Four gets: three served from the pool, one allocated on demand.
	bufs := make([]*Buffer, 4)
	for i := range bufs {
		bufs[i] = p.Get()
		if bufs[i].Rows() != 5 || bufs[i].Cols() != 10 {
			t.Fatalf("buffer %d dims = %dx%d, want 5x10", i, bufs[i].Rows(), bufs[i].Cols())
		}
	}
	if got := p.Size(); got != 0 {
		t.Errorf("Size() after draining = %d, want 0", got)
	}
	stats := p.Stats()
	if stats.Gets != 4 {
		t.Errorf("Gets = %d, want 4", stats.Gets)
	}
	if stats.Allocs != 1 {
		t.Errorf("Allocs = %d, want 1 (three of four gets reused)", stats.Allocs)
	}

	// Four puts: three retained, the fourth discarded over MaxSize.
	for _, b := range bufs {
		p.Put(b)
	}
	if got := p.Size(); got != 3 {
		t.Errorf("Size() after returns = %d, want 3", got)
	}
	stats = p.Stats()
	if stats.Puts != 4 {
		t.Errorf("Puts = %d, want 4", stats.Puts)
	}
	if stats.Discards != 1 {
		t.Errorf("Discards = %d, want 1", stats.Discards)
	}
}

func TestPool_GetReturnsClearedBuffer(t *testing.T) {
	p := NewPool(Options{Rows: 2, Cols: 2, InitialSize: 0, MaxSize: 2})
	b := p.Get()
	b.Set(0, 0, core.Cell{Cluster: "x", Width: 1, Style: core.NewStyle(core.ColorRed)})
	p.Put(b)

	got := p.Get()
	if got != b {
		t.Fatal("expected the pooled buffer back")
	}
	if cell := got.Get(0, 0); cell.Cluster != " " || !cell.Style.IsDefault() {
		t.Errorf("reused buffer cell = %+v, want cleared", cell)
	}
	if got.RowDirty(0) {
		t.Error("reused buffer should have clean dirty flags")
	}
}

func TestPool_PutMismatchedDimensions(t *testing.T) {
	p := NewPool(Options{Rows: 2, Cols: 2, InitialSize: 0, MaxSize: 4})
	p.Put(New(3, 3))
	if got := p.Size(); got != 0 {
		t.Errorf("Size() = %d, want 0 (mismatched buffer discarded)", got)
	}
	if got := p.Stats().Discards; got != 1 {
		t.Errorf("Discards = %d, want 1", got)
	}
}

func TestPool_PutNil(t *testing.T) {
	p := NewPool(Options{Rows: 2, Cols: 2, InitialSize: 0, MaxSize: 2})
	p.Put(nil)
	if got := p.Stats().Puts; got != 0 {
		t.Errorf("Puts = %d, want 0 (nil ignored)", got)
	}
}

func TestPool_InitialSizeClampedToMax(t *testing.T) {
	p := NewPool(Options{Rows: 2, Cols: 2, InitialSize: 10, MaxSize: 3})
	if got := p.Size(); got != 3 {
		t.Errorf("Size() = %d, want 3", got)
	}
}

func TestGlobal_SharedByDimensions(t *testing.T) {
	ResetGlobal()
	defer ResetGlobal()

	a := Global(10, 20)
	b := Global(10, 20)
	if a != b {
		t.Error("same dimensions should share one pool")
	}
	c := Global(10, 21)
	if a == c {
		t.Error("different dimensions should get distinct pools")
	}
	if a.Rows() != 10 || a.Cols() != 20 {
		t.Errorf("pool dims = %dx%d, want 10x20", a.Rows(), a.Cols())
	}
}
