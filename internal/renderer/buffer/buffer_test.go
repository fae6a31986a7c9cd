package buffer

import (
	"testing"

	"github.com/dshills/tessera/internal/renderer/core"
)

func TestBuffer_New(t *testing.T) {
	b := New(3, 4)
	if b.Rows() != 3 || b.Cols() != 4 {
		t.Fatalf("dims = %dx%d, want 3x4", b.Rows(), b.Cols())
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 4; c++ {
			cell := b.Get(r, c)
			if cell.Cluster != " " || cell.Width != 1 {
				t.Errorf("cell (%d,%d) = %+v, want blank", r, c, cell)
			}
			if !cell.Style.IsDefault() {
				t.Errorf("cell (%d,%d) style = %+v, want default", r, c, cell.Style)
			}
		}
	}
}

func TestBuffer_SetGet(t *testing.T) {
	b := New(2, 4)
	style := core.NewStyle(core.ColorRed).Bold()
	b.Set(1, 2, core.Cell{Cluster: "x", Width: 1, Style: style})

	got := b.Get(1, 2)
	if got.Cluster != "x" || got.Width != 1 {
		t.Errorf("Get(1,2) = %+v, want x width 1", got)
	}
	if !got.Style.Equals(style) {
		t.Errorf("style = %+v, want %+v", got.Style, style)
	}
}

func TestBuffer_SetOutOfBounds(t *testing.T) {
	b := New(2, 2)
	cell := core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()}
	b.Set(-1, 0, cell)
	b.Set(0, -1, cell)
	b.Set(2, 0, cell)
	b.Set(0, 2, cell)
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			if got := b.Get(r, c); got.Cluster != " " {
				t.Errorf("cell (%d,%d) = %q, want untouched space", r, c, got.Cluster)
			}
		}
	}
}

func TestBuffer_WideGlyph(t *testing.T) {
	b := New(1, 4)
	b.Set(0, 0, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})

	head := b.Get(0, 0)
	if head.Cluster != "雪" || head.Width != 2 {
		t.Errorf("head = %+v, want 雪 width 2", head)
	}
	cont := b.Get(0, 1)
	if !cont.IsContinuation() {
		t.Errorf("cell after wide glyph = %+v, want continuation", cont)
	}
	if next := b.Get(0, 2); next.Cluster != " " {
		t.Errorf("cell (0,2) = %q, want untouched space", next.Cluster)
	}
}

func TestBuffer_WideGlyphAtRightEdge(t *testing.T) {
	b := New(1, 4)
	b.Set(0, 3, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})

	got := b.Get(0, 3)
	if got.Cluster != " " || got.Width != 1 {
		t.Errorf("straddling wide cell = %+v, want replaced by space", got)
	}
}

func TestBuffer_OverwriteContinuationClearsHead(t *testing.T) {
	b := New(1, 4)
	b.Set(0, 0, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})
	b.Set(0, 1, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})

	if head := b.Get(0, 0); head.Cluster != " " || head.Width != 1 {
		t.Errorf("orphaned head = %+v, want space", head)
	}
	if got := b.Get(0, 1); got.Cluster != "x" {
		t.Errorf("cell (0,1) = %q, want x", got.Cluster)
	}
}

func TestBuffer_OverwriteHeadClearsContinuation(t *testing.T) {
	b := New(1, 4)
	b.Set(0, 0, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})
	b.Set(0, 0, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})

	if got := b.Get(0, 0); got.Cluster != "x" {
		t.Errorf("cell (0,0) = %q, want x", got.Cluster)
	}
	if cont := b.Get(0, 1); cont.IsContinuation() || cont.Cluster != " " {
		t.Errorf("orphaned continuation = %+v, want space", cont)
	}
}

func TestBuffer_WideOverWidePair(t *testing.T) {
	b := New(1, 4)
	b.Set(0, 1, core.Cell{Cluster: "月", Width: 2, Style: core.DefaultStyle()})
	// Writing a wide glyph at col 0 claims col 1, the old head.
	b.Set(0, 0, core.Cell{Cluster: "雪", Width: 2, Style: core.DefaultStyle()})

	if got := b.Get(0, 0); got.Cluster != "雪" {
		t.Errorf("cell (0,0) = %q, want 雪", got.Cluster)
	}
	if !b.Get(0, 1).IsContinuation() {
		t.Errorf("cell (0,1) = %+v, want continuation of 雪", b.Get(0, 1))
	}
	// The displaced glyph's continuation must not survive as an orphan.
	if got := b.Get(0, 2); got.Cluster != " " || got.Width != 1 {
		t.Errorf("cell (0,2) = %+v, want space", got)
	}
}

func TestBuffer_SetString(t *testing.T) {
	b := New(1, 10)
	style := core.NewStyle(core.ColorGreen)
	used := b.SetString(0, 1, "a雪b", style)

	if used != 4 {
		t.Errorf("columns consumed = %d, want 4", used)
	}
	if got := b.Get(0, 1); got.Cluster != "a" {
		t.Errorf("cell (0,1) = %q, want a", got.Cluster)
	}
	if got := b.Get(0, 2); got.Cluster != "雪" || got.Width != 2 {
		t.Errorf("cell (0,2) = %+v, want wide 雪", got)
	}
	if !b.Get(0, 3).IsContinuation() {
		t.Error("cell (0,3) should be a continuation")
	}
	if got := b.Get(0, 4); got.Cluster != "b" {
		t.Errorf("cell (0,4) = %q, want b", got.Cluster)
	}
	if !b.Get(0, 4).Style.Equals(style) {
		t.Error("written cell should carry the given style")
	}
}

func TestBuffer_SetStringClipsAtEdge(t *testing.T) {
	b := New(1, 4)
	used := b.SetString(0, 0, "abcdef", core.DefaultStyle())
	if used != 4 {
		t.Errorf("columns consumed = %d, want 4", used)
	}
	if got := b.Get(0, 3); got.Cluster != "d" {
		t.Errorf("cell (0,3) = %q, want d", got.Cluster)
	}
}

func TestBuffer_SetStringCombiningCluster(t *testing.T) {
	b := New(1, 4)
	used := b.SetString(0, 0, "éx", core.DefaultStyle())
	if used != 2 {
		t.Errorf("columns consumed = %d, want 2", used)
	}
	if got := b.Get(0, 0); got.Cluster != "é" || got.Width != 1 {
		t.Errorf("cell (0,0) = %+v, want single cell holding é", got)
	}
	if got := b.Get(0, 1); got.Cluster != "x" {
		t.Errorf("cell (0,1) = %q, want x", got.Cluster)
	}
}

func TestBuffer_Fill(t *testing.T) {
	b := New(4, 4)
	cell := core.Cell{Cluster: "#", Width: 1, Style: core.NewStyle(core.ColorBlue)}
	b.Fill(1, 1, 2, 2, cell)

	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			got := b.Get(r, c)
			inside := r >= 1 && r <= 2 && c >= 1 && c <= 2
			if inside && got.Cluster != "#" {
				t.Errorf("cell (%d,%d) = %q, want #", r, c, got.Cluster)
			}
			if !inside && got.Cluster != " " {
				t.Errorf("cell (%d,%d) = %q, want space", r, c, got.Cluster)
			}
		}
	}
}

func TestBuffer_ClearAndDirty(t *testing.T) {
	b := New(3, 3)
	b.ClearDirty()
	if b.RowDirty(1) {
		t.Error("row 1 dirty after ClearDirty")
	}

	b.Set(1, 0, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})
	if !b.RowDirty(1) {
		t.Error("row 1 should be dirty after write")
	}
	if b.RowDirty(0) || b.RowDirty(2) {
		t.Error("untouched rows should not be dirty")
	}

	b.Clear()
	if got := b.Get(1, 0); got.Cluster != " " {
		t.Errorf("cell after Clear = %q, want space", got.Cluster)
	}
	for r := 0; r < 3; r++ {
		if !b.RowDirty(r) {
			t.Errorf("row %d should be dirty after Clear", r)
		}
	}
}

func TestBuffer_Resize(t *testing.T) {
	b := New(2, 2)
	b.Set(0, 0, core.Cell{Cluster: "x", Width: 1, Style: core.DefaultStyle()})
	b.Resize(3, 5)

	if b.Rows() != 3 || b.Cols() != 5 {
		t.Fatalf("dims = %dx%d, want 3x5", b.Rows(), b.Cols())
	}
	if got := b.Get(0, 0); got.Cluster != " " {
		t.Errorf("cell after Resize = %q, want cleared", got.Cluster)
	}
}

func TestBuffer_EqualAndCopy(t *testing.T) {
	a := New(2, 3)
	b := New(2, 3)
	if !a.Equal(b) {
		t.Error("fresh buffers of equal dims should be equal")
	}

	a.Set(1, 1, core.Cell{Cluster: "z", Width: 1, Style: core.NewStyle(core.ColorRed)})
	if a.Equal(b) {
		t.Error("buffers should differ after a write")
	}

	b.CopyFrom(a)
	if !a.Equal(b) {
		t.Error("buffers should be equal after CopyFrom")
	}

	c := New(1, 1)
	c.CopyFrom(a)
	if !c.Equal(a) {
		t.Error("CopyFrom should resize the destination")
	}
}
