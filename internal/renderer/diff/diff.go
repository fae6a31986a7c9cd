// Package diff computes the minimal ANSI byte stream that turns the
// terminal's current contents (the front buffer) into the next frame
// (the back buffer).
//
// The renderer keeps a running pen: cursor position and SGR style.
// Cursor moves are emitted only when the pen is not already at the
// target cell, and style sequences only when the cell's style differs
// from the pen's. Continuation cells behind wide glyphs are never
// emitted; the wide head paints both columns.
package diff

import (
	"bytes"
	"sync/atomic"

	"github.com/dshills/tessera/internal/renderer/buffer"
	"github.com/dshills/tessera/internal/renderer/core"
)

// ColorDepth is the color capability the renderer emits for.
type ColorDepth int

// Supported color depths.
const (
	DepthMono ColorDepth = iota
	Depth16
	Depth256
	DepthTrueColor
)

// Options configures a Renderer.
type Options struct {
	// Depth selects the emitted color format. Colors beyond the depth
	// are quantized down.
	Depth ColorDepth
}

// DefaultOptions returns the default renderer configuration.
func DefaultOptions() Options {
	return Options{Depth: DepthTrueColor}
}

// Stats describes one diff pass.
type Stats struct {
	// CellsChanged is the number of cells emitted.
	CellsChanged int
	// BytesWritten is the size of the produced byte stream.
	BytesWritten int
	// Escapes counts cursor moves and style sequences emitted.
	Escapes int
	// FullRedraw is true when the pass cleared and repainted the
	// whole screen.
	FullRedraw bool
}

// Renderer produces ANSI byte runs from buffer pairs. Not safe for
// concurrent use; the pipeline owns one.
type Renderer struct {
	opts Options
	buf  bytes.Buffer

	// penStyle survives across frames: the terminal retains SGR state,
	// and the trailing reset puts both back to default.
	penStyle core.Style

	// Totals
	frames      atomic.Uint64
	fullRedraws atomic.Uint64
	totalCells  atomic.Uint64
	totalBytes  atomic.Uint64
}

// NewRenderer creates a diff renderer.
func NewRenderer(opts Options) *Renderer {
	return &Renderer{opts: opts, penStyle: core.DefaultStyle()}
}

// Diff computes the byte run that updates front to match back. When
// the two buffers disagree on dimensions the renderer falls back to a
// full clear-and-repaint of back.
//
// The returned slice is valid until the next Diff or FullRedraw call.
func (r *Renderer) Diff(front, back *buffer.Buffer) ([]byte, Stats) {
	if front.Rows() != back.Rows() || front.Cols() != back.Cols() {
		return r.FullRedraw(back)
	}

	r.buf.Reset()
	stats := Stats{}
	rows, cols := back.Rows(), back.Cols()
	penRow, penCol := -1, -1

	for row := 0; row < rows; row++ {
		// Fast path: skip rows neither frame wrote. An unwritten row
		// holds cleared spaces in both buffers, so it cannot differ.
		if !back.RowDirty(row) && !front.RowDirty(row) {
			continue
		}
		for col := 0; col < cols; col++ {
			bc := back.Get(row, col)
			if bc.Equals(front.Get(row, col)) {
				continue
			}
			if bc.IsContinuation() {
				continue
			}
			if r.suppressed(row, col, bc.Width, rows, cols) {
				continue
			}

			if penRow != row || penCol != col {
				r.moveTo(row, col)
				stats.Escapes++
			}
			if !bc.Style.Equals(r.penStyle) {
				r.writeStyle(bc.Style)
				r.penStyle = bc.Style
				stats.Escapes++
			}
			r.buf.WriteString(bc.Cluster)
			penRow, penCol = row, col+bc.Width
			stats.CellsChanged++
		}
	}

	if stats.CellsChanged > 0 {
		r.reset()
	}
	stats.BytesWritten = r.buf.Len()
	r.record(stats)
	return r.buf.Bytes(), stats
}

// FullRedraw produces a clear-screen plus a complete repaint of back,
// ignoring front entirely.
func (r *Renderer) FullRedraw(back *buffer.Buffer) ([]byte, Stats) {
	r.buf.Reset()
	stats := Stats{FullRedraw: true}
	rows, cols := back.Rows(), back.Cols()

	r.buf.WriteString("\x1b[2J\x1b[H")
	stats.Escapes += 2
	penRow, penCol := 0, 0

	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			bc := back.Get(row, col)
			if bc.IsContinuation() {
				continue
			}
			if r.suppressed(row, col, bc.Width, rows, cols) {
				continue
			}
			if penRow != row || penCol != col {
				r.moveTo(row, col)
				stats.Escapes++
			}
			if !bc.Style.Equals(r.penStyle) {
				r.writeStyle(bc.Style)
				r.penStyle = bc.Style
				stats.Escapes++
			}
			r.buf.WriteString(bc.Cluster)
			penRow, penCol = row, col+bc.Width
			stats.CellsChanged++
		}
	}

	r.reset()
	stats.BytesWritten = r.buf.Len()
	r.record(stats)
	return r.buf.Bytes(), stats
}

// suppressed reports whether emitting this cell would fill the
// bottom-right corner. Writing there makes many terminals scroll, so
// the corner is left untouched on every path.
func (r *Renderer) suppressed(row, col, width, rows, cols int) bool {
	if row != rows-1 {
		return false
	}
	if width < 1 {
		width = 1
	}
	return col+width >= cols
}

func (r *Renderer) reset() {
	r.buf.WriteString("\x1b[0m")
	r.penStyle = core.DefaultStyle()
}

func (r *Renderer) record(stats Stats) {
	r.frames.Add(1)
	if stats.FullRedraw {
		r.fullRedraws.Add(1)
	}
	r.totalCells.Add(uint64(stats.CellsChanged))
	r.totalBytes.Add(uint64(stats.BytesWritten))
}

// Totals is the renderer's cumulative counters.
type Totals struct {
	Frames      uint64
	FullRedraws uint64
	Cells       uint64
	Bytes       uint64
}

// Totals returns cumulative counters across all diff passes.
func (r *Renderer) Totals() Totals {
	return Totals{
		Frames:      r.frames.Load(),
		FullRedraws: r.fullRedraws.Load(),
		Cells:       r.totalCells.Load(),
		Bytes:       r.totalBytes.Load(),
	}
}
