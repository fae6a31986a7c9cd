// Package buffer implements the screen buffer: a rows-by-cols cell
// grid stored as parallel arrays, and a pool for recycling buffers
// across frames.
//
// Wide glyphs occupy two columns: the head cell carries the cluster
// and width 2, the following column holds a continuation cell that is
// never emitted. Writes keep that pairing intact; overwriting either
// half of a pair clears the surviving half to a space.
package buffer

import (
	"github.com/dshills/tessera/internal/renderer/core"
	"github.com/dshills/tessera/internal/renderer/grapheme"
)

// Buffer is a cell grid laid out as parallel arrays indexed by
// row*cols + col.
type Buffer struct {
	rows, cols int

	clusters []string
	widths   []int8
	fg       []core.Color
	bg       []core.Color
	attrs    []core.Attribute

	// rowDirty marks rows written since the last ClearDirty. The diff
	// uses it as a fast path to skip untouched rows.
	rowDirty []bool
}

// New creates a cleared buffer of the given dimensions. Non-positive
// dimensions are clamped to zero.
func New(rows, cols int) *Buffer {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	b := &Buffer{rows: rows, cols: cols}
	n := rows * cols
	b.clusters = make([]string, n)
	b.widths = make([]int8, n)
	b.fg = make([]core.Color, n)
	b.bg = make([]core.Color, n)
	b.attrs = make([]core.Attribute, n)
	b.rowDirty = make([]bool, rows)
	b.reset()
	return b
}

// Rows returns the buffer height.
func (b *Buffer) Rows() int { return b.rows }

// Cols returns the buffer width.
func (b *Buffer) Cols() int { return b.cols }

// InBounds reports whether (row, col) addresses a cell.
func (b *Buffer) InBounds(row, col int) bool {
	return row >= 0 && row < b.rows && col >= 0 && col < b.cols
}

// Get returns the cell at (row, col). Out-of-bounds reads return an
// empty cell.
func (b *Buffer) Get(row, col int) core.Cell {
	if !b.InBounds(row, col) {
		return core.EmptyCell()
	}
	i := row*b.cols + col
	return core.Cell{
		Cluster: b.clusters[i],
		Width:   int(b.widths[i]),
		Style: core.Style{
			Foreground: b.fg[i],
			Background: b.bg[i],
			Attributes: b.attrs[i],
		},
	}
}

// Set writes a cell at (row, col). Out-of-bounds writes are ignored.
// Writing a width-2 cell also writes the continuation cell at col+1;
// a wide cell that would straddle the right edge is written as a
// space instead.
func (b *Buffer) Set(row, col int, cell core.Cell) {
	if !b.InBounds(row, col) {
		return
	}
	if cell.Width == 2 && col == b.cols-1 {
		cell = core.Cell{Cluster: " ", Width: 1, Style: cell.Style}
	}

	b.clearOverlap(row, col)
	if cell.Width == 2 {
		b.clearOverlap(row, col+1)
	}

	b.put(row, col, cell)
	if cell.Width == 2 {
		b.put(row, col+1, core.ContinuationCell(cell.Style))
	}
	b.rowDirty[row] = true
}

// clearOverlap breaks the wide pair covering (row, col), if any,
// leaving a space in the half that survives the upcoming write.
func (b *Buffer) clearOverlap(row, col int) {
	i := row*b.cols + col
	switch {
	case b.widths[i] == 0 && b.clusters[i] == "":
		// Continuation: the head is one column left.
		if col > 0 && b.widths[i-1] == 2 {
			b.put(row, col-1, core.Cell{Cluster: " ", Width: 1, Style: b.styleAt(i - 1)})
		}
	case b.widths[i] == 2:
		// Head: the continuation is one column right.
		if col+1 < b.cols {
			b.put(row, col+1, core.Cell{Cluster: " ", Width: 1, Style: b.styleAt(i)})
		}
	}
}

func (b *Buffer) styleAt(i int) core.Style {
	return core.Style{Foreground: b.fg[i], Background: b.bg[i], Attributes: b.attrs[i]}
}

// put stores a cell without pairing checks.
func (b *Buffer) put(row, col int, cell core.Cell) {
	i := row*b.cols + col
	b.clusters[i] = cell.Cluster
	b.widths[i] = int8(cell.Width)
	b.fg[i] = cell.Style.Foreground
	b.bg[i] = cell.Style.Background
	b.attrs[i] = cell.Style.Attributes
}

// SetString writes s starting at (row, col), one grapheme cluster per
// cell, and returns the number of columns consumed. Zero-width
// clusters are skipped; output clips at the right edge.
func (b *Buffer) SetString(row, col int, s string, style core.Style) int {
	if row < 0 || row >= b.rows || s == "" {
		return 0
	}
	used := 0
	for _, cl := range grapheme.Clusters(s) {
		if cl.Width == 0 {
			continue
		}
		if col+used >= b.cols {
			break
		}
		b.Set(row, col+used, core.Cell{Cluster: cl.Text, Width: cl.Width, Style: style})
		used += cl.Width
	}
	return used
}

// Fill writes cell into every position of the given rectangle,
// clipped to the buffer.
func (b *Buffer) Fill(row, col, height, width int, cell core.Cell) {
	step := cell.Width
	if step <= 0 {
		step = 1
	}
	for r := row; r < row+height; r++ {
		for c := col; c < col+width; c += step {
			b.Set(r, c, cell)
		}
	}
}

// Clear resets every cell to a default-style space and marks all rows
// dirty.
func (b *Buffer) Clear() {
	b.reset()
	for r := range b.rowDirty {
		b.rowDirty[r] = true
	}
}

func (b *Buffer) reset() {
	defStyle := core.DefaultStyle()
	for i := range b.clusters {
		b.clusters[i] = " "
		b.widths[i] = 1
		b.fg[i] = defStyle.Foreground
		b.bg[i] = defStyle.Background
		b.attrs[i] = defStyle.Attributes
	}
}

// Resize reallocates the buffer to the new dimensions. Content is not
// preserved; buffers are frame-scoped.
func (b *Buffer) Resize(rows, cols int) {
	if rows == b.rows && cols == b.cols {
		return
	}
	*b = *New(rows, cols)
}

// CopyFrom makes b an exact copy of other, resizing if needed.
func (b *Buffer) CopyFrom(other *Buffer) {
	if b.rows != other.rows || b.cols != other.cols {
		b.Resize(other.rows, other.cols)
	}
	copy(b.clusters, other.clusters)
	copy(b.widths, other.widths)
	copy(b.fg, other.fg)
	copy(b.bg, other.bg)
	copy(b.attrs, other.attrs)
	copy(b.rowDirty, other.rowDirty)
}

// Equal reports whether two buffers have identical dimensions and
// content. Dirty flags are not compared.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.rows != other.rows || b.cols != other.cols {
		return false
	}
	for i := range b.clusters {
		if b.clusters[i] != other.clusters[i] ||
			b.widths[i] != other.widths[i] ||
			b.attrs[i] != other.attrs[i] ||
			!b.fg[i].Equals(other.fg[i]) ||
			!b.bg[i].Equals(other.bg[i]) {
			return false
		}
	}
	return true
}

// RowDirty reports whether the row has been written since the last
// ClearDirty. Out-of-range rows report false.
func (b *Buffer) RowDirty(row int) bool {
	if row < 0 || row >= b.rows {
		return false
	}
	return b.rowDirty[row]
}

// MarkRowDirty forces a row to be considered changed.
func (b *Buffer) MarkRowDirty(row int) {
	if row >= 0 && row < b.rows {
		b.rowDirty[row] = true
	}
}

// MarkAllDirty forces every row to be considered changed.
func (b *Buffer) MarkAllDirty() {
	for r := range b.rowDirty {
		b.rowDirty[r] = true
	}
}

// ClearDirty resets all dirty row flags.
func (b *Buffer) ClearDirty() {
	for r := range b.rowDirty {
		b.rowDirty[r] = false
	}
}
