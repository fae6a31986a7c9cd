package core

// Cell is one character cell of the grid. Cluster holds a full
// grapheme cluster, not a single rune: a ZWJ emoji sequence or a base
// glyph with combining marks occupies one cell.
type Cell struct {
	// Cluster is the grapheme cluster to display. Empty for
	// continuation cells.
	Cluster string
	// Width is the display width: 1 for narrow, 2 for wide,
	// 0 for continuation cells.
	Width int
	// Style holds the cell's colors and attributes.
	Style Style
}

// EmptyCell returns a blank cell with default style.
func EmptyCell() Cell {
	return Cell{
		Cluster: " ",
		Width:   1,
		Style:   DefaultStyle(),
	}
}

// ContinuationCell returns the cell stored behind a wide glyph.
// The wide glyph's head cell paints both columns; the continuation
// is never emitted.
func ContinuationCell(style Style) Cell {
	return Cell{
		Cluster: "",
		Width:   0,
		Style:   style,
	}
}

// IsContinuation returns true if this cell is the trailing half of a
// wide glyph.
func (c Cell) IsContinuation() bool {
	return c.Width == 0 && c.Cluster == ""
}

// Equals returns true if two cells are identical.
func (c Cell) Equals(other Cell) bool {
	return c.Cluster == other.Cluster &&
		c.Width == other.Width &&
		c.Style.Equals(other.Style)
}
