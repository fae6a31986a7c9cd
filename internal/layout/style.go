package layout

// DimensionUnit selects how a Dimension value is interpreted.
type DimensionUnit uint8

const (
	// UnitAuto sizes from context: stretch on the cross axis, content
	// on the main axis.
	UnitAuto DimensionUnit = iota
	// UnitCells is an absolute size in terminal cells.
	UnitCells
	// UnitPercent is a fraction (0..1) of the parent's content box.
	UnitPercent
)

// Dimension is one extent of a style. The zero value is auto.
type Dimension struct {
	Unit  DimensionUnit
	Value float64
}

// Auto is the automatic dimension.
var Auto = Dimension{}

// Cells returns an absolute dimension in terminal cells.
func Cells(n int) Dimension {
	return Dimension{Unit: UnitCells, Value: float64(n)}
}

// Percent returns a fractional dimension. p is in the range 0..1.
func Percent(p float64) Dimension {
	return Dimension{Unit: UnitPercent, Value: p}
}

// IsAuto reports whether the dimension is automatic.
func (d Dimension) IsAuto() bool { return d.Unit == UnitAuto }

// resolve returns the dimension in cells against the given available
// space. The second result is false for auto.
func (d Dimension) resolve(avail int) (int, bool) {
	switch d.Unit {
	case UnitCells:
		return int(d.Value), true
	case UnitPercent:
		return int(float64(avail)*d.Value + 0.5), true
	default:
		return 0, false
	}
}

// Display controls whether a node participates in layout.
type Display uint8

const (
	// DisplayFlex lays the node and its children out.
	DisplayFlex Display = iota
	// DisplayNone gives the node a zero rect and hides its subtree.
	DisplayNone
)

// Position controls how a node is placed in its parent.
type Position uint8

const (
	// PositionRelative places the node in the flex flow.
	PositionRelative Position = iota
	// PositionAbsolute takes the node out of the flow and positions
	// it against the parent's content box.
	PositionAbsolute
)

// FlexDirection is the main axis of a container.
type FlexDirection uint8

const (
	// DirectionRow lays children out left to right.
	DirectionRow FlexDirection = iota
	// DirectionColumn lays children out top to bottom.
	DirectionColumn
)

// FlexWrap controls whether children may break onto new lines.
type FlexWrap uint8

const (
	NoWrap FlexWrap = iota
	Wrap
)

// Justify distributes leftover main-axis space.
type Justify uint8

const (
	JustifyStart Justify = iota
	JustifyCenter
	JustifyEnd
	JustifySpaceBetween
	JustifySpaceAround
)

// Align positions children on the cross axis. The zero value is auto:
// as AlignItems it means stretch, as AlignSelf it defers to the
// parent's AlignItems.
type Align uint8

const (
	AlignAuto Align = iota
	AlignStretch
	AlignStart
	AlignCenter
	AlignEnd
)

// Edge indexes into padding and margin arrays.
const (
	EdgeLeft = iota
	EdgeRight
	EdgeTop
	EdgeBottom
)

// Edges holds per-side cell counts, indexed by the Edge constants.
type Edges [4]int

// EdgesAll returns edges with the same value on every side.
func EdgesAll(n int) Edges {
	return Edges{n, n, n, n}
}

// EdgesHV returns edges with a horizontal and a vertical value.
func EdgesHV(h, v int) Edges {
	return Edges{h, h, v, v}
}

// Horizontal is the sum of the left and right edges.
func (e Edges) Horizontal() int { return e[EdgeLeft] + e[EdgeRight] }

// Vertical is the sum of the top and bottom edges.
func (e Edges) Vertical() int { return e[EdgeTop] + e[EdgeBottom] }

// Style is the layout input for one node.
type Style struct {
	Display  Display
	Position Position

	Width     Dimension
	Height    Dimension
	MinWidth  Dimension
	MinHeight Dimension
	MaxWidth  Dimension
	MaxHeight Dimension

	Padding Edges
	Margin  Edges

	Direction  FlexDirection
	Wrap       FlexWrap
	Grow       float64
	Shrink     float64
	Basis      Dimension
	Justify    Justify
	AlignItems Align
	AlignSelf  Align
	Gap        int
}

// DefaultStyle returns the style new nodes start from: a relative flex
// row that shrinks when over-full.
func DefaultStyle() Style {
	return Style{Shrink: 1}
}

// Rect is a computed layout result in absolute cell coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}
