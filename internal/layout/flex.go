package layout

import (
	"fmt"
	"sort"
)

// ComputeLayout runs a full flexbox pass from the given root and
// returns absolute rects for every visible node reachable from it.
// The root's own Width and Height define the viewport; auto resolves
// to zero at the root.
func (e *Engine) ComputeLayout(rootKey string) (map[string]Rect, error) {
	if !e.initialized() {
		return nil, ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	root, ok := e.nodes[rootKey]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRoot, rootKey)
	}

	w, _ := root.style.Width.resolve(0)
	h, _ := root.style.Height.resolve(0)
	w = clampAxis(w, root.style.MinWidth, root.style.MaxWidth, 0)
	h = clampAxis(h, root.style.MinHeight, root.style.MaxHeight, 0)

	out := make(map[string]Rect)
	e.layoutNode(root, Rect{Width: w, Height: h}, out)
	return out, nil
}

// flexItem is one in-flow child's working state during a pass.
type flexItem struct {
	n *node

	main  int
	cross int // -1 while auto

	mainMargin  int // both main-axis margins
	mainStart   int // leading main-axis margin
	crossMargin int
	crossStart  int

	minMain, maxMain   Dimension
	minCross, maxCross Dimension
	grow, shrink       float64
}

func (e *Engine) layoutNode(n *node, rect Rect, out map[string]Rect) {
	if n.style.Display == DisplayNone {
		out[n.key] = Rect{}
		return
	}
	out[n.key] = rect
	if len(n.children) == 0 {
		return
	}

	content := Rect{
		X:      rect.X + n.style.Padding[EdgeLeft],
		Y:      rect.Y + n.style.Padding[EdgeTop],
		Width:  rect.Width - n.style.Padding.Horizontal(),
		Height: rect.Height - n.style.Padding.Vertical(),
	}
	if content.Width < 0 {
		content.Width = 0
	}
	if content.Height < 0 {
		content.Height = 0
	}

	var flow, abs []*node
	for _, key := range n.children {
		c, ok := e.nodes[key]
		if !ok {
			continue
		}
		switch {
		case c.style.Display == DisplayNone:
			out[c.key] = Rect{}
		case c.style.Position == PositionAbsolute:
			abs = append(abs, c)
		default:
			flow = append(flow, c)
		}
	}

	if len(flow) > 0 {
		e.layoutFlow(n, flow, content, out)
	}
	for _, c := range abs {
		e.layoutAbsolute(c, content, out)
	}
}

func (e *Engine) layoutFlow(parent *node, flow []*node, content Rect, out map[string]Rect) {
	dir := parent.style.Direction
	mainAvail, crossAvail := content.Width, content.Height
	if dir == DirectionColumn {
		mainAvail, crossAvail = content.Height, content.Width
	}
	gap := parent.style.Gap

	items := make([]flexItem, len(flow))
	for i, c := range flow {
		st := c.style
		it := flexItem{n: c, grow: st.Grow, shrink: st.Shrink}
		var mainDim, crossDim Dimension
		if dir == DirectionRow {
			mainDim, crossDim = st.Width, st.Height
			it.minMain, it.maxMain = st.MinWidth, st.MaxWidth
			it.minCross, it.maxCross = st.MinHeight, st.MaxHeight
			it.mainMargin = st.Margin.Horizontal()
			it.mainStart = st.Margin[EdgeLeft]
			it.crossMargin = st.Margin.Vertical()
			it.crossStart = st.Margin[EdgeTop]
		} else {
			mainDim, crossDim = st.Height, st.Width
			it.minMain, it.maxMain = st.MinHeight, st.MaxHeight
			it.minCross, it.maxCross = st.MinWidth, st.MaxWidth
			it.mainMargin = st.Margin.Vertical()
			it.mainStart = st.Margin[EdgeTop]
			it.crossMargin = st.Margin.Horizontal()
			it.crossStart = st.Margin[EdgeLeft]
		}

		// Flex basis falls back to the main-axis dimension; auto is a
		// zero basis, content sizes come from explicit dimensions.
		m, ok := st.Basis.resolve(mainAvail)
		if !ok {
			m, ok = mainDim.resolve(mainAvail)
		}
		if !ok {
			m = 0
		}
		it.main = clampAxis(m, it.minMain, it.maxMain, mainAvail)

		if cr, ok := crossDim.resolve(crossAvail); ok {
			it.cross = cr
		} else {
			it.cross = -1
		}
		items[i] = it
	}

	lines := wrapLines(items, mainAvail, gap, parent.style.Wrap)

	crossCursor := 0
	for li, line := range lines {
		e.layoutLine(parent, line, content, dir, mainAvail, crossAvail,
			gap, len(lines) == 1, crossCursor, out)
		lineCross := lineCrossSize(line, crossAvail, len(lines) == 1)
		crossCursor += lineCross
		if li < len(lines)-1 {
			crossCursor += gap
		}
	}
}

func (e *Engine) layoutLine(parent *node, line []flexItem, content Rect,
	dir FlexDirection, mainAvail, crossAvail, gap int, single bool,
	crossCursor int, out map[string]Rect) {

	// Grow or shrink against the free main-axis space.
	used := gap * (len(line) - 1)
	for i := range line {
		used += line[i].main + line[i].mainMargin
	}
	remaining := mainAvail - used

	if remaining > 0 {
		weights := make([]float64, len(line))
		for i := range line {
			weights[i] = line[i].grow
		}
		for i, extra := range distribute(remaining, weights) {
			line[i].main += extra
		}
	} else if remaining < 0 {
		weights := make([]float64, len(line))
		for i := range line {
			weights[i] = line[i].shrink * float64(line[i].main)
		}
		for i, cut := range distribute(-remaining, weights) {
			line[i].main -= cut
			if line[i].main < 0 {
				line[i].main = 0
			}
		}
	}
	used = gap * (len(line) - 1)
	for i := range line {
		line[i].main = clampAxis(line[i].main, line[i].minMain, line[i].maxMain, mainAvail)
		used += line[i].main + line[i].mainMargin
	}

	leftover := mainAvail - used
	if leftover < 0 {
		leftover = 0
	}
	lead, extras := justifyOffsets(parent.style.Justify, leftover, len(line))
	lineCross := lineCrossSize(line, crossAvail, single)

	mainCursor := lead
	for i := range line {
		it := &line[i]

		align := it.n.style.AlignSelf
		if align == AlignAuto {
			align = parent.style.AlignItems
		}
		if align == AlignAuto {
			align = AlignStretch
		}

		crossSize := it.cross
		if crossSize < 0 {
			if align == AlignStretch {
				crossSize = lineCross - it.crossMargin
			} else {
				crossSize = 0
			}
			if crossSize < 0 {
				crossSize = 0
			}
		}
		crossSize = clampAxis(crossSize, it.minCross, it.maxCross, crossAvail)

		free := lineCross - crossSize - it.crossMargin
		if free < 0 {
			free = 0
		}
		shift := 0
		switch align {
		case AlignCenter:
			shift = free / 2
		case AlignEnd:
			shift = free
		}

		var r Rect
		if dir == DirectionRow {
			r = Rect{
				X:      content.X + mainCursor + it.mainStart,
				Y:      content.Y + crossCursor + shift + it.crossStart,
				Width:  it.main,
				Height: crossSize,
			}
		} else {
			r = Rect{
				X:      content.X + crossCursor + shift + it.crossStart,
				Y:      content.Y + mainCursor + it.mainStart,
				Width:  crossSize,
				Height: it.main,
			}
		}
		e.layoutNode(it.n, r, out)

		mainCursor += it.main + it.mainMargin
		if i < len(line)-1 {
			mainCursor += gap + extras[i]
		}
	}
}

func (e *Engine) layoutAbsolute(c *node, content Rect, out map[string]Rect) {
	st := c.style
	w, ok := st.Width.resolve(content.Width)
	if !ok {
		w = content.Width - st.Margin.Horizontal()
	}
	h, ok := st.Height.resolve(content.Height)
	if !ok {
		h = content.Height - st.Margin.Vertical()
	}
	w = clampAxis(w, st.MinWidth, st.MaxWidth, content.Width)
	h = clampAxis(h, st.MinHeight, st.MaxHeight, content.Height)

	e.layoutNode(c, Rect{
		X:      content.X + st.Margin[EdgeLeft],
		Y:      content.Y + st.Margin[EdgeTop],
		Width:  w,
		Height: h,
	}, out)
}

// wrapLines splits items into lines greedily by outer main size. The
// returned lines are subslices of items, so later adjustments write
// through.
func wrapLines(items []flexItem, avail, gap int, wrap FlexWrap) [][]flexItem {
	if wrap == NoWrap || len(items) == 0 {
		return [][]flexItem{items}
	}
	var lines [][]flexItem
	start, used := 0, 0
	for i := range items {
		outer := items[i].main + items[i].mainMargin
		need := outer
		if i > start {
			need += gap
		}
		if i > start && used+need > avail {
			lines = append(lines, items[start:i])
			start, used = i, outer
			continue
		}
		used += need
	}
	return append(lines, items[start:])
}

// lineCrossSize is the cross extent of one line. A single unwrapped
// line fills the container's cross axis; wrapped lines take their
// tallest child.
func lineCrossSize(line []flexItem, crossAvail int, single bool) int {
	if single && crossAvail > 0 {
		return crossAvail
	}
	max := 0
	for i := range line {
		c := line[i].cross
		if c < 0 {
			c = 0
		}
		if c+line[i].crossMargin > max {
			max = c + line[i].crossMargin
		}
	}
	return max
}

// justifyOffsets returns the leading offset and per-gap additions for
// the leftover main-axis space.
func justifyOffsets(j Justify, leftover, n int) (int, []int) {
	extras := make([]int, max(n-1, 0))
	if leftover <= 0 || n == 0 {
		return 0, extras
	}
	switch j {
	case JustifyCenter:
		return leftover / 2, extras
	case JustifyEnd:
		return leftover, extras
	case JustifySpaceBetween:
		if n == 1 {
			return 0, extras
		}
		base := leftover / (n - 1)
		rem := leftover % (n - 1)
		for i := range extras {
			extras[i] = base
			if i < rem {
				extras[i]++
			}
		}
		return 0, extras
	case JustifySpaceAround:
		unit := leftover / n
		for i := range extras {
			extras[i] = unit
		}
		return unit / 2, extras
	default:
		return 0, extras
	}
}

// distribute splits total into integer shares proportional to the
// weights, handing remainder cells to the largest fractional parts
// first.
func distribute(total int, weights []float64) []int {
	out := make([]int, len(weights))
	var sum float64
	for _, w := range weights {
		if w > 0 {
			sum += w
		}
	}
	if sum <= 0 || total <= 0 {
		return out
	}

	type frac struct {
		idx  int
		part float64
	}
	fracs := make([]frac, 0, len(weights))
	given := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		exact := float64(total) * w / sum
		out[i] = int(exact)
		given += out[i]
		fracs = append(fracs, frac{i, exact - float64(out[i])})
	}
	sort.SliceStable(fracs, func(a, b int) bool {
		return fracs[a].part > fracs[b].part
	})
	for i := 0; i < total-given && i < len(fracs); i++ {
		out[fracs[i].idx]++
	}
	return out
}

// clampAxis applies the max bound then the min bound so that a larger
// min wins, and never returns a negative size.
func clampAxis(size int, lo, hi Dimension, avail int) int {
	if v, ok := hi.resolve(avail); ok && size > v {
		size = v
	}
	if v, ok := lo.resolve(avail); ok && size < v {
		size = v
	}
	if size < 0 {
		size = 0
	}
	return size
}
