package renderer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/tessera/internal/layout"
	"github.com/dshills/tessera/internal/renderer/buffer"
	"github.com/dshills/tessera/internal/renderer/core"
	"github.com/dshills/tessera/internal/renderer/grapheme"
)

// ErrUnplacedRoot is returned when the layout result carries no rect
// for the tree root.
var ErrUnplacedRoot = errors.New("renderer: root has no layout rect")

// Rasterize paints the view tree into buf using the rects computed
// for each node key. Subtrees without a rect, or with a zero-size
// one, are skipped; the root must have a rect. Children paint over
// their parent, later siblings over earlier ones.
func Rasterize(root *Node, rects map[string]layout.Rect, buf *buffer.Buffer) error {
	if root == nil {
		return ErrNoView
	}
	if _, ok := rects[root.key]; !ok {
		return fmt.Errorf("%w: %q", ErrUnplacedRoot, root.key)
	}
	paint(root, rects, buf)
	return nil
}

func paint(n *Node, rects map[string]layout.Rect, buf *buffer.Buffer) {
	r, ok := rects[n.key]
	if !ok || r.Width <= 0 || r.Height <= 0 {
		return
	}
	switch n.kind {
	case KindBox:
		// Boxes with a default style are layout-only containers and
		// leave the cells beneath them alone.
		if !n.style.IsDefault() {
			fill(buf, r, n.style)
		}
		for _, c := range n.children {
			paint(c, rects, buf)
		}
	case KindText:
		drawText(buf, r, n)
	}
}

func fill(buf *buffer.Buffer, r layout.Rect, st core.Style) {
	cell := core.Cell{Cluster: " ", Width: 1, Style: st}
	buf.Fill(r.Y, r.X, r.Height, r.Width, cell)
}

func drawText(buf *buffer.Buffer, r layout.Rect, n *Node) {
	var lines []string
	switch n.wrap {
	case WrapSoft:
		lines = grapheme.Wrap(n.text, r.Width)
	default:
		lines = strings.Split(n.text, "\n")
	}
	for i, line := range lines {
		if i >= r.Height {
			break
		}
		buf.SetString(r.Y+i, r.X, grapheme.Truncate(line, r.Width, ""), n.style)
	}
}
