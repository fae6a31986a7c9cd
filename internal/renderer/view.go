package renderer

import (
	"github.com/dshills/tessera/internal/layout"
	"github.com/dshills/tessera/internal/renderer/core"
)

// NodeKind discriminates the view node variants. The set is closed;
// rasterization switches over it exhaustively.
type NodeKind uint8

const (
	// KindBox is a container: it paints its style over its rect and
	// lays out children with the flex engine.
	KindBox NodeKind = iota

	// KindText paints a string clipped to its rect.
	KindText
)

// WrapMode controls how text behaves when wider than its rect.
type WrapMode uint8

const (
	// WrapNone truncates at the rect edge.
	WrapNone WrapMode = iota

	// WrapSoft breaks at word boundaries onto following rows,
	// falling back to cell breaks for unbreakable runs.
	WrapSoft
)

// Node is one element of a view tree. Trees are built fresh by the
// view function each frame; nodes are written through their
// builder methods and read through getters only, so rasterization
// can rely on a fixed shape.
type Node struct {
	kind     NodeKind
	key      string
	style    core.Style
	flex     layout.Style
	text     string
	wrap     WrapMode
	children []*Node
}

// Box creates a container node. An empty key gets a stable
// tree-path key during layout.
func Box(key string, flex layout.Style, children ...*Node) *Node {
	return &Node{
		kind:     KindBox,
		key:      key,
		flex:     flex,
		children: children,
	}
}

// Text creates a text leaf.
func Text(key, text string) *Node {
	return &Node{
		kind: KindText,
		key:  key,
		flex: layout.DefaultStyle(),
		text: text,
	}
}

// WithStyle sets the paint style and returns the node.
func (n *Node) WithStyle(s core.Style) *Node {
	n.style = s
	return n
}

// WithFlex replaces the layout style and returns the node.
func (n *Node) WithFlex(s layout.Style) *Node {
	n.flex = s
	return n
}

// WithWrap sets the text wrap mode and returns the node.
func (n *Node) WithWrap(mode WrapMode) *Node {
	n.wrap = mode
	return n
}

// Kind returns the node variant.
func (n *Node) Kind() NodeKind { return n.kind }

// Key returns the layout key; empty means auto-assigned.
func (n *Node) Key() string { return n.key }

// Style returns the paint style.
func (n *Node) Style() core.Style { return n.style }

// Flex returns the layout style.
func (n *Node) Flex() layout.Style { return n.flex }

// Text returns the text content; empty for boxes.
func (n *Node) Text() string { return n.text }

// Wrap returns the text wrap mode.
func (n *Node) Wrap() WrapMode { return n.wrap }

// Children returns the child slice. Callers must not mutate it.
func (n *Node) Children() []*Node { return n.children }
