// Package layout computes flexbox layouts for keyed node trees in
// integer terminal cells.
//
// The engine is a standalone collaborator: callers register nodes and
// styles by string key with UpdateNodes, then ask for a full pass with
// ComputeLayout, which returns absolute rects for every visible node
// reachable from the root. It must be initialized once before use.
package layout

import (
	"context"
	"fmt"
	"sync"
)

// NodeUpdate upserts one node. A zero Children slice leaves the
// node's existing children untouched; an empty non-nil slice clears
// them.
type NodeUpdate struct {
	Key      string
	Style    Style
	Children []string
}

type node struct {
	key      string
	style    Style
	children []string
}

// Engine holds the node tree and runs layout passes. All methods are
// safe for concurrent use.
type Engine struct {
	initOnce sync.Once
	ready    chan struct{}

	mu    sync.Mutex
	nodes map[string]*node
}

// NewEngine creates an uninitialized engine. Call Init before any
// other method.
func NewEngine() *Engine {
	return &Engine{
		ready: make(chan struct{}),
		nodes: make(map[string]*node),
	}
}

// Init performs one-time initialization. Repeated and concurrent
// calls are no-ops once the first completes.
func (e *Engine) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.initOnce.Do(func() {
		close(e.ready)
	})
	return nil
}

func (e *Engine) initialized() bool {
	select {
	case <-e.ready:
		return true
	default:
		return false
	}
}

// UpdateNodes upserts nodes and their child lists. Styles are applied
// first and children wired second, so updates may reference keys
// introduced later in the same batch. Referencing a key that exists
// in neither the tree nor the batch fails with ErrUnknownNode.
func (e *Engine) UpdateNodes(updates []NodeUpdate) error {
	if !e.initialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, u := range updates {
		n, ok := e.nodes[u.Key]
		if !ok {
			n = &node{key: u.Key}
			e.nodes[u.Key] = n
		}
		n.style = u.Style
	}
	for _, u := range updates {
		if u.Children == nil {
			continue
		}
		for _, c := range u.Children {
			if _, ok := e.nodes[c]; !ok {
				return fmt.Errorf("%w: %q as child of %q", ErrUnknownNode, c, u.Key)
			}
		}
		e.nodes[u.Key].children = append(e.nodes[u.Key].children[:0], u.Children...)
	}
	return nil
}

// RemoveNodes removes nodes by key and prunes them from every
// remaining child list. Descendants of a removed node stay registered
// until removed themselves; they simply become unreachable.
func (e *Engine) RemoveNodes(keys []string) error {
	if !e.initialized() {
		return ErrNotInitialized
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	gone := make(map[string]bool, len(keys))
	for _, k := range keys {
		gone[k] = true
		delete(e.nodes, k)
	}
	for _, n := range e.nodes {
		kept := n.children[:0]
		for _, c := range n.children {
			if !gone[c] {
				kept = append(kept, c)
			}
		}
		n.children = kept
	}
	return nil
}

// Len returns the number of registered nodes.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}
