// Package renderer turns reactive view trees into terminal frames.
// A Pipeline runs the frame loop: query size, lay out the tree,
// rasterize it into the back buffer, diff against the front buffer,
// write the minimal escape stream and swap. Each stage is an error
// boundary; a failed frame is dropped whole and the screen keeps
// its previous content.
package renderer

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dshills/tessera/internal/layout"
	"github.com/dshills/tessera/internal/profile"
	"github.com/dshills/tessera/internal/reactive"
	"github.com/dshills/tessera/internal/renderer/buffer"
	"github.com/dshills/tessera/internal/renderer/diff"
	"github.com/dshills/tessera/internal/renderer/grapheme"
	"github.com/dshills/tessera/internal/term"
)

// Options configures a Pipeline. Terminal, Engine and Runtime are
// required.
type Options struct {
	Terminal term.Terminal
	Engine   *layout.Engine
	Runtime  *reactive.Runtime

	// Depth selects the color resolution of emitted escapes.
	Depth diff.ColorDepth

	// MaxFPS caps the frame rate. Zero means the default of 60.
	MaxFPS int

	// Collector receives per-frame metrics when set.
	Collector *profile.Collector

	// Reporter receives frame errors. The pipeline keeps running
	// after reporting; a frame error never stops the loop.
	Reporter func(error)
}

// Pipeline owns the double buffer and drives frames. The view
// function runs under a reactive effect: any Ref or Computed it
// reads becomes a dependency, and changing one schedules a frame.
type Pipeline struct {
	opts Options
	view func() *Node

	effect    *reactive.Effect
	viewDirty atomic.Bool
	frameReq  chan struct{}
	posted    chan func()

	mu       sync.Mutex
	root     *Node
	pool     *buffer.Pool
	front    *buffer.Buffer
	back     *buffer.Buffer
	rows     int
	cols     int
	needFull bool
	lastErr  error

	known  map[string]struct{}
	rend   *diff.Renderer
	maxFPS atomic.Int64
	frames atomic.Uint64
	errs   atomic.Uint64
}

// New creates a Pipeline for the given view function. The function
// is run once immediately to capture its dependencies.
func New(view func() *Node, opts Options) (*Pipeline, error) {
	if view == nil {
		return nil, errors.New("renderer: view function is required")
	}
	if opts.Terminal == nil {
		return nil, errors.New("renderer: Options.Terminal is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("renderer: Options.Engine is required")
	}
	if opts.Runtime == nil {
		return nil, errors.New("renderer: Options.Runtime is required")
	}
	if opts.MaxFPS <= 0 {
		opts.MaxFPS = 60
	}
	if opts.Reporter == nil {
		opts.Reporter = func(error) {}
	}

	p := &Pipeline{
		opts:     opts,
		view:     view,
		frameReq: make(chan struct{}, 1),
		posted:   make(chan func(), 64),
		known:    make(map[string]struct{}),
		rend:     diff.NewRenderer(diff.Options{Depth: opts.Depth}),
	}
	p.maxFPS.Store(int64(opts.MaxFPS))
	// Dependency changes only mark the view dirty and request a
	// frame; the tree rebuild happens on the render goroutine at
	// the top of the next frame.
	p.effect = reactive.NewEffect(opts.Runtime, func() {
		root := view()
		p.mu.Lock()
		p.root = root
		p.mu.Unlock()
	}, reactive.WithName("view"), reactive.WithScheduler(func(func()) {
		p.viewDirty.Store(true)
		p.RequestFrame()
	}))
	return p, nil
}

// RequestFrame schedules a frame. Requests arriving while one is
// already pending collapse into a single frame.
func (p *Pipeline) RequestFrame() {
	select {
	case p.frameReq <- struct{}{}:
	default:
	}
}

// Post hands fn to the loop goroutine, which runs it before the next
// frame. Once Run has started, reactive state read by the view must
// only be mutated through Post; the runtime is owned by the loop.
// Post blocks when the queue is full.
func (p *Pipeline) Post(fn func()) {
	p.posted <- fn
}

// Redraw schedules a frame that repaints the whole screen instead of
// diffing against the front buffer.
func (p *Pipeline) Redraw() {
	p.mu.Lock()
	p.needFull = true
	p.mu.Unlock()
	p.RequestFrame()
}

// SetMaxFPS changes the frame rate cap for subsequent frames. Values
// below 1 are ignored.
func (p *Pipeline) SetMaxFPS(fps int) {
	if fps < 1 {
		return
	}
	p.maxFPS.Store(int64(fps))
}

// Run drives frames until ctx is cancelled. It initializes the
// layout engine, renders an initial frame, then renders on demand,
// pacing frames to Options.MaxFPS.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.opts.Engine.Init(ctx); err != nil {
		return err
	}
	var last time.Time

	p.RequestFrame()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-p.posted:
			fn()
		case s := <-p.opts.Terminal.Resizes():
			p.resize(s.Rows, s.Cols)
			p.RequestFrame()
		case <-p.frameReq:
			minInterval := time.Second / time.Duration(p.maxFPS.Load())
			if wait := minInterval - time.Since(last); wait > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(wait):
				}
			}
			if err := p.renderFrame(); err != nil {
				p.errs.Add(1)
				p.mu.Lock()
				p.lastErr = err
				p.mu.Unlock()
				p.opts.Reporter(err)
			}
			last = time.Now()
		}
	}
}

// Render draws a single frame synchronously on the calling goroutine,
// initializing the layout engine if needed. It exists for callers that
// own the frame cadence themselves and must not be called while Run is
// active. A pending RequestFrame is absorbed by the render.
func (p *Pipeline) Render(ctx context.Context) error {
	if err := p.opts.Engine.Init(ctx); err != nil {
		return err
	}
	select {
	case <-p.frameReq:
	default:
	}
	if err := p.renderFrame(); err != nil {
		p.errs.Add(1)
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		return err
	}
	return nil
}

// Close stops the view effect and returns the buffers to the pool.
func (p *Pipeline) Close() {
	p.effect.Stop()
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.front != nil {
		p.pool.Put(p.front)
		p.pool.Put(p.back)
		p.front, p.back = nil, nil
	}
}

// Frames reports how many frames completed successfully.
func (p *Pipeline) Frames() uint64 { return p.frames.Load() }

// Errors reports how many frames failed.
func (p *Pipeline) Errors() uint64 { return p.errs.Load() }

// LastError returns the most recent frame error, or nil.
func (p *Pipeline) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Pipeline) renderFrame() error {
	start := time.Now()
	m := profile.FrameMetrics{Time: start}

	t := time.Now()
	if err := p.ensureSize(); err != nil {
		return phaseErr(PhaseSize, err)
	}
	m.Size = time.Since(t)

	t = time.Now()
	if p.viewDirty.Swap(false) {
		p.effect.Run()
	}
	p.mu.Lock()
	root, rows, cols := p.root, p.rows, p.cols
	p.mu.Unlock()
	if root == nil {
		return phaseErr(PhaseLayout, ErrNoView)
	}
	rects, err := p.layoutTree(root, rows, cols)
	if err != nil {
		return phaseErr(PhaseLayout, err)
	}
	m.Layout = time.Since(t)

	t = time.Now()
	p.back.Clear()
	// Drop the wholesale dirty marks from Clear so only rows the
	// raster writes stay flagged; the diff skips the rest.
	p.back.ClearDirty()
	if err := Rasterize(root, rects, p.back); err != nil {
		return phaseErr(PhaseRaster, err)
	}
	m.Raster = time.Since(t)

	t = time.Now()
	var out []byte
	var st diff.Stats
	if p.needFull {
		out, st = p.rend.FullRedraw(p.back)
	} else {
		out, st = p.rend.Diff(p.front, p.back)
	}
	m.Diff = time.Since(t)
	m.CellsChanged = st.CellsChanged
	m.BytesWritten = len(out)
	m.FullRedraw = st.FullRedraw

	t = time.Now()
	if len(out) > 0 {
		if _, err := p.opts.Terminal.Write(out); err != nil {
			return phaseErr(PhaseWrite, err)
		}
	}
	m.Write = time.Since(t)

	// The write made it to the terminal, so the back buffer now
	// matches the screen. Only here does it become the front.
	p.mu.Lock()
	p.front, p.back = p.back, p.front
	p.needFull = false
	p.mu.Unlock()
	p.frames.Add(1)

	m.Total = time.Since(start)
	if p.opts.Collector != nil {
		p.opts.Collector.Record(m)
	}
	return nil
}

func (p *Pipeline) ensureSize() error {
	p.mu.Lock()
	have := p.front != nil
	p.mu.Unlock()
	if have {
		return nil
	}
	rows, cols, err := p.opts.Terminal.Size()
	if err != nil {
		return err
	}
	p.setSize(rows, cols)
	return nil
}

func (p *Pipeline) resize(rows, cols int) {
	p.mu.Lock()
	same := rows == p.rows && cols == p.cols && p.front != nil
	front, back, pool := p.front, p.back, p.pool
	p.mu.Unlock()
	if same {
		return
	}
	if front != nil {
		pool.Put(front)
		pool.Put(back)
	}
	p.setSize(rows, cols)
}

func (p *Pipeline) setSize(rows, cols int) {
	pool := buffer.Global(rows, cols)
	p.mu.Lock()
	p.pool = pool
	p.front = pool.Get()
	p.back = pool.Get()
	p.rows, p.cols = rows, cols
	p.needFull = true
	p.mu.Unlock()
}

// layoutTree pushes the view tree into the layout engine and
// computes rects. The root is forced to the terminal dimensions;
// keys that disappeared since the previous frame are removed.
func (p *Pipeline) layoutTree(root *Node, rows, cols int) (map[string]layout.Rect, error) {
	var updates []layout.NodeUpdate
	collectUpdates(root, "", 0, &updates)

	rootStyle := updates[0].Style
	rootStyle.Width = layout.Cells(cols)
	rootStyle.Height = layout.Cells(rows)
	updates[0].Style = rootStyle

	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		seen[u.Key] = struct{}{}
	}
	var gone []string
	for k := range p.known {
		if _, ok := seen[k]; !ok {
			gone = append(gone, k)
		}
	}
	if len(gone) > 0 {
		if err := p.opts.Engine.RemoveNodes(gone); err != nil {
			return nil, err
		}
	}
	if err := p.opts.Engine.UpdateNodes(updates); err != nil {
		return nil, err
	}
	p.known = seen
	return p.opts.Engine.ComputeLayout(root.key)
}

// collectUpdates stamps auto keys, measures text leaves and
// flattens the tree into engine updates, root first.
func collectUpdates(n *Node, parentKey string, idx int, ups *[]layout.NodeUpdate) {
	if n.key == "" {
		if parentKey == "" {
			n.key = "root"
		} else {
			n.key = parentKey + "." + strconv.Itoa(idx)
		}
	}

	st := n.flex
	if n.kind == KindText {
		measureText(n, &st)
	}
	children := make([]string, 0, len(n.children))

	// Reserve our slot before recursing so the root stays first.
	at := len(*ups)
	*ups = append(*ups, layout.NodeUpdate{Key: n.key, Style: st})

	for i, c := range n.children {
		collectUpdates(c, n.key, i, ups)
		children = append(children, c.key)
	}
	(*ups)[at].Children = children
}

// measureText gives auto-sized text leaves their natural single
// column dimensions. Wrapped text keeps its natural width as the
// flex basis; when squeezed it shrinks and wraps at raster time.
func measureText(n *Node, st *layout.Style) {
	if st.Grow > 0 {
		return
	}
	lines := strings.Split(n.text, "\n")
	if st.Width.IsAuto() {
		w := 0
		for _, line := range lines {
			w = max(w, grapheme.Width(line))
		}
		st.Width = layout.Cells(w)
	}
	if st.Height.IsAuto() {
		st.Height = layout.Cells(len(lines))
	}
}
