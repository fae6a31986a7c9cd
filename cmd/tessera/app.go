package main

import (
	"fmt"
	"time"

	"github.com/dshills/tessera/internal/config"
	"github.com/dshills/tessera/internal/layout"
	"github.com/dshills/tessera/internal/reactive"
	"github.com/dshills/tessera/internal/renderer"
	"github.com/dshills/tessera/internal/renderer/core"
	"github.com/dshills/tessera/internal/renderer/diff"
	"github.com/dshills/tessera/internal/term"
	"github.com/dshills/tessera/internal/term/key"
)

var (
	barStyle     = core.NewStyle(core.ColorFromRGB(230, 230, 230)).WithBackground(core.ColorFromRGB(38, 79, 120))
	titleStyle   = barStyle.Bold()
	headingStyle = core.DefaultStyle().Bold().Underline()
	dimStyle     = core.DefaultStyle().Dim()
	noticeStyle  = core.NewStyle(core.ColorFromRGB(255, 196, 92))
)

// app holds the demo's reactive state. Every field the view reads is
// a ref, so a change to any of them schedules a frame.
type app struct {
	ovPath string

	cfg     *reactive.Ref[config.Config]
	clock   *reactive.Ref[string]
	keys    *reactive.Ref[int]
	lastKey *reactive.Ref[string]
	frames  *reactive.Ref[uint64]
	notice  *reactive.Ref[string]
	title   *reactive.Computed[string]
}

func newApp(rt *reactive.Runtime, cfg config.Config, ovPath string) *app {
	a := &app{
		ovPath:  ovPath,
		cfg:     reactive.NewRef(rt, cfg),
		clock:   reactive.NewRef(rt, time.Now().Format("15:04:05")),
		keys:    reactive.NewRef(rt, 0),
		lastKey: reactive.NewRef(rt, "none"),
		frames:  reactive.NewRef(rt, uint64(0)),
		notice:  reactive.NewRef(rt, ""),
	}
	a.title = reactive.NewComputed(rt, func() string {
		return fmt.Sprintf(" tessera %s   %s ", version, a.clock.Get())
	})
	return a
}

func (a *app) view() *renderer.Node {
	cfg := a.cfg.Get()
	return renderer.Box("root", layout.Style{Direction: layout.DirectionColumn, Shrink: 1},
		renderer.Box("header", layout.Style{Height: layout.Cells(1), Shrink: 0},
			renderer.Text("title", a.title.Get()).WithStyle(titleStyle),
		).WithStyle(barStyle),
		renderer.Box("body", layout.Style{Grow: 1, Shrink: 1, Direction: layout.DirectionRow, Padding: layout.EdgesHV(1, 0), Gap: 2},
			a.statsPane(cfg),
			a.aboutPane(),
		),
		renderer.Text("notice", a.notice.Get()).
			WithStyle(noticeStyle).
			WithFlex(layout.Style{Height: layout.Cells(1), Shrink: 0}),
		renderer.Box("footer", layout.Style{Height: layout.Cells(1), Shrink: 0},
			renderer.Text("hints", " q quit   C-l repaint   +/- fps ").WithStyle(barStyle),
		).WithStyle(barStyle),
	)
}

func (a *app) statsPane(cfg config.Config) *renderer.Node {
	return renderer.Box("stats", layout.Style{Direction: layout.DirectionColumn, Grow: 1, Shrink: 1},
		renderer.Text("stats.head", "session").WithStyle(headingStyle),
		renderer.Text("stats.keys", fmt.Sprintf("keys      %d", a.keys.Get())),
		renderer.Text("stats.last", "last key  "+a.lastKey.Get()),
		renderer.Text("stats.frames", fmt.Sprintf("frames    %d", a.frames.Get())),
		renderer.Text("stats.fps", fmt.Sprintf("max fps   %d", cfg.Render.MaxFPS)),
		renderer.Text("stats.depth", "colors    "+cfg.Render.ColorDepth),
	)
}

func (a *app) aboutPane() *renderer.Node {
	const blurb = "Tessera renders this screen reactively: every value on the left is " +
		"a ref, and the frame you are looking at was produced by diffing two cell " +
		"buffers and writing only the cells that changed. Resize the terminal or " +
		"hold a key to watch the pipeline keep up."
	return renderer.Box("about", layout.Style{Direction: layout.DirectionColumn, Grow: 2, Shrink: 1},
		renderer.Text("about.head", "about").WithStyle(headingStyle),
		renderer.Text("about.blurb", blurb).
			WithWrap(renderer.WrapSoft).
			WithStyle(dimStyle).
			WithFlex(layout.Style{Grow: 1, Shrink: 1}),
	)
}

func (a *app) tick(now time.Time, p *renderer.Pipeline) {
	a.clock.Set(now.Format("15:04:05"))
	a.frames.Set(p.Frames())
}

func (a *app) recordKey(ev key.Event) {
	a.keys.Update(func(n int) int { return n + 1 })
	a.lastKey.Set(ev.String())
}

func (a *app) applyConfig(c config.Config) {
	a.cfg.Set(c)
	a.setNotice("config reloaded")
}

func (a *app) setNotice(msg string) {
	a.notice.Set(fmt.Sprintf(" %s (%s)", msg, time.Now().Format("15:04:05")))
}

// reportFrameError runs on the pipeline goroutine, so it may write
// refs directly.
func (a *app) reportFrameError(err error) {
	a.setNotice("frame: " + err.Error())
}

func (a *app) adjustFPS(p *renderer.Pipeline, delta int) {
	cfg := a.cfg.Get()
	fps := min(240, max(1, cfg.Render.MaxFPS+delta))
	if fps == cfg.Render.MaxFPS {
		return
	}
	cfg.Render.MaxFPS = fps
	a.cfg.Set(cfg)
	p.SetMaxFPS(fps)

	if a.ovPath == "" {
		a.setNotice(fmt.Sprintf("max fps %d", fps))
		return
	}
	if err := config.SaveOverride(a.ovPath, "render.max_fps", fps); err != nil {
		a.setNotice("override: " + err.Error())
		return
	}
	a.setNotice(fmt.Sprintf("max fps %d (saved)", fps))
}

// resolveDepth maps the configured color depth onto a renderer depth,
// consulting terminal capabilities for "auto".
func resolveDepth(name string, caps term.Caps) diff.ColorDepth {
	switch name {
	case "mono":
		return diff.DepthMono
	case "16":
		return diff.Depth16
	case "256":
		return diff.Depth256
	case "truecolor":
		return diff.DepthTrueColor
	}
	switch {
	case caps.TrueColor:
		return diff.DepthTrueColor
	case caps.Colors >= 256:
		return diff.Depth256
	case caps.Colors >= 16:
		return diff.Depth16
	}
	return diff.DepthMono
}
