// Package main is the entry point for the tessera demo.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/tessera/internal/config"
	"github.com/dshills/tessera/internal/layout"
	"github.com/dshills/tessera/internal/profile"
	"github.com/dshills/tessera/internal/reactive"
	"github.com/dshills/tessera/internal/renderer"
	"github.com/dshills/tessera/internal/term"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// errQuit signals a user-requested exit.
var errQuit = errors.New("quit")

func main() {
	os.Exit(run())
}

type options struct {
	ConfigPath  string
	ProfilePath string
	FPS         int
}

func run() int {
	opts := parseFlags()

	cfg, overrides, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	var sink profile.Sink
	if cfg.Profile.Enabled && cfg.Profile.Output != "" {
		js, err := profile.NewJSONLSink(cfg.Profile.Output, "")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		sink = js
	}
	collector := profile.NewCollector(cfg.Profile.Ring, sink)
	defer printSummary(collector, cfg.Profile.Enabled)
	defer collector.Close()

	t := term.NewTTY(term.Options{
		EscTimeout:  time.Duration(cfg.Terminal.EscTimeoutMS) * time.Millisecond,
		EventBuffer: cfg.Terminal.EventBuffer,
	})
	if err := t.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to init terminal: %v\n", err)
		return 1
	}
	defer t.Restore()

	rt := reactive.NewRuntime()
	a := newApp(rt, cfg, overridesPath(opts.ConfigPath))

	p, err := renderer.New(a.view, renderer.Options{
		Terminal:  t,
		Engine:    layout.NewEngine(),
		Runtime:   rt,
		Depth:     resolveDepth(cfg.Render.ColorDepth, term.DetectCaps()),
		MaxFPS:    cfg.Render.MaxFPS,
		Collector: collector,
		Reporter:  a.reportFrameError,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer p.Close()

	// Config edits on disk flow into the running view; the override
	// layer stays applied on top of each reload.
	if opts.ConfigPath != "" {
		w, werr := config.NewWatcher(opts.ConfigPath, func(c config.Config) {
			if overrides != nil {
				if oc, oerr := overrides.Apply(c); oerr == nil {
					c = oc
				}
			}
			p.SetMaxFPS(c.Render.MaxFPS)
			p.Post(func() { a.applyConfig(c) })
		}, config.WithErrorHandler(func(err error) {
			p.Post(func() { a.setNotice("config: " + err.Error()) })
		}))
		if werr != nil {
			fmt.Fprintf(os.Stderr, "Error: watch config: %v\n", werr)
			return 1
		}
		defer w.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	runDone := make(chan error, 1)
	go func() { runDone <- p.Run(ctx) }()

	if err := loop(cancel, p, t, a, signals, runDone); err != nil {
		if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// loop owns key dispatch. All reactive writes go through Post so they
// run on the pipeline goroutine that owns the runtime.
func loop(cancel context.CancelFunc, p *renderer.Pipeline, t *term.TTY, a *app, signals <-chan os.Signal, runDone <-chan error) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case err := <-runDone:
			return err
		case <-signals:
			cancel()
		case now := <-ticker.C:
			p.Post(func() { a.tick(now, p) })
		case ev := <-t.Events():
			switch {
			case ev.Matches("q") || ev.Matches("<C-c>"):
				cancel()
				if err := <-runDone; err != nil && !errors.Is(err, context.Canceled) {
					return err
				}
				return errQuit
			case ev.Matches("<C-l>"):
				p.Redraw()
			case ev.IsRune() && (ev.Rune == '+' || ev.Rune == '='):
				p.Post(func() { a.adjustFPS(p, 10) })
			case ev.IsRune() && ev.Rune == '-':
				p.Post(func() { a.adjustFPS(p, -10) })
			default:
				p.Post(func() { a.recordKey(ev) })
			}
		}
	}
}

func loadConfig(opts options) (config.Config, *config.Overrides, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		var perr *config.ParseError
		if errors.As(err, &perr) {
			return config.Config{}, nil, fmt.Errorf("%s:%d:%d: %s", perr.Path, perr.Line, perr.Column, perr.Message)
		}
		return config.Config{}, nil, err
	}

	ovPath := overridesPath(opts.ConfigPath)
	if ovPath == "" {
		applyFlags(&cfg, opts)
		return cfg, nil, nil
	}
	ov, err := config.LoadOverrides(ovPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err = ov.Apply(cfg)
	if err != nil {
		return config.Config{}, nil, err
	}
	applyFlags(&cfg, opts)
	return cfg, ov, nil
}

// overridesPath puts overrides.json next to the config file. With no
// config file there is nowhere sensible to persist overrides.
func overridesPath(configPath string) string {
	if configPath == "" {
		return ""
	}
	return filepath.Join(filepath.Dir(configPath), "overrides.json")
}

func applyFlags(cfg *config.Config, opts options) {
	if opts.FPS > 0 {
		cfg.Render.MaxFPS = min(240, opts.FPS)
	}
	if opts.ProfilePath != "" {
		cfg.Profile.Enabled = true
		cfg.Profile.Output = opts.ProfilePath
	}
}

func printSummary(c *profile.Collector, enabled bool) {
	if !enabled {
		return
	}
	s := c.Summary()
	fmt.Printf("profiled %d frames (%d full redraws): avg %v, max %v, avg %d cells/frame\n",
		s.Frames, s.FullRedraws, s.AvgTotal, s.MaxTotal, s.AvgCells)
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.ProfilePath, "profile", "", "Write per-frame metrics to this JSON Lines file")
	flag.StringVar(&opts.ProfilePath, "p", "", "Write per-frame metrics to this JSON Lines file (shorthand)")
	flag.IntVar(&opts.FPS, "fps", 0, "Override the frame rate cap (1-240)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Tessera - reactive terminal rendering demo\n\n")
		fmt.Fprintf(os.Stderr, "Usage: tessera [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nKeys:\n")
		fmt.Fprintf(os.Stderr, "  q, Ctrl+C     Quit\n")
		fmt.Fprintf(os.Stderr, "  Ctrl+L        Repaint the whole screen\n")
		fmt.Fprintf(os.Stderr, "  + / -         Raise / lower the frame rate cap\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Tessera %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	return opts
}
