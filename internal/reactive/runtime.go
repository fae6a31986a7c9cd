// Package reactive implements fine-grained dependency tracking for
// incremental recomputation: refs hold values, computeds derive them,
// effects and watchers react to changes.
//
// All tracking state belongs to a Runtime. A Runtime is single-owner:
// refs may be read from any goroutine that owns no effects, but all
// mutation (Set, effect runs, Stop) must happen on the goroutine that
// drives the runtime. Cross-goroutine producers hand values into the
// owning loop through channels; see the renderer pipeline for the
// canonical wiring.
package reactive

import (
	"runtime/debug"
	"sync/atomic"
)

// observer is anything that subscribes to dependency sets: effects,
// watchers, and computed values.
type observer interface {
	// invalidate is called when a tracked dependency changes.
	invalidate()
	// addDep records the reverse edge so the observer can unlink
	// itself before re-running or on stop.
	addDep(d *depSet)
	// label identifies the observer in recovered panic reports.
	label() string
}

// Runtime owns the tracking state for one reactive graph. The zero
// value is not usable; construct with NewRuntime.
type Runtime struct {
	active observer
	// pauseDepth > 0 disables tracking. Each PauseTracking pushes one
	// level; ResetTracking pops one.
	pauseDepth int

	onError func(error)
	lastErr error

	// Stats
	triggers   atomic.Uint64
	effectRuns atomic.Uint64
	panics     atomic.Uint64
}

// Option configures a Runtime.
type Option func(*Runtime)

// WithErrorHandler sets the handler invoked with errors recovered from
// panicking effect, watcher, and scheduler callbacks. The handler runs
// on the runtime's goroutine.
func WithErrorHandler(h func(error)) Option {
	return func(rt *Runtime) {
		rt.onError = h
	}
}

// NewRuntime creates an empty reactive runtime.
func NewRuntime(opts ...Option) *Runtime {
	rt := &Runtime{}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime = NewRuntime()

// Default returns the package-wide runtime. It exists for convenience;
// every API in this package also works against an explicitly
// constructed Runtime, and code that owns a render loop should prefer
// its own.
func Default() *Runtime {
	return defaultRuntime
}

// PauseTracking disables dependency registration until a matching
// ResetTracking. Calls nest.
func (rt *Runtime) PauseTracking() {
	rt.pauseDepth++
}

// ResetTracking undoes one PauseTracking. Calling it with no pause in
// effect is a no-op.
func (rt *Runtime) ResetTracking() {
	if rt.pauseDepth > 0 {
		rt.pauseDepth--
	}
}

// Untracked runs fn with tracking paused and returns its result. Reads
// inside fn register no dependencies.
func Untracked[T any](rt *Runtime, fn func() T) T {
	rt.PauseTracking()
	defer rt.ResetTracking()
	return fn()
}

// LastError returns the most recent error recovered from a listener
// panic, or nil.
func (rt *Runtime) LastError() error {
	return rt.lastErr
}

// Stats is a snapshot of runtime counters.
type Stats struct {
	Triggers        uint64
	EffectRuns      uint64
	RecoveredPanics uint64
}

// Stats returns current runtime statistics. Counters are atomic so the
// snapshot may be taken from any goroutine.
func (rt *Runtime) Stats() Stats {
	return Stats{
		Triggers:        rt.triggers.Load(),
		EffectRuns:      rt.effectRuns.Load(),
		RecoveredPanics: rt.panics.Load(),
	}
}

// protect runs fn, converting a panic into a ListenerError delivered to
// the error handler. Only user-supplied callbacks are run under
// protect; engine-internal panics propagate.
func (rt *Runtime) protect(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			rt.panics.Add(1)
			rt.report(&ListenerError{Listener: name, Value: r, Stack: debug.Stack()})
		}
	}()
	fn()
}

func (rt *Runtime) report(err error) {
	rt.lastErr = err
	if rt.onError == nil {
		return
	}
	// The handler must not take the runtime down with it.
	defer func() { _ = recover() }()
	rt.onError(err)
}

// depSet is an ownership-scoped subscriber list: every ref and computed
// embeds its own. Unsubscribing nils the slot rather than reordering,
// so trigger order stays stable; the list compacts once half the slots
// are holes.
type depSet struct {
	rt    *Runtime
	subs  []observer
	idx   map[observer]int
	holes int
}

// track subscribes the currently running observer, if any.
func (d *depSet) track() {
	obs := d.rt.active
	if obs == nil || d.rt.pauseDepth > 0 {
		return
	}
	if d.idx == nil {
		d.idx = make(map[observer]int)
	}
	if _, ok := d.idx[obs]; ok {
		return
	}
	d.idx[obs] = len(d.subs)
	d.subs = append(d.subs, obs)
	obs.addDep(d)
}

// unlink removes obs from the set. Safe to call for an observer that
// was never subscribed.
func (d *depSet) unlink(obs observer) {
	i, ok := d.idx[obs]
	if !ok {
		return
	}
	d.subs[i] = nil
	delete(d.idx, obs)
	d.holes++
	if d.holes > len(d.subs)/2 {
		d.compact()
	}
}

func (d *depSet) compact() {
	live := d.subs[:0]
	for _, o := range d.subs {
		if o != nil {
			d.idx[o] = len(live)
			live = append(live, o)
		}
	}
	d.subs = live
	d.holes = 0
}

// trigger invalidates every subscriber. The list is snapshotted first
// so callbacks may subscribe or unsubscribe without corrupting the
// iteration.
func (d *depSet) trigger() {
	if len(d.subs) == 0 {
		return
	}
	d.rt.triggers.Add(1)
	snap := make([]observer, 0, len(d.subs)-d.holes)
	for _, o := range d.subs {
		if o != nil {
			snap = append(snap, o)
		}
	}
	for _, o := range snap {
		o.invalidate()
	}
}
