package reactive

// Scheduler defers an invalidated effect's re-run. When an effect has
// a scheduler, dependency changes hand the run thunk to it instead of
// running inline; the scheduler decides when (and whether) to call it.
// Calling the thunk after Stop is a no-op.
type Scheduler func(run func())

// Effect runs a function and re-runs it whenever a dependency read
// during the previous run changes. The function runs once immediately
// at construction.
type Effect struct {
	rt      *Runtime
	fn      func()
	sched   Scheduler
	deps    []*depSet
	active  bool
	running bool
	name    string
}

// EffectOption configures an Effect.
type EffectOption func(*Effect)

// WithScheduler routes the effect's re-runs through s.
func WithScheduler(s Scheduler) EffectOption {
	return func(e *Effect) {
		e.sched = s
	}
}

// WithName labels the effect in recovered panic reports.
func WithName(name string) EffectOption {
	return func(e *Effect) {
		e.name = name
	}
}

// NewEffect creates an effect and runs fn once. A panic in fn is
// recovered, reported to the runtime's error handler, and does not
// prevent sibling subscribers of the same trigger from running.
func NewEffect(rt *Runtime, fn func(), opts ...EffectOption) *Effect {
	e := &Effect{rt: rt, fn: fn, active: true, name: "effect"}
	for _, opt := range opts {
		opt(e)
	}
	e.Run()
	return e
}

// Run executes the effect immediately, re-linking its dependencies.
// It is a no-op on a stopped or currently running effect.
func (e *Effect) Run() {
	if !e.active || e.running {
		return
	}
	e.running = true
	for _, d := range e.deps {
		d.unlink(e)
	}
	e.deps = e.deps[:0]

	prev := e.rt.active
	e.rt.active = e
	e.rt.effectRuns.Add(1)
	defer func() {
		e.rt.active = prev
		e.running = false
	}()
	e.rt.protect(e.name, e.fn)
}

// Stop unlinks the effect from every dependency set. Subsequent
// dependency changes no longer re-run it; stopping twice is a no-op.
func (e *Effect) Stop() {
	if !e.active {
		return
	}
	e.active = false
	for _, d := range e.deps {
		d.unlink(e)
	}
	e.deps = nil
}

// Active reports whether the effect has not been stopped.
func (e *Effect) Active() bool {
	return e.active
}

func (e *Effect) invalidate() {
	if !e.active {
		return
	}
	if e.sched != nil {
		e.rt.protect(e.name+" scheduler", func() { e.sched(e.Run) })
		return
	}
	e.Run()
}

func (e *Effect) addDep(d *depSet) {
	e.deps = append(e.deps, d)
}

func (e *Effect) label() string { return e.name }
