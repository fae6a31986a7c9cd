package reactive

// StopFunc tears down a watcher. Calling it twice is a no-op.
type StopFunc func()

// WatchCallback receives the new and previous source values. Functions
// registered through onCleanup run before the next callback and once
// more at stop; registrations are per-invocation.
type WatchCallback[T any] func(newVal, oldVal T, onCleanup func(func()))

type watchOptions struct {
	immediate bool
}

// WatchOption configures Watch.
type WatchOption func(*watchOptions)

// WithImmediate fires the callback once at construction with the zero
// value as the previous value.
func WithImmediate() WatchOption {
	return func(o *watchOptions) {
		o.immediate = true
	}
}

// Watch evaluates source under tracking and invokes cb whenever its
// value changes. The callback itself runs untracked: reads inside it
// register nothing. The source's comparability decides change
// detection, same as Ref.
func Watch[T any](rt *Runtime, source func() T, cb WatchCallback[T], opts ...WatchOption) StopFunc {
	var o watchOptions
	for _, opt := range opts {
		opt(&o)
	}

	w := &watcher{rt: rt}
	var (
		old   T
		first = true
		eq    = defaultEquals[T]
	)
	run := func() {
		v := source()
		if first {
			first = false
			if o.immediate {
				var zero T
				w.fire(func(onCleanup func(func())) { cb(v, zero, onCleanup) })
			}
			old = v
			return
		}
		if eq(old, v) {
			return
		}
		prev := old
		old = v
		w.fire(func(onCleanup func(func())) { cb(v, prev, onCleanup) })
	}
	w.effect = NewEffect(rt, run, WithName("watch"))
	return w.stop
}

// WatchEffect runs fn immediately and re-runs it when any dependency
// read during the previous run changes. Cleanups registered through
// the onCleanup argument run before each re-run and at stop.
func WatchEffect(rt *Runtime, fn func(onCleanup func(func())), opts ...EffectOption) StopFunc {
	w := &watcher{rt: rt}
	run := func() {
		w.runCleanups()
		fn(w.register)
	}
	eopts := append([]EffectOption{WithName("watchEffect")}, opts...)
	w.effect = NewEffect(rt, run, eopts...)
	return w.stop
}

// watcher carries the cleanup bookkeeping shared by Watch and
// WatchEffect.
type watcher struct {
	rt       *Runtime
	effect   *Effect
	cleanups []func()
}

func (w *watcher) register(fn func()) {
	if fn != nil {
		w.cleanups = append(w.cleanups, fn)
	}
}

// fire runs pending cleanups, then the callback, untracked so the
// callback's reads register nothing against the watcher's effect.
func (w *watcher) fire(call func(onCleanup func(func()))) {
	w.runCleanups()
	w.rt.PauseTracking()
	defer w.rt.ResetTracking()
	call(w.register)
}

func (w *watcher) runCleanups() {
	if len(w.cleanups) == 0 {
		return
	}
	pending := w.cleanups
	w.cleanups = nil
	for _, fn := range pending {
		w.rt.protect("watch cleanup", fn)
	}
}

func (w *watcher) stop() {
	if w.effect == nil || !w.effect.Active() {
		return
	}
	w.effect.Stop()
	w.runCleanups()
}
