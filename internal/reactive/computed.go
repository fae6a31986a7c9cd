package reactive

// Computed is a derived reactive cell. The compute function runs
// lazily: a Get on a clean computed returns the cached value without
// calling it. When an upstream dependency changes the computed marks
// itself dirty and notifies its own subscribers exactly once per
// clean-to-dirty transition; the recompute happens on the next Get.
type Computed[T any] struct {
	rt    *Runtime
	dep   depSet
	fn    func() T
	val   T
	dirty bool
	deps  []*depSet
}

// NewComputed creates a computed cell deriving its value from fn. The
// first Get runs fn. Change suppression happens at the source refs:
// an upstream Set that compares equal never dirties the computed.
func NewComputed[T any](rt *Runtime, fn func() T) *Computed[T] {
	c := &Computed[T]{rt: rt, fn: fn, dirty: true}
	c.dep.rt = rt
	return c
}

// Get returns the derived value, recomputing only when dirty, and
// registers a dependency when called from a running observer.
func (c *Computed[T]) Get() T {
	if c.dirty {
		c.recompute()
	}
	c.dep.track()
	return c.val
}

// Peek returns the derived value without registering a dependency. It
// still recomputes when dirty.
func (c *Computed[T]) Peek() T {
	if c.dirty {
		c.recompute()
	}
	return c.val
}

// recompute clears the old dependency edges and re-links whatever fn
// reads this time. Dependencies are re-established on every run, so a
// branch not taken registers nothing.
func (c *Computed[T]) recompute() {
	for _, d := range c.deps {
		d.unlink(c)
	}
	c.deps = c.deps[:0]

	prev := c.rt.active
	c.rt.active = c
	defer func() { c.rt.active = prev }()
	c.val = c.fn()
	c.dirty = false
}

func (c *Computed[T]) invalidate() {
	if c.dirty {
		return
	}
	c.dirty = true
	c.dep.trigger()
}

func (c *Computed[T]) addDep(d *depSet) {
	c.deps = append(c.deps, d)
}

func (c *Computed[T]) label() string { return "computed" }
