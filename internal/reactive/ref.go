package reactive

import "reflect"

// EqualsFunc reports whether two values are equal for change
// detection. Returning true suppresses the trigger.
type EqualsFunc[T any] func(a, b T) bool

// defaultEquals compares with == when both dynamic values are
// comparable. Non-comparable values (slices, maps, funcs) always count
// as changed.
func defaultEquals[T any](a, b T) bool {
	av, bv := any(a), any(b)
	if av == nil || bv == nil {
		return av == nil && bv == nil
	}
	ta, tb := reflect.TypeOf(av), reflect.TypeOf(bv)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return av == bv
}

// Ref is a mutable reactive cell. Reads inside an effect, watcher, or
// computed register a dependency; writes that change the value
// invalidate every subscriber.
type Ref[T any] struct {
	rt  *Runtime
	dep depSet
	val T
	eq  EqualsFunc[T]
}

// NewRef creates a ref holding v. An optional EqualsFunc overrides the
// default change detection.
func NewRef[T any](rt *Runtime, v T, eq ...EqualsFunc[T]) *Ref[T] {
	r := &Ref[T]{rt: rt, val: v, eq: defaultEquals[T]}
	r.dep.rt = rt
	if len(eq) > 0 && eq[0] != nil {
		r.eq = eq[0]
	}
	return r
}

// Get returns the current value, registering a dependency when called
// from a running observer.
func (r *Ref[T]) Get() T {
	r.dep.track()
	return r.val
}

// Peek returns the current value without registering a dependency.
func (r *Ref[T]) Peek() T {
	return r.val
}

// Set stores v. Subscribers are triggered only when v differs from the
// current value under the ref's equality function.
func (r *Ref[T]) Set(v T) {
	if r.eq(r.val, v) {
		return
	}
	r.val = v
	r.dep.trigger()
}

// Update applies fn to the current value and stores the result. The
// read does not register a dependency.
func (r *Ref[T]) Update(fn func(T) T) {
	r.Set(fn(r.val))
}
