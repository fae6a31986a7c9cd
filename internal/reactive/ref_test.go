package reactive

import "testing"

func TestRef_GetSet(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 10)

	if got := r.Get(); got != 10 {
		t.Errorf("Get() = %d, want 10", got)
	}

	r.Set(42)
	if got := r.Get(); got != 42 {
		t.Errorf("Get() after Set = %d, want 42", got)
	}
}

func TestRef_SetEqualValueDoesNotTrigger(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, "a")

	runs := 0
	NewEffect(rt, func() {
		r.Get()
		runs++
	})
	if runs != 1 {
		t.Fatalf("effect runs after construction = %d, want 1", runs)
	}

	r.Set("a")
	if runs != 1 {
		t.Errorf("effect runs after equal Set = %d, want 1", runs)
	}

	r.Set("b")
	if runs != 2 {
		t.Errorf("effect runs after changed Set = %d, want 2", runs)
	}
}

func TestRef_CustomEquals(t *testing.T) {
	rt := NewRuntime()
	// Treat values within 0.5 of each other as unchanged.
	near := func(a, b float64) bool {
		d := a - b
		return d > -0.5 && d < 0.5
	}
	r := NewRef(rt, 1.0, near)

	runs := 0
	NewEffect(rt, func() {
		r.Get()
		runs++
	})

	r.Set(1.2)
	if runs != 1 {
		t.Errorf("effect runs after near Set = %d, want 1", runs)
	}
	r.Set(2.0)
	if runs != 2 {
		t.Errorf("effect runs after far Set = %d, want 2", runs)
	}
}

func TestRef_NonComparableAlwaysTriggers(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, []int{1, 2})

	runs := 0
	NewEffect(rt, func() {
		r.Get()
		runs++
	})

	// Slices cannot be compared with ==, so every Set counts as a change.
	r.Set([]int{1, 2})
	if runs != 2 {
		t.Errorf("effect runs after slice Set = %d, want 2", runs)
	}
}

func TestRef_PeekDoesNotTrack(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 1)

	runs := 0
	NewEffect(rt, func() {
		r.Peek()
		runs++
	})

	r.Set(2)
	if runs != 1 {
		t.Errorf("effect runs after Set on peeked ref = %d, want 1", runs)
	}
}

func TestRef_Update(t *testing.T) {
	rt := NewRuntime()
	r := NewRef(rt, 5)
	r.Update(func(v int) int { return v * 2 })
	if got := r.Get(); got != 10 {
		t.Errorf("Get() after Update = %d, want 10", got)
	}
}

func TestRef_NilInterfaceValues(t *testing.T) {
	rt := NewRuntime()
	r := NewRef[error](rt, nil)

	runs := 0
	NewEffect(rt, func() {
		r.Get()
		runs++
	})

	r.Set(nil)
	if runs != 1 {
		t.Errorf("effect runs after nil Set on nil ref = %d, want 1", runs)
	}
}
