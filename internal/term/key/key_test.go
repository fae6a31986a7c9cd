package key

import "testing"

func TestKeyString(t *testing.T) {
	tests := []struct {
		key  Key
		want string
	}{
		{KeyNone, "None"},
		{KeyEscape, "Escape"},
		{KeyEnter, "Enter"},
		{KeyUp, "Up"},
		{KeyF1, "F1"},
		{KeyF7, "F7"},
		{KeyF12, "F12"},
		{Key(999), "Key(999)"},
	}
	for _, tt := range tests {
		if got := tt.key.String(); got != tt.want {
			t.Errorf("Key(%d).String() = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestKeyClassification(t *testing.T) {
	if !KeyF5.IsFunctionKey() {
		t.Error("F5 should be a function key")
	}
	if KeyUp.IsFunctionKey() {
		t.Error("Up should not be a function key")
	}
	if !KeyLeft.IsArrowKey() {
		t.Error("Left should be an arrow key")
	}
	if !KeyEnter.IsSpecial() {
		t.Error("Enter should be special")
	}
	if KeyRune.IsSpecial() {
		t.Error("Rune should not be special")
	}
}

func TestKeyFromName(t *testing.T) {
	tests := []struct {
		name string
		want Key
	}{
		{"enter", KeyEnter},
		{"Enter", KeyEnter},
		{"ESCAPE", KeyEscape},
		{"esc", KeyEscape},
		{"pgdn", KeyPageDown},
		{"f11", KeyF11},
		{"bogus", KeyNone},
	}
	for _, tt := range tests {
		if got := KeyFromName(tt.name); got != tt.want {
			t.Errorf("KeyFromName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestModifierOps(t *testing.T) {
	m := ModNone.With(ModCtrl).With(ModShift)
	if !m.HasCtrl() || !m.HasShift() {
		t.Errorf("modifiers = %v, want Ctrl+Shift", m)
	}
	if m.HasAlt() {
		t.Error("Alt should not be set")
	}

	m = m.Without(ModShift)
	if m.HasShift() {
		t.Error("Shift should have been removed")
	}
	if m.IsEmpty() {
		t.Error("Ctrl should remain")
	}
}

func TestModifierString(t *testing.T) {
	tests := []struct {
		m    Modifier
		want string
	}{
		{ModNone, ""},
		{ModCtrl, "Ctrl"},
		{ModCtrl | ModAlt, "Ctrl+Alt"},
		{ModShift | ModMeta, "Shift+Meta"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Modifier.String() = %q, want %q", got, tt.want)
		}
	}
}
