package key

import (
	"strings"
	"unicode"
)

// Event is a single key press.
type Event struct {
	// Key identifies the key pressed.
	Key Key

	// Rune is the character for KeyRune events.
	Rune rune

	// Mod contains the active modifier keys.
	Mod Modifier
}

// NewRuneEvent creates a key event for a character.
func NewRuneEvent(r rune, mods Modifier) Event {
	return Event{Key: KeyRune, Rune: r, Mod: mods}
}

// NewSpecialEvent creates a key event for a special key.
func NewSpecialEvent(key Key, mods Modifier) Event {
	return Event{Key: key, Mod: mods}
}

// IsRune returns true if this is a character key event.
func (e Event) IsRune() bool {
	return e.Key == KeyRune && e.Rune != 0
}

// IsChar returns true if this is a printable character.
func (e Event) IsChar() bool {
	return e.IsRune() && unicode.IsPrint(e.Rune)
}

// IsModified returns true if any modifier is pressed. For character
// events Shift alone does not count, since Shift already changed the
// character.
func (e Event) IsModified() bool {
	if e.IsRune() {
		return e.Mod&(ModCtrl|ModAlt|ModMeta) != 0
	}
	return e.Mod != ModNone
}

// IsEscape returns true if this is a bare Escape press.
func (e Event) IsEscape() bool {
	return e.Key == KeyEscape && e.Mod == ModNone
}

// IsEnter returns true if this is a bare Enter press.
func (e Event) IsEnter() bool {
	return e.Key == KeyEnter && e.Mod == ModNone
}

// String returns a canonical representation like "a", "C-s", "Enter",
// or "C-S-Up".
func (e Event) String() string {
	var parts []string
	if e.Mod.HasCtrl() {
		parts = append(parts, "C")
	}
	if e.Mod.HasAlt() {
		parts = append(parts, "A")
	}
	if e.Mod.HasMeta() {
		parts = append(parts, "M")
	}
	if e.Mod.HasShift() && !e.IsRune() {
		parts = append(parts, "S")
	}

	var name string
	switch e.Key {
	case KeyRune:
		if e.Rune == ' ' {
			name = "Space"
		} else {
			name = string(e.Rune)
		}
	case KeyEscape:
		name = "Esc"
	case KeyBackspace:
		name = "BS"
	case KeyDelete:
		name = "Del"
	case KeyInsert:
		name = "Ins"
	case KeyPageUp:
		name = "PgUp"
	case KeyPageDown:
		name = "PgDn"
	default:
		name = e.Key.String()
	}
	parts = append(parts, name)
	return strings.Join(parts, "-")
}

// Equals returns true if two events represent the same key press.
func (e Event) Equals(other Event) bool {
	return e.Key == other.Key && e.Rune == other.Rune && e.Mod == other.Mod
}

// Matches checks the event against a key specification string such as
// "Ctrl+S" or "<C-s>".
func (e Event) Matches(spec string) bool {
	parsed, err := Parse(spec)
	if err != nil {
		return false
	}
	return e.Equals(parsed)
}
