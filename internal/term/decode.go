package term

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dshills/tessera/internal/term/key"
)

// Decode consumes one key event from the front of b. It returns the
// event and the number of bytes consumed. A count of zero means the
// input is an incomplete sequence and more bytes are needed; a
// positive count with a zero event means the bytes were recognized
// but carry no key (for example a mouse report).
func Decode(b []byte) (key.Event, int) {
	if len(b) == 0 {
		return key.Event{}, 0
	}
	if b[0] == 0x1b {
		return decodeEscape(b)
	}
	if b[0] < 0x20 || b[0] == 0x7f {
		return decodeControl(b[0]), 1
	}
	return decodeRune(b)
}

func decodeEscape(b []byte) (key.Event, int) {
	if len(b) == 1 {
		// Could be a lone Escape or the start of a sequence. The
		// reader resolves the ambiguity with a timeout.
		return key.Event{}, 0
	}
	switch b[1] {
	case '[':
		return decodeCSI(b)
	case 'O':
		return decodeSS3(b)
	}
	// ESC prefix marks the following key as Alt-modified.
	ev, n := Decode(b[1:])
	if n == 0 {
		return key.Event{}, 0
	}
	ev.Mod = ev.Mod.With(key.ModAlt)
	return ev, n + 1
}

// decodeCSI handles ESC [ params final. Parameters are decimal
// numbers separated by semicolons; the second parameter, when
// present, encodes modifiers as value minus one with bits for
// Shift (1), Alt (2), Ctrl (4) and Meta (8).
func decodeCSI(b []byte) (key.Event, int) {
	i := 2
	for i < len(b) && isCSIParam(b[i]) {
		i++
	}
	if i >= len(b) {
		return key.Event{}, 0
	}
	final := b[i]
	consumed := i + 1
	if final < 0x40 || final > 0x7e {
		// Malformed sequence. Drop it rather than spill the bytes
		// into the rune path.
		return key.Event{}, consumed
	}
	p1, p2 := csiParams(b[2:i])
	mod := modFromParam(p2)

	switch final {
	case 'A':
		return key.NewSpecialEvent(key.KeyUp, mod), consumed
	case 'B':
		return key.NewSpecialEvent(key.KeyDown, mod), consumed
	case 'C':
		return key.NewSpecialEvent(key.KeyRight, mod), consumed
	case 'D':
		return key.NewSpecialEvent(key.KeyLeft, mod), consumed
	case 'H':
		return key.NewSpecialEvent(key.KeyHome, mod), consumed
	case 'F':
		return key.NewSpecialEvent(key.KeyEnd, mod), consumed
	case 'Z':
		return key.NewSpecialEvent(key.KeyTab, mod.With(key.ModShift)), consumed
	case 'P':
		return key.NewSpecialEvent(key.KeyF1, mod), consumed
	case 'Q':
		return key.NewSpecialEvent(key.KeyF2, mod), consumed
	case 'S':
		return key.NewSpecialEvent(key.KeyF4, mod), consumed
	case '~':
		if k, ok := csiTildeKeys[p1]; ok {
			return key.NewSpecialEvent(k, mod), consumed
		}
		return key.Event{}, consumed
	}
	// Unrecognized final byte, typically a mouse or focus report.
	return key.Event{}, consumed
}

func isCSIParam(c byte) bool {
	switch {
	case c >= '0' && c <= '9':
		return true
	case c == ';' || c == ':':
		return true
	case c == '<' || c == '=' || c == '>' || c == '?':
		// Private parameter prefixes, seen in mouse reports.
		return true
	}
	return false
}

func csiParams(raw []byte) (p1, p2 int) {
	p1, p2 = 1, 1
	if len(raw) == 0 {
		return p1, p2
	}
	parts := strings.Split(string(raw), ";")
	if n, err := strconv.Atoi(parts[0]); err == nil {
		p1 = n
	}
	if len(parts) > 1 {
		if n, err := strconv.Atoi(parts[1]); err == nil {
			p2 = n
		}
	}
	return p1, p2
}

func modFromParam(p int) key.Modifier {
	if p <= 1 {
		return key.ModNone
	}
	bits := p - 1
	var mod key.Modifier
	if bits&1 != 0 {
		mod |= key.ModShift
	}
	if bits&2 != 0 {
		mod |= key.ModAlt
	}
	if bits&4 != 0 {
		mod |= key.ModCtrl
	}
	if bits&8 != 0 {
		mod |= key.ModMeta
	}
	return mod
}

var csiTildeKeys = map[int]key.Key{
	1:  key.KeyHome,
	2:  key.KeyInsert,
	3:  key.KeyDelete,
	4:  key.KeyEnd,
	5:  key.KeyPageUp,
	6:  key.KeyPageDown,
	7:  key.KeyHome,
	8:  key.KeyEnd,
	11: key.KeyF1,
	12: key.KeyF2,
	13: key.KeyF3,
	14: key.KeyF4,
	15: key.KeyF5,
	17: key.KeyF6,
	18: key.KeyF7,
	19: key.KeyF8,
	20: key.KeyF9,
	21: key.KeyF10,
	23: key.KeyF11,
	24: key.KeyF12,
}

// decodeSS3 handles ESC O final, the application-mode encoding for
// arrows, Home, End and F1 through F4.
func decodeSS3(b []byte) (key.Event, int) {
	if len(b) < 3 {
		return key.Event{}, 0
	}
	const consumed = 3
	switch b[2] {
	case 'A':
		return key.NewSpecialEvent(key.KeyUp, key.ModNone), consumed
	case 'B':
		return key.NewSpecialEvent(key.KeyDown, key.ModNone), consumed
	case 'C':
		return key.NewSpecialEvent(key.KeyRight, key.ModNone), consumed
	case 'D':
		return key.NewSpecialEvent(key.KeyLeft, key.ModNone), consumed
	case 'H':
		return key.NewSpecialEvent(key.KeyHome, key.ModNone), consumed
	case 'F':
		return key.NewSpecialEvent(key.KeyEnd, key.ModNone), consumed
	case 'P':
		return key.NewSpecialEvent(key.KeyF1, key.ModNone), consumed
	case 'Q':
		return key.NewSpecialEvent(key.KeyF2, key.ModNone), consumed
	case 'R':
		return key.NewSpecialEvent(key.KeyF3, key.ModNone), consumed
	case 'S':
		return key.NewSpecialEvent(key.KeyF4, key.ModNone), consumed
	}
	return key.Event{}, consumed
}

func decodeControl(c byte) key.Event {
	switch c {
	case 0x00:
		return key.NewRuneEvent(' ', key.ModCtrl)
	case 0x08:
		// Ctrl+H, distinct from the 0x7f Backspace most terminals
		// send for the Backspace key.
		return key.NewRuneEvent('h', key.ModCtrl)
	case '\t':
		return key.NewSpecialEvent(key.KeyTab, key.ModNone)
	case '\n', '\r':
		return key.NewSpecialEvent(key.KeyEnter, key.ModNone)
	case 0x7f:
		return key.NewSpecialEvent(key.KeyBackspace, key.ModNone)
	case 0x1c:
		return key.NewRuneEvent('\\', key.ModCtrl)
	case 0x1d:
		return key.NewRuneEvent(']', key.ModCtrl)
	case 0x1e:
		return key.NewRuneEvent('^', key.ModCtrl)
	case 0x1f:
		return key.NewRuneEvent('_', key.ModCtrl)
	}
	return key.NewRuneEvent(rune('a'+c-1), key.ModCtrl)
}

func decodeRune(b []byte) (key.Event, int) {
	if !utf8.FullRune(b) {
		if len(b) >= utf8.UTFMax {
			return key.Event{}, 1
		}
		return key.Event{}, 0
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size == 1 {
		return key.Event{}, 1
	}
	var mod key.Modifier
	if unicode.IsUpper(r) {
		mod = key.ModShift
	}
	return key.NewRuneEvent(r, mod), size
}
