package term

import (
	"os"
	"strings"

	"github.com/gdamore/tcell/v2/terminfo"

	// Compiled-in terminfo entries for common terminals, so lookup
	// works without a terminfo database on disk.
	_ "github.com/gdamore/tcell/v2/terminfo/base"
)

// Caps describes what the attached terminal can do. Entries that the
// terminfo lookup cannot supply fall back to the xterm sequences,
// which nearly every modern emulator accepts.
type Caps struct {
	// Term is the $TERM value the capabilities were resolved for.
	Term string

	// Colors is the size of the terminal palette. 0 means
	// monochrome.
	Colors int

	// TrueColor reports 24-bit color support.
	TrueColor bool

	// EnterCA and ExitCA switch the alternate screen on and off.
	EnterCA string
	ExitCA  string

	// HideCursor and ShowCursor control cursor visibility.
	HideCursor string
	ShowCursor string
}

// DetectCaps resolves capabilities from $TERM and $COLORTERM.
func DetectCaps() Caps {
	return capsFromEnv(os.Getenv)
}

func capsFromEnv(getenv func(string) string) Caps {
	c := Caps{
		Term:       getenv("TERM"),
		Colors:     16,
		EnterCA:    "\x1b[?1049h",
		ExitCA:     "\x1b[?1049l",
		HideCursor: "\x1b[?25l",
		ShowCursor: "\x1b[?25h",
	}
	if ti, err := terminfo.LookupTerminfo(c.Term); err == nil {
		if ti.Colors > 0 {
			c.Colors = ti.Colors
		}
		if ti.EnterCA != "" {
			c.EnterCA = ti.EnterCA
			c.ExitCA = ti.ExitCA
		}
		if ti.HideCursor != "" {
			c.HideCursor = ti.HideCursor
			c.ShowCursor = ti.ShowCursor
		}
		c.TrueColor = ti.TrueColor
	}
	switch strings.ToLower(getenv("COLORTERM")) {
	case "truecolor", "24bit":
		c.TrueColor = true
	}
	return c
}
