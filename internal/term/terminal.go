// Package term owns the terminal: raw mode, size queries, resize
// signals, serialized output, and decoding of the input byte stream
// into key events.
package term

import (
	"os"
	"time"

	"github.com/dshills/tessera/internal/term/key"
)

// Size is a terminal extent in character cells.
type Size struct {
	Rows int
	Cols int
}

// Terminal abstracts the character device the renderer draws to.
// Implementations are TTY for real terminals and MemTerminal for
// tests.
type Terminal interface {
	// Init puts the terminal into raw mode and prepares the screen.
	Init() error

	// Restore undoes Init. Safe to call more than once.
	Restore() error

	// Size returns the current dimensions in cells.
	Size() (rows, cols int, err error)

	// Write sends bytes to the terminal. Calls are serialized.
	Write(p []byte) (int, error)

	// Events delivers decoded key presses.
	Events() <-chan key.Event

	// Resizes delivers size changes, coalesced to the most recent.
	Resizes() <-chan Size
}

// Options configures a TTY.
type Options struct {
	// Input is the terminal input device. Defaults to os.Stdin.
	Input *os.File

	// Output is the terminal output device. Defaults to os.Stdout.
	Output *os.File

	// EscTimeout is how long a lone ESC byte may wait for sequence
	// bytes before it is delivered as the Escape key.
	EscTimeout time.Duration

	// EventBuffer is the key event channel capacity.
	EventBuffer int
}

// DefaultOptions returns the standard TTY configuration.
func DefaultOptions() Options {
	return Options{
		Input:       os.Stdin,
		Output:      os.Stdout,
		EscTimeout:  50 * time.Millisecond,
		EventBuffer: 32,
	}
}
