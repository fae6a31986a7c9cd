package term

import (
	"bytes"
	"sync"

	"github.com/dshills/tessera/internal/term/key"
)

// MemTerminal is an in-memory Terminal for tests. It records
// everything written to it, reports a fixed size until SendResize
// changes it, and lets tests inject key events and write failures.
type MemTerminal struct {
	mu       sync.Mutex
	rows     int
	cols     int
	out      bytes.Buffer
	writes   int
	writeErr error
	inited   bool
	restored bool

	events  chan key.Event
	resizes chan Size
}

// NewMemTerminal creates a MemTerminal reporting the given size.
func NewMemTerminal(rows, cols int) *MemTerminal {
	return &MemTerminal{
		rows:    rows,
		cols:    cols,
		events:  make(chan key.Event, 16),
		resizes: make(chan Size, 1),
	}
}

func (m *MemTerminal) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inited = true
	return nil
}

func (m *MemTerminal) Restore() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.restored = true
	return nil
}

func (m *MemTerminal) Size() (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rows, m.cols, nil
}

func (m *MemTerminal) Write(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		err := m.writeErr
		m.writeErr = nil
		return 0, err
	}
	m.writes++
	return m.out.Write(p)
}

func (m *MemTerminal) Events() <-chan key.Event { return m.events }

func (m *MemTerminal) Resizes() <-chan Size { return m.resizes }

// SendKey queues a key event as if the user pressed it.
func (m *MemTerminal) SendKey(ev key.Event) {
	m.events <- ev
}

// SendResize changes the reported size and queues a resize
// notification, replacing any still-pending one.
func (m *MemTerminal) SendResize(rows, cols int) {
	m.mu.Lock()
	m.rows = rows
	m.cols = cols
	m.mu.Unlock()
	s := Size{Rows: rows, Cols: cols}
	for {
		select {
		case m.resizes <- s:
			return
		default:
			select {
			case <-m.resizes:
			default:
			}
		}
	}
}

// FailNextWrite makes the next Write call return err.
func (m *MemTerminal) FailNextWrite(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Output returns everything written so far.
func (m *MemTerminal) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.out.String()
}

// TakeOutput returns the captured bytes and resets the capture, so
// tests can inspect one frame at a time.
func (m *MemTerminal) TakeOutput() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.out.String()
	m.out.Reset()
	return s
}

// Writes reports how many Write calls succeeded.
func (m *MemTerminal) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Inited reports whether Init was called.
func (m *MemTerminal) Inited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inited
}

// Restored reports whether Restore was called.
func (m *MemTerminal) Restored() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.restored
}
