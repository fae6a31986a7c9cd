package term

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	xterm "golang.org/x/term"

	"github.com/dshills/tessera/internal/term/key"
)

// TTY is the Terminal backed by a real character device. Init puts
// the device into raw mode, switches to the alternate screen and
// starts the input and resize goroutines; Restore reverses all of
// it.
type TTY struct {
	opts  Options
	caps  Caps
	state *xterm.State

	events  chan key.Event
	resizes chan Size
	done    chan struct{}
	sigs    chan os.Signal

	wmu     sync.Mutex
	started bool
}

// NewTTY builds a TTY from opts. Zero-valued fields take their
// DefaultOptions values.
func NewTTY(opts Options) *TTY {
	def := DefaultOptions()
	if opts.Input == nil {
		opts.Input = def.Input
	}
	if opts.Output == nil {
		opts.Output = def.Output
	}
	if opts.EscTimeout <= 0 {
		opts.EscTimeout = def.EscTimeout
	}
	if opts.EventBuffer <= 0 {
		opts.EventBuffer = def.EventBuffer
	}
	return &TTY{
		opts:    opts,
		caps:    DetectCaps(),
		events:  make(chan key.Event, opts.EventBuffer),
		resizes: make(chan Size, 1),
		done:    make(chan struct{}),
	}
}

// Caps reports the detected terminal capabilities.
func (t *TTY) Caps() Caps { return t.caps }

func (t *TTY) Init() error {
	if t.started {
		return nil
	}
	state, err := xterm.MakeRaw(int(t.opts.Input.Fd()))
	if err != nil {
		return fmt.Errorf("term: enter raw mode: %w", err)
	}
	t.state = state
	t.started = true

	if _, err := t.Write([]byte(t.caps.EnterCA + t.caps.HideCursor)); err != nil {
		t.Restore()
		return err
	}

	t.sigs = make(chan os.Signal, 1)
	signal.Notify(t.sigs, syscall.SIGWINCH)
	go t.watchResize()
	go t.readLoop()
	return nil
}

func (t *TTY) Restore() error {
	if !t.started {
		return nil
	}
	t.started = false
	signal.Stop(t.sigs)
	close(t.done)
	// Wake the reader out of its blocking Read so the goroutine can
	// observe done and exit.
	t.opts.Input.SetReadDeadline(time.Now())

	t.Write([]byte("\x1b[0m" + t.caps.ShowCursor + t.caps.ExitCA))
	if err := xterm.Restore(int(t.opts.Input.Fd()), t.state); err != nil {
		return fmt.Errorf("term: restore: %w", err)
	}
	return nil
}

func (t *TTY) Size() (int, int, error) {
	cols, rows, err := xterm.GetSize(int(t.opts.Output.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("term: query size: %w", err)
	}
	return rows, cols, nil
}

func (t *TTY) Write(p []byte) (int, error) {
	t.wmu.Lock()
	defer t.wmu.Unlock()
	return t.opts.Output.Write(p)
}

func (t *TTY) Events() <-chan key.Event { return t.events }

func (t *TTY) Resizes() <-chan Size { return t.resizes }

func (t *TTY) watchResize() {
	for {
		select {
		case <-t.done:
			return
		case <-t.sigs:
			rows, cols, err := t.Size()
			if err != nil {
				continue
			}
			t.pushResize(Size{Rows: rows, Cols: cols})
		}
	}
}

// pushResize replaces any queued size so a burst of SIGWINCH
// collapses to the latest dimensions.
func (t *TTY) pushResize(s Size) {
	for {
		select {
		case t.resizes <- s:
			return
		default:
			select {
			case <-t.resizes:
			default:
			}
		}
	}
}

func (t *TTY) readLoop() {
	var buf []byte
	tmp := make([]byte, 128)
	pendingEsc := false

	for {
		select {
		case <-t.done:
			return
		default:
		}

		if pendingEsc {
			t.opts.Input.SetReadDeadline(time.Now().Add(t.opts.EscTimeout))
		}
		n, err := t.opts.Input.Read(tmp)
		if pendingEsc {
			t.opts.Input.SetReadDeadline(time.Time{})
		}
		if n > 0 {
			buf = append(buf, tmp[:n]...)
		}
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				// No follow-up bytes arrived, so the buffered ESC was
				// the Escape key itself.
				if len(buf) > 0 && buf[0] == 0x1b {
					t.send(key.NewSpecialEvent(key.KeyEscape, key.ModNone))
					buf = buf[1:]
				}
			} else {
				select {
				case <-t.done:
				default:
				}
				return
			}
		}
		buf = t.drain(buf)
		pendingEsc = len(buf) > 0 && buf[0] == 0x1b
	}
}

// drain decodes and sends every complete event at the front of buf
// and returns the leftover bytes.
func (t *TTY) drain(buf []byte) []byte {
	for len(buf) > 0 {
		ev, n := Decode(buf)
		if n == 0 {
			break
		}
		buf = buf[n:]
		if ev.Key != key.KeyNone {
			t.send(ev)
		}
	}
	return buf
}

func (t *TTY) send(ev key.Event) {
	select {
	case t.events <- ev:
	case <-t.done:
	}
}
