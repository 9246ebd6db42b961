// Package termio wraps the raw terminal collaborator spec.md section 6
// describes: report size, raw-write ANSI bytes, raw-read one byte, and
// hide/show the hardware cursor. Everything here is generalized from
// internal/terminal/terminal.go's BBS session wrapper, narrowed from an
// SSH session to a local stdin/stdout pair.
package termio

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/term"
)

// Terminal is the controlling terminal clipplay renders into.
type Terminal struct {
	in, out *os.File

	writeMu sync.Mutex

	rawState *term.State
}

// New wraps the given input/output file pair, normally os.Stdin and
// os.Stdout.
func New(in, out *os.File) *Terminal {
	return &Terminal{in: in, out: out}
}

// Size reports the terminal's current width and height in cells.
func (t *Terminal) Size() (width, height int, err error) {
	w, h, err := term.GetSize(int(t.out.Fd()))
	if err != nil {
		return 0, 0, fmt.Errorf("get terminal size: %w", err)
	}
	return w, h, nil
}

// Write emits raw bytes, serialized against every other writer via the
// terminal mutex described in spec.md section 5 — this is what keeps
// render-loop diffs from interleaving with teardown messages.
func (t *Terminal) Write(p []byte) (int, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.out.Write(p)
}

// ReadByte blocks for a single byte of input — the "press ENTER" start
// confirmation in spec.md section 4.4's run procedure.
func (t *Terminal) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := t.in.Read(buf[:]); err != nil {
		return 0, fmt.Errorf("read start byte: %w", err)
	}
	return buf[0], nil
}

// MakeRaw puts the input terminal into raw mode so ReadByte doesn't
// wait for a newline, and returns a restore function. Safe to call
// when in is not a terminal; restore is then a no-op.
func (t *Terminal) MakeRaw() (restore func(), err error) {
	fd := int(t.in.Fd())
	if !term.IsTerminal(fd) {
		return func() {}, nil
	}
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("enter raw mode: %w", err)
	}
	t.rawState = state
	return func() {
		_ = term.Restore(fd, state)
		t.rawState = nil
	}, nil
}

// HideCursor and ShowCursor toggle the hardware cursor's visibility.
// The render loop sends HideCursor on its first frame; the engine sends
// ShowCursor during teardown.
func (t *Terminal) HideCursor() error {
	_, err := t.Write([]byte("\x1b[?25l"))
	return err
}

func (t *Terminal) ShowCursor() error {
	_, err := t.Write([]byte("\x1b[?25h"))
	return err
}

// MoveCursor repositions the hardware cursor to a 1-based (row, col).
func (t *Terminal) MoveCursor(row, col int) error {
	_, err := t.Write([]byte(fmt.Sprintf("\x1b[%d;%dH", row, col)))
	return err
}

// ClearScreen emits the full-screen clear sequence.
func (t *Terminal) ClearScreen() error {
	_, err := t.Write([]byte("\x1b[2J"))
	return err
}
