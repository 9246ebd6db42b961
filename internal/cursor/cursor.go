// Package cursor implements the styled write-head that sits between
// script commands and the virtual screen. A cursor is the only code
// path that advances position automatically; everything but
// ClearScreen flows through one.
package cursor

import (
	"github.com/stlalpha/clipplay/internal/screen"
)

// Cursor is a positioned, styled write-head bound to a screen.
type Cursor struct {
	Screen *screen.VirtualScreen

	Row, Col int

	FG *screen.RGB
	BG *screen.RGBA

	Bold          bool
	Italic        bool
	Underline     bool
	Strikethrough bool

	IsMain      bool
	CanOverride bool
}

// New creates a cursor at the origin with default style and the given
// permission bits; the run's main cursor is New(s, true, true).
func New(s *screen.VirtualScreen, isMain, canOverride bool) *Cursor {
	return &Cursor{Screen: s, IsMain: isMain, CanOverride: canOverride}
}

// Clone copies position and style state into a new cursor with the
// given permission bits, as CallCoroutine does when it spawns a branch.
func (c *Cursor) Clone(isMain, canOverride bool) *Cursor {
	return &Cursor{
		Screen:        c.Screen,
		Row:           c.Row,
		Col:           c.Col,
		FG:            c.FG,
		BG:            c.BG,
		Bold:          c.Bold,
		Italic:        c.Italic,
		Underline:     c.Underline,
		Strikethrough: c.Strikethrough,
		IsMain:        isMain,
		CanOverride:   canOverride,
	}
}

// PrintText writes s one code point at a time. A newline invokes
// NewLine; every other rune goes through the screen's Write and
// advances Col by however many columns it actually consumed (0 for a
// refused or zero-width write).
func (c *Cursor) PrintText(s string) {
	for _, r := range s {
		if r == '\n' {
			c.NewLine()
			continue
		}
		w := c.Screen.Write(c.Row, c.Col, r, c.FG, c.BG, c.Bold, c.Italic, c.Underline, c.Strikethrough, c.IsMain, c.CanOverride)
		c.Col += w
	}
}

// NewLine advances to the start of the next row, clamped to the last
// row of the grid — clipplay never scrolls.
func (c *Cursor) NewLine() {
	c.Row++
	c.Col = 0
	if last := c.Screen.Height() - 1; c.Row > last {
		c.Row = last
	}
}

// MoveTo sets an absolute 0-based position. Out-of-bounds positions are
// accepted without clamping; the next write simply bounds-checks and is
// refused if still out of range.
func (c *Cursor) MoveTo(row, col int) {
	c.Row, c.Col = row, col
}

// MoveRelative offsets the current position by (dRow, dCol).
func (c *Cursor) MoveRelative(dRow, dCol int) {
	c.Row += dRow
	c.Col += dCol
}

// ResetStyle clears all four style flags and both color fields.
func (c *Cursor) ResetStyle() {
	c.FG = nil
	c.BG = nil
	c.Bold = false
	c.Italic = false
	c.Underline = false
	c.Strikethrough = false
}
