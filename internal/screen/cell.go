package screen

// RGB is a 24-bit color. Background colors additionally carry an alpha
// byte (see Cell.BG), parsed but never emitted — see DESIGN.md's open
// question on background alpha.
type RGB struct {
	R, G, B uint8
}

// RGBA is a background color plus an alpha byte retained for forward
// compatibility but discarded at diff-generation time.
type RGBA struct {
	R, G, B, A uint8
}

// Cell is one grid position: a code point plus its full visual style.
//
// IsWideHead and IsWidePlaceholder are mutually exclusive. A wide-head
// cell at (r,c) always has a placeholder at (r,c+1); every placeholder
// has a wide-head immediately to its left. Write repairs this invariant
// before every write (see VirtualScreen.Write).
type Cell struct {
	Ch   rune
	FG   *RGB
	BG   *RGBA
	Bold bool
	Italic bool
	Underline bool
	Strikethrough bool

	IsWideHead        bool
	IsWidePlaceholder bool
	LockedByMain      bool
}

// Blank is the zero-value cell: a space, no color, no style, unlocked.
var Blank = Cell{Ch: ' '}

// visualEqual compares the fields that matter for rendering. Locking and
// wide-character bookkeeping never participate: two cells that look the
// same on screen diff to nothing even if one was written by a coroutine
// and the other by the main cursor.
func (c Cell) visualEqual(o Cell) bool {
	if c.Ch != o.Ch || c.Bold != o.Bold || c.Italic != o.Italic ||
		c.Underline != o.Underline || c.Strikethrough != o.Strikethrough {
		return false
	}
	if (c.FG == nil) != (o.FG == nil) {
		return false
	}
	if c.FG != nil && *c.FG != *o.FG {
		return false
	}
	if (c.BG == nil) != (o.BG == nil) {
		return false
	}
	if c.BG != nil && *c.BG != *o.BG {
		return false
	}
	return true
}
