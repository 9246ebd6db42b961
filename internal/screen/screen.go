// Package screen implements the double-buffered virtual cell grid that
// every cursor write and the render loop's diff both go through.
//
// A VirtualScreen owns two height x width grids: front (mutated by
// script writes) and shadow (the last state actually flushed to the
// terminal). GenerateDiffAndSwap walks both, emits the minimal ANSI
// bytes needed to bring the terminal from shadow to front, and copies
// front over shadow cell by cell as it goes.
package screen

import (
	"fmt"
	"strings"
	"sync"

	"github.com/stlalpha/clipplay/internal/metrics"
)

// Minimum terminal dimensions the grid is clamped to, mirroring the
// teacher's StandardBBSWidth/StandardBBSHeight pattern: a run always
// gets at least an 80x24 canvas even on a misreporting terminal.
const (
	MinWidth  = 80
	MinHeight = 24
)

// VirtualScreen is the grid pair plus the mutex that serializes every
// write, clear, and diff against it (see spec.md's Shared State rules).
type VirtualScreen struct {
	mu     sync.Mutex
	height int
	width  int
	front  [][]Cell
	shadow [][]Cell

	// diff emitter state. The cursor position carries across calls to
	// GenerateDiffAndSwap so positioning stays minimal run to run; the
	// SGR fields are cleared at the end of each call, matching the
	// trailing SGR reset every diff ends with.
	emitRow, emitCol int
	emitFG           *RGB
	emitBG           *RGBA
	emitBold         bool
	emitItalic       bool
	emitUnderline    bool
	emitStrike       bool
	firstDiff        bool
}

// ClampDimensions enforces the height >= 24, width >= 80 floor spec.md
// requires, deriving the final grid size once from a reported terminal
// size.
func ClampDimensions(width, height int) (int, int) {
	if width < MinWidth {
		width = MinWidth
	}
	if height < MinHeight {
		height = MinHeight
	}
	return width, height
}

// New allocates a blank screen of the given size, clamped by
// ClampDimensions to at least MinWidth x MinHeight.
func New(width, height int) *VirtualScreen {
	width, height = ClampDimensions(width, height)
	s := &VirtualScreen{
		height:    height,
		width:     width,
		front:     makeGrid(width, height),
		shadow:    makeGrid(width, height),
		firstDiff: true,
	}
	return s
}

func makeGrid(width, height int) [][]Cell {
	g := make([][]Cell, height)
	for r := range g {
		row := make([]Cell, width)
		for c := range row {
			row[c] = Blank
		}
		g[r] = row
	}
	return g
}

// Width and Height report the grid's fixed dimensions.
func (s *VirtualScreen) Width() int  { return s.width }
func (s *VirtualScreen) Height() int { return s.height }

// CellRune reports the code point currently occupying (row, col) in
// the front grid, or 0 for an out-of-bounds position. Intended for
// tests that need to assert on rendered content without reaching into
// the grid's unexported fields.
func (s *VirtualScreen) CellRune(row, col int) rune {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row < 0 || row >= s.height || col < 0 || col >= s.width {
		return 0
	}
	return s.front[row][col].Ch
}

// Write places ch at (row, col) with the given style and permission
// bits, returning the number of columns consumed: 0, 1, or 2. A 0
// return means the write was refused outright (out of bounds,
// zero-width character, or insufficient room for a wide character). A
// non-overriding writer touching a locked cell instead gets w back
// without the cell actually changing — callers still advance by the
// return value, which is what lets a shadowing coroutine cursor march
// in lockstep with the main cursor even when its writes are refused.
func (s *VirtualScreen) Write(row, col int, ch rune, fg *RGB, bg *RGBA, bold, italic, underline, strikethrough bool, isMain, canOverride bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if row < 0 || row >= s.height || col < 0 || col >= s.width {
		return 0
	}
	w := metrics.Width(ch)
	if w == 0 {
		return 0
	}
	if col+w > s.width {
		return 0
	}

	locked := s.front[row][col].LockedByMain
	if w == 2 {
		locked = locked || s.front[row][col+1].LockedByMain
	}
	if !isMain && !canOverride && locked {
		return w
	}

	s.repairWideBoundary(row, col, w)

	cell := Cell{
		Ch:            ch,
		FG:            fg,
		BG:            bg,
		Bold:          bold,
		Italic:        italic,
		Underline:     underline,
		Strikethrough: strikethrough,
		IsWideHead:    w == 2,
		LockedByMain:  isMain,
	}
	s.front[row][col] = cell

	if w == 2 {
		ph := Cell{
			Ch:                ' ',
			FG:                fg,
			BG:                bg,
			Bold:              bold,
			Italic:            italic,
			Underline:         underline,
			Strikethrough:     strikethrough,
			IsWidePlaceholder: true,
			LockedByMain:      cell.LockedByMain,
		}
		s.front[row][col+1] = ph
	}

	return w
}

// repairWideBoundary clears dangling halves of wide-character pairs
// before a write lands, per spec.md section 4.2:
//   - writing onto a placeholder clears the head to its left
//   - writing onto a head clears its placeholder to the right
//   - writing a wide char whose second cell is itself a head clears
//     that head's own placeholder, one column further right
func (s *VirtualScreen) repairWideBoundary(row, col, w int) {
	target := s.front[row][col]
	if target.IsWidePlaceholder && col > 0 {
		s.front[row][col-1] = Blank
	}
	if target.IsWideHead && col+1 < s.width {
		s.front[row][col+1] = Blank
	}
	if w == 2 && col+1 < s.width {
		next := s.front[row][col+1]
		if next.IsWideHead && col+2 < s.width {
			s.front[row][col+2] = Blank
		}
	}
}

// ClearScreen resets every cell in the front grid to blank, dropping
// all locks and wide-character state.
func (s *VirtualScreen) ClearScreen() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for r := range s.front {
		for c := range s.front[r] {
			s.front[r][c] = Blank
		}
	}
}

// GenerateDiffAndSwap scans front against shadow in row-major order and
// returns the minimal ANSI byte sequence that transforms the terminal
// from shadow's state to front's, then copies front into shadow cell by
// cell as it emits. Calling this twice in a row with no intervening
// writes makes the second call return just "\x1b[0m" (the trailing SGR
// reset), since nothing changed in between.
func (s *VirtualScreen) GenerateDiffAndSwap() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	if s.firstDiff {
		s.emitRow, s.emitCol = -1, -1
		s.firstDiff = false
	}

	for r := 0; r < s.height; r++ {
		for c := 0; c < s.width; c++ {
			front := s.front[r][c]
			shadow := s.shadow[r][c]
			if front.visualEqual(shadow) {
				continue
			}

			if front.IsWidePlaceholder {
				s.shadow[r][c] = front
				continue
			}

			if s.emitRow != r || s.emitCol != c {
				fmt.Fprintf(&b, "\x1b[%d;%dH", r+1, c+1)
				s.emitRow, s.emitCol = r, c
			}

			s.emitStyle(&b, front)
			b.WriteRune(front.Ch)

			w := metrics.Width(front.Ch)
			if w < 1 {
				w = 1
			}
			s.emitCol += w

			s.shadow[r][c] = front
			if front.IsWideHead && c+1 < s.width {
				s.shadow[r][c+1] = s.front[r][c+1]
			}
		}
	}

	b.WriteString("\x1b[0m")
	s.emitFG, s.emitBG = nil, nil
	s.emitBold, s.emitItalic, s.emitUnderline, s.emitStrike = false, false, false, false
	return b.String()
}

func (s *VirtualScreen) emitStyle(b *strings.Builder, cell Cell) {
	switch {
	case cell.FG == nil && s.emitFG != nil:
		b.WriteString("\x1b[39m")
		s.emitFG = nil
	case cell.FG != nil && (s.emitFG == nil || *s.emitFG != *cell.FG):
		fmt.Fprintf(b, "\x1b[38;2;%d;%d;%dm", cell.FG.R, cell.FG.G, cell.FG.B)
		fg := *cell.FG
		s.emitFG = &fg
	}

	switch {
	case cell.BG == nil && s.emitBG != nil:
		b.WriteString("\x1b[49m")
		s.emitBG = nil
	case cell.BG != nil && (s.emitBG == nil || s.emitBG.R != cell.BG.R || s.emitBG.G != cell.BG.G || s.emitBG.B != cell.BG.B):
		fmt.Fprintf(b, "\x1b[48;2;%d;%d;%dm", cell.BG.R, cell.BG.G, cell.BG.B)
		bg := *cell.BG
		s.emitBG = &bg
	}

	emitToggle(b, s.emitBold, cell.Bold, "1", "22")
	s.emitBold = cell.Bold
	emitToggle(b, s.emitItalic, cell.Italic, "3", "23")
	s.emitItalic = cell.Italic
	emitToggle(b, s.emitUnderline, cell.Underline, "4", "24")
	s.emitUnderline = cell.Underline
	emitToggle(b, s.emitStrike, cell.Strikethrough, "9", "29")
	s.emitStrike = cell.Strikethrough
}

func emitToggle(b *strings.Builder, was, is bool, on, off string) {
	if was == is {
		return
	}
	if is {
		fmt.Fprintf(b, "\x1b[%sm", on)
	} else {
		fmt.Fprintf(b, "\x1b[%sm", off)
	}
}
