// Package metrics reports the number of terminal columns a code point
// occupies. The virtual screen and cursor use this to decide how many
// cells a write advances, and whether a wide character needs a
// placeholder cell.
package metrics

import (
	"unicode"

	"github.com/mattn/go-runewidth"
)

// Width returns the visual cell width of r: 0, 1, or 2.
//
// NUL and non-spacing (Mn), enclosing (Me) and format (Cf) characters
// return 0. The Hangul Jamo, General Punctuation and Halfwidth and
// Fullwidth Forms blocks return 2 as whole blocks. Everything else goes
// through runewidth's east-asian-width table, which reports 2 for CJK
// ideographs, hiragana, katakana, hangul syllables and compatibility
// jamo, CJK symbols and punctuation, and enclosed CJK letters/months,
// and 1 otherwise.
func Width(r rune) int {
	if r == 0 || unicode.In(r, unicode.Mn, unicode.Me, unicode.Cf) {
		return 0
	}
	switch {
	case r >= 0x1100 && r <= 0x11FF, // Hangul Jamo
		r >= 0x2000 && r <= 0x206F, // General Punctuation
		r >= 0xFF00 && r <= 0xFFEF: // Halfwidth and Fullwidth Forms
		return 2
	}
	return runewidth.RuneWidth(r)
}

// IsWide reports whether r occupies two terminal columns.
func IsWide(r rune) bool {
	return Width(r) == 2
}
