// Package cellwidth classifies rune display width using
// github.com/unilibs/uniwidth, the wire-accurate width library the VT
// layer needs (distinct from a host's looser display-layout width
// concerns, see SPEC_FULL.md §11).
package cellwidth

import "github.com/unilibs/uniwidth"

// RuneWidth returns the display width: 2 for wide characters (CJK,
// emoji), 1 for normal, 0 for zero-width (combining marks, control
// chars).
func RuneWidth(r rune) int { return uniwidth.RuneWidth(r) }

// IsWide reports whether r occupies 2 columns.
func IsWide(r rune) bool { return uniwidth.RuneWidth(r) == 2 }

// StringWidth returns the total display width of a string.
func StringWidth(s string) int { return uniwidth.StringWidth(s) }
