package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// DisplayWidth reports the printable width of text, measuring grapheme
// clusters so emoji sequences count once.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// PadRight appends spaces until text fills width terminal columns.
func PadRight(text string, width int) string {
	if gap := width - DisplayWidth(text); gap > 0 {
		return text + strings.Repeat(" ", gap)
	}
	return text
}
