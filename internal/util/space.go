package util

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// PadRight pads or truncates a string to a fixed width.
func PadRight(str string, width int) string {
	w := runewidth.StringWidth(str)
	if w > width {
		return runewidth.Truncate(str, width, "...")
	}
	return str + strings.Repeat(" ", width-w)
}

// FormatRow lays cells out in fixed-width columns separated by two spaces.
// Cells without a width are appended as is.
func FormatRow(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		if i < len(widths) {
			b.WriteString(PadRight(cell, widths[i]))
			continue
		}
		b.WriteString(cell)
	}
	return strings.TrimRight(b.String(), " ")
}
