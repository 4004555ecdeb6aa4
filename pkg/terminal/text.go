package terminal

import (
	"strings"
	"unicode/utf8"
)

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// EllipsisLen is the length of the ellipsis string.
const EllipsisLen = 3

// TruncateWithEllipsis shortens s to maxWidth runes, replacing the tail with "...".
// File paths are usually ASCII, but author names are not.
func TruncateWithEllipsis(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	if utf8.RuneCountInString(s) <= maxWidth {
		return s
	}

	if maxWidth <= EllipsisLen {
		return strings.Repeat(".", maxWidth)
	}

	runes := []rune(s)

	return string(runes[:maxWidth-EllipsisLen]) + Ellipsis
}

// TruncateLeft keeps the last maxWidth runes of s, prefixing "...".
// Used for paths, where the file name matters more than the directory.
func TruncateLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}

	if maxWidth <= EllipsisLen {
		return strings.Repeat(".", maxWidth)
	}

	return Ellipsis + string(runes[len(runes)-(maxWidth-EllipsisLen):])
}

// PadRight pads s with spaces on the right to reach width.
func PadRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	return s + strings.Repeat(" ", width-n)
}

// PadLeft pads s with spaces on the left to reach width.
func PadLeft(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}

	return strings.Repeat(" ", width-n) + s
}
