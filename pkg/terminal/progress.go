package terminal

import (
	"fmt"
	"math"
	"strings"
)

// Progress bar characters.
const (
	ProgressFilled = "█"
	ProgressEmpty  = "░"
)

// PercentMultiplier converts 0-1 to 0-100.
const PercentMultiplier = 100

// DrawProgressBar draws a bar of the given width for a value clamped to [0, 1].
// Example: DrawProgressBar(0.7, 10) returns "███████░░░".
func DrawProgressBar(value float64, width int) string {
	if width <= 0 {
		return ""
	}

	value = min(max(value, 0), 1)

	filled := int(math.Round(value * float64(width)))
	empty := width - filled

	return strings.Repeat(ProgressFilled, filled) + strings.Repeat(ProgressEmpty, empty)
}

// DrawPercentBar draws a labeled percentage bar.
// Example: "TypeScript  ████████████████░░░░  67.0%  (2)".
func DrawPercentBar(label string, proportion float64, count, labelWidth, barWidth int) string {
	paddedLabel := PadRight(TruncateWithEllipsis(label, labelWidth), labelWidth)
	bar := DrawProgressBar(proportion, barWidth)

	return fmt.Sprintf("%s %s %5.1f%%  (%d)", paddedLabel, bar, proportion*PercentMultiplier, count)
}
