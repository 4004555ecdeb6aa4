// Package terminal renders locstats results for an interactive terminal:
// boxed headers, key/value blocks, language bars and go-pretty tables.
package terminal

import (
	"os"
	"strconv"
)

// Width bounds.
const (
	DefaultWidth = 80
	MinWidth     = 60
	MaxWidth     = 120
)

// Config holds terminal rendering configuration.
type Config struct {
	Width   int
	NoColor bool
}

// NewConfig reads the width from COLUMNS and honours NO_COLOR.
func NewConfig() Config {
	return Config{
		Width:   DetectWidth(),
		NoColor: os.Getenv("NO_COLOR") != "",
	}
}

// DetectWidth returns the terminal width from the COLUMNS environment
// variable clamped to [MinWidth, MaxWidth], or DefaultWidth if unset or invalid.
func DetectWidth() int {
	columnsEnv := os.Getenv("COLUMNS")
	if columnsEnv == "" {
		return DefaultWidth
	}

	width, err := strconv.Atoi(columnsEnv)
	if err != nil || width <= 0 {
		return DefaultWidth
	}

	return ClampWidth(width)
}

// ClampWidth bounds width to [MinWidth, MaxWidth].
func ClampWidth(width int) int {
	return min(max(width, MinWidth), MaxWidth)
}
