// Package colors provides centralized color output with TTY-aware defaults.
//
// Colors are automatically disabled when stdout is not a terminal (piped or
// redirected to a file). Use Init() to override based on CLI flags.
package colors

import "github.com/fatih/color"

// Init allows overriding the auto-detected color setting.
//   - forceColor == nil: keep auto-detected value
//   - forceColor == true: force colors on (--color flag or CLICOLOR)
//   - forceColor == false: force colors off
func Init(forceColor *bool) {
	if forceColor != nil {
		color.NoColor = !*forceColor
	}
}

// Enabled returns true if colors are currently enabled.
func Enabled() bool {
	return !color.NoColor
}

func Bold() *color.Color       { return color.New(color.Bold) }
func Faint() *color.Color      { return color.New(color.Faint) }
func BoldBlue() *color.Color   { return color.New(color.Bold, color.FgBlue) }
func HiGreen() *color.Color    { return color.New(color.FgHiGreen) }
func HiYellow() *color.Color   { return color.New(color.FgHiYellow) }
func HiRed() *color.Color      { return color.New(color.FgHiRed) }
func FaintWhite() *color.Color { return color.New(color.Faint, color.FgWhite) }

// State colors a simulator state string: booted green, transitional yellow,
// everything else faint.
func State(state string) string {
	switch state {
	case "Booted":
		return HiGreen().Sprint(state)
	case "Booting", "Shutting Down", "Creating":
		return HiYellow().Sprint(state)
	default:
		return FaintWhite().Sprint(state)
	}
}
