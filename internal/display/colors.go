// Package display provides user-friendly formatting for CLI output.
package display

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/valksor/go-planbook/internal/storage"
)

var (
	successColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgBlue)
	mutedColor   = color.New(color.FgHiBlack)
	boldColor    = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
	cyanColor    = color.New(color.FgCyan)
)

// InitColors initializes the color system based on flags and environment.
// Should be called once during startup with the --no-color flag value.
// Without either switch, color keeps its own terminal detection.
func InitColors(noColor bool) {
	if noColor {
		color.NoColor = true
		return
	}

	// Respect NO_COLOR environment variable (https://no-color.org/)
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}
}

// ColorsEnabled returns whether colors are currently enabled.
func ColorsEnabled() bool {
	return !color.NoColor
}

// SetColorsEnabled allows manual control of color output (useful for testing).
func SetColorsEnabled(enabled bool) {
	color.NoColor = !enabled
}

// Semantic color functions

// Success formats text as successful (green).
func Success(text string) string { return successColor.Sprint(text) }

// Error formats text as an error (red).
func Error(text string) string { return errorColor.Sprint(text) }

// Warning formats text as a warning (yellow).
func Warning(text string) string { return warningColor.Sprint(text) }

// Info formats text as informational (blue).
func Info(text string) string { return infoColor.Sprint(text) }

// Muted formats text as muted/secondary (gray).
func Muted(text string) string { return mutedColor.Sprint(text) }

// Bold formats text as bold.
func Bold(text string) string { return boldColor.Sprint(text) }

// Dim formats text as dim/faded.
func Dim(text string) string { return dimColor.Sprint(text) }

// Cyan formats text in cyan (used for commands and ids).
func Cyan(text string) string { return cyanColor.Sprint(text) }

// Prefixed message helpers

// SuccessPrefix returns a success checkmark prefix.
func SuccessPrefix() string {
	return Success("✓")
}

// ErrorPrefix returns an error X prefix.
func ErrorPrefix() string {
	return Error("✗")
}

// WarningPrefix returns a warning icon prefix.
func WarningPrefix() string {
	return Warning("⚠")
}

// InfoPrefix returns an info arrow prefix.
func InfoPrefix() string {
	return Info("→")
}

// Formatted messages

// SuccessMsg formats a success message with prefix.
func SuccessMsg(format string, args ...any) string {
	return SuccessPrefix() + " " + fmt.Sprintf(format, args...)
}

// ErrorMsg formats an error message with prefix.
func ErrorMsg(format string, args ...any) string {
	return ErrorPrefix() + " " + Error(fmt.Sprintf(format, args...))
}

// WarningMsg formats a warning message with prefix.
func WarningMsg(format string, args ...any) string {
	return WarningPrefix() + " " + Warning(fmt.Sprintf(format, args...))
}

// InfoMsg formats an info message with prefix.
func InfoMsg(format string, args ...any) string {
	return InfoPrefix() + " " + fmt.Sprintf(format, args...)
}

// ColorStatus returns text colored for a plan status.
func ColorStatus(status storage.Status, text string) string {
	switch status {
	case storage.StatusActive:
		return Info(text)
	case storage.StatusDraft:
		return Warning(text)
	case storage.StatusCompleted:
		return Success(text)
	case storage.StatusArchived:
		return Muted(text)
	default:
		return text
	}
}
