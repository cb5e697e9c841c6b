package display

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Formatting constants for consistent output across the CLI.
const (
	IndentOne = "  "

	DefaultTableWidth = 80
	keyWidth          = 10
)

// SeparatorLine separates sections.
var SeparatorLine = strings.Repeat("─", 60)

// TimestampFormat is the standard timestamp format for CLI output.
const TimestampFormat = "2006-01-02 15:04:05"

// Formatter provides consistent output formatting.
type Formatter struct {
	indentLevel int
	width       int
}

// NewFormatter creates a new formatter with default settings.
func NewFormatter() *Formatter {
	return &Formatter{width: DefaultTableWidth}
}

// SetIndent sets the current indentation level.
func (f *Formatter) SetIndent(level int) *Formatter {
	f.indentLevel = level
	return f
}

// SetWidth sets the output width.
func (f *Formatter) SetWidth(w int) *Formatter {
	f.width = w
	return f
}

// Indent returns the current indentation string.
func (f *Formatter) Indent() string {
	return strings.Repeat(IndentOne, f.indentLevel)
}

// Section formats a section header.
func (f *Formatter) Section(title string) string {
	if title == "" {
		return "\n" + SeparatorLine + "\n"
	}
	return fmt.Sprintf("\n%s\n%s\n", Bold(title), SeparatorLine)
}

// Subsection formats a subsection header.
func (f *Formatter) Subsection(title string) string {
	return fmt.Sprintf("\n%s%s\n", f.Indent(), Muted(title))
}

// KeyValue formats a key-value pair with consistent alignment.
func (f *Formatter) KeyValue(key, value string) string {
	return fmt.Sprintf("%s%-*s %s\n", f.Indent(), keyWidth, key+":", value)
}

// List formats a numbered list.
func (f *Formatter) List(items []string) string {
	var sb strings.Builder
	indent := f.Indent()

	for i, item := range items {
		fmt.Fprintf(&sb, "%s%s %s\n", indent, Muted(fmt.Sprintf("%d.", i+1)), item)
	}

	return sb.String()
}

// Timestamp formats a time.Time using the standard format.
func (f *Formatter) Timestamp(t time.Time) string {
	return t.Format(TimestampFormat)
}

// Truncate truncates a string to a maximum length in runes, adding "..." if truncated.
func (f *Formatter) Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return "..."
	}
	return string([]rune(s)[:maxLen-3]) + "..."
}

// RelativeTime formats the distance from t to now, e.g. "3 days ago".
func RelativeTime(t, now time.Time) string {
	d := now.Sub(t)

	plural := func(n int, unit string) string {
		if n == 1 {
			return fmt.Sprintf("1 %s ago", unit)
		}
		return fmt.Sprintf("%d %ss ago", n, unit)
	}

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d.Minutes()), "minute")
	case d < 24*time.Hour:
		return plural(int(d.Hours()), "hour")
	case d < 30*24*time.Hour:
		return plural(int(d.Hours()/24), "day")
	default:
		return t.Format("2006-01-02")
	}
}

// Section formats a section header.
func Section(title string) string {
	return NewFormatter().Section(title)
}

// KeyValue formats a key-value pair.
func KeyValue(key, value string) string {
	return NewFormatter().KeyValue(key, value)
}

// Truncate truncates a string to a maximum length.
func Truncate(s string, maxLen int) string {
	return NewFormatter().Truncate(s, maxLen)
}
