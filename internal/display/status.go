package display

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/valksor/go-planbook/internal/storage"
)

var titleCaser = cases.Title(language.English)

// StatusDescription provides additional context for each status.
var StatusDescription = map[storage.Status]string{
	storage.StatusDraft:     "Being written, not started",
	storage.StatusActive:    "Being executed",
	storage.StatusCompleted: "All work done",
	storage.StatusArchived:  "Kept for reference",
}

// StatusIcon is the visual icon for each status.
var StatusIcon = map[storage.Status]string{
	storage.StatusDraft:     "○", // empty circle
	storage.StatusActive:    "◐", // half-filled
	storage.StatusCompleted: "●", // filled circle
	storage.StatusArchived:  "◌", // dotted circle
}

// StatusAccessiblePrefix provides short text prefixes so statuses can be told
// apart without relying on color alone.
var StatusAccessiblePrefix = map[storage.Status]string{
	storage.StatusDraft:     "[D]",
	storage.StatusActive:    "[A]",
	storage.StatusCompleted: "[C]",
	storage.StatusArchived:  "[X]",
}

// FormatStatus returns the user-friendly display name for a status, e.g. "Completed".
func FormatStatus(status storage.Status) string {
	if status == "" {
		return ""
	}
	return titleCaser.String(string(status))
}

// GetStatusIcon returns the icon for a status, "?" for unknown statuses.
func GetStatusIcon(status storage.Status) string {
	if icon, ok := StatusIcon[status]; ok {
		return icon
	}
	return "?"
}

// GetStatusAccessiblePrefix returns the accessibility prefix for a status.
func GetStatusAccessiblePrefix(status storage.Status) string {
	if prefix, ok := StatusAccessiblePrefix[status]; ok {
		return prefix
	}
	return "[?]"
}

// FormatStatusColored returns "[A] Active" with a muted prefix and colored name.
func FormatStatusColored(status storage.Status) string {
	return Muted(GetStatusAccessiblePrefix(status)) + " " + ColorStatus(status, FormatStatus(status))
}

// FormatStatusWithIcon returns a colored "icon Status" pair.
func FormatStatusWithIcon(status storage.Status) string {
	return ColorStatus(status, GetStatusIcon(status)+" "+FormatStatus(status))
}
