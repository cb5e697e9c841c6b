// Package ui defines the interactive surface the plan commands talk to and its
// terminal, headless and scripted implementations.
package ui

import (
	"context"
	"errors"
)

// ErrCancelled is returned when the user dismisses a prompt or picker.
var ErrCancelled = errors.New("cancelled")

// ErrNotInteractive is returned by prompts on a surface without a user.
var ErrNotInteractive = errors.New("no interactive terminal")

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// UI is the user-facing collaborator of the plan commands.
type UI interface {
	// Select shows items and returns the chosen index.
	Select(ctx context.Context, title string, items []string) (int, error)
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, prompt string) (bool, error)
	// ShowDocument displays a scrollable text.
	ShowDocument(ctx context.Context, title, text string) error
	// Notify posts a one-line message.
	Notify(text string, level Level)
	// SetStatus sets a persistent status indicator. Empty text clears it.
	SetStatus(key, text string)
	// SetPanel sets a persistent side panel. Nil lines clear it.
	SetPanel(key string, lines []string)
	// Interactive reports whether prompts can be answered.
	Interactive() bool
}

// ConfirmFunc adapts u to the lock manager's prompt signature. It returns nil
// for non-interactive surfaces so stale locks follow the configured policy.
func ConfirmFunc(u UI) func(ctx context.Context, prompt string) (bool, error) {
	if u == nil || !u.Interactive() {
		return nil
	}
	return u.Confirm
}
