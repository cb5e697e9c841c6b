package ui

import (
	"context"
	"fmt"
	"io"
	"maps"
	"slices"
	"sync"
)

// Notification is a recorded Notify call.
type Notification struct {
	Text  string
	Level Level
}

// Headless is a non-interactive UI. Documents and notifications are written to
// an optional writer and recorded; prompts are refused.
type Headless struct {
	mu      sync.Mutex
	out     io.Writer
	notes   []Notification
	docs    []string
	status  map[string]string
	panels  map[string][]string
	updates int
}

// NewHeadless returns a headless UI writing to out. A nil out discards output.
func NewHeadless(out io.Writer) *Headless {
	if out == nil {
		out = io.Discard
	}
	return &Headless{
		out:    out,
		status: make(map[string]string),
		panels: make(map[string][]string),
	}
}

func (h *Headless) Select(context.Context, string, []string) (int, error) {
	return -1, ErrNotInteractive
}

func (h *Headless) Confirm(context.Context, string) (bool, error) {
	return false, ErrNotInteractive
}

func (h *Headless) ShowDocument(_ context.Context, _, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.docs = append(h.docs, text)
	_, err := fmt.Fprintln(h.out, text)
	return err
}

func (h *Headless) Notify(text string, level Level) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.notes = append(h.notes, Notification{Text: text, Level: level})
	if level >= LevelWarning {
		_, _ = fmt.Fprintf(h.out, "%s: %s\n", level, text)
		return
	}
	_, _ = fmt.Fprintln(h.out, text)
}

func (h *Headless) SetStatus(key, text string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.updates++
	if text == "" {
		delete(h.status, key)
		return
	}
	h.status[key] = text
}

func (h *Headless) SetPanel(key string, lines []string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.updates++
	if lines == nil {
		delete(h.panels, key)
		return
	}
	h.panels[key] = slices.Clone(lines)
}

func (h *Headless) Interactive() bool { return false }

// Status returns the current indicator for key.
func (h *Headless) Status(key string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	text, ok := h.status[key]
	return text, ok
}

// Panel returns the current side panel for key.
func (h *Headless) Panel(key string) ([]string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	lines, ok := h.panels[key]
	return slices.Clone(lines), ok
}

// StatusKeys returns the keys with a status set, sorted.
func (h *Headless) StatusKeys() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Sorted(maps.Keys(h.status))
}

// Notifications returns every recorded notification.
func (h *Headless) Notifications() []Notification {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.notes)
}

// Documents returns every document shown so far.
func (h *Headless) Documents() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.docs)
}

// Updates counts status and panel writes.
func (h *Headless) Updates() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.updates
}
