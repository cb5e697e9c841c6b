package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	faintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Terminal is the interactive UI. Prompts run as short-lived Bubble Tea
// programs; indicators are printed when they change.
type Terminal struct {
	in  io.Reader
	out io.Writer

	mu     sync.Mutex
	status map[string]string
	panels map[string][]string
}

// TerminalOption configures a Terminal.
type TerminalOption func(*Terminal)

// WithInput overrides stdin.
func WithInput(r io.Reader) TerminalOption {
	return func(t *Terminal) { t.in = r }
}

// WithOutput overrides stdout.
func WithOutput(w io.Writer) TerminalOption {
	return func(t *Terminal) { t.out = w }
}

// NewTerminal creates a terminal UI on stdin/stdout.
func NewTerminal(opts ...TerminalOption) *Terminal {
	t := &Terminal{
		in:     os.Stdin,
		out:    os.Stdout,
		status: make(map[string]string),
		panels: make(map[string][]string),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Interactive reports whether both ends are terminals.
func (t *Terminal) Interactive() bool {
	return isTTY(t.in) && isTTY(t.out)
}

func isTTY(v any) bool {
	f, ok := v.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (t *Terminal) Select(ctx context.Context, title string, items []string) (int, error) {
	if len(items) == 0 {
		return -1, ErrCancelled
	}
	if !t.Interactive() {
		return -1, ErrNotInteractive
	}
	return runPicker(ctx, t.in, t.out, title, items)
}

func (t *Terminal) Confirm(ctx context.Context, prompt string) (bool, error) {
	if !t.Interactive() {
		return false, ErrNotInteractive
	}
	return runConfirm(ctx, t.in, t.out, prompt)
}

// ShowDocument pages text interactively, or prints it when not on a terminal.
func (t *Terminal) ShowDocument(ctx context.Context, title, text string) error {
	if !t.Interactive() {
		_, err := fmt.Fprintln(t.out, text)
		return err
	}
	err := runPager(ctx, t.in, t.out, title, text)
	if errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

func (t *Terminal) Notify(text string, level Level) {
	var line string
	switch level {
	case LevelSuccess:
		line = successStyle.Render("✓ " + text)
	case LevelWarning:
		line = warningStyle.Render("⚠ " + text)
	case LevelError:
		line = errorStyle.Render("✗ " + text)
	default:
		line = text
	}
	_, _ = fmt.Fprintln(t.out, line)
}

func (t *Terminal) SetStatus(key, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.status[key] == text {
		return
	}
	if text == "" {
		delete(t.status, key)
		return
	}
	t.status[key] = text
	_, _ = fmt.Fprintln(t.out, faintStyle.Render("["+key+"] ")+text)
}

func (t *Terminal) SetPanel(key string, lines []string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if lines == nil {
		delete(t.panels, key)
		return
	}
	if prev, ok := t.panels[key]; ok && slices.Equal(prev, lines) {
		return
	}
	t.panels[key] = slices.Clone(lines)
	_, _ = fmt.Fprintln(t.out, panelStyle.Render(strings.Join(lines, "\n")))
}
