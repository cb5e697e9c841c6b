package ui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	prompt    string
	answer    bool
	cancelled bool
	done      bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.answer, m.done = true, true
	case "n", "N", "enter":
		m.answer, m.done = false, true
	case "esc", "ctrl+c", "q":
		m.cancelled, m.done = true, true
	default:
		return m, nil
	}
	return m, tea.Quit
}

func (m *confirmModel) View() string {
	if m.done {
		return ""
	}
	return warningStyle.Render("? ") + m.prompt + faintStyle.Render(" [y/N] ")
}

func runConfirm(ctx context.Context, in io.Reader, out io.Writer, prompt string) (bool, error) {
	final, err := tea.NewProgram(&confirmModel{prompt: prompt},
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return false, ErrCancelled
		}
		return false, err
	}
	m, ok := final.(*confirmModel)
	if !ok || m.cancelled {
		return false, ErrCancelled
	}
	return m.answer, nil
}
