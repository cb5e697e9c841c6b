package ui

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

type pagerModel struct {
	title    string
	content  string
	viewport viewport.Model
	ready    bool
}

func (m *pagerModel) Init() tea.Cmd { return nil }

func (m *pagerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		headerHeight := lipgloss.Height(m.headerView())
		footerHeight := lipgloss.Height(m.footerView())
		height := max(msg.Height-headerHeight-footerHeight, 1)
		if !m.ready {
			m.viewport = viewport.New(msg.Width, height)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = height
		}
		m.viewport.SetContent(wrapContent(m.content, msg.Width))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *pagerModel) headerView() string {
	return titleStyle.Render(m.title)
}

func (m *pagerModel) footerView() string {
	if !m.ready {
		return ""
	}
	return faintStyle.Render(fmt.Sprintf("%3.f%%  q to close", m.viewport.ScrollPercent()*100))
}

func (m *pagerModel) View() string {
	if !m.ready {
		return "\n  Loading..."
	}
	return m.headerView() + "\n" + m.viewport.View() + "\n" + m.footerView()
}

// wrapContent word-wraps text to width, leaving a small margin.
func wrapContent(text string, width int) string {
	if width <= 4 {
		return text
	}
	return wordwrap.String(text, width-2)
}

func runPager(ctx context.Context, in io.Reader, out io.Writer, title, text string) error {
	_, err := tea.NewProgram(&pagerModel{title: title, content: text},
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return ErrCancelled
	}
	return err
}
