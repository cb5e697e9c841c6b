package ui

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"
)

// pickItem implements list.Item.
type pickItem struct {
	index int
	text  string
}

func (i pickItem) Title() string       { return i.text }
func (i pickItem) Description() string { return "" }
func (i pickItem) FilterValue() string { return i.text }

// fuzzyFilter ranks items with the same matcher the plan search uses.
func fuzzyFilter(term string, targets []string) []list.Rank {
	matches := fuzzy.Find(term, targets)
	ranks := make([]list.Rank, len(matches))
	for i, m := range matches {
		ranks[i] = list.Rank{Index: m.Index, MatchedIndexes: m.MatchedIndexes}
	}
	return ranks
}

type pickerModel struct {
	list   list.Model
	choice int
}

func newPickerModel(title string, items []string) *pickerModel {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(lipgloss.Color("205")).
		BorderForeground(lipgloss.Color("205"))

	listItems := make([]list.Item, len(items))
	for i, text := range items {
		listItems[i] = pickItem{index: i, text: text}
	}

	l := list.New(listItems, delegate, 80, 20)
	l.Title = title
	l.Filter = fuzzyFilter
	l.SetFilteringEnabled(true)
	l.SetShowStatusBar(false)
	l.Styles.Title = titleStyle

	return &pickerModel{list: l, choice: -1}
}

func (m *pickerModel) Init() tea.Cmd { return nil }

func (m *pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.choice = -1
			return m, tea.Quit
		}
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if it, ok := m.list.SelectedItem().(pickItem); ok {
				m.choice = it.index
			}
			return m, tea.Quit
		case "esc", "q":
			if m.list.FilterState() == list.FilterApplied {
				break
			}
			m.choice = -1
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *pickerModel) View() string {
	return m.list.View()
}

func runPicker(ctx context.Context, in io.Reader, out io.Writer, title string, items []string) (int, error) {
	model := newPickerModel(title, items)
	final, err := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	).Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return -1, ErrCancelled
		}
		return -1, err
	}
	if m, ok := final.(*pickerModel); ok && m.choice >= 0 {
		return m.choice, nil
	}
	return -1, ErrCancelled
}
