package ui

import (
	"bytes"
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestHeadless(t *testing.T) {
	var out bytes.Buffer
	h := NewHeadless(&out)

	if h.Interactive() {
		t.Error("headless UI reports interactive")
	}
	if _, err := h.Select(context.Background(), "pick", []string{"a"}); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("Select err = %v", err)
	}
	if _, err := h.Confirm(context.Background(), "sure?"); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("Confirm err = %v", err)
	}

	h.SetStatus("plan", "executing #1a2b3c4d")
	h.SetPanel("plan-steps", []string{"- [ ] 1. a"})
	if got, ok := h.Status("plan"); !ok || got != "executing #1a2b3c4d" {
		t.Errorf("Status = %q, %v", got, ok)
	}
	h.SetStatus("plan", "")
	h.SetPanel("plan-steps", nil)
	if _, ok := h.Status("plan"); ok {
		t.Error("empty status did not clear")
	}
	if _, ok := h.Panel("plan-steps"); ok {
		t.Error("nil panel did not clear")
	}
	if h.Updates() != 4 {
		t.Errorf("Updates = %d, want 4", h.Updates())
	}

	h.Notify("saved", LevelSuccess)
	h.Notify("broken", LevelError)
	if got := out.String(); got != "saved\nerror: broken\n" {
		t.Errorf("output = %q", got)
	}
	if n := h.Notifications(); len(n) != 2 || n[1].Level != LevelError {
		t.Errorf("Notifications = %+v", n)
	}
}

func TestScripted(t *testing.T) {
	s := NewScripted([]int{1, 5}, []bool{true})
	ctx := context.Background()
	items := []string{"a", "b"}

	if got, err := s.Select(ctx, "first", items); err != nil || got != 1 {
		t.Errorf("Select = %d, %v", got, err)
	}
	if _, err := s.Select(ctx, "out of range", items); !errors.Is(err, ErrCancelled) {
		t.Errorf("out of range Select err = %v", err)
	}
	if _, err := s.Select(ctx, "exhausted", items); !errors.Is(err, ErrCancelled) {
		t.Errorf("exhausted Select err = %v", err)
	}
	if ok, err := s.Confirm(ctx, "steal?"); err != nil || !ok {
		t.Errorf("Confirm = %v, %v", ok, err)
	}
	if _, err := s.Confirm(ctx, "again?"); !errors.Is(err, ErrCancelled) {
		t.Errorf("exhausted Confirm err = %v", err)
	}
	if want := []string{"first", "out of range", "exhausted", "steal?", "again?"}; !slices.Equal(s.Prompts(), want) {
		t.Errorf("Prompts = %v", s.Prompts())
	}
}

func TestConfirmFunc(t *testing.T) {
	if ConfirmFunc(NewHeadless(nil)) != nil {
		t.Error("headless UI should not confirm")
	}
	if ConfirmFunc(nil) != nil {
		t.Error("nil UI should not confirm")
	}
	confirm := ConfirmFunc(NewScripted(nil, []bool{true}))
	if confirm == nil {
		t.Fatal("scripted UI should confirm")
	}
	if ok, err := confirm(context.Background(), "?"); !ok || err != nil {
		t.Errorf("confirm = %v, %v", ok, err)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestConfirmModel(t *testing.T) {
	tests := []struct {
		key       string
		answer    bool
		cancelled bool
	}{
		{key: "y", answer: true},
		{key: "Y", answer: true},
		{key: "n"},
		{key: "enter"},
		{key: "esc", cancelled: true},
		{key: "ctrl+c", cancelled: true},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m := &confirmModel{prompt: "Steal the lock?"}
			if !strings.Contains(m.View(), "Steal the lock?") {
				t.Errorf("View = %q", m.View())
			}
			_, cmd := m.Update(key(tt.key))
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if m.answer != tt.answer || m.cancelled != tt.cancelled {
				t.Errorf("answer = %v cancelled = %v", m.answer, m.cancelled)
			}
		})
	}

	m := &confirmModel{}
	if _, cmd := m.Update(key("x")); cmd != nil || m.done {
		t.Error("unrelated key ended the prompt")
	}
}

func TestPickerModel(t *testing.T) {
	m := newPickerModel("Plans", []string{"#00000001 alpha", "#00000002 beta"})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})

	m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if _, cmd := m.Update(key("enter")); cmd == nil {
		t.Fatal("enter should quit")
	}
	if m.choice != 1 {
		t.Errorf("choice = %d, want 1", m.choice)
	}

	m = newPickerModel("Plans", []string{"a"})
	m.Update(key("esc"))
	if m.choice != -1 {
		t.Errorf("esc choice = %d, want -1", m.choice)
	}
}

func TestFuzzyFilter(t *testing.T) {
	ranks := fuzzyFilter("rfa", []string{"write tests", "refactor auth", "read code"})
	if len(ranks) == 0 || ranks[0].Index != 1 {
		t.Errorf("ranks = %+v", ranks)
	}
}

func TestWrapContent(t *testing.T) {
	got := wrapContent("one two three four", 10)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 8 {
			t.Errorf("line %q exceeds width", line)
		}
	}
	if wrapContent("abc", 2) != "abc" {
		t.Error("tiny width should leave text alone")
	}
}

func TestLevelString(t *testing.T) {
	if LevelWarning.String() != "warning" || Level(99).String() != "info" {
		t.Error("unexpected level names")
	}
}
