package ui

import (
	"context"
	"sync"
)

// Scripted is an interactive UI that answers prompts from queues. An empty queue
// behaves like a dismissed prompt.
type Scripted struct {
	*Headless

	mu         sync.Mutex
	selections []int
	confirms   []bool
	prompts    []string
}

// NewScripted returns a scripted UI with the given answers.
func NewScripted(selections []int, confirms []bool) *Scripted {
	return &Scripted{
		Headless:   NewHeadless(nil),
		selections: selections,
		confirms:   confirms,
	}
}

func (s *Scripted) Select(_ context.Context, title string, items []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, title)
	if len(s.selections) == 0 {
		return -1, ErrCancelled
	}
	choice := s.selections[0]
	s.selections = s.selections[1:]
	if choice < 0 || choice >= len(items) {
		return -1, ErrCancelled
	}
	return choice, nil
}

func (s *Scripted) Confirm(_ context.Context, prompt string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prompts = append(s.prompts, prompt)
	if len(s.confirms) == 0 {
		return false, ErrCancelled
	}
	answer := s.confirms[0]
	s.confirms = s.confirms[1:]
	return answer, nil
}

func (s *Scripted) Interactive() bool { return true }

// Prompts returns the titles and questions asked so far.
func (s *Scripted) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}
