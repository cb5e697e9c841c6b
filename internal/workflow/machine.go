package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrNoTransition means the event is not defined for the current status.
	ErrNoTransition = errors.New("invalid status transition")
	// ErrGuardFailed means the transition exists but the caller may not take it.
	ErrGuardFailed = errors.New("transition not permitted")
)

// TransitionError describes a rejected dispatch.
type TransitionError struct {
	From  State
	Event Event
	err   error
}

func (e *TransitionError) Error() string {
	if errors.Is(e.err, ErrGuardFailed) {
		return fmt.Sprintf("cannot %s a %s plan: assigned to another session", e.Event, e.From)
	}
	if IsTerminal(e.From) {
		return fmt.Sprintf("cannot %s a %s plan; reopen it as draft first", e.Event, e.From)
	}
	return fmt.Sprintf("cannot %s a %s plan", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error { return e.err }

// Machine drives the status of one plan. It only changes the in-memory plan;
// callers persist it and announce the recorded History once it is saved.
type Machine struct {
	mu sync.RWMutex

	workUnit *WorkUnit
	effects  *EffectRegistry
	history  []HistoryEntry
}

// HistoryEntry records a state transition
type HistoryEntry struct {
	From  State
	To    State
	Event Event
}

// NewMachine creates a state machine for wu with the built-in effects.
func NewMachine(wu *WorkUnit) *Machine {
	return &Machine{
		workUnit: wu,
		effects:  NewEffectRegistry(),
		history:  make([]HistoryEntry, 0),
	}
}

// WithEffects replaces the effect registry.
func (m *Machine) WithEffects(r *EffectRegistry) *Machine {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.effects = r
	return m
}

// State returns the plan's current status
func (m *Machine) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.workUnit.Plan.Status
}

// Dispatch attempts to transition based on an event
func (m *Machine) Dispatch(ctx context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	from := m.workUnit.Plan.Status

	transitions := GetTransitions(from, event)
	if len(transitions) == 0 {
		return &TransitionError{From: from, Event: event, err: ErrNoTransition}
	}

	// Find first transition where all guards pass
	for _, t := range transitions {
		if EvaluateGuards(ctx, m.workUnit, t.Guards) {
			return m.transitionTo(ctx, t)
		}
	}

	return &TransitionError{From: from, Event: event, err: ErrGuardFailed}
}

// CanDispatch checks if a transition is possible
func (m *Machine) CanDispatch(ctx context.Context, event Event) (bool, string) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from := m.workUnit.Plan.Status
	transitions := GetTransitions(from, event)
	if len(transitions) == 0 {
		return false, (&TransitionError{From: from, Event: event, err: ErrNoTransition}).Error()
	}

	for _, t := range transitions {
		if EvaluateGuards(ctx, m.workUnit, t.Guards) {
			return true, ""
		}
	}

	return false, (&TransitionError{From: from, Event: event, err: ErrGuardFailed}).Error()
}

// MoveTo applies a direct status patch by finding the matching event.
func (m *Machine) MoveTo(ctx context.Context, to State) error {
	from := m.State()
	event, ok := EventFor(from, to)
	if !ok {
		return &TransitionError{From: from, Event: Event("move to " + string(to)), err: ErrNoTransition}
	}
	if event == "" {
		return nil
	}
	return m.Dispatch(ctx, event)
}

// transitionTo performs the actual state change (must hold lock)
func (m *Machine) transitionTo(ctx context.Context, t Transition) error {
	for _, effect := range t.Effects {
		if err := m.effects.Execute(ctx, effect, m.workUnit); err != nil {
			return fmt.Errorf("effect %s: %w", effect, err)
		}
	}

	m.history = append(m.history, HistoryEntry{From: t.From, To: t.To, Event: t.Event})
	m.workUnit.Plan.Status = t.To
	return nil
}

// History returns the transition history
func (m *Machine) History() []HistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	history := make([]HistoryEntry, len(m.history))
	copy(history, m.history)
	return history
}

// Changed reports whether any transition moved the plan to a different status.
func (m *Machine) Changed() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, h := range m.history {
		if h.From != h.To {
			return true
		}
	}
	return false
}
