package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/valksor/go-planbook/internal/storage"
)

func newWorkUnit(status State, assigned, session string) *WorkUnit {
	return &WorkUnit{
		Plan:    &storage.Plan{ID: "1a2b3c4d", Status: status, AssignedToSession: assigned},
		Session: session,
	}
}

func TestDispatch_ValidTransitions(t *testing.T) {
	tests := []struct {
		name  string
		from  State
		event Event
		want  State
	}{
		{"execute draft", StateDraft, EventExecute, StateActive},
		{"re-execute active", StateActive, EventExecute, StateActive},
		{"complete active", StateActive, EventComplete, StateCompleted},
		{"complete draft", StateDraft, EventComplete, StateCompleted},
		{"archive completed", StateCompleted, EventArchive, StateArchived},
		{"reopen completed", StateCompleted, EventReopen, StateDraft},
		{"reopen archived", StateArchived, EventReopen, StateDraft},
		{"edit active", StateActive, EventEdit, StateDraft},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewMachine(newWorkUnit(tt.from, "", "me"))
			if err := m.Dispatch(context.Background(), tt.event); err != nil {
				t.Fatalf("Dispatch: %v", err)
			}
			if m.State() != tt.want {
				t.Errorf("state = %v, want %v", m.State(), tt.want)
			}
			if len(m.History()) != 1 {
				t.Errorf("history length = %d, want 1", len(m.History()))
			}
		})
	}
}

func TestDispatch_TerminalRejected(t *testing.T) {
	for _, from := range []State{StateCompleted, StateArchived} {
		for _, event := range []Event{EventExecute, EventComplete, EventEdit} {
			m := NewMachine(newWorkUnit(from, "", "me"))
			err := m.Dispatch(context.Background(), event)
			if !errors.Is(err, ErrNoTransition) {
				t.Errorf("%s on %s: err = %v, want ErrNoTransition", event, from, err)
			}
			if m.State() != from {
				t.Errorf("%s on %s changed state to %s", event, from, m.State())
			}
		}
	}
}

func TestDispatch_ExecuteClaims(t *testing.T) {
	wu := newWorkUnit(StateDraft, "", "me")
	m := NewMachine(wu)

	if err := m.Dispatch(context.Background(), EventExecute); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if wu.Plan.AssignedToSession != "me" {
		t.Errorf("AssignedToSession = %q, want me", wu.Plan.AssignedToSession)
	}
}

func TestDispatch_ExecuteAssignedElsewhere(t *testing.T) {
	wu := newWorkUnit(StateDraft, "other", "me")
	m := NewMachine(wu)

	err := m.Dispatch(context.Background(), EventExecute)
	if !errors.Is(err, ErrGuardFailed) {
		t.Fatalf("err = %v, want ErrGuardFailed", err)
	}

	wu.Force = true
	if err := m.Dispatch(context.Background(), EventExecute); err != nil {
		t.Fatalf("forced Dispatch: %v", err)
	}
	if wu.Plan.AssignedToSession != "me" {
		t.Errorf("AssignedToSession = %q, want me after forced execute", wu.Plan.AssignedToSession)
	}
}

func TestCanDispatch(t *testing.T) {
	m := NewMachine(newWorkUnit(StateCompleted, "", "me"))

	ok, reason := m.CanDispatch(context.Background(), EventExecute)
	if ok || reason == "" {
		t.Errorf("CanDispatch = %v, %q; want false with reason", ok, reason)
	}
	ok, _ = m.CanDispatch(context.Background(), EventReopen)
	if !ok {
		t.Error("CanDispatch(reopen) = false, want true")
	}
}

func TestMoveTo(t *testing.T) {
	tests := []struct {
		from    State
		to      State
		wantErr bool
	}{
		{StateDraft, StateActive, false},
		{StateDraft, StateDraft, false},
		{StateActive, StateArchived, false},
		{StateCompleted, StateDraft, false},
		{StateCompleted, StateCompleted, false},
		{StateCompleted, StateActive, true},
		{StateArchived, StateCompleted, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			m := NewMachine(newWorkUnit(tt.from, "", "me"))
			err := m.MoveTo(context.Background(), tt.to)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MoveTo err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && m.State() != tt.to {
				t.Errorf("state = %v, want %v", m.State(), tt.to)
			}
		})
	}
}

func TestChanged(t *testing.T) {
	m := NewMachine(newWorkUnit(StateActive, "me", "me"))
	_ = m.Dispatch(context.Background(), EventExecute)
	if m.Changed() {
		t.Error("Changed() = true after active -> active")
	}
	_ = m.Dispatch(context.Background(), EventComplete)
	if !m.Changed() {
		t.Error("Changed() = false after active -> completed")
	}
	if !IsTerminal(m.State()) {
		t.Error("IsTerminal() = false for completed")
	}
}

func TestMoveToWithoutEffects(t *testing.T) {
	wu := newWorkUnit(StateDraft, "", "me")
	m := NewMachine(wu).WithEffects(NoEffects())

	if err := m.MoveTo(context.Background(), StateActive); err != nil {
		t.Fatalf("MoveTo: %v", err)
	}
	if wu.Plan.Status != StateActive {
		t.Errorf("status = %v, want active", wu.Plan.Status)
	}
	if wu.Plan.AssignedToSession != "" {
		t.Errorf("AssignedToSession = %q, want unassigned", wu.Plan.AssignedToSession)
	}
	if h := m.History(); len(h) != 1 || h[0].Event != EventExecute {
		t.Errorf("history = %+v", h)
	}
}

func TestEffectRegistry(t *testing.T) {
	r := NewEffectRegistry()

	boom := errors.New("boom")
	r.Register(EffectClaim, func(context.Context, *WorkUnit) error { return boom })

	m := NewMachine(newWorkUnit(StateDraft, "", "me")).WithEffects(r)
	if err := m.Dispatch(context.Background(), EventExecute); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if m.State() != StateDraft {
		t.Errorf("state = %v, want draft after failed effect", m.State())
	}
	if err := r.Execute(context.Background(), EffectType("unknown"), nil); err != nil {
		t.Errorf("unknown effect err = %v", err)
	}
}
