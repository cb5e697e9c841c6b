package session

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/ui"
)

type fixture struct {
	engine *actions.Engine
	coord  *Coordinator
	screen *ui.Headless
	bus    *events.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := storage.OpenStore(filepath.Join(t.TempDir(), "plans"))
	bus := events.NewBus()

	screen := ui.NewHeadless(nil)
	coord := NewCoordinator(store, "session-1", WithIndicators(screen))
	coord.Attach(bus)

	return &fixture{
		engine: actions.NewEngine(store, actions.WithBus(bus)),
		coord:  coord,
		screen: screen,
		bus:    bus,
	}
}

func (f *fixture) do(t *testing.T, req actions.Request) *actions.Result {
	t.Helper()
	res, err := f.engine.Do(context.Background(), f.coord.Caller(nil), req)
	if err != nil {
		t.Fatalf("%s: %v", req.Action, err)
	}
	return res
}

func TestRefactorAuthScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.coord.SetPlanningMode(ctx, true)

	p := f.do(t, actions.Request{Action: actions.ActionCreate, Title: actions.String("Refactor auth"), Steps: []string{"Read code", "Write tests"}}).Plan
	f.do(t, actions.Request{Action: actions.ActionCompleteStep, ID: p.ID, StepID: actions.Int(1)})
	f.do(t, actions.Request{Action: actions.ActionExecute, ID: p.ID})

	state := f.coord.State()
	if state.PlanningMode {
		t.Error("execute left planning mode on")
	}
	if state.ActivePlanID != p.ID {
		t.Errorf("ActivePlanID = %q, want %q", state.ActivePlanID, p.ID)
	}

	notes := f.coord.TurnNotes(ctx)
	if len(notes) != 1 {
		t.Fatalf("notes = %q", notes)
	}
	if !strings.Contains(notes[0], "2. Write tests") || strings.Contains(notes[0], "1. Read code") {
		t.Errorf("note = %q", notes[0])
	}

	if got, _ := f.screen.Status(StatusKey); got != "executing #"+p.ID+" 1/2" {
		t.Errorf("status = %q", got)
	}
	panel, ok := f.screen.Panel(PanelKey)
	if !ok || len(panel) != 3 || panel[2] != "- [ ] 2. Write tests" {
		t.Errorf("panel = %q", panel)
	}
}

func TestTurnNotesReadFromDisk(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p := f.do(t, actions.Request{Action: actions.ActionCreate, Title: actions.String("x"), Steps: []string{"only"}}).Plan
	f.do(t, actions.Request{Action: actions.ActionExecute, ID: p.ID})

	// Another session completes the step directly on disk.
	other := actions.Caller{SessionID: "session-2"}
	if _, err := f.engine.Do(ctx, other, actions.Request{Action: actions.ActionCompleteStep, ID: p.ID, StepID: actions.Int(1), Force: true}); err != nil {
		t.Fatal(err)
	}

	notes := f.coord.TurnNotes(ctx)
	if len(notes) != 1 || !strings.Contains(notes[0], "All steps of plan #"+p.ID+" are done.") {
		t.Errorf("notes = %q", notes)
	}
}

func TestTurnNotesClearsMissingPlan(t *testing.T) {
	f := newFixture(t)
	f.coord.PlanExecuted("deadbeef")

	if notes := f.coord.TurnNotes(context.Background()); len(notes) != 0 {
		t.Errorf("notes = %q", notes)
	}
	if f.coord.State().ActivePlanID != "" {
		t.Error("pointer to a missing plan was kept")
	}
}

func TestPlanningNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if notes := f.coord.TurnNotes(ctx); len(notes) != 0 {
		t.Errorf("notes outside planning mode = %q", notes)
	}
	f.coord.SetPlanningMode(ctx, true)
	notes := f.coord.TurnNotes(ctx)
	if len(notes) != 1 || !strings.Contains(notes[0], "Planning mode is on") {
		t.Errorf("notes = %q", notes)
	}
	if got, _ := f.screen.Status(StatusKey); got != "planning" {
		t.Errorf("status = %q", got)
	}

	f.coord.SetPlanningMode(ctx, false)
	if _, ok := f.screen.Status(StatusKey); ok {
		t.Error("status not cleared")
	}
}

func TestActivePlanCleared(t *testing.T) {
	tests := []struct {
		name string
		req  func(id string) actions.Request
	}{
		{name: "release", req: func(id string) actions.Request { return actions.Request{Action: actions.ActionRelease, ID: id} }},
		{name: "delete", req: func(id string) actions.Request { return actions.Request{Action: actions.ActionDelete, ID: id} }},
		{name: "complete", req: func(id string) actions.Request {
			return actions.Request{Action: actions.ActionUpdate, ID: id, Status: actions.String("completed")}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			p := f.do(t, actions.Request{Action: actions.ActionCreate, Title: actions.String("x"), Steps: []string{"a"}}).Plan
			f.do(t, actions.Request{Action: actions.ActionExecute, ID: p.ID})
			f.do(t, tt.req(p.ID))

			if id := f.coord.State().ActivePlanID; id != "" {
				t.Errorf("ActivePlanID = %q, want cleared", id)
			}
			if _, ok := f.screen.Panel(PanelKey); ok {
				t.Error("step panel not cleared")
			}
		})
	}
}

func TestRetiringOtherPlanKeepsPointer(t *testing.T) {
	f := newFixture(t)
	a := f.do(t, actions.Request{Action: actions.ActionCreate, Title: actions.String("a")}).Plan
	b := f.do(t, actions.Request{Action: actions.ActionCreate, Title: actions.String("b")}).Plan
	f.do(t, actions.Request{Action: actions.ActionExecute, ID: a.ID})
	f.do(t, actions.Request{Action: actions.ActionDelete, ID: b.ID})

	if f.coord.State().ActivePlanID != a.ID {
		t.Errorf("ActivePlanID = %q, want %q", f.coord.State().ActivePlanID, a.ID)
	}
}

func TestAllowTool(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if ok, _ := f.coord.AllowTool("write", nil); !ok {
		t.Error("write refused outside planning mode")
	}

	f.coord.SetPlanningMode(ctx, true)
	tests := []struct {
		name string
		args map[string]any
		want bool
	}{
		{name: "read", want: true},
		{name: "plan", want: true},
		{name: "write", want: false},
		{name: "edit", want: false},
		{name: "bash", args: map[string]any{"command": "git status"}, want: true},
		{name: "bash", args: map[string]any{"command": "rm -rf /tmp/x"}, want: false},
	}
	for _, tt := range tests {
		ok, reason := f.coord.AllowTool(tt.name, tt.args)
		if ok != tt.want {
			t.Errorf("AllowTool(%s, %v) = %v (%s), want %v", tt.name, tt.args, ok, reason, tt.want)
		}
		if !ok && reason == "" {
			t.Errorf("AllowTool(%s) refused without a reason", tt.name)
		}
	}

	all := []string{"read", "write", "edit", "bash", "plan"}
	if got := f.coord.ActiveTools(all); !slices.Equal(got, []string{"read", "bash", "plan"}) {
		t.Errorf("ActiveTools = %v", got)
	}
	f.coord.SetPlanningMode(ctx, false)
	if got := f.coord.ActiveTools(all); !slices.Equal(got, all) {
		t.Errorf("ActiveTools = %v", got)
	}
}

func TestSwitchSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.do(t, actions.Request{Action: actions.ActionCreate, Title: actions.String("x")}).Plan
	f.do(t, actions.Request{Action: actions.ActionExecute, ID: p.ID})
	f.coord.SetPlanningMode(ctx, true)

	before := f.screen.Updates()
	f.coord.SwitchSession(ctx, "session-9")

	if f.coord.SessionID() != "session-9" || f.coord.Caller(nil).SessionID != "session-9" {
		t.Errorf("SessionID = %q", f.coord.SessionID())
	}
	state := f.coord.State()
	if !state.PlanningMode || state.ActivePlanID != p.ID {
		t.Errorf("state lost on switch: %+v", state)
	}
	if f.screen.Updates() <= before {
		t.Error("indicators not pushed on switch")
	}
}

func TestModeChangedEvents(t *testing.T) {
	f := newFixture(t)
	var got []events.Event
	f.bus.Subscribe(events.TypeModeChanged, func(e events.Event) { got = append(got, e) })

	ctx := context.Background()
	f.coord.SetPlanningMode(ctx, true)
	f.coord.SetPlanningMode(ctx, true)
	f.coord.SetPlanningMode(ctx, false)

	if len(got) != 2 {
		t.Fatalf("mode events = %d, want 2", len(got))
	}
	if got[0].Data["planning_mode"] != true || got[1].Data["planning_mode"] != false {
		t.Errorf("events = %+v", got)
	}

	f.coord.Detach()
	f.coord.SetPlanningMode(ctx, true)
	if len(got) != 2 {
		t.Error("event published after Detach")
	}
}

func TestStatusText(t *testing.T) {
	p := &storage.Plan{ID: "1a2b3c4d", Steps: []storage.Step{{ID: 1, Done: true}, {ID: 2}}}
	tests := []struct {
		name  string
		state State
		plan  *storage.Plan
		want  string
	}{
		{name: "idle", want: ""},
		{name: "planning", state: State{PlanningMode: true}, want: "planning"},
		{name: "executing", state: State{ActivePlanID: p.ID}, plan: p, want: "executing #1a2b3c4d 1/2"},
		{name: "both", state: State{PlanningMode: true, ActivePlanID: p.ID}, plan: p, want: "planning · executing #1a2b3c4d 1/2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StatusText(tt.state, tt.plan); got != tt.want {
				t.Errorf("StatusText() = %q, want %q", got, tt.want)
			}
		})
	}
}
