package actions

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/storage"
)

type fakeTracker struct {
	active string
}

func (f *fakeTracker) PlanExecuted(id string) { f.active = id }

func (f *fakeTracker) PlanRetired(id string) {
	if f.active == id {
		f.active = ""
	}
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	store := storage.OpenStore(filepath.Join(t.TempDir(), "plans"))
	return NewEngine(store, opts...)
}

func mustDo(t *testing.T, e *Engine, caller Caller, req Request) *Result {
	t.Helper()
	res, err := e.Do(context.Background(), caller, req)
	if err != nil {
		t.Fatalf("%s: %v", req.Action, err)
	}
	return res
}

func createPlan(t *testing.T, e *Engine, title string, steps ...string) *storage.Plan {
	t.Helper()
	return mustDo(t, e, Caller{SessionID: "creator"}, Request{Action: ActionCreate, Title: String(title), Steps: steps}).Plan
}

func TestScenarioRefactorAuth(t *testing.T) {
	e := newTestEngine(t)
	tracker := &fakeTracker{}
	me := Caller{SessionID: "session-1", Tracker: tracker}

	created := mustDo(t, e, me, Request{Action: ActionCreate, Title: String("Refactor auth"), Steps: []string{"Read code", "Write tests"}}).Plan
	if created.Status != storage.StatusDraft {
		t.Errorf("Status = %q, want draft", created.Status)
	}
	if len(created.Steps) != 2 || created.Steps[0].ID != 1 || created.Steps[1].ID != 2 {
		t.Fatalf("Steps = %+v", created.Steps)
	}
	for _, s := range created.Steps {
		if s.Done {
			t.Errorf("step %d done on creation", s.ID)
		}
	}

	res := mustDo(t, e, me, Request{Action: ActionCompleteStep, ID: created.ID, StepID: Int(1)})
	if !res.Plan.Steps[0].Done || res.Plan.Steps[1].Done {
		t.Errorf("Steps after complete-step = %+v", res.Plan.Steps)
	}

	res = mustDo(t, e, me, Request{Action: ActionExecute, ID: "#" + created.ID})
	if res.Plan.Status != storage.StatusActive {
		t.Errorf("Status = %q, want active", res.Plan.Status)
	}
	if res.Plan.AssignedToSession != "session-1" {
		t.Errorf("AssignedToSession = %q", res.Plan.AssignedToSession)
	}
	if tracker.active != created.ID {
		t.Errorf("active plan = %q, want %q", tracker.active, created.ID)
	}
	remaining := res.Plan.RemainingSteps()
	if len(remaining) != 1 || remaining[0].Text != "Write tests" {
		t.Errorf("remaining = %+v", remaining)
	}

	// The record on disk reflects every change.
	stored, err := e.Store().Get(context.Background(), created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != storage.StatusActive || !stored.Steps[0].Done {
		t.Errorf("stored plan = %+v", stored)
	}
}

func TestClaimThenExecute(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "x")
	me := Caller{SessionID: "me"}

	mustDo(t, e, me, Request{Action: ActionClaim, ID: p.ID})
	res := mustDo(t, e, me, Request{Action: ActionExecute, ID: p.ID})

	if res.Plan.Status != storage.StatusActive || res.Plan.AssignedToSession != "me" {
		t.Errorf("plan = %+v", res.Plan)
	}
}

func TestExecuteCompletedFailsWithoutWrite(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "done already")
	mustDo(t, e, Caller{SessionID: "me"}, Request{Action: ActionUpdate, ID: p.ID, Status: String("completed")})

	path := e.Store().Paths().RecordPath(p.ID)
	// Make any rewrite observable through the modification time.
	past := time.Now().Add(-time.Hour).Truncate(time.Second)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatal(err)
	}

	_, err := e.Do(context.Background(), Caller{SessionID: "me"}, Request{Action: ActionExecute, ID: p.ID})
	if !IsKind(err, KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	after, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if !after.ModTime().Equal(past) {
		t.Error("record was rewritten by a failed execute")
	}
}

func TestAddStepSequentialIDs(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "empty")
	me := Caller{SessionID: "me"}

	var got []int
	for _, text := range []string{"zeta", "alpha", "mid"} {
		res := mustDo(t, e, me, Request{Action: ActionAddStep, ID: p.ID, StepText: text})
		got = append(got, res.Step.ID)
	}
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("step ids = %v, want [1 2 3]", got)
	}
}

func TestValidationErrors(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "x")
	me := Caller{SessionID: "me"}

	tests := []struct {
		name string
		req  Request
		kind Kind
	}{
		{name: "missing action", req: Request{}, kind: KindValidation},
		{name: "unknown action", req: Request{Action: "explode"}, kind: KindValidation},
		{name: "create without title", req: Request{Action: ActionCreate, Title: String("  ")}, kind: KindValidation},
		{name: "create bad status", req: Request{Action: ActionCreate, Title: String("t"), Status: String("done")}, kind: KindValidation},
		{name: "get missing id", req: Request{Action: ActionGet}, kind: KindValidation},
		{name: "get malformed id", req: Request{Action: ActionGet, ID: "xyz"}, kind: KindValidation},
		{name: "get unknown id", req: Request{Action: ActionGet, ID: "deadbeef"}, kind: KindNotFound},
		{name: "update nothing", req: Request{Action: ActionUpdate, ID: p.ID}, kind: KindValidation},
		{name: "update unknown id", req: Request{Action: ActionUpdate, ID: "deadbeef", Title: String("t")}, kind: KindNotFound},
		{name: "add-step no text", req: Request{Action: ActionAddStep, ID: p.ID}, kind: KindValidation},
		{name: "complete-step no id", req: Request{Action: ActionCompleteStep, ID: p.ID}, kind: KindValidation},
		{name: "complete-step unknown step", req: Request{Action: ActionCompleteStep, ID: p.ID, StepID: Int(9)}, kind: KindNotFound},
		{name: "delete unknown", req: Request{Action: ActionDelete, ID: "deadbeef"}, kind: KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Do(context.Background(), me, tt.req)
			if !IsKind(err, tt.kind) {
				t.Errorf("err = %v (kind %q), want kind %q", err, KindOf(err), tt.kind)
			}
		})
	}
}

func TestAssignmentConflicts(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "shared", "one")
	owner := Caller{SessionID: "owner"}
	other := Caller{SessionID: "other"}

	mustDo(t, e, owner, Request{Action: ActionClaim, ID: p.ID})

	for _, req := range []Request{
		{Action: ActionClaim, ID: p.ID},
		{Action: ActionExecute, ID: p.ID},
		{Action: ActionRelease, ID: p.ID},
		{Action: ActionUpdate, ID: p.ID, Title: String("mine now")},
		{Action: ActionAddStep, ID: p.ID, StepText: "sneaky"},
		{Action: ActionCompleteStep, ID: p.ID, StepID: Int(1)},
		{Action: ActionDelete, ID: p.ID},
	} {
		if _, err := e.Do(context.Background(), other, req); !IsKind(err, KindConflict) {
			t.Errorf("%s by other session: err = %v, want conflict", req.Action, err)
		}
	}

	res := mustDo(t, e, other, Request{Action: ActionClaim, ID: p.ID, Force: true})
	if res.Plan.AssignedToSession != "other" {
		t.Errorf("forced claim left assignment %q", res.Plan.AssignedToSession)
	}

	res = mustDo(t, e, other, Request{Action: ActionRelease, ID: p.ID})
	if res.Plan.IsAssigned() {
		t.Error("release kept assignment")
	}
}

func TestClaimTerminalPlan(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "old")
	me := Caller{SessionID: "me"}
	mustDo(t, e, me, Request{Action: ActionUpdate, ID: p.ID, Status: String("archived")})

	if _, err := e.Do(context.Background(), me, Request{Action: ActionClaim, ID: p.ID}); !IsKind(err, KindConflict) {
		t.Errorf("claim archived: err = %v, want conflict", err)
	}

	// Reopening makes it claimable again.
	mustDo(t, e, me, Request{Action: ActionUpdate, ID: p.ID, Status: String("draft")})
	mustDo(t, e, me, Request{Action: ActionClaim, ID: p.ID})
}

func TestUpdateStatusTransitions(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "x")
	me := Caller{SessionID: "me"}

	mustDo(t, e, me, Request{Action: ActionUpdate, ID: p.ID, Status: String("completed")})
	if _, err := e.Do(context.Background(), me, Request{Action: ActionUpdate, ID: p.ID, Status: String("active")}); !IsKind(err, KindConflict) {
		t.Errorf("completed -> active: err = %v, want conflict", err)
	}
	res := mustDo(t, e, me, Request{Action: ActionUpdate, ID: p.ID, Status: String("draft"), Body: String("notes")})
	if res.Plan.Status != storage.StatusDraft || res.Plan.Body != "notes" {
		t.Errorf("plan = %+v", res.Plan)
	}
	if res.Plan.Title != "x" {
		t.Errorf("title changed by partial update: %q", res.Plan.Title)
	}
}

func TestUpdateStatusActiveOnlyPatchesStatus(t *testing.T) {
	e := newTestEngine(t)
	tracker := &fakeTracker{}
	me := Caller{SessionID: "me", Tracker: tracker}
	p := createPlan(t, e, "x")

	res := mustDo(t, e, me, Request{Action: ActionUpdate, ID: p.ID, Status: String("active")})
	if res.Plan.Status != storage.StatusActive {
		t.Fatalf("status = %q, want active", res.Plan.Status)
	}
	if len(res.Changes) != 1 || res.Changes[0].To != storage.StatusActive {
		t.Errorf("changes = %+v", res.Changes)
	}

	stored, err := e.Store().Get(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.AssignedToSession != "" {
		t.Errorf("AssignedToSession = %q, want unassigned after a status patch", stored.AssignedToSession)
	}
	if tracker.active != "" {
		t.Errorf("active plan = %q, want none after a status patch", tracker.active)
	}

	// Executing afterwards still claims the plan and makes it active for the session.
	mustDo(t, e, me, Request{Action: ActionExecute, ID: p.ID})
	if tracker.active != p.ID {
		t.Errorf("active plan = %q after execute", tracker.active)
	}
}

func TestStatusChangedAfterSave(t *testing.T) {
	bus := events.NewBus()
	e := newTestEngine(t, WithBus(bus))
	me := Caller{SessionID: "me"}
	p := createPlan(t, e, "x")

	var seen []string
	bus.Subscribe(events.TypeStatusChanged, func(ev events.Event) {
		stored, err := e.Store().Get(context.Background(), p.ID)
		if err != nil {
			t.Errorf("read plan in handler: %v", err)
			return
		}
		if string(stored.Status) != ev.Data["to"] {
			t.Errorf("event to=%v published while record is %q", ev.Data["to"], stored.Status)
		}
		seen = append(seen, ev.Data["from"].(string)+"->"+ev.Data["to"].(string))
	})

	mustDo(t, e, me, Request{Action: ActionExecute, ID: p.ID})
	mustDo(t, e, me, Request{Action: ActionExecute, ID: p.ID})
	mustDo(t, e, me, Request{Action: ActionUpdate, ID: p.ID, Status: String("completed")})
	if _, err := e.Do(context.Background(), me, Request{Action: ActionUpdate, ID: p.ID, Status: String("active")}); err == nil {
		t.Fatal("completed -> active succeeded")
	}

	want := []string{"draft->active", "active->completed"}
	if !slices.Equal(seen, want) {
		t.Errorf("status events = %v, want %v", seen, want)
	}
}

func TestActivePlanPointer(t *testing.T) {
	tests := []struct {
		name string
		req  func(id string) Request
	}{
		{name: "release", req: func(id string) Request { return Request{Action: ActionRelease, ID: id} }},
		{name: "delete", req: func(id string) Request { return Request{Action: ActionDelete, ID: id} }},
		{name: "complete", req: func(id string) Request { return Request{Action: ActionUpdate, ID: id, Status: String("completed")} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t)
			tracker := &fakeTracker{}
			me := Caller{SessionID: "me", Tracker: tracker}
			p := createPlan(t, e, "x")

			mustDo(t, e, me, Request{Action: ActionExecute, ID: p.ID})
			if tracker.active != p.ID {
				t.Fatalf("active = %q after execute", tracker.active)
			}
			mustDo(t, e, me, tt.req(p.ID))
			if tracker.active != "" {
				t.Errorf("active = %q, want cleared", tracker.active)
			}
		})
	}
}

func TestLockedPlanLeavesRecordUntouched(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "busy")

	release, err := e.Store().Locks().Acquire(context.Background(), p.ID, storage.SessionContext{SessionID: "elsewhere"})
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	_, err = e.Do(context.Background(), Caller{SessionID: "me"}, Request{Action: ActionUpdate, ID: p.ID, Title: String("changed")})
	if !IsKind(err, KindConflict) || !errors.Is(err, storage.ErrLocked) {
		t.Fatalf("err = %v, want lock conflict", err)
	}

	stored, err := e.Store().Get(context.Background(), p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Title != "busy" {
		t.Errorf("Title = %q, want unchanged", stored.Title)
	}
}

func TestSessionRequired(t *testing.T) {
	e := newTestEngine(t)
	p := createPlan(t, e, "x")

	for _, a := range []Action{ActionClaim, ActionExecute} {
		if _, err := e.Do(context.Background(), Caller{}, Request{Action: a, ID: p.ID}); !IsKind(err, KindValidation) {
			t.Errorf("%s without session: err = %v, want validation", a, err)
		}
	}
}

func TestListGroups(t *testing.T) {
	e := newTestEngine(t)
	me := Caller{SessionID: "me"}

	res := mustDo(t, e, me, Request{Action: ActionList})
	if len(res.Plans) != 0 || res.Summary != "No plans." {
		t.Errorf("empty list = %+v", res)
	}

	a := createPlan(t, e, "a")
	createPlan(t, e, "b")
	mustDo(t, e, me, Request{Action: ActionExecute, ID: a.ID})

	res = mustDo(t, e, me, Request{Action: ActionList})
	if len(res.Groups) != 2 || res.Groups[0].Status != storage.StatusActive {
		t.Errorf("groups = %+v", res.Groups)
	}
}

func TestEventsPublished(t *testing.T) {
	bus := events.NewBus()
	var got []events.Type
	bus.SubscribeAll(func(ev events.Event) {
		if ev.Type != events.TypeStatusChanged {
			got = append(got, ev.Type)
		}
	})
	e := newTestEngine(t, WithBus(bus))
	me := Caller{SessionID: "me"}

	p := createPlan(t, e, "x")
	mustDo(t, e, me, Request{Action: ActionAddStep, ID: p.ID, StepText: "s"})
	mustDo(t, e, me, Request{Action: ActionExecute, ID: p.ID})
	_, _ = e.Do(context.Background(), me, Request{Action: ActionGet, ID: "nope"})

	want := []events.Type{events.TypePlanCreated, events.TypeStepAdded, events.TypePlanExecuted, events.TypeError}
	if !slices.Equal(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestNormalizeID(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "1a2b3c4d", want: "1a2b3c4d"},
		{in: " #1A2B3C4D ", want: "1a2b3c4d"},
		{in: "PLAN-1a2b3c4d", want: "1a2b3c4d"},
		{in: "plan-1A2B3C4D", want: "1a2b3c4d"},
		{in: "", wantErr: true},
		{in: "#", wantErr: true},
		{in: "1a2b3c4", wantErr: true},
		{in: "1a2b3c4g", wantErr: true},
		{in: "../../etc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeID(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeID(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
