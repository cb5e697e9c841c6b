package events

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPlanLifecycleDelivery(t *testing.T) {
	bus := NewBus()

	var statusOnly, all []Type
	bus.Subscribe(TypeStatusChanged, func(e Event) { statusOnly = append(statusOnly, e.Type) })
	bus.SubscribeAll(func(e Event) { all = append(all, e.Type) })

	bus.Publish(PlanEvent{Kind: TypePlanCreated, PlanID: "1a2b3c4d"})
	bus.Publish(StepEvent{Kind: TypeStepAdded, PlanID: "1a2b3c4d", StepID: 1, Text: "Read code"})
	bus.Publish(StatusChangedEvent{PlanID: "1a2b3c4d", From: "draft", To: "active", Event: "execute"})
	bus.Publish(PlanEvent{Kind: TypePlanExecuted, PlanID: "1a2b3c4d"})

	if want := []Type{TypeStatusChanged}; !slices.Equal(statusOnly, want) {
		t.Errorf("status subscriber got %v, want %v", statusOnly, want)
	}
	want := []Type{TypePlanCreated, TypeStepAdded, TypeStatusChanged, TypePlanExecuted}
	if !slices.Equal(all, want) {
		t.Errorf("SubscribeAll got %v, want %v", all, want)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()

	var modes, all int
	modeID := bus.Subscribe(TypeModeChanged, func(Event) { modes++ })
	allID := bus.SubscribeAll(func(Event) { all++ })

	bus.Publish(ModeChangedEvent{PlanningMode: true})
	bus.Unsubscribe(modeID)
	bus.Unsubscribe(allID)
	bus.Unsubscribe("sub-unknown")
	bus.Publish(ModeChangedEvent{PlanningMode: false})

	if modes != 1 || all != 1 {
		t.Errorf("deliveries = %d typed, %d all; want 1 each", modes, all)
	}
}

func TestPublishSurvivesPanickingHandler(t *testing.T) {
	bus := NewBus()

	var delivered bool
	bus.Subscribe(TypeGCSwept, func(Event) { panic("boom") })
	bus.Subscribe(TypeGCSwept, func(Event) { delivered = true })

	bus.Publish(GCSweptEvent{Deleted: []string{"0000000a"}})
	if !delivered {
		t.Error("second handler not called after the first panicked")
	}
}

func TestHandlerMayUnsubscribeItself(t *testing.T) {
	bus := NewBus()

	var calls int
	var id string
	id = bus.Subscribe(TypeStoreChanged, func(Event) {
		calls++
		bus.Unsubscribe(id)
	})

	bus.Publish(StoreChangedEvent{PlanID: "1a2b3c4d", Operation: "write"})
	bus.Publish(StoreChangedEvent{PlanID: "1a2b3c4d", Operation: "remove"})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestConcurrentStepEvents(t *testing.T) {
	bus := NewBus()

	var count atomic.Int64
	bus.Subscribe(TypeStepCompleted, func(Event) { count.Add(1) })

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Go(func() {
			id := bus.Subscribe(TypePlanUpdated, func(Event) {})
			bus.Publish(StepEvent{Kind: TypeStepCompleted, PlanID: "1a2b3c4d", StepID: i})
			bus.Unsubscribe(id)
		})
	}
	wg.Wait()

	if count.Load() != 50 {
		t.Errorf("count = %d, want 50", count.Load())
	}
}

func TestEventData(t *testing.T) {
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		event Eventer
		typ   Type
		data  map[string]any
	}{
		{
			name:  "claimed",
			event: PlanEvent{Kind: TypePlanClaimed, PlanID: "1a2b3c4d", Title: "Refactor auth", Session: "s1"},
			typ:   TypePlanClaimed,
			data:  map[string]any{"plan_id": "1a2b3c4d", "title": "Refactor auth", "session": "s1"},
		},
		{
			name:  "step completed",
			event: StepEvent{Kind: TypeStepCompleted, PlanID: "1a2b3c4d", StepID: 3, Text: "Write tests"},
			typ:   TypeStepCompleted,
			data:  map[string]any{"plan_id": "1a2b3c4d", "step_id": 3, "text": "Write tests"},
		},
		{
			name:  "status changed",
			event: StatusChangedEvent{PlanID: "1a2b3c4d", From: "active", To: "completed", Event: "complete"},
			typ:   TypeStatusChanged,
			data:  map[string]any{"plan_id": "1a2b3c4d", "from": "active", "to": "completed", "event": "complete"},
		},
		{
			name:  "planning mode",
			event: ModeChangedEvent{PlanningMode: true},
			typ:   TypeModeChanged,
			data:  map[string]any{"planning_mode": true, "active_plan_id": ""},
		},
		{
			name:  "gc sweep",
			event: GCSweptEvent{Deleted: []string{"0000000a", "0000000b"}},
			typ:   TypeGCSwept,
			data:  map[string]any{"count": 2},
		},
		{
			name:  "store change",
			event: StoreChangedEvent{PlanID: "1a2b3c4d", Path: "/p/1a2b3c4d.md", Operation: "write"},
			typ:   TypeStoreChanged,
			data:  map[string]any{"plan_id": "1a2b3c4d", "operation": "write"},
		},
		{
			name:  "failed action",
			event: ErrorEvent{PlanID: "1a2b3c4d", Action: "claim", Kind: "conflict", Error: errors.New("assigned to s2")},
			typ:   TypeError,
			data:  map[string]any{"action": "claim", "kind": "conflict", "error": "assigned to s2"},
		},
		{
			name:  "failed action without error",
			event: ErrorEvent{Action: "get"},
			typ:   TypeError,
			data:  map[string]any{"error": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event.ToEvent()
			if e.Type != tt.typ {
				t.Errorf("Type = %v, want %v", e.Type, tt.typ)
			}
			if e.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
			for k, want := range tt.data {
				if got := e.Data[k]; got != want {
					t.Errorf("Data[%q] = %v, want %v", k, got, want)
				}
			}
		})
	}

	if got := (StatusChangedEvent{Timestamp: ts}).ToEvent().Timestamp; !got.Equal(ts) {
		t.Errorf("explicit Timestamp = %v, want %v", got, ts)
	}
}
