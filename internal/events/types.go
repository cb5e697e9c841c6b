package events

import "time"

// Type identifies event categories
type Type string

const (
	TypePlanCreated   Type = "plan_created"
	TypePlanUpdated   Type = "plan_updated"
	TypeStatusChanged Type = "status_changed"
	TypeStepAdded     Type = "step_added"
	TypeStepCompleted Type = "step_completed"
	TypePlanClaimed   Type = "plan_claimed"
	TypePlanReleased  Type = "plan_released"
	TypePlanDeleted   Type = "plan_deleted"
	TypePlanExecuted  Type = "plan_executed"
	TypeModeChanged   Type = "mode_changed"
	TypeGCSwept       Type = "gc_swept"
	TypeStoreChanged  Type = "store_changed"
	TypeError         Type = "error"
)

// Event is the base event structure
type Event struct {
	Type      Type
	Timestamp time.Time
	Data      map[string]any
}

// Eventer interface for typed events
type Eventer interface {
	ToEvent() Event
}

func stamp(ts time.Time) time.Time {
	if ts.IsZero() {
		return time.Now()
	}
	return ts
}

// PlanEvent reports a mutation of a single plan. Kind selects the event type
// (created, updated, claimed, released, deleted, executed).
type PlanEvent struct {
	Kind      Type
	PlanID    string
	Title     string
	Session   string
	Timestamp time.Time
}

func (e PlanEvent) ToEvent() Event {
	return Event{
		Type:      e.Kind,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"plan_id": e.PlanID,
			"title":   e.Title,
			"session": e.Session,
		},
	}
}

// StatusChangedEvent when a plan's status changes
type StatusChangedEvent struct {
	PlanID    string
	From      string
	To        string
	Event     string // Triggering workflow event
	Timestamp time.Time
}

func (e StatusChangedEvent) ToEvent() Event {
	return Event{
		Type:      TypeStatusChanged,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"plan_id": e.PlanID,
			"from":    e.From,
			"to":      e.To,
			"event":   e.Event,
		},
	}
}

// StepEvent when a step is added or marked done
type StepEvent struct {
	Kind      Type
	PlanID    string
	StepID    int
	Text      string
	Timestamp time.Time
}

func (e StepEvent) ToEvent() Event {
	return Event{
		Type:      e.Kind,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"plan_id": e.PlanID,
			"step_id": e.StepID,
			"text":    e.Text,
		},
	}
}

// ModeChangedEvent when planning mode or the active plan changes
type ModeChangedEvent struct {
	PlanningMode bool
	ActivePlanID string
	Timestamp    time.Time
}

func (e ModeChangedEvent) ToEvent() Event {
	return Event{
		Type:      TypeModeChanged,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"planning_mode":  e.PlanningMode,
			"active_plan_id": e.ActivePlanID,
		},
	}
}

// GCSweptEvent after a retention sweep
type GCSweptEvent struct {
	Deleted   []string
	Timestamp time.Time
}

func (e GCSweptEvent) ToEvent() Event {
	return Event{
		Type:      TypeGCSwept,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"deleted": e.Deleted,
			"count":   len(e.Deleted),
		},
	}
}

// StoreChangedEvent when a record file changes on disk, possibly from another process
type StoreChangedEvent struct {
	PlanID    string
	Path      string
	Operation string // create, write, remove, rename
	Timestamp time.Time
}

func (e StoreChangedEvent) ToEvent() Event {
	return Event{
		Type:      TypeStoreChanged,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"plan_id":   e.PlanID,
			"path":      e.Path,
			"operation": e.Operation,
		},
	}
}

// ErrorEvent for failed actions
type ErrorEvent struct {
	PlanID    string
	Action    string
	Kind      string
	Error     error
	Timestamp time.Time
}

func (e ErrorEvent) ToEvent() Event {
	errMsg := ""
	if e.Error != nil {
		errMsg = e.Error.Error()
	}
	return Event{
		Type:      TypeError,
		Timestamp: stamp(e.Timestamp),
		Data: map[string]any{
			"plan_id": e.PlanID,
			"action":  e.Action,
			"kind":    e.Kind,
			"error":   errMsg,
		},
	}
}
