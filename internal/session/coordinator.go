// Package session keeps the process-local planning state of one interactive
// session: the planning mode toggle, the active plan pointer and the indicators
// derived from them.
package session

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/storage"
)

// UI keys owned by the coordinator.
const (
	StatusKey = "plan"
	PanelKey  = "plan-steps"
)

// ShellTool is the tool whose command text is checked against the policy.
const ShellTool = "bash"

// ReadOnlyTools is the tool set available while planning mode is on.
var ReadOnlyTools = []string{"read", "grep", "find", "ls", ShellTool, actions.ToolName}

// AllTools is the tool set of a session outside planning mode.
var AllTools = []string{"read", "write", "edit", "grep", "find", "ls", ShellTool, actions.ToolName}

// State is the process-local session state. It survives a session switch but
// not a restart.
type State struct {
	PlanningMode bool   `json:"planning_mode"`
	ActivePlanID string `json:"active_plan_id,omitempty"`
}

// Indicators receives the status line and side panel.
type Indicators interface {
	SetStatus(key, text string)
	SetPanel(key string, lines []string)
}

// Coordinator owns State for one process and keeps the indicators in sync with
// it and with the active plan on disk.
type Coordinator struct {
	mu        sync.Mutex
	sessionID string
	state     State

	store      *storage.Store
	policy     *Policy
	indicators Indicators
	bus        *events.Bus
	subs       []string
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPolicy sets the shell command policy.
func WithPolicy(p *Policy) Option {
	return func(c *Coordinator) { c.policy = p }
}

// WithIndicators sets where status and panel updates go.
func WithIndicators(i Indicators) Option {
	return func(c *Coordinator) { c.indicators = i }
}

// WithState restores a previously saved state.
func WithState(s State) Option {
	return func(c *Coordinator) { c.state = s }
}

// NewCoordinator creates a coordinator for sessionID over store.
func NewCoordinator(store *storage.Store, sessionID string, opts ...Option) *Coordinator {
	c := &Coordinator{
		sessionID: sessionID,
		store:     store,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy == nil {
		c.policy = DefaultPolicy()
	}
	return c
}

// SessionID returns the current session id.
func (c *Coordinator) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// State returns a copy of the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Policy returns the shell command policy.
func (c *Coordinator) Policy() *Policy {
	return c.policy
}

// Caller returns the action caller for this session with c as its tracker.
func (c *Coordinator) Caller(confirm storage.ConfirmFunc) actions.Caller {
	return actions.Caller{SessionID: c.SessionID(), Confirm: confirm, Tracker: c}
}

// update applies fn to the state and publishes a mode event when it changed.
func (c *Coordinator) update(fn func(*State)) bool {
	c.mu.Lock()
	before := c.state
	fn(&c.state)
	after := c.state
	bus := c.bus
	c.mu.Unlock()

	if before == after {
		return false
	}
	log.Debug("session state changed",
		"planning", after.PlanningMode, log.PlanID(after.ActivePlanID))
	if bus != nil {
		bus.Publish(events.ModeChangedEvent{PlanningMode: after.PlanningMode, ActivePlanID: after.ActivePlanID})
	}
	return true
}

// SetPlanningMode turns planning mode on or off and refreshes the indicators.
func (c *Coordinator) SetPlanningMode(ctx context.Context, on bool) {
	c.update(func(s *State) { s.PlanningMode = on })
	c.Refresh(ctx)
}

// PlanExecuted leaves planning mode and makes planID the active plan.
func (c *Coordinator) PlanExecuted(planID string) {
	c.update(func(s *State) {
		s.PlanningMode = false
		s.ActivePlanID = planID
	})
}

// PlanRetired clears the active plan pointer if it is planID.
func (c *Coordinator) PlanRetired(planID string) {
	c.update(func(s *State) {
		if s.ActivePlanID == planID {
			s.ActivePlanID = ""
		}
	})
}

// SwitchSession adopts a new session id. Mode and active plan are kept.
func (c *Coordinator) SwitchSession(ctx context.Context, sessionID string) {
	c.mu.Lock()
	c.sessionID = sessionID
	c.mu.Unlock()

	log.Info("session switched", log.Session(sessionID))
	c.Refresh(ctx)
}

// AllowTool decides whether a tool call may run. The reason explains a refusal.
func (c *Coordinator) AllowTool(name string, args map[string]any) (bool, string) {
	if !c.State().PlanningMode {
		return true, ""
	}
	if !slices.Contains(ReadOnlyTools, name) {
		return false, fmt.Sprintf("planning mode is on: %q is not available, record the change as a plan step instead", name)
	}
	if name == ShellTool {
		command, _ := args["command"].(string)
		if v := c.policy.Classify(command); !v.Allowed {
			return false, "planning mode is on: command blocked (" + v.Reason + ")"
		}
	}
	return true, ""
}

// ActiveTools filters all down to the tools available in the current mode.
func (c *Coordinator) ActiveTools(all []string) []string {
	if !c.State().PlanningMode {
		return slices.Clone(all)
	}
	out := make([]string, 0, len(ReadOnlyTools))
	for _, name := range all {
		if slices.Contains(ReadOnlyTools, name) {
			out = append(out, name)
		}
	}
	return out
}

const planningNote = `Planning mode is on. Only read-only tools are available (read, grep, find, ls, and bash for commands that do not modify anything). ` +
	`Do not edit files. Explore the code and record what should be done with the plan tool: create a plan, add steps, and update it as your understanding improves.`

// TurnNotes returns the hidden notes to prepend to an automated turn. The active
// plan is read from disk every time. A pointer to a plan that no longer exists
// is cleared.
func (c *Coordinator) TurnNotes(ctx context.Context) []string {
	state := c.State()

	var notes []string
	if state.PlanningMode {
		notes = append(notes, planningNote)
	}
	if state.ActivePlanID == "" {
		return notes
	}

	plan, err := c.store.Get(ctx, state.ActivePlanID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.PlanRetired(state.ActivePlanID)
		} else {
			log.Warn("read active plan", log.PlanID(state.ActivePlanID), log.Err(err))
		}
		return notes
	}
	return append(notes, activePlanNote(plan))
}

func activePlanNote(p *storage.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "You are executing plan %s: %s.\n", p.DisplayID(), p.DisplayTitle())
	sb.WriteString(actions.FormatRemaining(p))
	if len(p.RemainingSteps()) == 0 {
		fmt.Fprintf(&sb, "\nMark the plan completed with the plan tool (update %s status=completed).", p.DisplayID())
	} else {
		sb.WriteString("\nWork through them in order and mark each one with complete-step when it is done.")
	}
	return sb.String()
}

// Refresh recomputes the status indicator and step panel and pushes them.
func (c *Coordinator) Refresh(ctx context.Context) {
	if c.indicators == nil {
		return
	}
	state := c.State()

	var plan *storage.Plan
	if state.ActivePlanID != "" {
		p, err := c.store.Get(ctx, state.ActivePlanID)
		if err == nil {
			plan = p
		} else {
			log.Debug("active plan unavailable for indicators", log.PlanID(state.ActivePlanID), log.Err(err))
		}
	}

	c.indicators.SetStatus(StatusKey, StatusText(state, plan))
	if plan == nil || len(plan.Steps) == 0 {
		c.indicators.SetPanel(PanelKey, nil)
		return
	}
	lines := []string{plan.DisplayID() + " " + plan.DisplayTitle()}
	lines = append(lines, strings.Split(actions.FormatSteps(plan.Steps), "\n")...)
	c.indicators.SetPanel(PanelKey, lines)
}

// StatusText renders the status indicator. It is empty when there is nothing
// to show.
func StatusText(state State, plan *storage.Plan) string {
	var parts []string
	if state.PlanningMode {
		parts = append(parts, "planning")
	}
	if plan != nil {
		text := "executing " + plan.DisplayID()
		if done, total := plan.Progress(); total > 0 {
			text += fmt.Sprintf(" %d/%d", done, total)
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, " · ")
}

// refreshTypes are the events after which the indicators may be stale.
var refreshTypes = []events.Type{
	events.TypePlanUpdated,
	events.TypeStepAdded,
	events.TypeStepCompleted,
	events.TypePlanClaimed,
	events.TypePlanReleased,
	events.TypePlanDeleted,
	events.TypePlanExecuted,
	events.TypeModeChanged,
	events.TypeStoreChanged,
	events.TypeGCSwept,
}

// Attach subscribes to bus so indicators follow every plan mutation. Mode
// changes are published to it from then on.
func (c *Coordinator) Attach(bus *events.Bus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bus = bus
	for _, t := range refreshTypes {
		c.subs = append(c.subs, bus.Subscribe(t, func(events.Event) {
			c.Refresh(context.Background())
		}))
	}
}

// Detach removes the bus subscriptions.
func (c *Coordinator) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bus == nil {
		return
	}
	for _, id := range c.subs {
		c.bus.Unsubscribe(id)
	}
	c.subs = nil
	c.bus = nil
}
