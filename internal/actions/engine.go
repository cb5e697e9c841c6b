package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/workflow"
)

// Tracker receives the process-local consequences of actions: which plan is
// being executed. The session coordinator implements it.
type Tracker interface {
	// PlanExecuted makes planID the active plan and leaves planning mode.
	PlanExecuted(planID string)
	// PlanRetired clears the active plan if it is planID.
	PlanRetired(planID string)
}

// Caller identifies who runs an action. Confirm may be nil for non-interactive
// callers; Tracker may be nil when no session state is kept.
type Caller struct {
	SessionID string
	Confirm   storage.ConfirmFunc
	Tracker   Tracker
}

func (c Caller) lockContext() storage.SessionContext {
	return storage.SessionContext{SessionID: c.SessionID, Confirm: c.Confirm}
}

func (c Caller) executed(id string) {
	if c.Tracker != nil {
		c.Tracker.PlanExecuted(id)
	}
}

func (c Caller) retired(id string) {
	if c.Tracker != nil {
		c.Tracker.PlanRetired(id)
	}
}

// Result is the outcome of a successful action.
type Result struct {
	Action  Action                  `json:"action"`
	Plan    *storage.Plan           `json:"plan,omitempty"`
	Plans   []*storage.Plan         `json:"plans,omitempty"`
	Groups  []storage.StatusGroup   `json:"groups,omitempty"`
	Step    *storage.Step           `json:"step,omitempty"`
	Changes []workflow.HistoryEntry `json:"-"`
	Summary string                  `json:"-"`
}

// Engine validates and runs plan actions against a store.
type Engine struct {
	store *storage.Store
	bus   *events.Bus
}

// Option configures an Engine.
type Option func(*Engine)

// WithBus publishes one event per successful mutation and one per failure.
func WithBus(bus *events.Bus) Option {
	return func(e *Engine) { e.bus = bus }
}

// NewEngine creates an engine over store.
func NewEngine(store *storage.Store, opts ...Option) *Engine {
	e := &Engine{store: store}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Store returns the underlying plan store.
func (e *Engine) Store() *storage.Store {
	return e.store
}

// Do runs one action. Every failure is an *Error; nothing is written when
// validation, lookup, locking or a precondition fails.
func (e *Engine) Do(ctx context.Context, caller Caller, req Request) (*Result, error) {
	res, err := e.dispatch(ctx, caller, req)
	if err != nil {
		ae := asError(err)
		log.Debug("plan action failed", "action", string(req.Action), "kind", string(ae.Kind), log.Err(err))
		e.publish(events.ErrorEvent{PlanID: req.ID, Action: string(req.Action), Kind: string(ae.Kind), Error: ae})
		return nil, ae
	}
	res.Action = req.Action
	res.Summary = Summarize(res)
	return res, nil
}

func (e *Engine) dispatch(ctx context.Context, caller Caller, req Request) (*Result, error) {
	switch req.Action {
	case ActionList:
		return e.list(ctx)
	case ActionGet:
		return e.get(ctx, req)
	case ActionCreate:
		return e.create(ctx, caller, req)
	case ActionUpdate:
		return e.update(ctx, caller, req)
	case ActionAddStep:
		return e.addStep(ctx, caller, req)
	case ActionCompleteStep:
		return e.completeStep(ctx, caller, req)
	case ActionDelete:
		return e.delete(ctx, caller, req)
	case ActionClaim:
		return e.claim(ctx, caller, req)
	case ActionRelease:
		return e.release(ctx, caller, req)
	case ActionExecute:
		return e.execute(ctx, caller, req)
	case "":
		return nil, validationf("action is required")
	default:
		return nil, validationf("unknown action %q", req.Action)
	}
}

func (e *Engine) publish(ev events.Eventer) {
	if e.bus != nil {
		e.bus.Publish(ev)
	}
}

func (e *Engine) publishPlan(kind events.Type, p *storage.Plan, caller Caller) {
	e.publish(events.PlanEvent{Kind: kind, PlanID: p.ID, Title: p.Title, Session: caller.SessionID})
}

// publishChanges announces status transitions once the record is saved.
func (e *Engine) publishChanges(p *storage.Plan, changes []workflow.HistoryEntry) {
	for _, c := range changes {
		if c.From == c.To {
			continue
		}
		e.publish(events.StatusChangedEvent{PlanID: p.ID, From: string(c.From), To: string(c.To), Event: string(c.Event)})
	}
}

// existing normalizes the request id and checks that the record exists.
func (e *Engine) existing(req Request) (string, error) {
	id, err := NormalizeID(req.ID)
	if err != nil {
		return "", err
	}
	if !e.store.Exists(id) {
		return "", notFound(id)
	}
	return id, nil
}

// mutate runs fn on the current record under its lock. A plan that disappeared
// after the existence check is reported as not found.
func (e *Engine) mutate(ctx context.Context, caller Caller, id string, fn func(*storage.Plan) error) (*storage.Plan, error) {
	plan, err := e.store.Mutate(ctx, id, caller.lockContext(), fn)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, notFound(id)
		}
		return nil, err
	}
	return plan, nil
}

func checkOwner(p *storage.Plan, caller Caller, force bool) error {
	if !force && p.AssignedElsewhere(caller.SessionID) {
		return conflictf("plan %s is assigned to session %s; use force to override", p.DisplayID(), p.AssignedToSession)
	}
	return nil
}

func requireSession(caller Caller, action Action) error {
	if strings.TrimSpace(caller.SessionID) == "" {
		return validationf("%s requires a session id", action)
	}
	return nil
}

func (e *Engine) list(ctx context.Context) (*Result, error) {
	plans, err := e.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return &Result{Plans: plans, Groups: storage.GroupByStatus(plans)}, nil
}

func (e *Engine) get(ctx context.Context, req Request) (*Result, error) {
	id, err := NormalizeID(req.ID)
	if err != nil {
		return nil, err
	}
	plan, err := e.store.Get(ctx, id)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, notFound(id)
		}
		return nil, err
	}
	return &Result{Plan: plan}, nil
}

func (e *Engine) create(ctx context.Context, caller Caller, req Request) (*Result, error) {
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		return nil, validationf("title is required")
	}
	status := storage.StatusDraft
	if req.Status != nil {
		s, err := storage.ParseStatus(*req.Status)
		if err != nil {
			return nil, validationf("%v", err)
		}
		status = s
	}

	var body string
	if req.Body != nil {
		body = *req.Body
	}

	plan, err := e.store.Create(ctx, caller.lockContext(), func(id string) *storage.Plan {
		p := &storage.Plan{
			ID:        id,
			Title:     strings.TrimSpace(*req.Title),
			Status:    status,
			CreatedAt: e.store.Timestamp(),
			Steps:     []storage.Step{},
			Body:      body,
		}
		for _, text := range req.Steps {
			if text = strings.TrimSpace(text); text != "" {
				p.AddStep(text)
			}
		}
		return p
	})
	if err != nil {
		return nil, err
	}

	log.Info("plan created", log.PlanID(plan.ID), log.Session(caller.SessionID))
	e.publishPlan(events.TypePlanCreated, plan, caller)
	return &Result{Plan: plan}, nil
}

func (e *Engine) update(ctx context.Context, caller Caller, req Request) (*Result, error) {
	if req.Title == nil && req.Status == nil && req.Body == nil {
		return nil, validationf("update needs at least one of title, status or body")
	}
	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		return nil, validationf("title must not be empty")
	}
	var status storage.Status
	if req.Status != nil {
		s, err := storage.ParseStatus(*req.Status)
		if err != nil {
			return nil, validationf("%v", err)
		}
		status = s
	}
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	var changes []workflow.HistoryEntry
	plan, err := e.mutate(ctx, caller, id, func(p *storage.Plan) error {
		if err := checkOwner(p, caller, req.Force); err != nil {
			return err
		}
		if status != "" {
			// A patch sets the status only. Claiming and the session's active plan
			// belong to execute.
			m := workflow.NewMachine(&workflow.WorkUnit{Plan: p, Session: caller.SessionID, Force: req.Force}).
				WithEffects(workflow.NoEffects())
			if err := m.MoveTo(ctx, status); err != nil {
				return err
			}
			if m.Changed() {
				changes = m.History()
			}
		}
		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Body != nil {
			p.Body = *req.Body
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if status != "" && plan.Status != storage.StatusActive {
		// A plan that left the active state no longer drives the session.
		caller.retired(plan.ID)
	}
	e.publishChanges(plan, changes)
	e.publishPlan(events.TypePlanUpdated, plan, caller)
	return &Result{Plan: plan, Changes: changes}, nil
}

func (e *Engine) addStep(ctx context.Context, caller Caller, req Request) (*Result, error) {
	text := strings.TrimSpace(req.StepText)
	if text == "" {
		return nil, validationf("step_text is required")
	}
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	var step storage.Step
	plan, err := e.mutate(ctx, caller, id, func(p *storage.Plan) error {
		if err := checkOwner(p, caller, req.Force); err != nil {
			return err
		}
		step = p.AddStep(text)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(events.StepEvent{Kind: events.TypeStepAdded, PlanID: plan.ID, StepID: step.ID, Text: step.Text})
	return &Result{Plan: plan, Step: &step}, nil
}

func (e *Engine) completeStep(ctx context.Context, caller Caller, req Request) (*Result, error) {
	if req.StepID == nil {
		return nil, validationf("step_id is required")
	}
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	var step storage.Step
	plan, err := e.mutate(ctx, caller, id, func(p *storage.Plan) error {
		if err := checkOwner(p, caller, req.Force); err != nil {
			return err
		}
		s := p.FindStep(*req.StepID)
		if s == nil {
			return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("step %d not found in plan %s", *req.StepID, p.DisplayID())}
		}
		s.Done = true
		step = *s
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publish(events.StepEvent{Kind: events.TypeStepCompleted, PlanID: plan.ID, StepID: step.ID, Text: step.Text})
	return &Result{Plan: plan, Step: &step}, nil
}

func (e *Engine) delete(ctx context.Context, caller Caller, req Request) (*Result, error) {
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	plan, err := e.store.Remove(ctx, id, caller.lockContext(), func(p *storage.Plan) error {
		return checkOwner(p, caller, req.Force)
	})
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, notFound(id)
		}
		return nil, err
	}

	log.Info("plan deleted", log.PlanID(id), log.Session(caller.SessionID))
	caller.retired(id)
	e.publishPlan(events.TypePlanDeleted, plan, caller)
	return &Result{Plan: plan}, nil
}

func (e *Engine) claim(ctx context.Context, caller Caller, req Request) (*Result, error) {
	if err := requireSession(caller, ActionClaim); err != nil {
		return nil, err
	}
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	plan, err := e.mutate(ctx, caller, id, func(p *storage.Plan) error {
		if p.IsDone() {
			return conflictf("plan %s is %s; reopen it as draft before claiming", p.DisplayID(), p.Status)
		}
		if err := checkOwner(p, caller, req.Force); err != nil {
			return err
		}
		p.AssignedToSession = caller.SessionID
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishPlan(events.TypePlanClaimed, plan, caller)
	return &Result{Plan: plan}, nil
}

func (e *Engine) release(ctx context.Context, caller Caller, req Request) (*Result, error) {
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	plan, err := e.mutate(ctx, caller, id, func(p *storage.Plan) error {
		if err := checkOwner(p, caller, req.Force); err != nil {
			return err
		}
		p.AssignedToSession = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	caller.retired(plan.ID)
	e.publishPlan(events.TypePlanReleased, plan, caller)
	return &Result{Plan: plan}, nil
}

func (e *Engine) execute(ctx context.Context, caller Caller, req Request) (*Result, error) {
	if err := requireSession(caller, ActionExecute); err != nil {
		return nil, err
	}
	id, err := e.existing(req)
	if err != nil {
		return nil, err
	}

	var changes []workflow.HistoryEntry
	plan, err := e.mutate(ctx, caller, id, func(p *storage.Plan) error {
		m := workflow.NewMachine(&workflow.WorkUnit{Plan: p, Session: caller.SessionID, Force: req.Force})
		if err := m.Dispatch(ctx, workflow.EventExecute); err != nil {
			return err
		}
		changes = m.History()
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("plan executing", log.PlanID(plan.ID), log.Session(caller.SessionID))
	caller.executed(plan.ID)
	e.publishChanges(plan, changes)
	e.publishPlan(events.TypePlanExecuted, plan, caller)
	return &Result{Plan: plan, Changes: changes}, nil
}
