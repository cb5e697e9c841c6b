package commands

import (
	"context"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/workflow"
)

// report prints the outcome of a mutating action followed by hints.
func (a *app) report(res *actions.Result, next ...display.NextStep) {
	printf(a.out, "%s\n", display.SuccessMsg("%s", res.Summary))
	if hints := display.FormatNextSteps(next...); hints != "" {
		printf(a.out, "%s", hints)
	}
}

func idHint(command, id, description string) display.NextStep {
	return display.NextStep{Command: "planbook " + command + " " + id, Description: description}
}

// planHints suggests the workflow moves this session can make on p next.
func (a *app) planHints(ctx context.Context, p *storage.Plan) []display.NextStep {
	m := workflow.NewMachine(&workflow.WorkUnit{Plan: p, Session: a.coord.SessionID()})

	var next []display.NextStep
	if p.Status != storage.StatusActive {
		if ok, _ := m.CanDispatch(ctx, workflow.EventExecute); ok {
			next = append(next, idHint("execute", p.ID, "start working on it"))
		}
	}
	if len(p.Steps) > 0 && len(p.RemainingSteps()) == 0 {
		if ok, _ := m.CanDispatch(ctx, workflow.EventComplete); ok {
			next = append(next, idHint("update", p.ID+" --status completed", "all steps are done"))
		}
	}
	if ok, _ := m.CanDispatch(ctx, workflow.EventReopen); ok {
		next = append(next, idHint("update", p.ID+" --status draft", "reopen it"))
	}
	return next
}
