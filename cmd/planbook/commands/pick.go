package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/ui"
)

var pickCmd = &cobra.Command{
	Use:     "pick [query]",
	Aliases: []string{"browse"},
	GroupID: "plans",
	Short:   "Choose a plan interactively and act on it",
	Long: `Open a fuzzy-filterable list of plans, then choose what to do with the
selected one. Needs a terminal.`,
	RunE: runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

// pickAction is one entry of the per-plan menu.
type pickAction struct {
	label string
	req   func(p *storage.Plan) actions.Request
}

func runPick(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		if !a.ui.Interactive() {
			return ui.ErrNotInteractive
		}

		res, err := a.do(ctx, actions.Request{Action: actions.ActionList})
		if err != nil {
			return err
		}
		plans := storage.FilterPlans(res.Plans, strings.Join(args, " "))
		if len(plans) == 0 {
			printf(a.out, "%s\n", display.Muted("No plans."))
			return nil
		}

		items := make([]string, len(plans))
		for i, p := range plans {
			items[i] = "[" + string(p.Status) + "] " + actions.FormatListLine(p)
		}
		idx, err := a.ui.Select(ctx, "Plans", items)
		if errors.Is(err, ui.ErrCancelled) {
			return nil
		}
		if err != nil {
			return err
		}

		return a.pickAction(ctx, plans[idx])
	})
}

func (a *app) pickAction(ctx context.Context, p *storage.Plan) error {
	menu := planMenu(p, a.coord.SessionID())
	labels := make([]string, len(menu))
	for i, m := range menu {
		labels[i] = m.label
	}

	idx, err := a.ui.Select(ctx, p.DisplayID()+" "+p.DisplayTitle(), labels)
	if errors.Is(err, ui.ErrCancelled) {
		return nil
	}
	if err != nil {
		return err
	}

	chosen := menu[idx]
	if chosen.req == nil {
		full, err := a.do(ctx, actions.Request{Action: actions.ActionGet, ID: p.ID})
		if err != nil {
			return err
		}
		return a.ui.ShowDocument(ctx, p.DisplayID()+" "+p.DisplayTitle(), actions.FormatPlan(full.Plan))
	}

	req := chosen.req(p)
	if req.Action == actions.ActionDelete {
		ok, err := a.confirmDelete(ctx, p.ID)
		if err != nil || !ok {
			return err
		}
	}
	res, err := a.do(ctx, req)
	if err != nil {
		return err
	}
	a.report(res)
	return nil
}

// planMenu lists the actions that make sense for p. A nil req means "show".
func planMenu(p *storage.Plan, sessionID string) []pickAction {
	menu := []pickAction{{label: "Show"}}
	if !p.IsDone() {
		menu = append(menu, pickAction{label: "Execute", req: func(p *storage.Plan) actions.Request {
			return actions.Request{Action: actions.ActionExecute, ID: p.ID}
		}})
		if p.AssignedToSession != sessionID {
			menu = append(menu, pickAction{label: "Claim", req: func(p *storage.Plan) actions.Request {
				return actions.Request{Action: actions.ActionClaim, ID: p.ID}
			}})
		}
		if remaining := p.RemainingSteps(); len(remaining) > 0 {
			next := remaining[0]
			menu = append(menu, pickAction{label: "Complete step " + next.Text, req: func(p *storage.Plan) actions.Request {
				return actions.Request{Action: actions.ActionCompleteStep, ID: p.ID, StepID: actions.Int(next.ID)}
			}})
		}
	}
	if p.AssignedToSession == sessionID {
		menu = append(menu, pickAction{label: "Release", req: func(p *storage.Plan) actions.Request {
			return actions.Request{Action: actions.ActionRelease, ID: p.ID}
		}})
	}
	menu = append(menu, pickAction{label: "Delete", req: func(p *storage.Plan) actions.Request {
		return actions.Request{Action: actions.ActionDelete, ID: p.ID}
	}})
	return menu
}
