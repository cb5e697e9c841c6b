package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
)

var stepForce bool

var stepCmd = &cobra.Command{
	Use:     "step",
	GroupID: "plans",
	Short:   "Add or complete plan steps",
}

var stepAddCmd = &cobra.Command{
	Use:     "add <id> <text>",
	Short:   "Append a step to a plan",
	Example: `  planbook step add 1a2b3c4d "Update the changelog"`,
	Args:    cobra.MinimumNArgs(2),
	RunE:    runStepAdd,
}

var stepDoneCmd = &cobra.Command{
	Use:     "done <id> <step>",
	Aliases: []string{"complete"},
	Short:   "Mark a step as done",
	Example: `  planbook step done 1a2b3c4d 2`,
	Args:    cobra.ExactArgs(2),
	RunE:    runStepDone,
}

func init() {
	rootCmd.AddCommand(stepCmd)
	stepCmd.AddCommand(stepAddCmd, stepDoneCmd)

	stepCmd.PersistentFlags().BoolVarP(&stepForce, "force", "f", false, "Edit a plan claimed by another session")
}

func runStepAdd(cmd *cobra.Command, args []string) error {
	req := actions.Request{
		Action:   actions.ActionAddStep,
		ID:       args[0],
		StepText: strings.Join(args[1:], " "),
		Force:    stepForce,
	}
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, req)
		if err != nil {
			return err
		}
		a.report(res)
		return nil
	})
}

func runStepDone(cmd *cobra.Command, args []string) error {
	stepID, err := strconv.Atoi(strings.TrimPrefix(args[1], "#"))
	if err != nil {
		return fmt.Errorf("invalid step number %q", args[1])
	}
	req := actions.Request{
		Action: actions.ActionCompleteStep,
		ID:     args[0],
		StepID: actions.Int(stepID),
		Force:  stepForce,
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, req)
		if err != nil {
			return err
		}
		if len(res.Plan.RemainingSteps()) == 0 {
			a.report(res, display.NextStep{
				Command:     fmt.Sprintf("planbook update %s --status completed", res.Plan.ID),
				Description: "close the plan",
			})
			return nil
		}
		a.report(res)
		return nil
	})
}
