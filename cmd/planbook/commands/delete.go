package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/ui"
)

var (
	deleteYes   bool
	deleteForce bool
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	GroupID: "plans",
	Short:   "Delete a plan",
	Long: `Delete a plan record. You are asked to confirm unless --yes is given;
without a terminal --yes is required.`,
	Example: `  planbook delete 1a2b3c4d
  planbook delete 1a2b3c4d --yes --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Do not ask for confirmation")
	deleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Delete a plan claimed by another session")
}

func runDelete(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		if !deleteYes {
			ok, err := a.confirmDelete(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				printf(a.out, "%s\n", display.Muted("Cancelled."))
				return nil
			}
		}

		res, err := a.do(ctx, actions.Request{Action: actions.ActionDelete, ID: args[0], Force: deleteForce})
		if err != nil {
			return err
		}
		a.report(res)
		return nil
	})
}

func (a *app) confirmDelete(ctx context.Context, id string) (bool, error) {
	if !a.ui.Interactive() {
		return false, errors.New("refusing to delete without confirmation, pass --yes")
	}

	res, err := a.do(ctx, actions.Request{Action: actions.ActionGet, ID: id})
	if err != nil {
		return false, err
	}
	p := res.Plan

	details := []string{"Status: " + display.FormatStatusColored(p.Status)}
	if done, total := p.Progress(); total > 0 {
		details = append(details, fmt.Sprintf("Steps:  %d/%d done", done, total))
	}
	var warning string
	if p.IsAssigned() {
		warning = "This plan is claimed by session " + p.AssignedToSession
	}
	printf(a.out, "%s", display.FormatConfirmation("Delete plan "+p.DisplayID()+" "+p.DisplayTitle()+"?", details, warning))

	ok, err := a.ui.Confirm(ctx, "Delete this plan?")
	if errors.Is(err, ui.ErrCancelled) {
		return false, nil
	}
	return ok, err
}
