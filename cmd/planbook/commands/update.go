package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
)

var (
	updateTitle  string
	updateStatus string
	updateBody   string
	updateForce  bool
)

var updateCmd = &cobra.Command{
	Use:     "update <id>",
	Aliases: []string{"edit"},
	GroupID: "plans",
	Short:   "Change a plan's title, status or body",
	Long: `Change the fields given as flags and leave the rest alone. Status changes
follow the plan workflow; a plan claimed by another session needs --force.

Examples:
  planbook update 1a2b3c4d --status active
  planbook update 1a2b3c4d --title "Refactor auth middleware"
  planbook update 1a2b3c4d --body ""`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().StringVar(&updateTitle, "title", "", "New title")
	updateCmd.Flags().StringVar(&updateStatus, "status", "", "New status (draft, active, completed, archived)")
	updateCmd.Flags().StringVar(&updateBody, "body", "", "New body (empty clears it)")
	updateCmd.Flags().BoolVarP(&updateForce, "force", "f", false, "Update a plan claimed by another session")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	req := actions.Request{Action: actions.ActionUpdate, ID: args[0], Force: updateForce}
	flags := cmd.Flags()
	if flags.Changed("title") {
		req.Title = actions.String(updateTitle)
	}
	if flags.Changed("status") {
		req.Status = actions.String(updateStatus)
	}
	if flags.Changed("body") {
		req.Body = actions.String(updateBody)
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, req)
		if err != nil {
			return err
		}
		a.report(res, a.planHints(ctx, res.Plan)...)
		return nil
	})
}
