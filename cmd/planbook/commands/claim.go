package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
)

var (
	claimForce   bool
	releaseForce bool
	executeForce bool
)

var claimCmd = &cobra.Command{
	Use:     "claim <id>",
	GroupID: "plans",
	Short:   "Assign a plan to this session",
	Long: `Assign a plan to the current session. Claiming a plan that another session
holds fails unless --force is given.`,
	Example: `  planbook claim 1a2b3c4d
  planbook claim 1a2b3c4d --session review-bot`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOwnership(cmd, actions.Request{Action: actions.ActionClaim, ID: args[0], Force: claimForce})
	},
}

var releaseCmd = &cobra.Command{
	Use:     "release <id>",
	Aliases: []string{"unclaim"},
	GroupID: "plans",
	Short:   "Drop this session's claim on a plan",
	Example: `  planbook release 1a2b3c4d
  planbook release 1a2b3c4d --force   # release another session's claim`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOwnership(cmd, actions.Request{Action: actions.ActionRelease, ID: args[0], Force: releaseForce})
	},
}

var executeCmd = &cobra.Command{
	Use:     "execute <id>",
	Aliases: []string{"exec", "start"},
	GroupID: "plans",
	Short:   "Claim a plan, activate it and make it the session's active plan",
	Long: `Start working on a plan: it is claimed for this session, moved to active
and becomes the session's active plan. Planning mode is switched off. The
remaining steps are printed.`,
	Example: `  planbook execute 1a2b3c4d`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOwnership(cmd, actions.Request{Action: actions.ActionExecute, ID: args[0], Force: executeForce})
	},
}

func init() {
	rootCmd.AddCommand(claimCmd, releaseCmd, executeCmd)

	claimCmd.Flags().BoolVarP(&claimForce, "force", "f", false, "Take over a plan claimed by another session")
	releaseCmd.Flags().BoolVarP(&releaseForce, "force", "f", false, "Release a plan claimed by another session")
	executeCmd.Flags().BoolVarP(&executeForce, "force", "f", false, "Take over a plan claimed by another session")
}

func runOwnership(cmd *cobra.Command, req actions.Request) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, req)
		if err != nil {
			return err
		}

		id := res.Plan.ID
		switch req.Action {
		case actions.ActionClaim:
			a.report(res, idHint("execute", id, "start working on it"))
		case actions.ActionExecute:
			a.report(res, idHint("step done", id+" <step>", "tick off a step"))
		default:
			a.report(res)
		}
		return nil
	})
}
