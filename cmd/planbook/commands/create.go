package commands

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
)

var (
	createSteps    []string
	createBody     string
	createStatus   string
	createTemplate string
	createJSON     bool
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	Aliases: []string{"new"},
	GroupID: "plans",
	Short:   "Create a new plan",
	Long: `Create a plan with an optional body and ordered steps. New plans start as
drafts unless --status says otherwise.

Examples:
  planbook create "Refactor auth"
  planbook create "Refactor auth" --step "Read the code" --step "Write tests"
  planbook create "Spike" --status active --body "Timebox to one hour."
  planbook create "Login fails on Safari" --template bug-fix`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringArrayVarP(&createSteps, "step", "s", nil, "Add a step (repeatable)")
	createCmd.Flags().StringVarP(&createBody, "body", "b", "", "Free-form plan description")
	createCmd.Flags().StringVar(&createStatus, "status", "", "Initial status (draft, active, completed, archived)")
	createCmd.Flags().StringVarP(&createTemplate, "template", "t", "", "Start from a template (see: planbook templates)")
	createCmd.Flags().BoolVar(&createJSON, "json", false, "Output the created plan as JSON")
}

func runCreate(cmd *cobra.Command, args []string) error {
	req := actions.Request{
		Action: actions.ActionCreate,
		Title:  actions.String(strings.Join(args, " ")),
		Steps:  createSteps,
	}
	if createTemplate != "" {
		tpl, err := templateLibrary().Load(createTemplate)
		if err != nil {
			return err
		}
		req.Steps = tpl.MergeSteps(createSteps)
		if tpl.Body != "" {
			req.Body = actions.String(tpl.Body)
		}
		if tpl.Status != "" {
			req.Status = actions.String(tpl.Status)
		}
	}
	if cmd.Flags().Changed("body") {
		req.Body = actions.String(createBody)
	}
	if cmd.Flags().Changed("status") {
		req.Status = actions.String(createStatus)
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, req)
		if err != nil {
			return err
		}
		if jsonOutput(createJSON) {
			return printJSON(a.out, res.Plan)
		}

		id := res.Plan.ID
		a.report(res,
			idHint("step add", id, "add a step"),
			idHint("execute", id, "start working on it"),
		)
		return nil
	})
}
