package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
)

var (
	showJSON  bool
	showYAML  bool
	showPager bool
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	Aliases: []string{"get"},
	GroupID: "plans",
	Short:   "Show one plan with its steps and body",
	Long: `Show a plan in full. The id may be written as 1a2b3c4d, #1a2b3c4d or
PLAN-1a2b3c4d.

Examples:
  planbook show 1a2b3c4d
  planbook show '#1a2b3c4d' --pager
  planbook show 1a2b3c4d --yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	showCmd.Flags().BoolVar(&showYAML, "yaml", false, "Output as YAML")
	showCmd.Flags().BoolVar(&showPager, "pager", false, "Open the plan in a scrollable viewer")
	showCmd.MarkFlagsMutuallyExclusive("json", "yaml", "pager")
}

func runShow(cmd *cobra.Command, args []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		res, err := a.do(ctx, actions.Request{Action: actions.ActionGet, ID: args[0]})
		if err != nil {
			return err
		}

		switch {
		case showYAML:
			return printYAML(a.out, res.Plan)
		case showPager:
			return a.ui.ShowDocument(ctx, res.Plan.DisplayID()+" "+res.Plan.DisplayTitle(), actions.FormatPlan(res.Plan))
		case jsonOutput(showJSON):
			return printJSON(a.out, res.Plan)
		}

		if _, err := fmt.Fprint(a.out, display.PlanDetail(res.Plan, time.Now())); err != nil {
			return err
		}
		if hints := display.FormatNextSteps(a.planHints(ctx, res.Plan)...); hints != "" {
			printf(a.out, "%s", hints)
		}
		return nil
	})
}
