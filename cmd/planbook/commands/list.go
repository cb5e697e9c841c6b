package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/storage"
)

var (
	listJSON   bool
	listStatus string
	listNoGC   bool
)

var listCmd = &cobra.Command{
	Use:     "list [query]",
	Aliases: []string{"ls"},
	GroupID: "plans",
	Short:   "List plans grouped by status",
	Long: `List every plan, grouped as active, draft, completed and archived.

A query filters plans by fuzzy matching every word against the title, the
body and the steps. Old completed and archived plans are removed first when
garbage collection is enabled (see 'planbook gc').

Examples:
  planbook list
  planbook list auth refactor
  planbook list --status active
  planbook list --json`,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Only show plans with this status")
	listCmd.Flags().BoolVar(&listNoGC, "no-gc", false, "Skip the garbage collection sweep")
}

func runList(cmd *cobra.Command, args []string) error {
	var only storage.Status
	if listStatus != "" {
		s, err := storage.ParseStatus(listStatus)
		if err != nil {
			return err
		}
		only = s
	}

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		if !listNoGC {
			sweep(ctx, a)
		}

		res, err := a.do(ctx, actions.Request{Action: actions.ActionList})
		if err != nil {
			return err
		}

		plans := res.Plans
		if query := strings.Join(args, " "); query != "" {
			plans = storage.FilterPlans(plans, query)
		}
		if only != "" {
			filtered := plans[:0:0]
			for _, p := range plans {
				if p.Status == only {
					filtered = append(filtered, p)
				}
			}
			plans = filtered
		}
		groups := storage.GroupByStatus(plans)

		if jsonOutput(listJSON) {
			return printJSON(a.out, groups)
		}
		_, err = fmt.Fprint(a.out, display.PlanGroups(groups))
		return err
	})
}

// sweep runs a best-effort garbage collection. Failures only get logged.
func sweep(ctx context.Context, a *app) {
	result := a.store.GarbageCollect(ctx, a.store.Settings())
	if len(result.Deleted) == 0 {
		return
	}
	log.Info("garbage collected plans", "count", len(result.Deleted))
	for _, id := range result.Deleted {
		a.coord.PlanRetired(id)
		a.prefs.ForgetPlan(id)
	}
	a.prefsDirty = true
	a.bus.Publish(events.GCSweptEvent{Deleted: result.Deleted})
}
