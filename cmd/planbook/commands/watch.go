package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/output"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/ui"
	"github.com/valksor/go-planbook/internal/watch"
)

var (
	watchFor      time.Duration
	watchDebounce time.Duration
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "session",
	Short:   "Follow plan changes made by any session",
	Long: `Watch the plan directory and print every change as it happens, together
with this session's status line and the steps of its active plan. Stops on
Ctrl+C or after --for.`,
	Example: `  planbook watch
  planbook watch --for 10m`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchFor, "for", 0, "Stop after this long (0 runs until interrupted)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Coalesce bursts of writes to one plan")
}

func runWatch(cmd *cobra.Command, _ []string) error {
	// Refreshes after every change often repeat the previous status line.
	out := output.NewDeduplicatingWriter(cmd.OutOrStdout())
	indicators := ui.NewTerminal(ui.WithOutput(out))

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		if watchFor > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, watchFor)
			defer cancel()
		}

		sub := a.bus.Subscribe(events.TypeStoreChanged, func(e events.Event) {
			id, _ := e.Data["plan_id"].(string)
			op, _ := e.Data["operation"].(string)
			printf(out, "%s %s %s\n", display.Muted(e.Timestamp.Format(time.TimeOnly)), display.Cyan(storage.DisplayID(id)), op)
		})
		defer a.bus.Unsubscribe(sub)

		w, err := watch.Start(ctx, a.store.Root(), a.bus, watch.WithDebounce(watchDebounce))
		if err != nil {
			return err
		}

		printf(a.out, "%s\n", display.InfoMsg("Watching %s (Ctrl+C to stop)", a.store.Root()))

		<-ctx.Done()
		if err := w.Close(); err != nil {
			return err
		}
		return out.Flush()
	}, withIndicators(indicators))
}
