package commands

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/events"
	"github.com/valksor/go-planbook/internal/storage"
)

var (
	gcDays     int
	gcEnable   bool
	gcDisable  bool
	gcSettings bool
)

var gcCmd = &cobra.Command{
	Use:     "gc",
	GroupID: "config",
	Short:   "Remove old completed and archived plans",
	Long: `Delete completed and archived plans older than the retention window.
The same sweep runs before every 'planbook list'.

Retention is stored in settings.json next to the plans. Changing it with
--days, --enable or --disable saves the settings without sweeping.`,
	Example: `  planbook gc
  planbook gc --settings
  planbook gc --days 14
  planbook gc --disable`,
	Args: cobra.NoArgs,
	RunE: runGC,
}

func init() {
	rootCmd.AddCommand(gcCmd)

	gcCmd.Flags().IntVar(&gcDays, "days", storage.DefaultGCDays, "Retention window in days")
	gcCmd.Flags().BoolVar(&gcEnable, "enable", false, "Turn automatic garbage collection on")
	gcCmd.Flags().BoolVar(&gcDisable, "disable", false, "Turn automatic garbage collection off")
	gcCmd.Flags().BoolVar(&gcSettings, "settings", false, "Print the retention settings")
	gcCmd.MarkFlagsMutuallyExclusive("enable", "disable")
}

func runGC(cmd *cobra.Command, _ []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		settings := a.store.Settings()
		flags := cmd.Flags()

		if flags.Changed("days") || gcEnable || gcDisable {
			if flags.Changed("days") {
				settings.GCDays = gcDays
			}
			if gcEnable {
				settings.GC = true
			}
			if gcDisable {
				settings.GC = false
			}
			if err := storage.SaveSettings(a.store.Paths().SettingsPath(), settings); err != nil {
				return err
			}
			printf(a.out, "%s\n", display.SuccessMsg("Saved retention settings"))
			printSettings(a, settings)
			return nil
		}

		if gcSettings {
			printSettings(a, settings)
			return nil
		}

		if !settings.GC {
			printf(a.out, "%s\n", display.InfoMsg("Garbage collection is disabled (planbook gc --enable)"))
			return nil
		}

		result := a.store.GarbageCollect(ctx, settings)
		for _, id := range result.Deleted {
			a.coord.PlanRetired(id)
			a.prefs.ForgetPlan(id)
			printf(a.out, "  %s %s\n", display.Muted("removed"), storage.DisplayID(id))
		}
		if len(result.Deleted) > 0 {
			a.prefsDirty = true
			a.bus.Publish(events.GCSweptEvent{Deleted: result.Deleted})
		}
		printf(a.out, "%s\n", display.SuccessMsg("Removed %d plan(s) older than %d days", len(result.Deleted), settings.GCDays))
		return nil
	})
}

func printSettings(a *app, s storage.Settings) {
	state := "on"
	if !s.GC {
		state = "off"
	}
	printf(a.out, "%s", display.KeyValue("gc", state))
	printf(a.out, "%s", display.KeyValue("gcDays", strconv.Itoa(s.GCDays)))
	printf(a.out, "%s", display.KeyValue("file", a.store.Paths().SettingsPath()))
}
