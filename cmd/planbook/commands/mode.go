package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/session"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/ui"
)

var modeJSON bool

var modeCmd = &cobra.Command{
	Use:       "mode [plan|normal|toggle|status]",
	GroupID:   "session",
	Short:     "Switch planning mode or show the session status",
	ValidArgs: []string{"plan", "normal", "toggle", "status"},
	Long: `Planning mode restricts a session to read-only tools so it can explore
and write plans without touching files. The mode is kept per session.

Without an argument the current mode, the active plan and the status
indicators are shown.`,
	Example: `  planbook mode plan
  planbook mode normal
  planbook mode`,
	Args: cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: runMode,
}

func init() {
	rootCmd.AddCommand(modeCmd)

	modeCmd.Flags().BoolVar(&modeJSON, "json", false, "Output the session state as JSON")
}

// modeStatus is the JSON form of `planbook mode`.
type modeStatus struct {
	Session      string   `json:"session"`
	PlanningMode bool     `json:"planning_mode"`
	ActivePlanID string   `json:"active_plan_id,omitempty"`
	Status       string   `json:"status,omitempty"`
	Panel        []string `json:"panel,omitempty"`
	Tools        []string `json:"tools"`
}

func runMode(cmd *cobra.Command, args []string) error {
	arg := "status"
	if len(args) == 1 {
		arg = args[0]
	}
	indicators := ui.NewHeadless(io.Discard)

	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		switch arg {
		case "plan":
			a.coord.SetPlanningMode(ctx, true)
			printf(a.out, "%s\n", display.SuccessMsg("Planning mode on: read-only tools only"))
		case "normal":
			a.coord.SetPlanningMode(ctx, false)
			printf(a.out, "%s\n", display.SuccessMsg("Planning mode off"))
		case "toggle":
			on := !a.coord.State().PlanningMode
			a.coord.SetPlanningMode(ctx, on)
			if on {
				printf(a.out, "%s\n", display.SuccessMsg("Planning mode on: read-only tools only"))
			} else {
				printf(a.out, "%s\n", display.SuccessMsg("Planning mode off"))
			}
		default:
			// TurnNotes drops a pointer to a deleted plan before it is shown.
			a.coord.TurnNotes(ctx)
			a.coord.Refresh(ctx)
			return a.printMode(indicators)
		}
		return nil
	}, withIndicators(indicators))
}

func (a *app) printMode(indicators *ui.Headless) error {
	state := a.coord.State()
	status, _ := indicators.Status(session.StatusKey)
	panel, _ := indicators.Panel(session.PanelKey)

	if jsonOutput(modeJSON) {
		return printJSON(a.out, modeStatus{
			Session:      a.coord.SessionID(),
			PlanningMode: state.PlanningMode,
			ActivePlanID: state.ActivePlanID,
			Status:       status,
			Panel:        panel,
			Tools:        a.coord.ActiveTools(session.AllTools),
		})
	}

	mode := "normal"
	if state.PlanningMode {
		mode = display.Warning("planning")
	}
	active := display.Muted("none")
	if state.ActivePlanID != "" {
		active = display.Cyan(storage.DisplayID(state.ActivePlanID))
	}

	var sb strings.Builder
	sb.WriteString(display.KeyValue("Session", a.coord.SessionID()))
	sb.WriteString(display.KeyValue("Mode", mode))
	sb.WriteString(display.KeyValue("Active", active))
	if status != "" {
		sb.WriteString(display.KeyValue("Status", status))
	}
	sb.WriteString(display.KeyValue("Tools", strings.Join(a.coord.ActiveTools(session.AllTools), ", ")))
	for _, line := range panel {
		fmt.Fprintf(&sb, "%s%s\n", display.IndentOne, line)
	}
	_, err := fmt.Fprint(a.out, sb.String())
	return err
}
