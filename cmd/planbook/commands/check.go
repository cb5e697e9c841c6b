package commands

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valksor/go-planbook/internal/display"
	"github.com/valksor/go-planbook/internal/session"
)

// ErrBlocked is returned when a command or tool is not allowed.
var ErrBlocked = errors.New("blocked")

var (
	checkTool   string
	checkPolicy bool
)

var checkCmd = &cobra.Command{
	Use:     "check-command [--] <command...>",
	Aliases: []string{"check"},
	GroupID: "session",
	Short:   "Check whether a shell command or tool may run in this session",
	Long: `Decide whether a tool call is allowed in the current mode. Outside planning
mode everything is allowed. In planning mode only read-only tools run, and
shell commands are matched against the command policy (.planbook/policy.yaml
or the built-in rules).

The command exits with status 1 when the call is blocked.`,
	Example: `  planbook check-command -- git status
  planbook check-command -- rm -rf build
  planbook check-command --tool write
  planbook check-command --policy -- npm install`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkTool, "tool", session.ShellTool, "Tool being called")
	checkCmd.Flags().BoolVar(&checkPolicy, "policy", false, "Classify the command against the policy regardless of mode")
}

func runCheck(cmd *cobra.Command, args []string) error {
	command := strings.Join(args, " ")
	if checkTool == session.ShellTool && command == "" {
		return errors.New("no command given")
	}

	return runWithApp(cmd, func(_ context.Context, a *app) error {
		if checkPolicy {
			v := a.coord.Policy().Classify(command)
			if !v.Allowed {
				printf(a.out, "%s\n", display.ErrorMsg("blocked: %s", v.Reason))
				return ErrBlocked
			}
			printf(a.out, "%s\n", display.SuccessMsg("allowed: %s", v.Reason))
			return nil
		}

		ok, reason := a.coord.AllowTool(checkTool, map[string]any{"command": command})
		if !ok {
			printf(a.out, "%s\n", display.ErrorMsg("%s", reason))
			return ErrBlocked
		}
		printf(a.out, "%s\n", display.SuccessMsg("allowed"))
		return nil
	})
}
