package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var notesJSON bool

var notesCmd = &cobra.Command{
	Use:     "notes",
	GroupID: "session",
	Short:   "Print the context notes for the next assistant turn",
	Long: `Print the hidden notes an assistant should see before its next turn: the
planning mode instructions when planning mode is on, and the remaining steps
of the active plan. Nothing is printed when neither applies.`,
	Args: cobra.NoArgs,
	RunE: runNotes,
}

func init() {
	rootCmd.AddCommand(notesCmd)

	notesCmd.Flags().BoolVar(&notesJSON, "json", false, "Output the notes as a JSON array")
}

func runNotes(cmd *cobra.Command, _ []string) error {
	return runWithApp(cmd, func(ctx context.Context, a *app) error {
		notes := a.coord.TurnNotes(ctx)
		if jsonOutput(notesJSON) {
			if notes == nil {
				notes = []string{}
			}
			return printJSON(a.out, notes)
		}
		if len(notes) == 0 {
			return nil
		}
		_, err := fmt.Fprintln(a.out, strings.Join(notes, "\n\n"))
		return err
	})
}
