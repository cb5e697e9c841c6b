package display

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valksor/go-planbook/internal/actions"
	"github.com/valksor/go-planbook/internal/storage"
)

// Suggestion represents a suggested action for error recovery.
type Suggestion struct {
	Command     string
	Description string
}

// ErrorWithSuggestions formats an error message with actionable suggestions.
func ErrorWithSuggestions(message string, suggestions []Suggestion) string {
	var sb strings.Builder

	sb.WriteString(ErrorMsg("%s", message))
	sb.WriteString("\n")

	if len(suggestions) > 0 {
		sb.WriteString("\n")
		sb.WriteString(Muted("Suggested actions:"))
		sb.WriteString("\n")
		for _, s := range suggestions {
			fmt.Fprintf(&sb, "  %s %s - %s\n", Muted("•"), Cyan(s.Command), s.Description)
		}
	}

	return sb.String()
}

// SuggestionsFor returns recovery hints for common action failures.
func SuggestionsFor(err error) []Suggestion {
	switch {
	case errors.Is(err, storage.ErrStaleLock):
		return []Suggestion{{Command: "planbook <command> --steal-stale", Description: "break the stale lock and retry"}}
	case errors.Is(err, storage.ErrLocked):
		return []Suggestion{{Command: "planbook list", Description: "wait for the other session, then check again"}}
	case actions.IsKind(err, actions.KindNotFound):
		return []Suggestion{{Command: "planbook list", Description: "see existing plans"}}
	case actions.IsKind(err, actions.KindConflict):
		return []Suggestion{
			{Command: "planbook show <id>", Description: "check who holds the plan"},
			{Command: "planbook release <id> --force", Description: "take over a plan you know is abandoned"},
		}
	}
	return nil
}
