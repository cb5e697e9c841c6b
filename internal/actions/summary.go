package actions

import (
	"fmt"
	"strings"

	"github.com/valksor/go-planbook/internal/storage"
)

// Summarize renders a result as plain text for the automated caller.
func Summarize(res *Result) string {
	p := res.Plan
	switch res.Action {
	case ActionList:
		return FormatList(res.Groups)
	case ActionGet:
		return FormatPlan(p)
	case ActionCreate:
		return fmt.Sprintf("Created plan %s: %s (%s, %s).", p.DisplayID(), p.DisplayTitle(), p.Status, pluralSteps(len(p.Steps)))
	case ActionUpdate:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Updated plan %s: %s.", p.DisplayID(), p.DisplayTitle())
		for _, c := range res.Changes {
			fmt.Fprintf(&sb, " Status %s -> %s.", c.From, c.To)
		}
		return sb.String()
	case ActionAddStep:
		return fmt.Sprintf("Added step %d to plan %s: %s", res.Step.ID, p.DisplayID(), res.Step.Text)
	case ActionCompleteStep:
		remaining := len(p.RemainingSteps())
		return fmt.Sprintf("Completed step %d of plan %s: %s (%d remaining).", res.Step.ID, p.DisplayID(), res.Step.Text, remaining)
	case ActionDelete:
		return fmt.Sprintf("Deleted plan %s: %s.", p.DisplayID(), p.DisplayTitle())
	case ActionClaim:
		return fmt.Sprintf("Claimed plan %s for session %s.", p.DisplayID(), p.AssignedToSession)
	case ActionRelease:
		return fmt.Sprintf("Released plan %s.", p.DisplayID())
	case ActionExecute:
		return fmt.Sprintf("Executing plan %s: %s.\n\n%s", p.DisplayID(), p.DisplayTitle(), FormatRemaining(p))
	}
	return ""
}

func pluralSteps(n int) string {
	if n == 1 {
		return "1 step"
	}
	return fmt.Sprintf("%d steps", n)
}

// FormatListLine renders one plan as a single line.
func FormatListLine(p *storage.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s", p.DisplayID(), p.DisplayTitle())
	if done, total := p.Progress(); total > 0 {
		fmt.Fprintf(&sb, " [%d/%d]", done, total)
	}
	if p.IsAssigned() {
		fmt.Fprintf(&sb, " (assigned: %s)", p.AssignedToSession)
	}
	return sb.String()
}

// FormatList renders status groups as markdown sections.
func FormatList(groups []storage.StatusGroup) string {
	if len(groups) == 0 {
		return "No plans."
	}
	var sb strings.Builder
	for i, g := range groups {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "## %s (%d)\n", g.Status, len(g.Plans))
		for _, p := range g.Plans {
			sb.WriteString("- ")
			sb.WriteString(FormatListLine(p))
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatSteps renders a markdown checklist.
func FormatSteps(steps []storage.Step) string {
	var sb strings.Builder
	for _, s := range steps {
		mark := " "
		if s.Done {
			mark = "x"
		}
		fmt.Fprintf(&sb, "- [%s] %d. %s\n", mark, s.ID, s.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatRemaining lists the steps still to do, or says that none remain.
func FormatRemaining(p *storage.Plan) string {
	remaining := p.RemainingSteps()
	if len(remaining) == 0 {
		return fmt.Sprintf("All steps of plan %s are done.", p.DisplayID())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Remaining steps of plan %s:\n", p.DisplayID())
	for _, s := range remaining {
		fmt.Fprintf(&sb, "%d. %s\n", s.ID, s.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatPlan renders a full plan as a markdown document.
func FormatPlan(p *storage.Plan) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s (%s)\n\n", p.DisplayTitle(), p.DisplayID())
	fmt.Fprintf(&sb, "Status: %s\n", p.Status)
	if p.CreatedAt != "" {
		fmt.Fprintf(&sb, "Created: %s\n", p.CreatedAt)
	}
	if p.IsAssigned() {
		fmt.Fprintf(&sb, "Assigned to: %s\n", p.AssignedToSession)
	}
	if len(p.Steps) > 0 {
		done, total := p.Progress()
		fmt.Fprintf(&sb, "\n## Steps (%d/%d)\n\n%s\n", done, total, FormatSteps(p.Steps))
	}
	if body := strings.TrimSpace(p.Body); body != "" {
		fmt.Fprintf(&sb, "\n%s\n", body)
	}
	return strings.TrimRight(sb.String(), "\n")
}
