package display

import (
	"fmt"
	"strings"
	"time"

	"github.com/valksor/go-planbook/internal/storage"
)

const maxTitleWidth = 60

// PlanLine renders one plan as a colored list line:
//
//	◐ #1a2b3c4d Refactor auth [1/3] @session-1
func PlanLine(p *storage.Plan) string {
	var sb strings.Builder
	sb.WriteString(ColorStatus(p.Status, GetStatusIcon(p.Status)))
	sb.WriteString(" ")
	sb.WriteString(Cyan(p.DisplayID()))
	sb.WriteString(" ")
	sb.WriteString(Truncate(p.DisplayTitle(), maxTitleWidth))

	if done, total := p.Progress(); total > 0 {
		progress := fmt.Sprintf("[%d/%d]", done, total)
		if done == total {
			progress = Success(progress)
		} else {
			progress = Muted(progress)
		}
		sb.WriteString(" ")
		sb.WriteString(progress)
	}

	if p.IsAssigned() {
		sb.WriteString(" ")
		sb.WriteString(Muted("@" + p.AssignedToSession))
	}
	return sb.String()
}

// PlanGroups renders plans bucketed by status with a header per bucket.
func PlanGroups(groups []storage.StatusGroup) string {
	if len(groups) == 0 {
		return Muted("No plans.") + "\n"
	}

	var sb strings.Builder
	for i, g := range groups {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "%s %s\n", Bold(FormatStatus(g.Status)), Muted(fmt.Sprintf("(%d)", len(g.Plans))))
		for _, p := range g.Plans {
			sb.WriteString(IndentOne)
			sb.WriteString(PlanLine(p))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// StepChecklist renders steps as "  ✓ 1. text" lines.
func StepChecklist(steps []storage.Step) string {
	var sb strings.Builder
	for _, s := range steps {
		mark := Muted("○")
		text := s.Text
		if s.Done {
			mark = Success("✓")
			text = Dim(text)
		}
		fmt.Fprintf(&sb, "%s%s %s %s\n", IndentOne, mark, Muted(fmt.Sprintf("%d.", s.ID)), text)
	}
	return sb.String()
}

// PlanDetail renders a full plan for `show`.
func PlanDetail(p *storage.Plan, now time.Time) string {
	f := NewFormatter().SetIndent(1)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s\n", Bold(p.DisplayTitle()), Cyan(p.DisplayID()))

	status := FormatStatusColored(p.Status)
	if desc := StatusDescription[p.Status]; desc != "" {
		status += " - " + Muted(desc)
	}
	sb.WriteString(f.KeyValue("Status", status))

	if p.CreatedAt != "" {
		created := p.CreatedAt
		if t, err := time.Parse(time.RFC3339Nano, p.CreatedAt); err == nil {
			created = f.Timestamp(t.Local()) + " " + Muted("("+RelativeTime(t, now)+")")
		}
		sb.WriteString(f.KeyValue("Created", created))
	}
	if p.IsAssigned() {
		sb.WriteString(f.KeyValue("Assigned", p.AssignedToSession))
	}

	if len(p.Steps) > 0 {
		done, total := p.Progress()
		sb.WriteString(f.Subsection(fmt.Sprintf("Steps %d/%d", done, total)))
		sb.WriteString(StepChecklist(p.Steps))
	}

	if body := strings.TrimSpace(p.Body); body != "" {
		sb.WriteString("\n")
		sb.WriteString(body)
		sb.WriteString("\n")
	}
	return sb.String()
}

// NextStep represents a single next step suggestion.
type NextStep struct {
	Command     string
	Description string
}

// FormatNextSteps formats the "Next steps:" section consistently.
func FormatNextSteps(steps ...NextStep) string {
	if len(steps) == 0 {
		return ""
	}

	maxLen := 0
	for _, s := range steps {
		maxLen = max(maxLen, len(s.Command))
	}

	var sb strings.Builder
	sb.WriteString("\n")
	sb.WriteString(Muted("Next steps:"))
	sb.WriteString("\n")
	for _, s := range steps {
		// Pad before coloring so escape codes do not skew the alignment.
		fmt.Fprintf(&sb, "  %s  %s\n", Cyan(fmt.Sprintf("%-*s", maxLen, s.Command)), Muted("- "+s.Description))
	}
	return sb.String()
}

// FormatConfirmation formats a confirmation prompt consistently.
func FormatConfirmation(summary string, details []string, warning string) string {
	var sb strings.Builder

	sb.WriteString(Bold(summary))
	sb.WriteString("\n")

	for _, d := range details {
		fmt.Fprintf(&sb, "  %s\n", d)
	}

	if warning != "" {
		sb.WriteString("\n")
		sb.WriteString(WarningMsg("%s", warning))
		sb.WriteString("\n")
	}

	return sb.String()
}
