// Package provider publishes plans to external issue trackers.
package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/valksor/go-planbook/internal/storage"
)

// Config carries the connection settings of one tracker. Unused fields are
// ignored by providers that do not need them.
type Config struct {
	Token   string
	Host    string
	Owner   string
	Repo    string
	Project string
	Labels  []string
}

// Issue is an issue created from a plan.
type Issue struct {
	Provider  string `json:"provider"`
	Number    int64  `json:"number"`
	URL       string `json:"url"`
	Reference string `json:"reference"`
}

// Publisher turns a plan into an issue.
type Publisher interface {
	Publish(ctx context.Context, p *storage.Plan) (*Issue, error)
}

// IssueTitle returns the issue title for p.
func IssueTitle(p *storage.Plan) string {
	return p.DisplayTitle()
}

// IssueBody renders p as issue markdown: the steps as a task list, then the
// plan body.
func IssueBody(p *storage.Plan) string {
	var sb strings.Builder

	if len(p.Steps) > 0 {
		sb.WriteString("## Steps\n\n")
		for _, s := range p.Steps {
			mark := " "
			if s.Done {
				mark = "x"
			}
			fmt.Fprintf(&sb, "- [%s] %s\n", mark, s.Text)
		}
	}

	if body := strings.TrimSpace(p.Body); body != "" {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(body)
		sb.WriteString("\n")
	}

	if sb.Len() > 0 {
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "---\n_Published from plan %s (%s)._\n", p.DisplayID(), p.Status)
	return sb.String()
}
