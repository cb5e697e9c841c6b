// Package gitlab publishes plans as GitLab issues.
package gitlab

import (
	"context"
	"fmt"

	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/provider"
	"github.com/valksor/go-planbook/internal/storage"
)

// ProviderName is the registered name for this provider.
const ProviderName = "gitlab"

// Publisher creates one issue per published plan.
type Publisher struct {
	client *Client
	labels []string
}

// Info returns provider metadata.
func Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        ProviderName,
		Description: "Publish plans as GitLab issues",
	}
}

// New creates a GitLab publisher from the configured project.
func New(_ context.Context, cfg provider.Config) (provider.Publisher, error) {
	if cfg.Project == "" {
		return nil, ErrProjectNotConfigured
	}
	tok, err := ResolveToken(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("gitlab: %w", err)
	}

	client, err := NewClient(tok, cfg.Host, cfg.Project)
	if err != nil {
		return nil, err
	}
	return NewPublisher(client, cfg.Labels), nil
}

// NewPublisher wraps an existing client.
func NewPublisher(client *Client, labels []string) *Publisher {
	return &Publisher{client: client, labels: labels}
}

// Publish opens an issue with the plan's steps as a task list.
func (p *Publisher) Publish(ctx context.Context, plan *storage.Plan) (*provider.Issue, error) {
	issue, err := p.client.CreateIssue(ctx, provider.IssueTitle(plan), provider.IssueBody(plan), p.labels)
	if err != nil {
		return nil, err
	}

	ref := fmt.Sprintf("%s#%d", p.client.ProjectPath(), issue.IID)
	log.Info("plan published", log.PlanID(plan.ID), "issue", ref)
	return &provider.Issue{
		Provider:  ProviderName,
		Number:    int64(issue.IID),
		URL:       issue.WebURL,
		Reference: ref,
	}, nil
}
