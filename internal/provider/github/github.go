// Package github publishes plans as GitHub issues.
package github

import (
	"context"
	"fmt"

	"github.com/valksor/go-planbook/internal/log"
	"github.com/valksor/go-planbook/internal/provider"
	"github.com/valksor/go-planbook/internal/storage"
)

// ProviderName is the registered name for this provider
const ProviderName = "github"

// Publisher creates one issue per published plan
type Publisher struct {
	client *Client
	labels []string
}

// Info returns provider metadata
func Info() provider.ProviderInfo {
	return provider.ProviderInfo{
		Name:        ProviderName,
		Description: "Publish plans as GitHub issues",
	}
}

// New creates a GitHub publisher. Host, when set, is the API base URL of a
// GitHub Enterprise server.
func New(_ context.Context, cfg provider.Config) (provider.Publisher, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, ErrRepoNotConfigured
	}
	tok, err := ResolveToken(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("github: %w", err)
	}

	client := NewClient(tok, cfg.Owner, cfg.Repo)
	if cfg.Host != "" {
		if err := client.SetBaseURL(cfg.Host); err != nil {
			return nil, fmt.Errorf("github: invalid host %q: %w", cfg.Host, err)
		}
	}
	return NewPublisher(client, cfg.Labels), nil
}

// NewPublisher wraps an existing client
func NewPublisher(client *Client, labels []string) *Publisher {
	return &Publisher{client: client, labels: labels}
}

// Publish opens an issue with the plan's steps as a task list
func (p *Publisher) Publish(ctx context.Context, plan *storage.Plan) (*provider.Issue, error) {
	issue, err := p.client.CreateIssue(ctx, provider.IssueTitle(plan), provider.IssueBody(plan), p.labels)
	if err != nil {
		return nil, err
	}

	ref := fmt.Sprintf("%s/%s#%d", p.client.Owner(), p.client.Repo(), issue.GetNumber())
	log.Info("plan published", log.PlanID(plan.ID), "issue", ref)
	return &provider.Issue{
		Provider:  ProviderName,
		Number:    int64(issue.GetNumber()),
		URL:       issue.GetHTMLURL(),
		Reference: ref,
	}, nil
}
