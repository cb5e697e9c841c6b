package gitlab

import (
	"context"
	"fmt"
	"strings"

	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/valksor/go-planbook/internal/provider/token"
)

// DefaultHost is used when no host is configured.
const DefaultHost = "gitlab.com"

// ptr is a helper to create a pointer to a value.
func ptr[T any](v T) *T {
	return &v
}

// Client wraps the GitLab API client for one project.
type Client struct {
	gl          *gitlab.Client
	projectPath string // e.g. "group/project"
	host        string
}

// NewClient creates a new GitLab API client. Host may be a bare host name or a
// full URL; self-hosted instances get an explicit API base URL.
func NewClient(tok, host, projectPath string) (*Client, error) {
	var options []gitlab.ClientOptionFunc

	if base := apiBaseURL(host); base != "" {
		options = append(options, gitlab.WithBaseURL(base))
	}

	client, err := gitlab.NewClient(tok, options...)
	if err != nil {
		return nil, fmt.Errorf("create gitlab client: %w", err)
	}

	return &Client{
		gl:          client,
		projectPath: projectPath,
		host:        host,
	}, nil
}

func apiBaseURL(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")
	if host == "" || host == DefaultHost || host == "https://"+DefaultHost {
		return ""
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return host + "/api/v4"
}

// ResolveToken finds the GitLab token.
// Priority order:
//  1. PLANBOOK_GITLAB_TOKEN env var
//  2. GITLAB_TOKEN env var
//  3. configToken (from config.yaml)
func ResolveToken(configToken string) (string, error) {
	return token.ResolveToken(token.Config("GITLAB", configToken).WithEnvVars("GITLAB_TOKEN"))
}

// ProjectPath returns the configured project path.
func (c *Client) ProjectPath() string {
	return c.projectPath
}

// Host returns the GitLab host.
func (c *Client) Host() string {
	if c.host == "" {
		return DefaultHost
	}
	return c.host
}

// CreateIssue opens a new issue in the project.
func (c *Client) CreateIssue(ctx context.Context, title, description string, labels []string) (*gitlab.Issue, error) {
	if c.projectPath == "" {
		return nil, ErrProjectNotConfigured
	}

	opts := &gitlab.CreateIssueOptions{
		Title:       ptr(title),
		Description: ptr(description),
	}
	if len(labels) > 0 {
		labelOpts := gitlab.LabelOptions(labels)
		opts.Labels = &labelOpts
	}

	issue, _, err := c.gl.Issues.CreateIssue(c.projectPath, opts, gitlab.WithContext(ctx))
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return issue, nil
}
