package github

import (
	"context"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/google/go-github/v67/github"
	"golang.org/x/oauth2"

	"github.com/valksor/go-planbook/internal/provider/token"
)

// ptr is a helper to create a pointer to a value
func ptr[T any](v T) *T {
	return &v
}

// Client wraps the GitHub API client for one repository
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

// NewClient creates a GitHub API client authenticated with token
func NewClient(token, owner, repo string) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	tc := oauth2.NewClient(context.Background(), ts)
	return &Client{
		gh:    github.NewClient(tc),
		owner: owner,
		repo:  repo,
	}
}

// SetBaseURL points the client at a GitHub Enterprise or test server
func (c *Client) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	c.gh.BaseURL = u
	return nil
}

// Owner returns the repository owner
func (c *Client) Owner() string { return c.owner }

// Repo returns the repository name
func (c *Client) Repo() string { return c.repo }

// ResolveToken finds the GitHub token.
// Priority order:
//  1. PLANBOOK_GITHUB_TOKEN env var
//  2. GITHUB_TOKEN env var
//  3. configToken (from config.yaml)
//  4. gh CLI auth token (via `gh auth token`)
func ResolveToken(configToken string) (string, error) {
	return token.ResolveToken(token.Config("GITHUB", configToken).
		WithEnvVars("GITHUB_TOKEN").
		WithCLIFallback(getGHCLIToken))
}

// getGHCLIToken attempts to get the token from the gh CLI
func getGHCLIToken() string {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	out, err := exec.CommandContext(ctx, "gh", "auth", "token").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// CreateIssue opens a new issue
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*github.Issue, error) {
	req := &github.IssueRequest{
		Title: ptr(title),
		Body:  ptr(body),
	}
	if len(labels) > 0 {
		req.Labels = ptr(labels)
	}

	issue, _, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, wrapAPIError(err)
	}
	return issue, nil
}
