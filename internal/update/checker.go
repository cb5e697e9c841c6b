// Package update checks GitHub releases for a newer planbook build.
package update

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/go-github/v67/github"
	"golang.org/x/mod/semver"
	"golang.org/x/oauth2"
)

// Default release repository.
const (
	DefaultOwner = "valksor"
	DefaultRepo  = "go-planbook"
)

// Checker checks for available updates from GitHub releases.
type Checker struct {
	gh    *github.Client
	owner string
	repo  string
}

// CheckerOption configures a Checker.
type CheckerOption func(*Checker) error

// WithRepository overrides the release repository.
func WithRepository(owner, repo string) CheckerOption {
	return func(c *Checker) error {
		c.owner, c.repo = owner, repo
		return nil
	}
}

// WithBaseURL points the checker at a GitHub Enterprise or test server.
func WithBaseURL(raw string) CheckerOption {
	return func(c *Checker) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// NewChecker creates a new update checker.
// If token is empty, the client will make unauthenticated requests (subject to rate limits).
func NewChecker(token string, opts ...CheckerOption) (*Checker, error) {
	var gh *github.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		gh = github.NewClient(oauth2.NewClient(context.Background(), ts))
	} else {
		gh = github.NewClient(nil)
	}

	c := &Checker{gh: gh, owner: DefaultOwner, repo: DefaultRepo}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Check looks for available updates and returns the status.
// It returns ErrNoUpdateAvailable, together with the status, if the current
// version is up to date, and ErrDevBuild for unversioned builds.
func (c *Checker) Check(ctx context.Context, opts CheckOptions) (*Status, error) {
	if opts.CurrentVersion == "dev" || opts.CurrentVersion == "none" || opts.CurrentVersion == "" {
		return nil, ErrDevBuild
	}

	releases, _, err := c.gh.Repositories.ListReleases(ctx, c.owner, c.repo, &github.ListOptions{PerPage: 10})
	if err != nil {
		return nil, fmt.Errorf("fetch releases: %w", err)
	}

	// The API returns releases newest first.
	var latest *github.RepositoryRelease
	for _, r := range releases {
		if r.GetDraft() {
			continue
		}
		if !opts.IncludePreRelease && r.GetPrerelease() {
			continue
		}
		latest = r
		break
	}
	if latest == nil {
		return nil, ErrNoRelease
	}

	status := &Status{
		CurrentVersion: opts.CurrentVersion,
		LatestVersion:  latest.GetTagName(),
		IsPreRelease:   latest.GetPrerelease(),
		ReleaseURL:     latest.GetHTMLURL(),
		ReleaseNotes:   latest.GetBody(),
	}
	if latest.PublishedAt != nil {
		status.PublishedAt = latest.PublishedAt.Time
	}

	if !newerThan(latest.GetTagName(), opts.CurrentVersion) {
		return status, ErrNoUpdateAvailable
	}

	status.IsNewer = true
	return status, nil
}

// newerThan reports whether version a sorts after b. Both may omit the
// leading "v". Versions that are not semver never count as newer.
func newerThan(a, b string) bool {
	a, b = canonical(a), canonical(b)
	if !semver.IsValid(a) {
		return false
	}
	if !semver.IsValid(b) {
		return true
	}
	return semver.Compare(a, b) > 0
}

func canonical(v string) string {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
