// Package vcs provides the git lookups planbook needs: the repository root that
// anchors the .planbook directory and the remote URLs publishing detects the
// issue tracker project from.
//
// Git methods are safe for concurrent use as they don't maintain mutable state.
package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// DefaultRemote is the remote checked first when detecting the project.
const DefaultRemote = "origin"

// ErrNoRemote is returned when the repository has no remotes.
var ErrNoRemote = errors.New("repository has no remotes")

// Git provides git operations for a repository
type Git struct {
	repoRoot string
}

// New creates a Git instance for the given path
func New(ctx context.Context, path string) (*Git, error) {
	root, err := findRepoRoot(ctx, path)
	if err != nil {
		return nil, err
	}
	return &Git{repoRoot: root}, nil
}

// Root returns the repository root path
func (g *Git) Root() string {
	return g.repoRoot
}

// IsRepo checks if the path is inside a git repository
func IsRepo(ctx context.Context, path string) bool {
	_, err := findRepoRoot(ctx, path)
	return err == nil
}

// WorkspaceRoot returns the repository root containing path, or path itself
// when it is not inside a repository.
func WorkspaceRoot(ctx context.Context, path string) string {
	if root, err := findRepoRoot(ctx, path); err == nil {
		return root
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}

// findRepoRoot locates the git repository root
func findRepoRoot(ctx context.Context, path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}

	out, err := runGitCommandContext(ctx, absPath, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}

	return filepath.Clean(strings.TrimSpace(out)), nil
}

// CurrentBranch returns the current branch name
func (g *Git) CurrentBranch(ctx context.Context) (string, error) {
	out, err := g.RunContext(ctx, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", fmt.Errorf("get current branch: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// Remotes lists the configured remote names
func (g *Git) Remotes(ctx context.Context) ([]string, error) {
	out, err := g.RunContext(ctx, "remote")
	if err != nil {
		return nil, fmt.Errorf("list remotes: %w", err)
	}
	return strings.Fields(out), nil
}

// RemoteURL returns the URL for a remote
func (g *Git) RemoteURL(ctx context.Context, name string) (string, error) {
	out, err := g.RunContext(ctx, "remote", "get-url", name)
	if err != nil {
		return "", fmt.Errorf("get remote URL %s: %w", name, err)
	}
	return strings.TrimSpace(out), nil
}

// DefaultRemoteURL returns the origin URL, or the first remote's URL when there
// is no origin.
func (g *Git) DefaultRemoteURL(ctx context.Context) (string, error) {
	remotes, err := g.Remotes(ctx)
	if err != nil {
		return "", err
	}
	if len(remotes) == 0 {
		return "", ErrNoRemote
	}

	name := remotes[0]
	for _, r := range remotes {
		if r == DefaultRemote {
			name = r
			break
		}
	}
	return g.RemoteURL(ctx, name)
}

// GetConfig gets a git config value
func (g *Git) GetConfig(ctx context.Context, key string) (string, error) {
	out, err := g.RunContext(ctx, "config", "--get", key)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// RunContext executes a git command with context
func (g *Git) RunContext(ctx context.Context, args ...string) (string, error) {
	return runGitCommandContext(ctx, g.repoRoot, args...)
}

// runGitCommandContext executes a git command with context
func runGitCommandContext(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		errMsg := stderr.String()
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("%s", strings.TrimSpace(errMsg))
	}

	return stdout.String(), nil
}
