package vcs

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// initRepo creates an empty repository in a temp dir, skipping without git.
func initRepo(t *testing.T) string {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	dir := t.TempDir()
	if _, err := runGitCommandContext(context.Background(), dir, "init", "-q"); err != nil {
		t.Fatalf("git init: %v", err)
	}
	// Resolve symlinks so comparisons with rev-parse output hold on macOS.
	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func TestNewFindsRootFromSubdirectory(t *testing.T) {
	ctx := context.Background()
	repo := initRepo(t)
	sub := filepath.Join(repo, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	g, err := New(ctx, sub)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	if g.Root() != repo {
		t.Errorf("Root = %q, want %q", g.Root(), repo)
	}
	if !IsRepo(ctx, sub) {
		t.Error("IsRepo = false")
	}
	if got := WorkspaceRoot(ctx, sub); got != repo {
		t.Errorf("WorkspaceRoot = %q, want %q", got, repo)
	}
}

func TestWorkspaceRootOutsideRepo(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	if IsRepo(context.Background(), dir) {
		t.Skip("temp dir is inside a repository")
	}
	if got := WorkspaceRoot(context.Background(), dir); got != dir {
		t.Errorf("WorkspaceRoot = %q, want %q", got, dir)
	}
}

func TestDefaultRemoteURL(t *testing.T) {
	ctx := context.Background()
	repo := initRepo(t)
	g, err := New(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := g.DefaultRemoteURL(ctx); !errors.Is(err, ErrNoRemote) {
		t.Errorf("no remotes err = %v", err)
	}

	if _, err := g.RunContext(ctx, "remote", "add", "upstream", "git@github.com:up/repo.git"); err != nil {
		t.Fatal(err)
	}
	url, err := g.DefaultRemoteURL(ctx)
	if err != nil || url != "git@github.com:up/repo.git" {
		t.Errorf("first remote url = %q, err = %v", url, err)
	}

	if _, err := g.RunContext(ctx, "remote", "add", DefaultRemote, "https://gitlab.com/g/p.git"); err != nil {
		t.Fatal(err)
	}
	url, err = g.DefaultRemoteURL(ctx)
	if err != nil || url != "https://gitlab.com/g/p.git" {
		t.Errorf("origin url = %q, err = %v", url, err)
	}

	if _, err := g.RemoteURL(ctx, "missing"); err == nil {
		t.Error("RemoteURL(missing) expected error")
	}
}
