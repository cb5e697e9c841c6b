package github

import (
	"fmt"
	"strings"
)

// DetectRepository parses the GitHub owner/repo from a git remote URL
// Supports:
//   - git@github.com:owner/repo.git
//   - https://github.com/owner/repo.git
//   - https://github.com/owner/repo
func DetectRepository(remoteURL string) (string, string, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return "", "", ErrRepoNotDetected
	}

	var path string
	switch {
	case strings.HasPrefix(remoteURL, "git@github.com:"):
		path = strings.TrimPrefix(remoteURL, "git@github.com:")
	case strings.Contains(remoteURL, "github.com/"):
		path = remoteURL[strings.Index(remoteURL, "github.com/")+len("github.com/"):]
	default:
		return "", "", fmt.Errorf("%w: not a GitHub URL: %s", ErrRepoNotDetected, remoteURL)
	}

	path = strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrRepoNotDetected, remoteURL)
	}
	return parts[0], parts[1], nil
}
