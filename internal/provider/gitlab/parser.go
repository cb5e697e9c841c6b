package gitlab

import (
	"fmt"
	"strings"
)

// DetectProject extracts the project path from a git remote URL.
// Supports:
//   - git@gitlab.com:group/project.git
//   - git@gitlab.example.com:group/subgroup/project.git
//   - https://gitlab.com/group/project.git
func DetectProject(remoteURL, host string) (string, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	if remoteURL == "" {
		return "", ErrProjectNotDetected
	}

	host = bareHost(host)

	var path string
	switch {
	case strings.HasPrefix(remoteURL, "git@"+host+":"):
		path = strings.TrimPrefix(remoteURL, "git@"+host+":")
	case strings.Contains(remoteURL, host+"/"):
		path = remoteURL[strings.Index(remoteURL, host+"/")+len(host)+1:]
	default:
		return "", fmt.Errorf("%w: remote %s is not on %s", ErrProjectNotDetected, remoteURL, host)
	}

	path = strings.TrimSuffix(strings.TrimSuffix(path, "/"), ".git")
	if !strings.Contains(path, "/") {
		return "", fmt.Errorf("%w: %s", ErrProjectNotDetected, remoteURL)
	}
	return path, nil
}

func bareHost(host string) string {
	host = strings.TrimSpace(host)
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	host = strings.TrimSuffix(host, "/")
	if host == "" {
		return DefaultHost
	}
	return host
}
