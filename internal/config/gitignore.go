package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GitignoreEntries are the planbook paths that must stay out of version control.
var GitignoreEntries = []string{
	PlanbookDir + "/" + EnvFileName,
	PlanbookDir + "/plans/*.lock",
	PlanbookDir + "/" + PreferencesFileName,
	PlanbookDir + "/sessions/",
}

// UpdateGitignore adds the planbook entries to <workDir>/.gitignore.
// Existing entries are left alone. It reports whether the file changed.
func UpdateGitignore(workDir string) (bool, error) {
	gitignorePath := filepath.Join(workDir, ".gitignore")

	var content string
	if data, err := os.ReadFile(gitignorePath); err == nil {
		content = string(data)
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("read .gitignore: %w", err)
	}

	present := make(map[string]bool)
	for _, line := range strings.Split(content, "\n") {
		present[strings.TrimSpace(line)] = true
	}

	modified := false
	for _, entry := range GitignoreEntries {
		if present[entry] {
			continue
		}
		if len(content) > 0 && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		content += entry + "\n"
		present[entry] = true
		modified = true
	}

	if !modified {
		return false, nil
	}

	if err := os.WriteFile(gitignorePath, []byte(content), 0o644); err != nil {
		return false, fmt.Errorf("write .gitignore: %w", err)
	}
	return true, nil
}
