package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// EnvFileName is the name of the environment variables file.
const EnvFileName = ".env"

// EnvTemplate is written by 'planbook init'.
const EnvTemplate = `# Planbook environment (not committed)
# System environment variables take priority over values here.

# PLANBOOK_DIR=.planbook/plans
# PLANBOOK_SESSION=
# PLANBOOK_GITHUB_TOKEN=
# PLANBOOK_GITLAB_TOKEN=
`

// EnvPath returns <workDir>/.planbook/.env
func EnvPath(workDir string) string {
	return filepath.Join(workDir, PlanbookDir, EnvFileName)
}

// LoadDotEnv loads environment variables from .planbook/.env if it exists.
// It uses godotenv.Load() which respects existing environment variables
// (system env vars take priority over .env values).
// Returns nil if the file doesn't exist (not an error condition).
func LoadDotEnv(workDir string) error {
	envPath := EnvPath(workDir)

	if _, err := os.Stat(envPath); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return godotenv.Load(envPath)
}

// ReadDotEnv returns the key-value pairs of .planbook/.env without touching the
// process environment. A missing file yields an empty map.
func ReadDotEnv(workDir string) (map[string]string, error) {
	env, err := godotenv.Read(EnvPath(workDir))
	if errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}
	return env, err
}

// WriteEnvTemplate creates .planbook/.env unless it already exists.
func WriteEnvTemplate(workDir string) (bool, error) {
	path := EnvPath(workDir)
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, err
	}
	if err := os.WriteFile(path, []byte(EnvTemplate), 0o600); err != nil {
		return false, err
	}
	return true, nil
}
