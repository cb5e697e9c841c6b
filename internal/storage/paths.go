package storage

import (
	"path/filepath"
	"strings"
)

const (
	// EnvStoreDir overrides the plan store directory. Relative values are resolved
	// against the working directory.
	EnvStoreDir = "PLANBOOK_DIR"

	// DefaultStoreDir is the store directory relative to the working directory.
	DefaultStoreDir = ".planbook/plans"

	recordExt        = ".md"
	lockExt          = ".lock"
	settingsFileName = "settings.json"
)

// Paths maps plan ids to files inside a store root. It performs no I/O.
type Paths struct {
	root string
}

// ResolveRoot returns the store root for workDir. getenv is usually os.Getenv.
func ResolveRoot(workDir string, getenv func(string) string) string {
	if getenv != nil {
		if override := strings.TrimSpace(getenv(EnvStoreDir)); override != "" {
			if filepath.IsAbs(override) {
				return filepath.Clean(override)
			}
			return filepath.Join(workDir, override)
		}
	}
	return filepath.Join(workDir, filepath.FromSlash(DefaultStoreDir))
}

// NewPaths returns a resolver rooted at root.
func NewPaths(root string) Paths {
	return Paths{root: root}
}

// Root returns the store root directory.
func (p Paths) Root() string {
	return p.root
}

// RecordPath returns <root>/<id>.md.
func (p Paths) RecordPath(id string) string {
	return filepath.Join(p.root, id+recordExt)
}

// LockPath returns <root>/<id>.lock.
func (p Paths) LockPath(id string) string {
	return filepath.Join(p.root, id+lockExt)
}

// SettingsPath returns <root>/settings.json.
func (p Paths) SettingsPath() string {
	return filepath.Join(p.root, settingsFileName)
}
