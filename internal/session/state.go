package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

// StateDirName holds one state file per session below the planbook directory.
const StateDirName = "sessions"

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// StatePath returns <dir>/sessions/<session>.json. Characters that are not
// safe in file names are replaced.
func StatePath(dir, sessionID string) string {
	name := unsafeName.ReplaceAllString(sessionID, "_")
	if name == "" || name == "." || name == ".." {
		name = "_"
	}
	return filepath.Join(dir, StateDirName, name+".json")
}

// LoadState reads a saved state. A missing file yields the zero state.
func LoadState(path string) (State, error) {
	var s State
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read session state: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("parse session state %s: %w", path, err)
	}
	return s, nil
}

// SaveState writes s. The zero state removes the file.
func SaveState(path string, s State) error {
	if s == (State{}) {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove session state: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session state: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
