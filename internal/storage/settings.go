package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Default retention settings.
const (
	DefaultGCEnabled = true
	DefaultGCDays    = 30
)

// Settings holds per-store retention configuration (settings.json).
type Settings struct {
	GC     bool `json:"gc"`
	GCDays int  `json:"gcDays"`
}

// DefaultSettings returns {gc: true, gcDays: 30}.
func DefaultSettings() Settings {
	return Settings{GC: DefaultGCEnabled, GCDays: DefaultGCDays}
}

// LoadSettings reads settings.json. A missing or malformed file silently yields
// the defaults; individual missing or invalid fields keep their default value.
func LoadSettings(path string) Settings {
	settings := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		return settings
	}

	var raw struct {
		GC     *bool `json:"gc"`
		GCDays *int  `json:"gcDays"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return settings
	}

	if raw.GC != nil {
		settings.GC = *raw.GC
	}
	if raw.GCDays != nil && *raw.GCDays >= 0 {
		settings.GCDays = *raw.GCDays
	}

	return settings
}

// SaveSettings writes settings.json.
func SaveSettings(path string, s Settings) error {
	if s.GCDays < 0 {
		return fmt.Errorf("gcDays must not be negative, got %d", s.GCDays)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	return os.WriteFile(path, append(data, '\n'), 0o644)
}
