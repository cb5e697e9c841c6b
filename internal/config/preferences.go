package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// PreferencesFileName is the per-workspace preferences file.
const PreferencesFileName = "preferences.json"

const maxRecentPlans = 10

// Preferences holds local state that persists between invocations
type Preferences struct {
	// Generated session id, used when none is configured
	SessionID string `json:"session_id,omitempty"`

	// Last used publish provider
	LastProvider string `json:"last_provider,omitempty"`

	// Recently touched plan ids (for the picker)
	RecentPlans []string `json:"recent_plans,omitempty"`

	path string
}

// PreferencesPath returns the path to the preferences file
func PreferencesPath(workDir string) string {
	return filepath.Join(workDir, PlanbookDir, PreferencesFileName)
}

// LoadPreferences reads preferences from disk
func LoadPreferences(workDir string) (*Preferences, error) {
	path := PreferencesPath(workDir)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Preferences{path: path}, nil
		}
		return nil, err
	}

	var prefs Preferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, err
	}
	prefs.path = path

	return &prefs, nil
}

// Save writes preferences to disk
func (p *Preferences) Save() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(p.path, data, 0o644)
}

// AddRecentPlan moves id to the front of the recent list (max 10)
func (p *Preferences) AddRecentPlan(id string) {
	filtered := make([]string, 0, len(p.RecentPlans))
	for _, existing := range p.RecentPlans {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}

	p.RecentPlans = append([]string{id}, filtered...)

	if len(p.RecentPlans) > maxRecentPlans {
		p.RecentPlans = p.RecentPlans[:maxRecentPlans]
	}
}

// ForgetPlan drops id from the recent list
func (p *Preferences) ForgetPlan(id string) {
	filtered := p.RecentPlans[:0]
	for _, existing := range p.RecentPlans {
		if existing != id {
			filtered = append(filtered, existing)
		}
	}
	p.RecentPlans = filtered
}
