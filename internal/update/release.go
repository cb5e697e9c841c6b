package update

import "time"

// Status is the result of an update check.
type Status struct {
	CurrentVersion string    `json:"current_version"`
	LatestVersion  string    `json:"latest_version"`
	IsNewer        bool      `json:"is_newer"`
	IsPreRelease   bool      `json:"is_prerelease"`
	PublishedAt    time.Time `json:"published_at,omitzero"`
	ReleaseURL     string    `json:"release_url,omitempty"`
	ReleaseNotes   string    `json:"release_notes,omitempty"`
}

// CheckOptions configures the update check behavior.
type CheckOptions struct {
	CurrentVersion    string // Current version (e.g., "v1.2.3" or "dev")
	IncludePreRelease bool   // If true, consider pre-release versions
}
