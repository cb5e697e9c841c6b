package storage

import (
	"path/filepath"
	"testing"
)

func TestResolveRoot(t *testing.T) {
	work := filepath.Join(string(filepath.Separator), "repo")
	abs := filepath.Join(string(filepath.Separator), "elsewhere", "plans")

	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{name: "default", env: nil, want: filepath.Join(work, ".planbook", "plans")},
		{name: "blank override", env: map[string]string{EnvStoreDir: "   "}, want: filepath.Join(work, ".planbook", "plans")},
		{name: "relative override", env: map[string]string{EnvStoreDir: "custom/dir"}, want: filepath.Join(work, "custom", "dir")},
		{name: "absolute override", env: map[string]string{EnvStoreDir: abs + string(filepath.Separator)}, want: abs},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(k string) string { return tt.env[k] }
			if got := ResolveRoot(work, getenv); got != tt.want {
				t.Errorf("ResolveRoot() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	p := NewPaths("/store")

	if got := p.RecordPath("1a2b3c4d"); got != filepath.Join("/store", "1a2b3c4d.md") {
		t.Errorf("RecordPath() = %q", got)
	}
	if got := p.LockPath("1a2b3c4d"); got != filepath.Join("/store", "1a2b3c4d.lock") {
		t.Errorf("LockPath() = %q", got)
	}
	if got := p.SettingsPath(); got != filepath.Join("/store", "settings.json") {
		t.Errorf("SettingsPath() = %q", got)
	}
}
