package template

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestLoadBuiltIn(t *testing.T) {
	for _, name := range BuiltInTemplates() {
		t.Run(name, func(t *testing.T) {
			tpl, err := LoadBuiltIn(name)
			if err != nil {
				t.Fatalf("LoadBuiltIn(%q): %v", name, err)
			}
			if tpl.Name != name {
				t.Errorf("Name = %q, want %q", tpl.Name, name)
			}
			if tpl.Description == "" {
				t.Error("Description is empty")
			}
			if len(tpl.Steps) == 0 {
				t.Error("template has no steps")
			}
			if tpl.Source != "built-in" {
				t.Errorf("Source = %q", tpl.Source)
			}
		})
	}
}

func TestLoadUnknown(t *testing.T) {
	lib := NewLibrary(t.TempDir())
	for _, name := range []string{"nonexistent", "", "../etc/passwd"} {
		if _, err := lib.Load(name); !errors.Is(err, ErrNotFound) {
			t.Errorf("Load(%q) error = %v, want ErrNotFound", name, err)
		}
	}
}

func TestWorkspaceOverride(t *testing.T) {
	dir := t.TempDir()
	custom := "name: ignored\ndescription: Our release checklist\nsteps:\n  - Tag\n  - Announce\n"
	if err := os.WriteFile(filepath.Join(dir, "release.yaml"), []byte(custom), 0o644); err != nil {
		t.Fatal(err)
	}
	shadow := "description: Team chore\nsteps:\n  - Just do it\n"
	if err := os.WriteFile(filepath.Join(dir, "chore.yaml"), []byte(shadow), 0o644); err != nil {
		t.Fatal(err)
	}

	lib := NewLibrary(dir)

	tpl, err := lib.Load("release")
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Name != "release" || !slices.Equal(tpl.Steps, []string{"Tag", "Announce"}) {
		t.Errorf("release = %+v", tpl)
	}

	chore, err := lib.Load("chore.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if chore.Description != "Team chore" || chore.Source == "built-in" {
		t.Errorf("workspace chore did not shadow the built-in: %+v", chore)
	}

	all, err := lib.List()
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, tpl := range all {
		names = append(names, tpl.Name)
	}
	want := []string{"bug-fix", "chore", "docs", "feature", "refactor", "release", "test"}
	if !slices.Equal(names, want) {
		t.Errorf("List() = %v, want %v", names, want)
	}
}

func TestListWithoutWorkspaceDir(t *testing.T) {
	all, err := NewLibrary(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != len(BuiltInTemplates()) {
		t.Errorf("List() returned %d templates", len(all))
	}
}

func TestMergeSteps(t *testing.T) {
	tpl := &Template{Steps: []string{"a", "b"}}
	got := tpl.MergeSteps([]string{"c"})
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("MergeSteps = %v", got)
	}
	if len(tpl.Steps) != 2 {
		t.Error("MergeSteps modified the template")
	}
}

func TestGetDescription(t *testing.T) {
	tests := []struct {
		tpl  Template
		want string
	}{
		{Template{}, "No description available"},
		{Template{Description: "Plain"}, "Plain"},
		{Template{Description: "Fix", Status: "active", Steps: []string{"x"}}, "Fix (1 steps, starts active)"},
	}
	for _, tt := range tests {
		if got := tt.tpl.GetDescription(); got != tt.want {
			t.Errorf("GetDescription() = %q, want %q", got, tt.want)
		}
	}
}
