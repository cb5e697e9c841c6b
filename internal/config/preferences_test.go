package config

import (
	"fmt"
	"testing"
)

func TestAddRecentPlan(t *testing.T) {
	p := &Preferences{}

	p.AddRecentPlan("aaaa0001")
	p.AddRecentPlan("aaaa0002")
	if p.RecentPlans[0] != "aaaa0002" {
		t.Errorf("RecentPlans[0] = %q, want most recent first", p.RecentPlans[0])
	}

	p.AddRecentPlan("aaaa0001")
	if len(p.RecentPlans) != 2 || p.RecentPlans[0] != "aaaa0001" {
		t.Errorf("RecentPlans = %v, want duplicate moved to front", p.RecentPlans)
	}
}

func TestAddRecentPlanMaxLimit(t *testing.T) {
	p := &Preferences{}
	for i := range 12 {
		p.AddRecentPlan(fmt.Sprintf("%08x", i))
	}

	if len(p.RecentPlans) != maxRecentPlans {
		t.Errorf("RecentPlans length = %d, want %d", len(p.RecentPlans), maxRecentPlans)
	}
	if p.RecentPlans[0] != fmt.Sprintf("%08x", 11) {
		t.Errorf("RecentPlans[0] = %q", p.RecentPlans[0])
	}
}

func TestForgetPlan(t *testing.T) {
	p := &Preferences{RecentPlans: []string{"a", "b", "c"}}
	p.ForgetPlan("b")
	if len(p.RecentPlans) != 2 || p.RecentPlans[0] != "a" || p.RecentPlans[1] != "c" {
		t.Errorf("RecentPlans = %v", p.RecentPlans)
	}
}

func TestPreferencesSaveAndLoad(t *testing.T) {
	dir := t.TempDir()

	empty, err := LoadPreferences(dir)
	if err != nil {
		t.Fatalf("LoadPreferences on empty dir: %v", err)
	}
	if len(empty.RecentPlans) != 0 || empty.LastProvider != "" {
		t.Errorf("empty preferences = %+v", empty)
	}

	empty.LastProvider = "github"
	empty.AddRecentPlan("deadbeef")
	if err := empty.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := LoadPreferences(dir)
	if err != nil {
		t.Fatalf("LoadPreferences failed: %v", err)
	}
	if loaded.LastProvider != "github" {
		t.Errorf("LastProvider = %q", loaded.LastProvider)
	}
	if len(loaded.RecentPlans) != 1 || loaded.RecentPlans[0] != "deadbeef" {
		t.Errorf("RecentPlans = %v", loaded.RecentPlans)
	}
}
