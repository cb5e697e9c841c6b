// Package help provides context-aware help for CLI commands.
package help

import (
	"context"
	"os"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/storage"
)

// HelpContext holds information about the current workspace state
// for determining command availability.
type HelpContext struct {
	HasWorkspace bool
	PlanCount    int
	OpenPlans    int
}

// LoadContext inspects the workspace at workDir. It only lists plan headers
// and never fails: anything unreadable leaves the zero value in place.
func LoadContext(workDir string) *HelpContext {
	hc := &HelpContext{}
	if workDir == "" {
		return hc
	}
	hc.HasWorkspace = config.Exists(workDir)

	store := storage.OpenStore(storage.ResolveRoot(workDir, os.Getenv))
	plans, err := store.List(context.Background())
	if err != nil {
		return hc
	}

	hc.PlanCount = len(plans)
	for _, p := range plans {
		if !p.IsDone() {
			hc.OpenPlans++
		}
	}
	return hc
}
