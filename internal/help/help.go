package help

import (
	"sync"

	"github.com/spf13/cobra"
)

var (
	mu            sync.Mutex
	cachedContext *HelpContext
	loader        = func() *HelpContext { return &HelpContext{} }
)

// GetHelpContext returns the cached help context, loading it if necessary.
// This is called by template functions during help rendering.
func GetHelpContext() *HelpContext {
	mu.Lock()
	defer mu.Unlock()

	if cachedContext == nil {
		cachedContext = loader()
		if cachedContext == nil {
			cachedContext = &HelpContext{}
		}
	}
	return cachedContext
}

// ResetContext clears the cached context.
func ResetContext() {
	mu.Lock()
	defer mu.Unlock()
	cachedContext = nil
}

// FilterAvailable returns commands that are available in the current context.
func FilterAvailable(commands []*cobra.Command, ctx *HelpContext) []*cobra.Command {
	var available []*cobra.Command
	for _, cmd := range commands {
		if cmd.IsAvailableCommand() && IsAvailable(cmd.Name(), ctx) {
			available = append(available, cmd)
		}
	}
	return available
}

// FilterUnavailable returns commands that are not available in the current context.
func FilterUnavailable(commands []*cobra.Command, ctx *HelpContext) []*cobra.Command {
	var unavailable []*cobra.Command
	for _, cmd := range commands {
		if cmd.IsAvailableCommand() && !IsAvailable(cmd.Name(), ctx) {
			unavailable = append(unavailable, cmd)
		}
	}
	return unavailable
}

// InGroup returns the commands whose GroupID is groupID. An empty id selects
// ungrouped commands.
func InGroup(commands []*cobra.Command, groupID string) []*cobra.Command {
	var out []*cobra.Command
	for _, cmd := range commands {
		if cmd.GroupID == groupID {
			out = append(out, cmd)
		}
	}
	return out
}

// UnavailableReason returns the reason why a command is unavailable.
func UnavailableReason(cmdName string) string {
	return GetReason(cmdName)
}

var registerOnce sync.Once

// RegisterTemplateFuncs registers the help template functions with Cobra.
func RegisterTemplateFuncs() {
	registerOnce.Do(func() {
		cobra.AddTemplateFunc("helpContext", GetHelpContext)
		cobra.AddTemplateFunc("filterAvailable", FilterAvailable)
		cobra.AddTemplateFunc("filterUnavailable", FilterUnavailable)
		cobra.AddTemplateFunc("inGroup", InGroup)
		cobra.AddTemplateFunc("unavailableReason", UnavailableReason)
	})
}

// SetupContextualHelp configures cmd to split its subcommands by what the
// workspace allows right now. load is called lazily, once per help render.
func SetupContextualHelp(cmd *cobra.Command, load func() *HelpContext) {
	mu.Lock()
	loader = load
	cachedContext = nil
	mu.Unlock()

	RegisterTemplateFuncs()
	cmd.SetUsageTemplate(ContextualUsageTemplate)

	// Every help request sees the workspace as it is now.
	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		ResetContext()
		defaultHelp(c, args)
	})
}
