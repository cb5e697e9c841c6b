package help

// CommandRule defines availability criteria for a command.
type CommandRule struct {
	// Available returns true if the command can be run in the given context.
	Available func(*HelpContext) bool
	// Reason explains why the command is unavailable (shown in help).
	Reason string
}

// commandRules maps command names to their availability rules. Commands not
// listed are always available.
var commandRules = map[string]CommandRule{
	"show":    {Available: needsPlans, Reason: "no plans yet"},
	"update":  {Available: needsPlans, Reason: "no plans yet"},
	"delete":  {Available: needsPlans, Reason: "no plans yet"},
	"step":    {Available: needsPlans, Reason: "no plans yet"},
	"release": {Available: needsPlans, Reason: "no plans yet"},
	"publish": {Available: needsPlans, Reason: "no plans yet"},
	"pick":    {Available: needsPlans, Reason: "no plans yet"},

	"claim":   {Available: needsOpenPlans, Reason: "no open plans"},
	"execute": {Available: needsOpenPlans, Reason: "no open plans"},
}

func needsPlans(ctx *HelpContext) bool {
	return ctx.PlanCount > 0
}

func needsOpenPlans(ctx *HelpContext) bool {
	return ctx.OpenPlans > 0
}

// IsAvailable checks if a command is available in the given context.
func IsAvailable(cmdName string, ctx *HelpContext) bool {
	rule, ok := commandRules[cmdName]
	if !ok {
		return true
	}
	return rule.Available(ctx)
}

// GetReason returns the reason why a command is unavailable.
func GetReason(cmdName string) string {
	return commandRules[cmdName].Reason
}
