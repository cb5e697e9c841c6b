package workflow

import "context"

// GuardFunc is a predicate that must return true for a transition to occur
type GuardFunc func(ctx context.Context, wu *WorkUnit) bool

// GuardOwnedOrFree passes when the plan is unassigned, assigned to the caller,
// or the caller forces the transition.
func GuardOwnedOrFree(_ context.Context, wu *WorkUnit) bool {
	if wu == nil || wu.Plan == nil {
		return false
	}
	return wu.Force || !wu.Plan.AssignedElsewhere(wu.Session)
}

// EvaluateGuards checks if all guards pass for a transition
func EvaluateGuards(ctx context.Context, wu *WorkUnit, guards []GuardFunc) bool {
	for _, guard := range guards {
		if !guard(ctx, wu) {
			return false
		}
	}
	return true
}
