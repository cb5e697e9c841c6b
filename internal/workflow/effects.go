package workflow

import "context"

// EffectFunc is a side effect executed during a transition. Effects mutate the
// in-memory plan; persisting it is the caller's job.
type EffectFunc func(ctx context.Context, wu *WorkUnit) error

// EffectType identifies effect categories
type EffectType string

const (
	EffectClaim EffectType = "claim" // Assign the plan to the calling session
)

// EffectRegistry allows registering effect handlers
type EffectRegistry struct {
	handlers map[EffectType]EffectFunc
}

// NewEffectRegistry creates a registry with the built-in effects.
func NewEffectRegistry() *EffectRegistry {
	r := &EffectRegistry{
		handlers: make(map[EffectType]EffectFunc),
	}
	r.Register(EffectClaim, claimEffect)
	return r
}

// NoEffects returns an empty registry. Direct status patches use it so that
// only the status field changes.
func NoEffects() *EffectRegistry {
	return &EffectRegistry{handlers: make(map[EffectType]EffectFunc)}
}

// Register adds or replaces an effect handler
func (r *EffectRegistry) Register(effectType EffectType, handler EffectFunc) {
	r.handlers[effectType] = handler
}

// Execute runs an effect handler
func (r *EffectRegistry) Execute(ctx context.Context, effectType EffectType, wu *WorkUnit) error {
	handler, ok := r.handlers[effectType]
	if !ok {
		return nil // No handler registered, skip
	}
	return handler(ctx, wu)
}

func claimEffect(_ context.Context, wu *WorkUnit) error {
	if wu.Plan != nil && wu.Session != "" {
		wu.Plan.AssignedToSession = wu.Session
	}
	return nil
}
