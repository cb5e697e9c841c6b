package workflow

import "github.com/valksor/go-planbook/internal/storage"

// State is a plan status seen as a workflow state.
type State = storage.Status

const (
	StateDraft     = storage.StatusDraft
	StateActive    = storage.StatusActive
	StateCompleted = storage.StatusCompleted
	StateArchived  = storage.StatusArchived
)

// Event represents a workflow event that triggers transitions
type Event string

const (
	EventExecute  Event = "execute"  // Start or resume working on a plan
	EventComplete Event = "complete" // All work finished
	EventArchive  Event = "archive"  // Shelve without finishing
	EventReopen   Event = "reopen"   // Bring a done plan back to draft
	EventEdit     Event = "edit"     // Return to draft while keeping the plan open
)

// StateInfo holds metadata about a state
type StateInfo struct {
	Name        State
	Description string
	Terminal    bool // Only reopen leaves this state
}

// StateRegistry maps states to their metadata
var StateRegistry = map[State]StateInfo{
	StateDraft: {
		Name:        StateDraft,
		Description: "Plan written, not being worked on",
	},
	StateActive: {
		Name:        StateActive,
		Description: "Plan being executed",
	},
	StateCompleted: {
		Name:        StateCompleted,
		Description: "All work done",
		Terminal:    true,
	},
	StateArchived: {
		Name:        StateArchived,
		Description: "Shelved",
		Terminal:    true,
	},
}

// IsTerminal returns true if the state is terminal
func IsTerminal(s State) bool {
	info, ok := StateRegistry[s]
	return ok && info.Terminal
}

// WorkUnit is the plan a transition applies to, together with the caller.
type WorkUnit struct {
	Plan    *storage.Plan
	Session string
	Force   bool
}
