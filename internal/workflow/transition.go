package workflow

// Transition defines a state transition
type Transition struct {
	From    State
	Event   Event
	To      State
	Guards  []GuardFunc
	Effects []EffectType
}

// TransitionKey uniquely identifies a transition
type TransitionKey struct {
	From  State
	Event Event
}

// TransitionTable maps (state, event) pairs to transitions:
//
//	draft -> active -> completed | archived
//	completed | archived -> draft (reopen)
//	active -> active (re-execute)
var TransitionTable = map[TransitionKey][]Transition{
	// === Execute ===
	{StateDraft, EventExecute}: {
		{From: StateDraft, Event: EventExecute, To: StateActive, Guards: []GuardFunc{GuardOwnedOrFree}, Effects: []EffectType{EffectClaim}},
	},
	{StateActive, EventExecute}: {
		{From: StateActive, Event: EventExecute, To: StateActive, Guards: []GuardFunc{GuardOwnedOrFree}, Effects: []EffectType{EffectClaim}},
	},

	// === Finish ===
	{StateDraft, EventComplete}: {
		{From: StateDraft, Event: EventComplete, To: StateCompleted},
	},
	{StateActive, EventComplete}: {
		{From: StateActive, Event: EventComplete, To: StateCompleted},
	},
	{StateDraft, EventArchive}: {
		{From: StateDraft, Event: EventArchive, To: StateArchived},
	},
	{StateActive, EventArchive}: {
		{From: StateActive, Event: EventArchive, To: StateArchived},
	},
	{StateCompleted, EventArchive}: {
		{From: StateCompleted, Event: EventArchive, To: StateArchived},
	},

	// === Back to draft ===
	{StateDraft, EventEdit}: {
		{From: StateDraft, Event: EventEdit, To: StateDraft},
	},
	{StateActive, EventEdit}: {
		{From: StateActive, Event: EventEdit, To: StateDraft},
	},
	{StateCompleted, EventReopen}: {
		{From: StateCompleted, Event: EventReopen, To: StateDraft},
	},
	{StateArchived, EventReopen}: {
		{From: StateArchived, Event: EventReopen, To: StateDraft},
	},
}

// GetTransitions returns possible transitions for a state/event pair
func GetTransitions(from State, event Event) []Transition {
	key := TransitionKey{From: from, Event: event}
	return TransitionTable[key]
}

// EventFor finds the event that moves a plan from one status to another. It is
// used for direct status patches. ok is false when no such transition exists; a
// patch to the current status is always ok and returns an empty event.
func EventFor(from, to State) (Event, bool) {
	if from == to {
		return "", true
	}
	for key, transitions := range TransitionTable {
		if key.From != from {
			continue
		}
		for _, t := range transitions {
			if t.To == to {
				return t.Event, true
			}
		}
	}
	return "", false
}
