package actions

import (
	"strings"

	"github.com/valksor/go-planbook/internal/storage"
)

// Action names one of the supported plan operations.
type Action string

const (
	ActionList         Action = "list"
	ActionGet          Action = "get"
	ActionCreate       Action = "create"
	ActionUpdate       Action = "update"
	ActionAddStep      Action = "add-step"
	ActionCompleteStep Action = "complete-step"
	ActionDelete       Action = "delete"
	ActionClaim        Action = "claim"
	ActionRelease      Action = "release"
	ActionExecute      Action = "execute"
)

// Actions lists every action in documentation order.
var Actions = []Action{
	ActionList, ActionGet, ActionCreate, ActionUpdate, ActionAddStep,
	ActionCompleteStep, ActionDelete, ActionClaim, ActionRelease, ActionExecute,
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Mutating reports whether a writes to the store.
func (a Action) Mutating() bool {
	return a != ActionList && a != ActionGet
}

// Request is a structured action request. Pointer fields distinguish "not
// supplied" from empty values for partial updates.
type Request struct {
	Action   Action   `json:"action"`
	ID       string   `json:"id,omitempty"`
	Title    *string  `json:"title,omitempty"`
	Status   *string  `json:"status,omitempty"`
	Body     *string  `json:"body,omitempty"`
	Steps    []string `json:"steps,omitempty"`
	StepText string   `json:"step_text,omitempty"`
	StepID   *int     `json:"step_id,omitempty"`
	Force    bool     `json:"force,omitempty"`
}

// String returns a pointer to s, for building requests.
func String(s string) *string { return &s }

// Int returns a pointer to n, for building requests.
func Int(n int) *int { return &n }

const displayPrefixAlt = "plan-"

// NormalizeID accepts "1a2b3c4d", "#1a2b3c4d" or "PLAN-1a2b3c4d" in any case and
// returns the canonical id.
func NormalizeID(raw string) (string, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return "", validationf("id is required")
	}
	id = strings.TrimPrefix(id, storage.DisplayPrefix)
	if len(id) >= len(displayPrefixAlt) && strings.EqualFold(id[:len(displayPrefixAlt)], displayPrefixAlt) {
		id = id[len(displayPrefixAlt):]
	}
	id = strings.ToLower(id)
	if !storage.ValidID(id) {
		return "", validationf("invalid plan id %q: want 8 hex digits", raw)
	}
	return id, nil
}
