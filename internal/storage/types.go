package storage

import (
	"fmt"
	"regexp"
	"strings"
)

// Status is the lifecycle status of a plan.
type Status string

// Status constants.
const (
	StatusDraft     Status = "draft"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusActive, StatusDraft, StatusCompleted, StatusArchived}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusActive, StatusCompleted, StatusArchived:
		return true
	}
	return false
}

// IsDone reports whether s belongs to the terminal class (completed or archived).
func (s Status) IsDone() bool {
	return s == StatusCompleted || s == StatusArchived
}

// ParseStatus converts user input to a Status.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", fmt.Errorf("invalid status %q (want draft, active, completed or archived)", raw)
	}
	return s, nil
}

// Step is an ordered sub-task of a plan.
type Step struct {
	ID   int    `json:"id" yaml:"id"`
	Text string `json:"text" yaml:"text"`
	Done bool   `json:"done" yaml:"done"`
}

// Plan is a persisted task record. The header fields are stored as a JSON object
// at the top of <id>.md, Body is the free-form markdown that follows it.
type Plan struct {
	ID                string `json:"id" yaml:"id"`
	Title             string `json:"title" yaml:"title"`
	Status            Status `json:"status" yaml:"status"`
	CreatedAt         string `json:"created_at" yaml:"created_at"`
	AssignedToSession string `json:"assigned_to_session,omitempty" yaml:"assigned_to_session,omitempty"`
	Steps             []Step `json:"steps" yaml:"steps"`
	Body              string `json:"body,omitempty" yaml:"body,omitempty"`
}

// DisplayPrefix is the prefix used when showing plan ids to users.
const DisplayPrefix = "#"

// UntitledLabel is shown in place of an empty title.
const UntitledLabel = "(untitled)"

var idPattern = regexp.MustCompile(`^[0-9a-f]{8}$`)

// ValidID reports whether id has the canonical 8 lowercase hex digit form.
func ValidID(id string) bool {
	return idPattern.MatchString(id)
}

// DisplayID returns the user-facing form of a plan id.
func DisplayID(id string) string {
	return DisplayPrefix + id
}

// DisplayID returns the user-facing id.
func (p *Plan) DisplayID() string {
	return DisplayID(p.ID)
}

// DisplayTitle returns the title or the untitled fallback.
func (p *Plan) DisplayTitle() string {
	if strings.TrimSpace(p.Title) == "" {
		return UntitledLabel
	}
	return p.Title
}

// IsDone reports whether the plan is completed or archived.
func (p *Plan) IsDone() bool {
	return p.Status.IsDone()
}

// IsAssigned reports whether some session has claimed the plan.
func (p *Plan) IsAssigned() bool {
	return p.AssignedToSession != ""
}

// AssignedElsewhere reports whether the plan is claimed by a session other than sessionID.
func (p *Plan) AssignedElsewhere(sessionID string) bool {
	return p.AssignedToSession != "" && p.AssignedToSession != sessionID
}

// NextStepID returns max(existing ids)+1, or 1 for a plan without steps.
func (p *Plan) NextStepID() int {
	next := 1
	for _, s := range p.Steps {
		if s.ID >= next {
			next = s.ID + 1
		}
	}
	return next
}

// AddStep appends a pending step and returns it.
func (p *Plan) AddStep(text string) Step {
	step := Step{ID: p.NextStepID(), Text: text}
	p.Steps = append(p.Steps, step)
	return step
}

// FindStep returns a pointer into Steps for the given id.
func (p *Plan) FindStep(id int) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// RemainingSteps returns the steps that are not done, in order.
func (p *Plan) RemainingSteps() []Step {
	var out []Step
	for _, s := range p.Steps {
		if !s.Done {
			out = append(out, s)
		}
	}
	return out
}

// Progress returns the number of done steps and the total.
func (p *Plan) Progress() (done, total int) {
	for _, s := range p.Steps {
		if s.Done {
			done++
		}
	}
	return done, len(p.Steps)
}

// Clone returns a deep copy of the plan.
func (p *Plan) Clone() *Plan {
	cp := *p
	if p.Steps != nil {
		cp.Steps = make([]Step, len(p.Steps))
		copy(cp.Steps, p.Steps)
	}
	return &cp
}
