package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
)

// recordHeader fixes the field order of the serialized header.
type recordHeader struct {
	ID                string `json:"id"`
	Title             string `json:"title"`
	Status            Status `json:"status"`
	CreatedAt         string `json:"created_at"`
	AssignedToSession string `json:"assigned_to_session,omitempty"`
	Steps             []Step `json:"steps"`
}

// ParsePlan decodes a record file. It never fails: content without a header becomes
// the body of an empty draft, and a header that is not valid JSON yields a plan
// populated with defaults. idFallback is used when the header carries no id.
func ParsePlan(content, idFallback string) *Plan {
	plan, rest := parseRecord(content, idFallback)
	plan.Body = normalizeBody(rest)
	return plan
}

// ParseHeader decodes only the header of a record file; Body is left empty.
func ParseHeader(content, idFallback string) *Plan {
	plan, _ := parseRecord(content, idFallback)
	return plan
}

// SerializePlan renders the canonical record form: a pretty-printed JSON header,
// then a blank line and the trimmed body when the body is not empty.
func SerializePlan(p *Plan) string {
	header := recordHeader{
		ID:                p.ID,
		Title:             p.Title,
		Status:            p.Status,
		CreatedAt:         p.CreatedAt,
		AssignedToSession: p.AssignedToSession,
		Steps:             p.Steps,
	}
	if header.Status == "" {
		header.Status = StatusDraft
	}
	if header.Steps == nil {
		header.Steps = []Step{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	// Encoding a struct of strings, bools and ints cannot fail.
	_ = enc.Encode(header)

	out := strings.TrimRight(buf.String(), "\n")
	if body := strings.TrimSpace(p.Body); body != "" {
		out += "\n\n" + body
	}
	return out + "\n"
}

func defaultPlan(id string) *Plan {
	return &Plan{
		ID:     id,
		Status: StatusDraft,
		Steps:  []Step{},
	}
}

// parseRecord splits content into a decoded header and the text after it.
func parseRecord(content, idFallback string) (*Plan, string) {
	trimmed := strings.TrimLeft(content, "\ufeff \t\r\n")
	if !strings.HasPrefix(trimmed, "{") {
		return defaultPlan(idFallback), content
	}

	end := headerEnd(trimmed)
	if end < 0 {
		return defaultPlan(idFallback), ""
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(trimmed[:end]), &raw); err != nil {
		return defaultPlan(idFallback), trimmed[end:]
	}

	return planFromHeader(raw, idFallback), trimmed[end:]
}

func planFromHeader(raw map[string]any, idFallback string) *Plan {
	plan := defaultPlan(idFallback)

	if id, ok := raw["id"].(string); ok && strings.TrimSpace(id) != "" {
		plan.ID = strings.TrimSpace(id)
	}
	if title, ok := raw["title"].(string); ok {
		plan.Title = title
	}
	if status, ok := raw["status"].(string); ok && Status(status).Valid() {
		plan.Status = Status(status)
	}
	if created, ok := raw["created_at"].(string); ok {
		plan.CreatedAt = created
	}
	if assigned, ok := raw["assigned_to_session"].(string); ok {
		plan.AssignedToSession = assigned
	}
	if steps, ok := raw["steps"].([]any); ok {
		for _, entry := range steps {
			if step, ok := stepFromHeader(entry); ok {
				plan.Steps = append(plan.Steps, step)
			}
		}
	}

	return plan
}

// stepFromHeader accepts only objects with a numeric integral id, a string text
// and a boolean done flag.
func stepFromHeader(entry any) (Step, bool) {
	obj, ok := entry.(map[string]any)
	if !ok {
		return Step{}, false
	}

	id, ok := obj["id"].(float64)
	if !ok || id != math.Trunc(id) || math.Abs(id) > math.MaxInt32 {
		return Step{}, false
	}
	text, ok := obj["text"].(string)
	if !ok {
		return Step{}, false
	}
	done, ok := obj["done"].(bool)
	if !ok {
		return Step{}, false
	}

	return Step{ID: int(id), Text: text, Done: done}, true
}

// normalizeBody drops leading blank lines and trailing whitespace.
func normalizeBody(rest string) string {
	for {
		nl := strings.IndexByte(rest, '\n')
		if nl < 0 {
			if strings.TrimSpace(rest) == "" {
				return ""
			}
			break
		}
		if strings.TrimSpace(rest[:nl]) != "" {
			break
		}
		rest = rest[nl+1:]
	}
	return strings.TrimRight(rest, " \t\r\n")
}
