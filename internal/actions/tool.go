package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// ToolName is the name the plan tool is registered under.
const ToolName = "plan"

// ToolDescription is shown to the automated caller.
const ToolDescription = "Manage persistent plans with ordered steps. " +
	"Use list/get to inspect, create/update/add-step/complete-step to edit, " +
	"claim/release to take or drop ownership, execute to start working on a plan, delete to remove it."

// ToolResponse is the structured reply to a tool call.
type ToolResponse struct {
	Content string `json:"content"`
	Details any    `json:"details"`
}

// ErrorDetails is the details payload of a failed call.
type ErrorDetails struct {
	Error string `json:"error"`
	Kind  Kind   `json:"kind"`
}

// Handle runs a decoded request and wraps the outcome as a tool response.
func (e *Engine) Handle(ctx context.Context, caller Caller, req Request) ToolResponse {
	res, err := e.Do(ctx, caller, req)
	if err != nil {
		ae := asError(err)
		return ToolResponse{
			Content: fmt.Sprintf("Error: %s", ae.Error()),
			Details: ErrorDetails{Error: ae.Error(), Kind: ae.Kind},
		}
	}
	return ToolResponse{Content: res.Summary, Details: res}
}

// HandleToolCall decodes a JSON request, runs it and encodes the response. It
// never fails: malformed input becomes a validation error response.
func (e *Engine) HandleToolCall(ctx context.Context, caller Caller, raw []byte) []byte {
	var req Request
	dec := json.NewDecoder(bytes.NewReader(raw))
	var resp ToolResponse
	if err := dec.Decode(&req); err != nil {
		msg := fmt.Sprintf("invalid request: %v", err)
		resp = ToolResponse{
			Content: "Error: " + msg,
			Details: ErrorDetails{Error: msg, Kind: KindValidation},
		}
	} else {
		resp = e.Handle(ctx, caller, req)
	}

	out, err := json.Marshal(resp)
	if err != nil {
		// Only reachable if a result holds an unencodable value.
		out, _ = json.Marshal(ToolResponse{
			Content: "Error: " + err.Error(),
			Details: ErrorDetails{Error: err.Error(), Kind: KindInternal},
		})
	}
	return out
}

// ToolSchema returns the JSON schema of the tool parameters.
func ToolSchema() map[string]any {
	names := make([]string, len(Actions))
	for i, a := range Actions {
		names[i] = string(a)
	}
	return map[string]any{
		"type":     "object",
		"required": []string{"action"},
		"properties": map[string]any{
			"action":    map[string]any{"type": "string", "enum": names},
			"id":        map[string]any{"type": "string", "description": "Plan id, e.g. 1a2b3c4d or #1a2b3c4d"},
			"title":     map[string]any{"type": "string"},
			"status":    map[string]any{"type": "string", "enum": []string{"draft", "active", "completed", "archived"}},
			"body":      map[string]any{"type": "string", "description": "Markdown notes"},
			"steps":     map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
			"step_text": map[string]any{"type": "string"},
			"step_id":   map[string]any{"type": "integer"},
			"force":     map[string]any{"type": "boolean", "description": "Override another session's assignment"},
		},
	}
}
