package validation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Severity indicates the importance of a validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding represents a single validation issue
type Finding struct {
	Severity   Severity `json:"severity"`
	Code       string   `json:"code"`                 // e.g., "PLAN_HEADER_INVALID"
	Message    string   `json:"message"`              // Human-readable message
	Path       string   `json:"path,omitempty"`       // Field path, e.g., "ui.format"
	File       string   `json:"file,omitempty"`       // Source file
	Suggestion string   `json:"suggestion,omitempty"` // How to fix
}

// Result holds all validation findings
type Result struct {
	Valid    bool      `json:"valid"`
	Errors   int       `json:"errors"`
	Warnings int       `json:"warnings"`
	Findings []Finding `json:"findings"`
}

// NewResult creates an empty validation result
func NewResult() *Result {
	return &Result{
		Valid:    true,
		Findings: make([]Finding, 0),
	}
}

// AddError adds an error finding
func (r *Result) AddError(code, message, path, file string) {
	r.add(Finding{Severity: SeverityError, Code: code, Message: message, Path: path, File: file})
}

// AddErrorWithSuggestion adds an error finding with a fix suggestion
func (r *Result) AddErrorWithSuggestion(code, message, path, file, suggestion string) {
	r.add(Finding{Severity: SeverityError, Code: code, Message: message, Path: path, File: file, Suggestion: suggestion})
}

// AddWarning adds a warning finding
func (r *Result) AddWarning(code, message, path, file string) {
	r.add(Finding{Severity: SeverityWarning, Code: code, Message: message, Path: path, File: file})
}

// AddWarningWithSuggestion adds a warning finding with a fix suggestion
func (r *Result) AddWarningWithSuggestion(code, message, path, file, suggestion string) {
	r.add(Finding{Severity: SeverityWarning, Code: code, Message: message, Path: path, File: file, Suggestion: suggestion})
}

// AddInfo adds an informational finding
func (r *Result) AddInfo(code, message, path, file string) {
	r.add(Finding{Severity: SeverityInfo, Code: code, Message: message, Path: path, File: file})
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)

	switch f.Severity {
	case SeverityError:
		r.Errors++
		r.Valid = false
	case SeverityWarning:
		r.Warnings++
	}
}

// Merge combines another result into this one
func (r *Result) Merge(other *Result) {
	if other == nil {
		return
	}
	r.Findings = append(r.Findings, other.Findings...)
	r.Errors += other.Errors
	r.Warnings += other.Warnings
	if other.Errors > 0 {
		r.Valid = false
	}
}

// Has reports whether a finding with code was recorded.
func (r *Result) Has(code string) bool {
	for _, f := range r.Findings {
		if f.Code == code {
			return true
		}
	}
	return false
}

// Format returns the result in the specified format
func (r *Result) Format(format string) string {
	switch format {
	case "json":
		return r.formatJSON()
	default:
		return r.formatText()
	}
}

func (r *Result) formatJSON() string {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf(`{"error": "failed to marshal result: %s"}`, err)
	}
	return string(data) + "\n"
}

func (r *Result) formatText() string {
	var sb strings.Builder

	byFile := make(map[string][]Finding)
	for _, f := range r.Findings {
		file := f.File
		if file == "" {
			file = "(general)"
		}
		byFile[file] = append(byFile[file], f)
	}

	files := make([]string, 0, len(byFile))
	for file := range byFile {
		files = append(files, file)
	}
	sort.Strings(files)

	for _, file := range files {
		fmt.Fprintf(&sb, "%s:\n", file)
		for _, f := range byFile[file] {
			where := ""
			if f.Path != "" {
				where = " " + f.Path + ":"
			}
			fmt.Fprintf(&sb, "  %s [%s]%s %s\n", strings.ToUpper(string(f.Severity)), f.Code, where, f.Message)
			if f.Suggestion != "" {
				fmt.Fprintf(&sb, "    Suggestion: %s\n", f.Suggestion)
			}
		}
		sb.WriteString("\n")
	}

	switch {
	case r.Errors == 0 && r.Warnings == 0:
		sb.WriteString("Workspace is VALID\n")
	case r.Valid:
		fmt.Fprintf(&sb, "Summary: %d error(s), %d warning(s)\n", r.Errors, r.Warnings)
		sb.WriteString("Workspace is VALID (with warnings)\n")
	default:
		fmt.Fprintf(&sb, "Summary: %d error(s), %d warning(s)\n", r.Errors, r.Warnings)
		sb.WriteString("Workspace is INVALID\n")
	}

	return sb.String()
}
