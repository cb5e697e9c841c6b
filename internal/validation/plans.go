package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/valksor/go-planbook/internal/storage"
)

// Error codes for plan store validation
const (
	CodeStoreNotFound    = "STORE_NOT_FOUND"
	CodeSettingsInvalid  = "SETTINGS_INVALID"
	CodePlanUnreadable   = "PLAN_UNREADABLE"
	CodePlanHeader       = "PLAN_HEADER_INVALID"
	CodePlanIDMismatch   = "PLAN_ID_MISMATCH"
	CodePlanStatus       = "PLAN_STATUS_INVALID"
	CodePlanStepDropped  = "PLAN_STEP_INVALID"
	CodePlanStepDupID    = "PLAN_STEP_DUPLICATE_ID"
	CodePlanBadFileName  = "PLAN_FILE_NAME"
	CodeLockStale        = "LOCK_STALE"
	CodeLockOrphan       = "LOCK_ORPHANED"
	CodeTempFileLeftover = "TEMP_FILE_LEFTOVER"
)

// validateStore checks settings.json, every record file and every lock file.
func (v *Validator) validateStore(ctx context.Context) (*Result, error) {
	result := NewResult()
	root := v.opts.StoreRoot

	if _, err := os.Stat(root); errors.Is(err, fs.ErrNotExist) {
		result.AddInfo(CodeStoreNotFound, "No plans yet", "", v.rel(root))
		return result, nil
	}

	paths := storage.NewPaths(root)
	v.validateSettings(result, paths.SettingsPath())

	fsys := os.DirFS(root)
	records, err := doublestar.Glob(fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("scan plan directory: %w", err)
	}
	for _, name := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v.validateRecord(result, filepath.Join(root, name), strings.TrimSuffix(name, ".md"))
	}

	locks, err := doublestar.Glob(fsys, "*.lock")
	if err != nil {
		return nil, fmt.Errorf("scan lock files: %w", err)
	}
	leaser := storage.NewFileLeaser(root)
	for _, name := range locks {
		id := strings.TrimSuffix(name, ".lock")
		file := v.rel(filepath.Join(root, name))

		info, err := leaser.Inspect(ctx, id)
		if err != nil {
			continue
		}
		if age := v.opts.Now().Sub(info.ModTime); age > v.opts.LockTTL {
			holder := info.Session
			if holder == "" {
				holder = fmt.Sprintf("process %d", info.PID)
			}
			result.AddWarningWithSuggestion(CodeLockStale,
				fmt.Sprintf("Lock held by %s for %s", holder, age.Round(time.Minute)), "", file,
				"Rerun the blocked command interactively or with --steal-stale")
		}
		if _, err := os.Stat(paths.RecordPath(id)); errors.Is(err, fs.ErrNotExist) {
			result.AddInfo(CodeLockOrphan, "Lock for a plan that does not exist", "", file)
		}
	}

	temps, err := doublestar.Glob(fsys, ".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("scan temp files: %w", err)
	}
	for _, name := range temps {
		result.AddWarningWithSuggestion(CodeTempFileLeftover, "Leftover from an interrupted save", "",
			v.rel(filepath.Join(root, name)), "Delete the file")
	}

	return result, nil
}

func (v *Validator) validateSettings(result *Result, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	file := v.rel(path)

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		result.AddWarningWithSuggestion(CodeSettingsInvalid, "Malformed settings are ignored, defaults apply", "", file,
			"Run 'planbook gc --days N' to rewrite the file")
		return
	}
	if gc, ok := raw["gc"]; ok {
		if _, isBool := gc.(bool); !isBool {
			result.AddWarning(CodeSettingsInvalid, "Must be a boolean, default applies", "gc", file)
		}
	}
	if days, ok := raw["gcDays"]; ok {
		if n, isNum := days.(float64); !isNum || n < 0 || n != float64(int(n)) {
			result.AddWarning(CodeSettingsInvalid, "Must be a non-negative integer, default applies", "gcDays", file)
		}
	}
}

// validateRecord reports what the lenient plan reader silently drops or
// replaces with defaults.
func (v *Validator) validateRecord(result *Result, path, id string) {
	file := v.rel(path)

	if !storage.ValidID(id) {
		result.AddWarning(CodePlanBadFileName, "File name is not a plan id, the file is ignored by lookups", "", file)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.AddError(CodePlanUnreadable, err.Error(), "", file)
		return
	}

	content := bytes.TrimLeft(data, "\ufeff \t\r\n")
	var header map[string]any
	if len(content) == 0 || content[0] != '{' {
		result.AddWarningWithSuggestion(CodePlanHeader, "Missing JSON header, plan loads as an untitled draft", "", file,
			"Recreate the plan with 'planbook create'")
		return
	}
	if err := json.NewDecoder(bytes.NewReader(content)).Decode(&header); err != nil {
		result.AddWarningWithSuggestion(CodePlanHeader, fmt.Sprintf("Unparseable JSON header: %s", err), "", file,
			"Fix the header by hand or recreate the plan")
		return
	}

	if headerID, ok := header["id"].(string); ok && headerID != "" && headerID != id {
		result.AddWarning(CodePlanIDMismatch,
			fmt.Sprintf("Header id %q differs from the file name, the file name wins", headerID), "id", file)
	}

	if raw, ok := header["status"]; ok {
		status, isString := raw.(string)
		if !isString || !storage.Status(status).Valid() {
			result.AddWarning(CodePlanStatus, fmt.Sprintf("Unknown status %v, plan loads as draft", raw), "status", file)
		}
	}

	parsed := storage.ParsePlan(string(data), id)
	if rawSteps, ok := header["steps"].([]any); ok && len(rawSteps) != len(parsed.Steps) {
		result.AddWarning(CodePlanStepDropped,
			fmt.Sprintf("%d malformed step(s) are ignored", len(rawSteps)-len(parsed.Steps)), "steps", file)
	}

	seen := make(map[int]bool, len(parsed.Steps))
	for _, step := range parsed.Steps {
		if seen[step.ID] {
			result.AddWarning(CodePlanStepDupID,
				fmt.Sprintf("Step id %d appears more than once, step commands act on the first", step.ID), "steps", file)
			continue
		}
		seen[step.ID] = true
	}
}
