package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/session"
	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/template"
)

// Error codes for workspace validation
const (
	CodeConfigNotFound  = "CONFIG_NOT_FOUND"
	CodeYAMLSyntax      = "YAML_SYNTAX"
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeTokenInConfig   = "TOKEN_IN_CONFIG"
	CodeEnvSyntax       = "ENV_SYNTAX"
	CodePolicyMissing   = "POLICY_NOT_FOUND"
	CodePolicyInvalid   = "POLICY_INVALID"
	CodeTemplateInvalid = "TEMPLATE_INVALID"
	CodeSessionState    = "SESSION_STATE_INVALID"
	CodeSessionDangling = "SESSION_PLAN_MISSING"
)

// validateConfig returns the loaded config, or defaults when it cannot be read.
func (v *Validator) validateConfig(result *Result) *config.Config {
	path := config.Path(v.workDir)
	file := v.rel(path)

	if !config.Exists(v.workDir) {
		result.AddInfo(CodeConfigNotFound, "No workspace config found, using defaults", "", file)
		return config.NewDefault()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.AddError(CodeYAMLSyntax, fmt.Sprintf("Failed to read config: %s", err), "", file)
		return config.NewDefault()
	}

	// Decoded here rather than through config.Load so that syntax and value
	// problems are reported separately.
	cfg := config.NewDefault()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		result.AddErrorWithSuggestion(CodeYAMLSyntax, fmt.Sprintf("Failed to parse config: %s", err), "", file,
			"Fix the YAML or remove the file and run 'planbook init'")
		return config.NewDefault()
	}

	if err := cfg.Validate(); err != nil {
		result.AddError(CodeConfigInvalid, err.Error(), "", file)
	}

	if cfg.Publish.GitHub.Token != "" {
		result.AddWarningWithSuggestion(CodeTokenInConfig, "GitHub token stored in a tracked file",
			"publish.github.token", file, "Move it to .planbook/.env as PLANBOOK_GITHUB_TOKEN")
	}
	if cfg.Publish.GitLab.Token != "" {
		result.AddWarningWithSuggestion(CodeTokenInConfig, "GitLab token stored in a tracked file",
			"publish.gitlab.token", file, "Move it to .planbook/.env as PLANBOOK_GITLAB_TOKEN")
	}

	return cfg
}

func (v *Validator) validateEnv(result *Result) {
	if _, err := config.ReadDotEnv(v.workDir); err != nil {
		result.AddError(CodeEnvSyntax, fmt.Sprintf("Failed to parse: %s", err), "", v.rel(config.EnvPath(v.workDir)))
	}
}

func (v *Validator) validatePolicy(result *Result, cfg *config.Config) {
	path := cfg.ResolvePolicyFile(v.workDir)
	if path == "" {
		return
	}

	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		result.AddErrorWithSuggestion(CodePolicyMissing, "Configured policy file does not exist",
			"policy_file", v.rel(config.Path(v.workDir)), "Run 'planbook init --policy' or clear policy_file")
		return
	}

	if _, err := session.LoadPolicy(path); err != nil {
		result.AddError(CodePolicyInvalid, err.Error(), "", v.rel(path))
	}
}

func (v *Validator) validateTemplates(result *Result) {
	lib := template.NewLibrary(filepath.Join(v.planbookDir(), template.DirName))
	if _, err := lib.List(); err != nil {
		result.AddError(CodeTemplateInvalid, err.Error(), "", v.rel(lib.Dir()))
	}
}

// validateSessions reports unreadable session state and active plans that no
// longer exist.
func (v *Validator) validateSessions(result *Result) {
	dir := filepath.Join(v.planbookDir(), session.StateDirName)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		state, err := session.LoadState(path)
		if err != nil {
			result.AddWarningWithSuggestion(CodeSessionState, "Unreadable session state is ignored", "", v.rel(path),
				"Delete the file to reset the session")
			continue
		}
		if state.ActivePlanID == "" {
			continue
		}
		if _, err := os.Stat(storage.NewPaths(v.opts.StoreRoot).RecordPath(state.ActivePlanID)); errors.Is(err, fs.ErrNotExist) {
			result.AddWarning(CodeSessionDangling,
				fmt.Sprintf("Active plan #%s no longer exists", state.ActivePlanID), "active_plan_id", v.rel(path))
		}
	}
}
