// Package validation checks a planbook workspace for problems the lenient
// readers would otherwise paper over: unparseable config, plan records that
// load with default values, and locks left behind by dead processes.
package validation

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/valksor/go-planbook/internal/config"
	"github.com/valksor/go-planbook/internal/storage"
)

// Options configures validation behavior.
type Options struct {
	Strict bool // Treat warnings as errors

	// StoreRoot overrides the plan store directory.
	StoreRoot string
	// LockTTL is the age after which a lock counts as stale.
	LockTTL time.Duration
	// Now is the clock used for lock age.
	Now func() time.Time
}

// Validator validates one workspace.
type Validator struct {
	workDir string
	opts    Options
}

// New creates a validator for the workspace rooted at workDir.
func New(workDir string, opts Options) *Validator {
	if opts.StoreRoot == "" {
		opts.StoreRoot = storage.ResolveRoot(workDir, os.Getenv)
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = storage.DefaultLockTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Validator{workDir: workDir, opts: opts}
}

// Validate runs every check and returns the combined result.
func (v *Validator) Validate(ctx context.Context) (*Result, error) {
	result := NewResult()

	cfg := v.validateConfig(result)
	v.validateEnv(result)
	v.validatePolicy(result, cfg)
	v.validateTemplates(result)

	store, err := v.validateStore(ctx)
	if err != nil {
		return nil, err
	}
	result.Merge(store)

	v.validateSessions(result)

	// In strict mode, warnings make the workspace invalid
	if v.opts.Strict && result.Warnings > 0 {
		result.Valid = false
	}

	return result, nil
}

func (v *Validator) rel(path string) string {
	if r, err := filepath.Rel(v.workDir, path); err == nil {
		return r
	}
	return path
}

func (v *Validator) planbookDir() string {
	return config.Dir(v.workDir)
}
