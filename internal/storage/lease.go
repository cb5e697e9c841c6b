package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"
)

// Lease is a transient exclusivity token for one plan.
type Lease struct {
	PlanID    string    `json:"id"`
	PID       int       `json:"pid"`
	Session   string    `json:"session,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LeaseInfo is a lease observed in the backend together with the time the backend
// last wrote it, which is what staleness is measured from.
type LeaseInfo struct {
	Lease
	ModTime time.Time
}

// Leaser is the backend primitive behind the lock manager. A conditional-put key
// value store can implement it as well as the filesystem.
type Leaser interface {
	// TryAcquire creates the lease only if none exists. It returns false, nil when
	// another lease is present.
	TryAcquire(ctx context.Context, lease Lease) (bool, error)
	// Inspect returns the current lease. The error wraps fs.ErrNotExist when the
	// lease is gone.
	Inspect(ctx context.Context, planID string) (*LeaseInfo, error)
	// Break removes a lease regardless of owner.
	Break(ctx context.Context, planID string) error
	// Release removes the caller's lease.
	Release(ctx context.Context, planID string) error
}

// FileLeaser stores leases as <root>/<id>.lock files created with O_EXCL.
type FileLeaser struct {
	paths Paths
}

// NewFileLeaser returns a Leaser for the store at root.
func NewFileLeaser(root string) *FileLeaser {
	return &FileLeaser{paths: NewPaths(root)}
}

// TryAcquire writes the lock file exclusively.
func (l *FileLeaser) TryAcquire(_ context.Context, lease Lease) (bool, error) {
	if err := os.MkdirAll(l.paths.Root(), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}

	path := l.paths.LockPath(lease.PlanID)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return false, nil
		}
		return false, fmt.Errorf("create lock file: %w", err)
	}

	data, err := json.Marshal(lease)
	if err == nil {
		_, err = f.Write(append(data, '\n'))
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return false, fmt.Errorf("write lock file: %w", err)
	}

	return true, nil
}

// Inspect reads the lock file. Unparseable contents still yield the modification time.
func (l *FileLeaser) Inspect(_ context.Context, planID string) (*LeaseInfo, error) {
	path := l.paths.LockPath(planID)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat lock file: %w", err)
	}

	out := &LeaseInfo{
		Lease:   Lease{PlanID: planID},
		ModTime: info.ModTime(),
	}
	if data, err := os.ReadFile(path); err == nil {
		_ = json.Unmarshal(data, &out.Lease)
	}

	return out, nil
}

// Break deletes the lock file. A missing file is not an error.
func (l *FileLeaser) Break(_ context.Context, planID string) error {
	err := os.Remove(l.paths.LockPath(planID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

// Release deletes the lock file.
func (l *FileLeaser) Release(ctx context.Context, planID string) error {
	return l.Break(ctx, planID)
}
