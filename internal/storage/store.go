package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/valksor/go-planbook/internal/log"
)

const maxIDAttempts = 10

// TimestampLayout is the ISO-8601 layout used for created_at. It sorts
// lexicographically in chronological order.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Store is a directory of plan records. Reads never lock; every mutation goes
// through the lock manager.
type Store struct {
	paths Paths
	locks *LockManager
	now   func() time.Time
	rand  io.Reader
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLockManager replaces the default filesystem lock manager.
func WithLockManager(m *LockManager) StoreOption {
	return func(s *Store) { s.locks = m }
}

// WithClock overrides the store clock (creation timestamps, GC cutoff).
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithRandom overrides the source used for id generation.
func WithRandom(r io.Reader) StoreOption {
	return func(s *Store) { s.rand = r }
}

// OpenStore returns a store rooted at root. The directory is created lazily on the
// first write.
func OpenStore(root string, opts ...StoreOption) *Store {
	s := &Store{
		paths: NewPaths(root),
		now:   time.Now,
		rand:  rand.Reader,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.locks == nil {
		s.locks = NewLockManager(NewFileLeaser(root), WithLockClock(s.now))
	}
	return s
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.paths.Root()
}

// Paths returns the path resolver for this store.
func (s *Store) Paths() Paths {
	return s.paths
}

// Locks returns the lock manager guarding this store.
func (s *Store) Locks() *LockManager {
	return s.locks
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Timestamp formats the current time as a created_at value.
func (s *Store) Timestamp() string {
	return s.now().UTC().Format(TimestampLayout)
}

// Settings loads settings.json for this store.
func (s *Store) Settings() Settings {
	return LoadSettings(s.paths.SettingsPath())
}

// ids returns the ids of every record file in the store. Markdown files whose
// name is not a plan id are ignored.
func (s *Store) ids() ([]string, error) {
	if _, err := os.Stat(s.Root()); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	matches, err := doublestar.Glob(os.DirFS(s.Root()), "*"+recordExt)
	if err != nil {
		return nil, fmt.Errorf("scan plan directory: %w", err)
	}

	ids := make([]string, 0, len(matches))
	for _, name := range matches {
		id := strings.TrimSuffix(name, recordExt)
		if !ValidID(id) {
			log.Debug("skip non-plan file", "file", name)
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// List returns every readable plan, headers only, sorted for display.
// Unreadable files are skipped.
func (s *Store) List(ctx context.Context) ([]*Plan, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}

	plans := make([]*Plan, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := os.ReadFile(s.paths.RecordPath(id))
		if err != nil {
			log.Debug("skip unreadable plan", log.PlanID(id), log.Err(err))
			continue
		}
		plan := ParseHeader(string(data), id)
		plan.ID = id
		plans = append(plans, plan)
	}

	SortPlans(plans)
	return plans, nil
}

// Get reads and fully parses one plan.
func (s *Store) Get(_ context.Context, id string) (*Plan, error) {
	data, err := os.ReadFile(s.paths.RecordPath(id))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, DisplayID(id))
		}
		return nil, fmt.Errorf("read plan %s: %w", DisplayID(id), err)
	}

	plan := ParsePlan(string(data), id)
	// The file name is authoritative for the id.
	plan.ID = id
	return plan, nil
}

// Exists reports whether a record file exists for id.
func (s *Store) Exists(id string) bool {
	_, err := os.Stat(s.paths.RecordPath(id))
	return err == nil
}

// Save writes a plan using a temp file and rename. The caller must hold the
// plan's lock.
func (s *Store) Save(p *Plan) error {
	if !ValidID(p.ID) {
		return fmt.Errorf("save plan: invalid id %q", p.ID)
	}
	if err := os.MkdirAll(s.Root(), 0o755); err != nil {
		return fmt.Errorf("create plan directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.Root(), "."+p.ID+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = tmp.WriteString(SerializePlan(p))
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write plan %s: %w", p.DisplayID(), err)
	}

	if err := os.Rename(tmpPath, s.paths.RecordPath(p.ID)); err != nil {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			log.Warn("failed to clean up temp file after rename error", "path", tmpPath, log.Err(removeErr))
		}
		return fmt.Errorf("save plan %s: %w", p.DisplayID(), err)
	}

	return nil
}

// Delete removes a record file. The caller must hold the plan's lock.
func (s *Store) Delete(id string) error {
	err := os.Remove(s.paths.RecordPath(id))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, DisplayID(id))
	}
	if err != nil {
		return fmt.Errorf("delete plan %s: %w", DisplayID(id), err)
	}
	return nil
}

// NewID generates a random id not used by any record in the store.
func (s *Store) NewID() (string, error) {
	buf := make([]byte, 4)
	for range maxIDAttempts {
		if _, err := io.ReadFull(s.rand, buf); err != nil {
			return "", fmt.Errorf("generate plan id: %w", err)
		}
		id := hex.EncodeToString(buf)
		if !s.Exists(id) {
			return id, nil
		}
		log.Debug("plan id collision", log.PlanID(id))
	}
	return "", ErrIDExhausted
}

// Create allocates a new id, builds the plan with it and writes it under the
// new plan's lock.
func (s *Store) Create(ctx context.Context, sc SessionContext, build func(id string) *Plan) (*Plan, error) {
	id, err := s.NewID()
	if err != nil {
		return nil, err
	}

	var plan *Plan
	err = s.locks.WithPlanLock(ctx, id, sc, func() error {
		if s.Exists(id) {
			return fmt.Errorf("%w: %s was created concurrently", ErrIDExhausted, DisplayID(id))
		}
		plan = build(id)
		plan.ID = id
		return s.Save(plan)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Mutate reads a plan under its lock, applies fn and writes the result. Nothing is
// written when fn returns an error.
func (s *Store) Mutate(ctx context.Context, id string, sc SessionContext, fn func(*Plan) error) (*Plan, error) {
	var plan *Plan
	err := s.locks.WithPlanLock(ctx, id, sc, func() error {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(current); err != nil {
			return err
		}
		plan = current
		return s.Save(current)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}

// Remove deletes a plan under its lock after check approves the current record.
func (s *Store) Remove(ctx context.Context, id string, sc SessionContext, check func(*Plan) error) (*Plan, error) {
	var plan *Plan
	err := s.locks.WithPlanLock(ctx, id, sc, func() error {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(current); err != nil {
				return err
			}
		}
		plan = current
		return s.Delete(id)
	})
	if err != nil {
		return nil, err
	}
	return plan, nil
}
