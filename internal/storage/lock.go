package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/valksor/go-planbook/internal/log"
)

const (
	// DefaultLockTTL is the age after which a lock is considered stale.
	DefaultLockTTL = 30 * time.Minute

	maxLockAttempts = 2
)

// ConfirmFunc asks the user a yes/no question.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

// SessionContext identifies the caller of a locking operation. A nil Confirm means
// nobody can answer prompts.
type SessionContext struct {
	SessionID string
	Confirm   ConfirmFunc
}

// Interactive reports whether the caller can confirm a lock steal.
func (sc SessionContext) Interactive() bool {
	return sc.Confirm != nil
}

// StalePolicy decides what a non-interactive caller does with a stale lock.
type StalePolicy int

const (
	// StaleReport fails with ErrStaleLock.
	StaleReport StalePolicy = iota
	// StaleBreak discards the stale lock and retries.
	StaleBreak
)

// LockManager serializes mutation of a single plan across processes.
type LockManager struct {
	leaser Leaser
	ttl    time.Duration
	stale  StalePolicy
	now    func() time.Time
	pid    int
}

// LockOption configures a LockManager.
type LockOption func(*LockManager)

// WithLockTTL overrides the staleness threshold.
func WithLockTTL(ttl time.Duration) LockOption {
	return func(m *LockManager) { m.ttl = ttl }
}

// WithStalePolicy sets the non-interactive stale lock behavior.
func WithStalePolicy(p StalePolicy) LockOption {
	return func(m *LockManager) { m.stale = p }
}

// WithLockClock overrides the clock used for staleness checks.
func WithLockClock(now func() time.Time) LockOption {
	return func(m *LockManager) { m.now = now }
}

// NewLockManager creates a lock manager on top of a leaser.
func NewLockManager(leaser Leaser, opts ...LockOption) *LockManager {
	m := &LockManager{
		leaser: leaser,
		ttl:    DefaultLockTTL,
		stale:  StaleReport,
		now:    time.Now,
		pid:    os.Getpid(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// TTL returns the staleness threshold.
func (m *LockManager) TTL() time.Duration {
	return m.ttl
}

// Acquire takes the lock for planID and returns a release callback. It makes at
// most two attempts; the second only happens after a stale lock was removed.
func (m *LockManager) Acquire(ctx context.Context, planID string, sc SessionContext) (func(), error) {
	for attempt := 1; attempt <= maxLockAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		lease := Lease{
			PlanID:    planID,
			PID:       m.pid,
			Session:   sc.SessionID,
			CreatedAt: m.now().UTC(),
		}
		ok, err := m.leaser.TryAcquire(ctx, lease)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockSystem, err)
		}
		if ok {
			log.Debug("lock acquired", log.PlanID(planID), log.Session(sc.SessionID))
			return m.releaser(planID), nil
		}

		held, err := m.leaser.Inspect(ctx, planID)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Released between our attempt and the inspection.
				continue
			}
			return nil, fmt.Errorf("%w: %w", ErrLockSystem, err)
		}

		age := m.now().Sub(held.ModTime)
		if age <= m.ttl {
			return nil, &LockedError{PlanID: planID, Session: held.Session, PID: held.PID, Age: age}
		}

		if attempt == maxLockAttempts {
			break
		}

		steal, err := m.decideSteal(ctx, planID, held, age, sc)
		if err != nil {
			return nil, err
		}
		if !steal {
			return nil, fmt.Errorf("%w: plan %s", ErrStillLocked, DisplayID(planID))
		}

		if err := m.leaser.Break(ctx, planID); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLockSystem, err)
		}
		log.Info("stale lock removed", log.PlanID(planID), "holder", held.Session, "age", age.Round(time.Second))
	}

	return nil, fmt.Errorf("%w: plan %s", ErrStillLocked, DisplayID(planID))
}

func (m *LockManager) decideSteal(ctx context.Context, planID string, held *LeaseInfo, age time.Duration, sc SessionContext) (bool, error) {
	if !sc.Interactive() {
		if m.stale == StaleBreak {
			return true, nil
		}
		return false, fmt.Errorf("%w: plan %s", ErrStaleLock, DisplayID(planID))
	}

	holder := held.Session
	if holder == "" {
		holder = fmt.Sprintf("process %d", held.PID)
	}
	prompt := fmt.Sprintf("Plan %s has been locked by %s for %s. Steal the lock?",
		DisplayID(planID), holder, age.Round(time.Minute))

	ok, err := sc.Confirm(ctx, prompt)
	if err != nil {
		// A dismissed prompt is a refusal.
		log.Debug("steal prompt dismissed", log.PlanID(planID), log.Err(err))
		return false, nil
	}
	return ok, nil
}

func (m *LockManager) releaser(planID string) func() {
	return func() {
		if err := m.leaser.Release(context.Background(), planID); err != nil {
			log.Debug("lock release failed", log.PlanID(planID), log.Err(err))
			return
		}
		log.Debug("lock released", log.PlanID(planID))
	}
}

// WithPlanLock runs fn while holding the lock for planID. The lock is released
// whether fn succeeds, fails or panics.
func (m *LockManager) WithPlanLock(ctx context.Context, planID string, sc SessionContext, fn func() error) error {
	release, err := m.Acquire(ctx, planID, sc)
	if err != nil {
		return err
	}
	defer release()

	return fn()
}
