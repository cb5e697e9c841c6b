package storage

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a plan record does not exist.
	ErrNotFound = errors.New("plan not found")

	// ErrLocked matches any *LockedError.
	ErrLocked = errors.New("plan is locked")

	// ErrStaleLock is returned when a stale lock is found and no one can confirm a steal.
	ErrStaleLock = errors.New("stale lock, rerun interactively to steal it")

	// ErrStillLocked is returned when the user declines to steal a stale lock.
	ErrStillLocked = errors.New("plan is still locked")

	// ErrLockSystem wraps unexpected filesystem failures while taking or inspecting a lock.
	ErrLockSystem = errors.New("lock system error")

	// ErrIDExhausted is returned when no free plan id could be generated.
	ErrIDExhausted = errors.New("could not allocate a unique plan id")

	errNotExpired = errors.New("plan no longer eligible for removal")
)

// LockedError reports a live lock held by another owner.
type LockedError struct {
	PlanID  string
	Session string
	PID     int
	Age     time.Duration
}

func (e *LockedError) Error() string {
	holder := e.Session
	if holder == "" {
		holder = fmt.Sprintf("process %d", e.PID)
	}
	return fmt.Sprintf("plan %s is locked by %s (for %s)", DisplayID(e.PlanID), holder, e.Age.Round(time.Second))
}

// Is lets errors.Is(err, ErrLocked) match.
func (e *LockedError) Is(target error) bool {
	return target == ErrLocked
}

// IsLockConflict reports whether err means another owner holds the lock.
func IsLockConflict(err error) bool {
	return errors.Is(err, ErrLocked) || errors.Is(err, ErrStaleLock) || errors.Is(err, ErrStillLocked)
}
