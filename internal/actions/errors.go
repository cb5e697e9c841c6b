package actions

import (
	"errors"
	"fmt"

	"github.com/valksor/go-planbook/internal/storage"
	"github.com/valksor/go-planbook/internal/workflow"
)

// Kind classifies action failures.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindLock       Kind = "lock"
	KindInternal   Kind = "internal"
)

// Error is the failure of a single action. It is always reported as part of a
// structured result, never as a crash.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Msg: fmt.Sprintf(format, args...)}
}

func conflictf(format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Msg: fmt.Sprintf(format, args...)}
}

func notFound(id string) *Error {
	return &Error{Kind: KindNotFound, Msg: fmt.Sprintf("plan %s not found", storage.DisplayID(id)), Err: storage.ErrNotFound}
}

// KindOf classifies any error returned by the engine or the layers below it.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return KindNotFound
	case storage.IsLockConflict(err):
		return KindConflict
	case errors.Is(err, storage.ErrLockSystem):
		return KindLock
	case errors.Is(err, workflow.ErrNoTransition), errors.Is(err, workflow.ErrGuardFailed):
		return KindConflict
	default:
		return KindInternal
	}
}

// IsKind reports whether err is an action failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// asError wraps err into an *Error, keeping an existing classification.
func asError(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindOf(err), Err: err}
}
