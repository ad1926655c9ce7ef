package reconciler

import (
	"errors"
	"fmt"
)

var (
	ErrNotInRender     = errors.New("reconciler: hook called outside a component evaluation")
	ErrTooManyHooks    = errors.New("reconciler: rendered more hooks than during the previous render")
	ErrTooFewHooks     = errors.New("reconciler: rendered fewer hooks than during the previous render")
	ErrHookKindChanged = errors.New("reconciler: hook order changed between renders")
	ErrNoProvider      = errors.New("reconciler: required context has no provider")
	ErrInvalidChild    = errors.New("reconciler: invalid child")
	ErrInvalidRef      = errors.New("reconciler: ref must be a *RefObject or a func(any)")
)

// HookError is a usage error raised inside a component evaluation. It aborts
// the render attempt.
type HookError struct {
	Component string
	Index     int
	Err       error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s (component %s, hook #%d)", e.Err, e.Component, e.Index)
}

func (e *HookError) Unwrap() error { return e.Err }

// ComponentError wraps a non suspend error returned or raised by a component.
type ComponentError struct {
	Component string
	Err       error
}

func (e *ComponentError) Error() string {
	return fmt.Sprintf("reconciler: component %s failed: %s", e.Component, e.Err)
}

func (e *ComponentError) Unwrap() error { return e.Err }

// SuspendError is the control value a component returns while it waits on
// Wakeable. It never reaches the caller of the reconciler.
type SuspendError struct {
	Wakeable Wakeable
}

func (e *SuspendError) Error() string { return "reconciler: component suspended" }

// IsSuspend reports whether err carries a suspend signal.
func IsSuspend(err error) bool {
	var se *SuspendError
	return errors.As(err, &se)
}
