package module

import (
	"errors"
	"fmt"
)

// Phase identifies the lifecycle phase in which a module error occurred
type Phase string

const (
	PhaseRegister   Phase = "register"
	PhaseInitialize Phase = "initialize"
	PhaseMigrate    Phase = "migrate"
	PhaseRoutes     Phase = "routes"
	PhaseJobs       Phase = "jobs"
	PhaseShutdown   Phase = "shutdown"
)

// ErrNoLookup is returned when a context has no module lookup attached
var ErrNoLookup = errors.New("module lookup is not available")

// Error is the single error shape for module lifecycle failures
type Error struct {
	Module string
	Phase  Phase
	Err    error
}

// NewError wraps err as a module error for the given module and phase
func NewError(module string, phase Phase, err error) *Error {
	return &Error{Module: module, Phase: phase, Err: err}
}

// Errorf builds a module error from a format string
func Errorf(module string, phase Phase, format string, args ...any) *Error {
	return &Error{Module: module, Phase: phase, Err: fmt.Errorf(format, args...)}
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("module %q: %s phase: %v", e.Module, e.Phase, e.Err)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error { return e.Err }

// Is matches module errors by module name and phase
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Module == other.Module && e.Phase == other.Phase
}
