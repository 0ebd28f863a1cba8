package pool

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// PanicError wraps the value a task panicked with, together with the
// stack trace of the panicking goroutine.
type PanicError struct {
	value      any
	stacktrace string
}

func (pe *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", pe.value)
}

// Value returns the recovered panic value
func (pe *PanicError) Value() any {
	return pe.value
}

// Stacktrace returns the stack of the panicking goroutine
func (pe *PanicError) Stacktrace() string {
	return pe.stacktrace
}

func newPanicError(v any) *PanicError {
	goerr := goerrors.Wrap(v, 3)

	return &PanicError{
		value:      v,
		stacktrace: string(goerr.Stack()),
	}
}
