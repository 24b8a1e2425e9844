package operation

import (
	"errors"
	"fmt"
)

var (
	// ErrUndeterminedDuration is returned by duration queries when the start or end of the
	// operation has not been recorded.
	ErrUndeterminedDuration = errors.New("unable to calculate duration: operation start or end is not set")

	// ErrNoTransaction is returned by CurrentTransaction when no transaction was started.
	ErrNoTransaction = errors.New("no transaction has been started")
)

// InvocationError is a wrapper produced when a handler is invoked indirectly. It carries no
// information of its own; UnwrapCause strips it before the cause is recorded.
type InvocationError struct {
	Target string
	Err    error
}

// NewInvocationError wraps err as the failure of invoking target.
func NewInvocationError(target string, err error) error {
	return &InvocationError{Target: target, Err: err}
}

func (e *InvocationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("invocation of %s failed", e.Target)
	}

	return fmt.Sprintf("invocation of %s failed: %v", e.Target, e.Err)
}

func (e *InvocationError) Unwrap() error {
	return e.Err
}

// UnwrapCause strips InvocationError wrappers from err until it reaches an error of another kind.
// Other wrapping is left untouched.
func UnwrapCause(err error) error {
	for {
		inv, ok := err.(*InvocationError) //nolint:errorlint // only the outermost wrapper is inspected
		if !ok || inv.Err == nil {
			return err
		}
		err = inv.Err
	}
}
