package interpreter

import "fmt"

// AccessError reports a strict-mode read of undeclared state, a call to an
// unregistered function, or selection of an option that is out of range or
// disabled.
type AccessError struct {
	Message string
}

func (e *AccessError) Error() string { return "interpreter: " + e.Message }

// StateError reports a lifecycle violation: a stale or reused continuation,
// resuming without a restored snapshot, or a snapshot that does not fit the
// script.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return "interpreter: " + e.Message }

func accessErrf(format string, args ...any) error {
	return &AccessError{Message: fmt.Sprintf(format, args...)}
}

func stateErrf(format string, args ...any) error {
	return &StateError{Message: fmt.Sprintf(format, args...)}
}
