package driver

import "errors"

// ErrNotFound is returned by FindOrFail when no row matches the query
// (spec.md §7).
var ErrNotFound = errors.New("driver: not found")

// ErrInvalidType is returned by SyncSchema when a Model declares a property
// type with no backend mapping (spec.md §4.4 step 2, §7).
var ErrInvalidType = errors.New("driver: invalid property type")

// ErrChangeLogUnsupported reports that a backend has no change log. No
// driver in this package returns it: PlainMemoryDriver has no listener
// methods at all, so a type assertion to CDCDriver fails instead.
var ErrChangeLogUnsupported = errors.New("driver: change log not supported by this backend")

// BackendError wraps an error returned verbatim by a driver's underlying
// storage, per spec.md §7 propagation policy ("BackendError — propagated
// from the driver verbatim").
type BackendError struct {
	Err error
	Op  string
}

func (e *BackendError) Error() string {
	return "driver: " + e.Op + ": " + e.Err.Error()
}

func (e *BackendError) Unwrap() error { return e.Err }

// WrapBackend wraps err (if non-nil) from operation op into a *BackendError.
// Returns nil if err is nil.
func WrapBackend(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}
