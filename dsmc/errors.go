package dsmc

import (
	"errors"
	"fmt"
)

// ErrLoad is matched by every LoadError.
var ErrLoad = errors.New("dsmc library unavailable")

// ErrUnsupportedPlatform is returned by Open on platforms without the vendor library.
var ErrUnsupportedPlatform = errors.New("vendor library is only available on windows")

// StatusError represents a non-zero status returned by a native entry.
// The vendor code is kept verbatim for diagnosis.
type StatusError struct {
	// Operation is the entry that failed
	Operation string

	// Status is the raw code returned by the library
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s failed: %s (0x%08X)", e.Operation, getStatusName(e.Status), e.Status.Code())
}

// IsStatusError returns true if err is or wraps a StatusError.
func IsStatusError(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// LoadError indicates that the vendor library or its factory could not be used.
// The session never starts when this is returned.
type LoadError struct {
	// Library is the library that was being loaded
	Library string

	// Step describes what failed: loading, resolving the factory or calling it
	Step string

	// Err is the underlying cause
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s: %v\nmake sure you have the SDK/FTDI drivers installed", e.Library, e.Step, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is reports ErrLoad for every LoadError.
func (e *LoadError) Is(target error) bool {
	return target == ErrLoad
}

// Check converts a native status into an error.
// It returns nil for StatusSuccess and a *StatusError naming op otherwise.
func Check(op string, st Status) error {
	if st == StatusSuccess {
		return nil
	}
	return &StatusError{Operation: op, Status: st}
}

// getStatusName returns a human-readable name for a status code.
func getStatusName(st Status) string {
	switch st {
	case StatusSuccess:
		return "success"
	case StatusNotImpl:
		return "not implemented"
	case StatusPointer:
		return "invalid pointer"
	case StatusAbort:
		return "operation aborted"
	case StatusFail:
		return "unspecified failure"
	case StatusUnexpected:
		return "unexpected call"
	case StatusAccessDenied:
		return "access denied"
	case StatusHandle:
		return "invalid handle"
	case StatusOutOfMemory:
		return "out of memory"
	case StatusInvalidArg:
		return "invalid argument"
	default:
		return "vendor status"
	}
}
