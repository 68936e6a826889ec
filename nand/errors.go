package nand

import (
	"errors"
	"fmt"
)

// ErrOutOfRange is matched by every OutOfRangeError.
var ErrOutOfRange = errors.New("sector range exceeds NAND size")

// InvalidVersionError indicates that the vendor library implements an
// unsupported interface version. The session must not proceed.
type InvalidVersionError struct {
	Got  int32
	Want int32
}

func (e *InvalidVersionError) Error() string {
	return fmt.Sprintf("this implementation is only compatible with interface version %d, got: %d", e.Want, e.Got)
}

// AlignmentError indicates that a length or offset is not a whole number of sectors.
type AlignmentError struct {
	// Field is "length" or "offset"
	Field string

	Value     int64
	BlockSize int
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("alignment error: %s %d is not a multiple of the %d-byte block size",
		e.Field, e.Value, e.BlockSize)
}

// OutOfRangeError indicates that a sector range does not fit the address space.
// It is detected before any native call.
type OutOfRangeError struct {
	Start int64
	Count int64
	Total int64
}

func (e *OutOfRangeError) Error() string {
	if e.Start < 0 {
		return fmt.Sprintf("start offset is negative (device has %d sectors)", e.Total)
	}
	if e.Start >= e.Total {
		return fmt.Sprintf("start sector %d exceeds NAND size (%d sectors)", e.Start, e.Total)
	}
	return fmt.Sprintf("operation would exceed NAND size: sectors %d-%d, device has %d sectors",
		e.Start, e.Start+e.Count-1, e.Total)
}

// Is reports ErrOutOfRange for every OutOfRangeError.
func (e *OutOfRangeError) Is(target error) bool {
	return target == ErrOutOfRange
}

// StateError indicates that an operation was called in the wrong session state.
// No native call is issued when this is returned.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: not allowed in %s state", e.Op, e.State)
}

// IsUsageError returns true for errors caused by the caller's request
// (range or alignment) rather than by the device or the library.
func IsUsageError(err error) bool {
	var oor *OutOfRangeError
	var ae *AlignmentError
	return errors.As(err, &oor) || errors.As(err, &ae)
}
