package nand

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/moffa90/go-dsmc/dsmc"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "invalid version",
			err:  &InvalidVersionError{Got: 2, Want: 3},
			want: "this implementation is only compatible with interface version 3, got: 2",
		},
		{
			name: "alignment",
			err:  &AlignmentError{Field: "length", Value: 1, BlockSize: 512},
			want: "alignment error: length 1 is not a multiple of the 512-byte block size",
		},
		{
			name: "start past end",
			err:  &OutOfRangeError{Start: 64, Count: 1, Total: 64},
			want: "start sector 64 exceeds NAND size (64 sectors)",
		},
		{
			name: "range past end",
			err:  &OutOfRangeError{Start: 60, Count: 8, Total: 64},
			want: "operation would exceed NAND size: sectors 60-67, device has 64 sectors",
		},
		{
			name: "negative start",
			err:  &OutOfRangeError{Start: -1, Total: 64},
			want: "start offset is negative (device has 64 sectors)",
		},
		{
			name: "state",
			err:  &StateError{Op: "block read", State: StateInitialized},
			want: "block read: not allowed in initialized state",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsUsageError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"out of range", &OutOfRangeError{Start: 70, Total: 64}, true},
		{"alignment", &AlignmentError{Field: "length", Value: 1, BlockSize: 512}, true},
		{"wrapped alignment", fmt.Errorf("write: %w", &AlignmentError{Field: "offset"}), true},
		{"status", &dsmc.StatusError{Operation: "block read", Status: dsmc.StatusFail}, false},
		{"state", &StateError{Op: "block read", State: StateClosed}, false},
		{"version", &InvalidVersionError{Got: 2, Want: 3}, false},
		{"plain", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUsageError(tt.err); got != tt.want {
				t.Errorf("IsUsageError() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutOfRangeIs(t *testing.T) {
	err := fmt.Errorf("read: %w", &OutOfRangeError{Start: 64, Count: 1, Total: 64})

	if !errors.Is(err, ErrOutOfRange) {
		t.Error("wrapped OutOfRangeError does not match ErrOutOfRange")
	}
	if errors.Is(errors.New(ErrOutOfRange.Error()), ErrOutOfRange) {
		t.Error("unrelated error with the same text matches ErrOutOfRange")
	}
	if !strings.Contains(err.Error(), "exceeds NAND size") {
		t.Errorf("unexpected message %q", err.Error())
	}
}
