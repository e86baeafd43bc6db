// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCleanup is the sentinel error wrapped by CleanupError.
	ErrCleanup = errors.New("cleanup failed, manual cleanup required")

	// ErrCommand is the sentinel error wrapped by CommandError.
	ErrCommand = errors.New("git command failed")
)

type (
	// CleanupError is returned when the unconditional restore after a scoped
	// run fails. The working tree may hold stray files and needs manual
	// attention. Cause is the error of the run itself, if it failed too.
	CleanupError struct {
		Err   error
		Cause error
	}

	// CommandError describes a failed git invocation.
	CommandError struct {
		Args   []string
		Output string
		Err    error
	}
)

// Error implements the error interface.
func (e *CleanupError) Error() string {
	msg := fmt.Sprintf("%s: %v", ErrCleanup, e.Err)
	if e.Cause != nil {
		msg += fmt.Sprintf(" (after: %v)", e.Cause)
	}
	return msg
}

// Unwrap returns ErrCleanup, the restore failure and the run failure.
func (e *CleanupError) Unwrap() []error {
	errs := []error{ErrCleanup, e.Err}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg += ": " + out
	}
	return msg
}

// Unwrap returns ErrCommand and the underlying cause for errors.Is/As.
func (e *CommandError) Unwrap() []error {
	return []error{ErrCommand, e.Err}
}
