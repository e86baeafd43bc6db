// SPDX-License-Identifier: MPL-2.0

package update

import (
	"errors"
	"fmt"
)

const (
	// CheckGenerator names the generator-on-PATH precondition.
	CheckGenerator = "manifest generator"
	// CheckCleanTree names the no-uncommitted-changes precondition.
	CheckCleanTree = "clean working tree"
)

var (
	// ErrPrecondition is the sentinel error wrapped by PreconditionError.
	ErrPrecondition = errors.New("precondition failed")

	// ErrUncommittedChanges reports staged or unstaged changes in the tree.
	ErrUncommittedChanges = errors.New("there are uncommitted changes; commit or stash them first because a failed run resets the tree with 'git reset --hard'")

	// ErrNoArtifacts is returned when the fetched repositories hold no
	// tracked artifacts at all.
	ErrNoArtifacts = errors.New("failed to detect artifacts")
)

// PreconditionError is returned when a run refuses to start. Nothing has been
// fetched or modified when it is returned.
type PreconditionError struct {
	Check string
	Err   error
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPrecondition, e.Check, e.Err)
}

// Unwrap returns ErrPrecondition and the failed check's cause.
func (e *PreconditionError) Unwrap() []error {
	return []error{ErrPrecondition, e.Err}
}
