// SPDX-License-Identifier: MPL-2.0

package vcs

import "context"

// Restorer returns a working tree to its last committed state.
type Restorer interface {
	Restore(ctx context.Context) error
}

// Scoped runs fn and then always calls r.Restore, on success, on failure and
// on panic. The restore runs with a context detached from ctx cancellation so
// an interrupted run is still reverted.
//
// When the restore fails, Scoped returns a *CleanupError carrying both the
// restore failure and fn's error. Otherwise it returns fn's error unchanged.
func Scoped(ctx context.Context, r Restorer, fn func(ctx context.Context) error) (err error) {
	defer func() {
		restoreErr := r.Restore(context.WithoutCancel(ctx))
		if restoreErr != nil {
			err = &CleanupError{Err: restoreErr, Cause: err}
		}
	}()
	return fn(ctx)
}
