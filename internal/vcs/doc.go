// SPDX-License-Identifier: MPL-2.0

// Package vcs wraps the git command line as a snapshot and revert mechanism.
//
// Git reports the state of a working tree and records results. Scoped runs a
// unit of work and always restores the tree afterwards, so a failed run leaves
// nothing behind and a successful run keeps only what it committed.
package vcs
