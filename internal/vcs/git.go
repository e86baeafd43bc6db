// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

const (
	// DefaultBinary is the git executable looked up on PATH.
	DefaultBinary = "git"

	// RevertCommitMessage labels the throwaway commit Restore creates.
	RevertCommitMessage = "COMMIT TO REVERT - RESET ME!!!"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Git runs git commands inside one working tree.
	Git struct {
		dir         string
		binary      string
		execCommand ExecCommandFunc
	}

	// GitOption configures a Git.
	GitOption func(*Git)
)

// WithExecCommand replaces exec.CommandContext.
func WithExecCommand(fn ExecCommandFunc) GitOption {
	return func(g *Git) {
		g.execCommand = fn
	}
}

// WithBinary overrides the git executable.
func WithBinary(binary string) GitOption {
	return func(g *Git) {
		g.binary = binary
	}
}

// NewGit creates a Git bound to the working tree at dir.
func NewGit(dir string, opts ...GitOption) *Git {
	g := &Git{
		dir:         dir,
		binary:      DefaultBinary,
		execCommand: exec.CommandContext,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dir returns the working tree the commands run in.
func (g *Git) Dir() string { return g.dir }

// HasUncommittedChanges reports whether tracked files differ from the index
// or the index differs from HEAD. Untracked files are not considered.
func (g *Git) HasUncommittedChanges(ctx context.Context) (bool, error) {
	for _, args := range [][]string{
		{"diff", "--quiet"},
		{"diff", "--quiet", "--cached"},
	} {
		_, err := g.run(ctx, args...)
		if err == nil {
			continue
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// Add stages paths.
func (g *Git) Add(ctx context.Context, paths ...string) error {
	_, err := g.run(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit records the index with message.
func (g *Git) Commit(ctx context.Context, message string) error {
	_, err := g.run(ctx, "commit", "-m", message)
	return err
}

// Restore discards every change in the working tree, tracked or not, while
// keeping commits made so far. It stages everything, commits it as a
// throwaway and hard-resets that commit away.
func (g *Git) Restore(ctx context.Context) error {
	for _, args := range [][]string{
		{"add", "-Af", "."},
		{"commit", "-m", RevertCommitMessage, "--allow-empty"},
		{"reset", "--hard", "HEAD~1"},
	} {
		if _, err := g.run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := g.execCommand(ctx, g.binary, args...)
	cmd.Dir = g.dir
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return out.String(), &CommandError{Args: args, Output: out.String(), Err: err}
	}
	return out.String(), nil
}
