// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Environment variables understood by RunHelperProcess.
const (
	envWantHelper = "GO_WANT_HELPER_PROCESS"
	envExitCode   = "GO_HELPER_EXIT_CODE"
	envStdout     = "GO_HELPER_STDOUT"
	envStderr     = "GO_HELPER_STDERR"
)

type (
	// CommandRecorder captures the commands a component spawns and replaces
	// them with the test binary re-executed as a helper process. The test
	// package must define
	//
	//	func TestHelperProcess(t *testing.T) { testutil.RunHelperProcess() }
	CommandRecorder struct {
		// ExitCode, Stdout and Stderr are the default result of every command.
		ExitCode int
		Stdout   string
		Stderr   string
		// Respond, when set, overrides the default result per invocation.
		Respond func(inv Invocation) CommandResult

		mu          sync.Mutex
		invocations []Invocation
	}

	// Invocation is one recorded command.
	Invocation struct {
		Name string
		Args []string
		Dir  string
	}

	// CommandResult is what a helper process prints and exits with.
	CommandResult struct {
		ExitCode int
		Stdout   string
		Stderr   string
	}
)

// NewCommandRecorder creates a recorder whose commands succeed silently.
func NewCommandRecorder() *CommandRecorder {
	return &CommandRecorder{}
}

// CommandFunc returns a replacement for exec.CommandContext.
func (r *CommandRecorder) CommandFunc(t testing.TB) func(ctx context.Context, name string, args ...string) *exec.Cmd {
	t.Helper()
	return func(ctx context.Context, name string, args ...string) *exec.Cmd {
		inv := Invocation{Name: name, Args: append([]string(nil), args...)}

		result := CommandResult{ExitCode: r.ExitCode, Stdout: r.Stdout, Stderr: r.Stderr}
		if r.Respond != nil {
			result = r.Respond(inv)
		}

		r.mu.Lock()
		r.invocations = append(r.invocations, inv)
		r.mu.Unlock()

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		//nolint:gosec // TestHelperProcess is a test-only pattern
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			envWantHelper + "=1",
			fmt.Sprintf("%s=%d", envExitCode, result.ExitCode),
			envStdout + "=" + result.Stdout,
			envStderr + "=" + result.Stderr,
		}
		return cmd
	}
}

// Invocations returns a copy of every recorded invocation in order.
func (r *CommandRecorder) Invocations() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Invocation(nil), r.invocations...)
}

// Commands returns each invocation rendered as "name arg1 arg2 ...".
func (r *CommandRecorder) Commands() []string {
	invs := r.Invocations()
	out := make([]string, len(invs))
	for i, inv := range invs {
		out[i] = inv.String()
	}
	return out
}

// LastInvocation returns the most recent invocation, or nil if none.
func (r *CommandRecorder) LastInvocation() *Invocation {
	invs := r.Invocations()
	if len(invs) == 0 {
		return nil
	}
	return &invs[len(invs)-1]
}

// AssertInvocationCount verifies the number of command invocations.
func (r *CommandRecorder) AssertInvocationCount(t testing.TB, expected int) {
	t.Helper()
	if got := len(r.Invocations()); got != expected {
		t.Errorf("expected %d invocations, got %d: %v", expected, got, r.Commands())
	}
}

// String renders the invocation as a shell-like command line. Arguments are
// joined verbatim, so trailing whitespace inside an argument is kept.
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Name
	}
	return inv.Name + " " + strings.Join(inv.Args, " ")
}

// HasArgs reports whether the invocation's arguments start with prefix.
func (inv Invocation) HasArgs(prefix ...string) bool {
	if len(prefix) > len(inv.Args) {
		return false
	}
	for i, p := range prefix {
		if inv.Args[i] != p {
			return false
		}
	}
	return true
}

// RunHelperProcess is the body of a package's TestHelperProcess. It does
// nothing unless the process was started by a CommandRecorder, in which case
// it prints the configured output and exits with the configured code.
func RunHelperProcess() {
	if os.Getenv(envWantHelper) != "1" {
		return
	}

	if stdout := os.Getenv(envStdout); stdout != "" {
		fmt.Fprint(os.Stdout, stdout)
	}
	if stderr := os.Getenv(envStderr); stderr != "" {
		fmt.Fprint(os.Stderr, stderr)
	}

	exitCode, _ := strconv.Atoi(os.Getenv(envExitCode))
	os.Exit(exitCode)
}
