// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrExternalTool is the sentinel error wrapped by ExternalToolError.
	ErrExternalTool = errors.New("external tool failed")

	// ErrGeneratorNotFound is returned when the generator is not on PATH.
	ErrGeneratorNotFound = errors.New("manifest generator not found")
)

// ExternalToolError is returned when the generator exits non-zero or cannot
// be started.
type ExternalToolError struct {
	Tool     string
	ExitCode int
	// Stderr is the trimmed diagnostic output of the tool, if any.
	Stderr string
	Err    error
}

// Error implements the error interface.
func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s exited with code %d", e.Tool, e.ExitCode)
	if e.ExitCode < 0 && e.Err != nil {
		msg = fmt.Sprintf("%s failed to run: %v", e.Tool, e.Err)
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Unwrap returns ErrExternalTool and the underlying cause for errors.Is/As.
func (e *ExternalToolError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrExternalTool}
	}
	return []error{ErrExternalTool, e.Err}
}

// lastLines keeps the tail of a tool's stderr so errors stay readable.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
