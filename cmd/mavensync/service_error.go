// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"

	"github.com/mavensync/mavensync/internal/app/update"
	"github.com/mavensync/mavensync/internal/config"
	"github.com/mavensync/mavensync/internal/issue"
	"github.com/mavensync/mavensync/internal/manifest"
	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/remote"
	"github.com/mavensync/mavensync/internal/vcs"
)

// ServiceError is a classified run failure. handleError prints its styled
// message and the matching issue catalog card in place of the raw error.
type ServiceError struct {
	Err           error
	IssueID       issue.Id
	StyledMessage string
}

// newServiceError panics on a nil err; every ServiceError wraps a cause.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{Err: err, IssueID: issueID, StyledMessage: styledMessage}
}

func (e *ServiceError) Error() string { return e.Err.Error() }

func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError writes the styled message followed by the issue card.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	entry := issue.Get(svcErr.IssueID)
	if entry == nil {
		return
	}
	card, err := entry.Render("dark")
	if err != nil {
		log.Warn("failed to render issue card", "issue", svcErr.IssueID, "error", err)
		return
	}
	fmt.Fprint(stderr, card)
}

// classifyError maps a failed run to an issue catalog ID and returns a styled
// message for CLI rendering. It preserves actionable error details.
func classifyError(err error, verbose bool) (issueID issue.Id, styledMsg string) {
	switch {
	// A cleanup failure also wraps the run failure, so it is checked first.
	case errors.Is(err, vcs.ErrCleanup):
		issueID = issue.CleanupFailedId
		err = issue.NewErrorContext().
			WithOperation("restore working tree").
			WithSuggestion("Inspect 'git status' and 'git log -1'; manual cleanup required").
			Wrap(err).
			BuildError()
	case errors.Is(err, manifest.ErrGeneratorNotFound):
		issueID = issue.GeneratorNotFoundId
	case errors.Is(err, update.ErrUncommittedChanges):
		issueID = issue.UncommittedChangesId
	case errors.Is(err, remote.ErrDownload):
		issueID = issue.DownloadFailedId
	case errors.Is(err, maven.ErrDescriptorParse):
		issueID = issue.ArtifactNameUnparseableId
	case errors.Is(err, manifest.ErrExternalTool):
		issueID = issue.GeneratorFailedId
	case errors.Is(err, maven.ErrConfiguration), errors.Is(err, config.ErrInvalidArtifact):
		issueID = issue.InvalidCoordinateId
	case errors.Is(err, config.ErrInvalidConfig), errors.Is(err, config.ErrConfigNotFound):
		issueID = issue.ConfigLoadFailedId
	default:
		var ae *issue.ActionableError
		if errors.As(err, &ae) && ae.Operation == "load configuration" {
			issueID = issue.ConfigLoadFailedId
		}
	}

	return issueID, fmt.Sprintf("\n%s %s\n", ErrorStyle.Render("Error:"), formatErrorForDisplay(err, verbose))
}

// handleError is the fang error handler. Service errors were classified by the
// command and render their own card; bare exit codes print nothing.
func handleError(w io.Writer, styles fang.Styles, err error) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		renderServiceError(w, svcErr)
		return
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}

// formatErrorForDisplay prefers the suggestion list of an ActionableError;
// verbose mode adds its cause chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
