// SPDX-License-Identifier: MPL-2.0

package remote

import (
	"errors"
	"fmt"
)

// ErrDownload is the sentinel error wrapped by DownloadError.
var ErrDownload = errors.New("download failed")

// DownloadError is returned when a repository request fails or answers with a
// non-success status.
type DownloadError struct {
	URL        string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *DownloadError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("downloading %s: %v", e.URL, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("downloading %s: unexpected status %d", e.URL, e.StatusCode)
	default:
		return "downloading " + e.URL + ": failed"
	}
}

// Unwrap returns both the sentinel and the underlying cause.
func (e *DownloadError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrDownload}
	}
	return []error{ErrDownload, e.Err}
}
