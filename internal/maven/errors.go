// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is the sentinel error wrapped by ConfigurationError.
	ErrConfiguration = errors.New("invalid artifact configuration")
	// ErrDescriptorParse is the sentinel error wrapped by DescriptorParseError.
	ErrDescriptorParse = errors.New("unexpected artifact file name")
)

type (
	// ConfigurationError is returned when an artifact coordinate string is malformed.
	ConfigurationError struct {
		Value  string
		Reason string
	}

	// DescriptorParseError is returned when a payload file name does not have the
	// expected name-version.ext shape. Downstream steps parse the version out of
	// the file name, so this is fatal.
	DescriptorParseError struct {
		File string
	}
)

// Error implements the error interface.
func (e *ConfigurationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("error in %q: expected group:library:version:ext", e.Value)
	}
	return fmt.Sprintf("error in %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrConfiguration for errors.Is() compatibility.
func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// Error implements the error interface.
func (e *DescriptorParseError) Error() string {
	return fmt.Sprintf("artifact file %q does not match name-version.(jar|aar)", e.File)
}

// Unwrap returns ErrDescriptorParse for errors.Is() compatibility.
func (e *DescriptorParseError) Unwrap() error { return ErrDescriptorParse }
