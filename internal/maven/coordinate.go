// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"fmt"
	"strings"
)

const (
	// LatestVersion is the version sentinel that asks the resolver for the
	// repository's current "latest" release.
	LatestVersion = "latest"

	// ExtJar is the plain Java library payload extension.
	ExtJar = "jar"
	// ExtAar is the Android library payload extension (a zip carrying resources).
	ExtAar = "aar"
	// ExtPom is the descriptor extension.
	ExtPom = "pom"
)

type (
	// Key identifies a logical library independent of its version. It is either
	// the qualified "group:artifact" form or, for fallback matching, a bare
	// artifact id.
	Key string

	// Spec is a configured artifact request: group, library, a concrete version
	// or LatestVersion, the payload extension and the id of the repository to
	// fetch from. Specs are validated by ParseSpec and never mutated in place;
	// WithVersion returns a resolved copy.
	Spec struct {
		Group   string
		Library string
		Version string
		Ext     string
		RepoID  string
	}
)

// NewKey joins a group and artifact id into a qualified key.
func NewKey(group, artifact string) Key {
	return Key(group + ":" + artifact)
}

// String returns the string form of the key.
func (k Key) String() string { return string(k) }

// IsQualified reports whether the key has the "group:artifact" form.
func (k Key) IsQualified() bool { return strings.Contains(string(k), ":") }

// ParseSpec parses a "group:library:version:ext" coordinate. All four parts
// must be present and non-empty.
func ParseSpec(coordinate, repoID string) (Spec, error) {
	parts := strings.Split(coordinate, ":")
	if len(parts) != 4 {
		return Spec{}, &ConfigurationError{Value: coordinate}
	}
	for _, p := range parts {
		if p == "" {
			return Spec{}, &ConfigurationError{Value: coordinate}
		}
	}
	if repoID == "" {
		return Spec{}, &ConfigurationError{Value: coordinate, Reason: "no source repository configured"}
	}

	return Spec{
		Group:   parts[0],
		Library: parts[1],
		Version: parts[2],
		Ext:     parts[3],
		RepoID:  repoID,
	}, nil
}

// Key returns the qualified key of the spec.
func (s Spec) Key() Key { return NewKey(s.Group, s.Library) }

// IsLatest reports whether the version still needs resolving.
func (s Spec) IsLatest() bool { return s.Version == LatestVersion }

// WithVersion returns a copy of the spec pinned to version.
func (s Spec) WithVersion(version string) Spec {
	s.Version = version
	return s
}

// GroupPath returns the group with dots replaced by slashes, as used in
// repository URLs.
func (s Spec) GroupPath() string { return strings.ReplaceAll(s.Group, ".", "/") }

// String returns the coordinate form of the spec.
func (s Spec) String() string {
	return fmt.Sprintf("%s:%s:%s:%s", s.Group, s.Library, s.Version, s.Ext)
}

// FileName returns "library-version.ext" for the given extension.
func (s Spec) FileName(ext string) string {
	return fmt.Sprintf("%s-%s.%s", s.Library, s.Version, ext)
}

// MetadataURL returns the maven-metadata.xml location for the library.
func (s Spec) MetadataURL(repoURL string) string {
	return fmt.Sprintf("%s/%s/%s/maven-metadata.xml", strings.TrimRight(repoURL, "/"), s.GroupPath(), s.Library)
}

// DescriptorURL returns the POM location for the spec's version.
func (s Spec) DescriptorURL(repoURL string) string {
	return s.fileURL(repoURL, ExtPom)
}

// PayloadURL returns the payload location for the spec's version.
func (s Spec) PayloadURL(repoURL string) string {
	return s.fileURL(repoURL, s.Ext)
}

func (s Spec) fileURL(repoURL, ext string) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s", strings.TrimRight(repoURL, "/"), s.GroupPath(), s.Library, s.Version, s.FileName(ext))
}
