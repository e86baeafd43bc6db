// SPDX-License-Identifier: MPL-2.0

package maven

import (
	"errors"
	"testing"
)

func TestParseSpec(t *testing.T) {
	t.Parallel()

	spec, err := ParseSpec("com.google.android.material:material:1.6.1:aar", "gmaven")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if spec.Group != "com.google.android.material" || spec.Library != "material" ||
		spec.Version != "1.6.1" || spec.Ext != "aar" || spec.RepoID != "gmaven" {
		t.Errorf("unexpected spec: %+v", spec)
	}
	if spec.Key() != "com.google.android.material:material" {
		t.Errorf("Key() = %q", spec.Key())
	}
	if spec.GroupPath() != "com/google/android/material" {
		t.Errorf("GroupPath() = %q", spec.GroupPath())
	}
	if spec.IsLatest() {
		t.Error("concrete spec reported as latest")
	}
}

func TestParseSpec_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		coordinate string
		repo       string
	}{
		{"too few parts", "com.example:foo:1.0", "maven"},
		{"too many parts", "com.example:foo:1.0:jar:extra", "maven"},
		{"empty group", ":foo:1.0:jar", "maven"},
		{"empty version", "com.example:foo::jar", "maven"},
		{"empty ext", "com.example:foo:1.0:", "maven"},
		{"missing repo", "com.example:foo:1.0:jar", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSpec(tt.coordinate, tt.repo)
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("expected ErrConfiguration, got %v", err)
			}
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) || cfgErr.Value != tt.coordinate {
				t.Errorf("expected ConfigurationError for %q, got %v", tt.coordinate, err)
			}
		})
	}
}

func TestSpecURLs(t *testing.T) {
	t.Parallel()

	spec := Spec{Group: "androidx.core", Library: "core", Version: "1.9.0", Ext: "aar", RepoID: "gmaven"}
	repo := "https://maven.google.com/"

	if got, want := spec.MetadataURL(repo), "https://maven.google.com/androidx/core/core/maven-metadata.xml"; got != want {
		t.Errorf("MetadataURL() = %q, want %q", got, want)
	}
	if got, want := spec.DescriptorURL(repo), "https://maven.google.com/androidx/core/core/1.9.0/core-1.9.0.pom"; got != want {
		t.Errorf("DescriptorURL() = %q, want %q", got, want)
	}
	if got, want := spec.PayloadURL(repo), "https://maven.google.com/androidx/core/core/1.9.0/core-1.9.0.aar"; got != want {
		t.Errorf("PayloadURL() = %q, want %q", got, want)
	}
}

func TestSpecWithVersion(t *testing.T) {
	t.Parallel()

	latest := Spec{Group: "g", Library: "l", Version: LatestVersion, Ext: "jar", RepoID: "maven"}
	pinned := latest.WithVersion("2.1.0")

	if !latest.IsLatest() {
		t.Error("WithVersion must not mutate the receiver")
	}
	if pinned.Version != "2.1.0" || pinned.Key() != latest.Key() {
		t.Errorf("unexpected pinned spec: %+v", pinned)
	}
}

func TestKeyIsQualified(t *testing.T) {
	t.Parallel()

	if !NewKey("com.example", "foo").IsQualified() {
		t.Error("group:artifact key should be qualified")
	}
	if Key("foo").IsQualified() {
		t.Error("bare key should not be qualified")
	}
}
