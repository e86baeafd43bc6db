// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mavensync/mavensync/internal/manifest"
	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/remote"
	"github.com/mavensync/mavensync/internal/repackage"
	"github.com/mavensync/mavensync/internal/rewrite"
)

const (
	// DefaultOutputDir is the committed directory holding repackaged artifacts.
	DefaultOutputDir = "current"
	// DefaultWorkingDir is the scratch directory the new output is built in.
	DefaultWorkingDir = "support_tmp"
	// DefaultTimeout bounds a single repository request.
	DefaultTimeout = 60 * time.Second
)

var (
	// ErrInvalidRepository is the sentinel error wrapped by InvalidRepositoryError.
	ErrInvalidRepository = errors.New("invalid repository")
	// ErrInvalidArtifact is the sentinel error wrapped by InvalidArtifactError.
	ErrInvalidArtifact = errors.New("invalid artifact")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")
)

type (
	// InvalidRepositoryError is returned when a Repository has invalid fields.
	InvalidRepositoryError struct {
		ID     string
		Reason string
	}

	// InvalidArtifactError is returned when an Artifact has invalid fields.
	// It wraps ErrInvalidArtifact and, for malformed coordinates, the
	// underlying *maven.ConfigurationError.
	InvalidArtifactError struct {
		Coordinate string
		Reason     string
		Err        error
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Repository is a Maven repository declaration.
	Repository struct {
		// ID names the repository in artifact entries and is the download directory.
		ID string `json:"id" toml:"id" mapstructure:"id"`
		// Name is the display name used in commit messages.
		Name string `json:"name" toml:"name" mapstructure:"name"`
		// URL is the repository base URL.
		URL string `json:"url" toml:"url" mapstructure:"url"`
	}

	// RuleFields are the per-library build manifest options shared by
	// artifacts and standalone rewrite rules.
	RuleFields struct {
		Name             string   `json:"name,omitempty" toml:"name,omitempty" mapstructure:"name"`
		Path             string   `json:"path,omitempty" toml:"path,omitempty" mapstructure:"path"`
		Host             bool     `json:"host,omitempty" toml:"host,omitempty" mapstructure:"host"`
		HostAndDevice    bool     `json:"host_and_device,omitempty" toml:"host_and_device,omitempty" mapstructure:"host_and_device"`
		ExtraStaticLibs  []string `json:"extra_static_libs,omitempty" toml:"extra_static_libs,omitempty" mapstructure:"extra_static_libs"`
		OptionalUsesLibs []string `json:"optional_uses_libs,omitempty" toml:"optional_uses_libs,omitempty" mapstructure:"optional_uses_libs"`
	}

	// Artifact is one library to keep up to date.
	Artifact struct {
		// Coordinate is "group:library:version:extension"; version may be "latest".
		Coordinate string `json:"coordinate" toml:"coordinate" mapstructure:"coordinate"`
		// Repo is the id of the repository to fetch from.
		Repo       string `json:"repo" toml:"repo" mapstructure:"repo"`
		RuleFields `mapstructure:",squash"`
	}

	// RewriteRule names a library that takes part in scanning and manifest
	// rewriting without being fetched.
	RewriteRule struct {
		// Key is "group:artifact" or a bare artifact id.
		Key        string `json:"key" toml:"key" mapstructure:"key"`
		RuleFields `mapstructure:",squash"`
	}

	// DependencyRewrite maps a descriptor dependency onto an existing module.
	DependencyRewrite struct {
		From string `json:"from" toml:"from" mapstructure:"from"`
		To   string `json:"to" toml:"to" mapstructure:"to"`
	}

	// ManifestConfig configures the build manifest generator.
	ManifestConfig struct {
		Generator     string   `json:"generator" toml:"generator" mapstructure:"generator"`
		File          string   `json:"file" toml:"file" mapstructure:"file"`
		SDKVersion    int      `json:"sdk_version" toml:"sdk_version" mapstructure:"sdk_version"`
		MinSDKVersion int      `json:"min_sdk_version" toml:"min_sdk_version" mapstructure:"min_sdk_version"`
		Excludes      []string `json:"excludes" toml:"excludes" mapstructure:"excludes"`
	}

	// HTTPConfig configures repository downloads.
	HTTPConfig struct {
		Timeout   time.Duration `json:"timeout" toml:"-" mapstructure:"timeout"`
		UserAgent string        `json:"user_agent,omitempty" toml:"user_agent,omitempty" mapstructure:"user_agent"`
	}

	// Config holds the application configuration.
	Config struct {
		Repositories       []Repository        `json:"repositories" toml:"repositories" mapstructure:"repositories"`
		Artifacts          []Artifact          `json:"artifacts" toml:"artifacts" mapstructure:"artifacts"`
		RewriteRules       []RewriteRule       `json:"rewrite_rules" toml:"rewrite_rules" mapstructure:"rewrite_rules"`
		DependencyRewrites []DependencyRewrite `json:"dependency_rewrites" toml:"dependency_rewrites" mapstructure:"dependency_rewrites"`
		// Blacklist lists paths removed from every unpacked archive.
		Blacklist []string `json:"blacklist" toml:"blacklist" mapstructure:"blacklist"`
		// OutputDir is the committed directory, relative to the tree root.
		OutputDir string `json:"output_dir" toml:"output_dir" mapstructure:"output_dir"`
		// WorkingDir is the scratch directory, relative to the tree root.
		WorkingDir        string         `json:"working_dir" toml:"working_dir" mapstructure:"working_dir"`
		ExtractResources  bool           `json:"extract_resources" toml:"extract_resources" mapstructure:"extract_resources"`
		IncludeStaticDeps bool           `json:"include_static_deps" toml:"include_static_deps" mapstructure:"include_static_deps"`
		Manifest          ManifestConfig `json:"manifest" toml:"manifest" mapstructure:"manifest"`
		HTTP              HTTPConfig     `json:"http" toml:"http" mapstructure:"http"`

		// Source is the file the config was loaded from, "" for defaults.
		Source string `json:"-" toml:"-" mapstructure:"-"`
	}
)

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	manifestDefaults := manifest.DefaultOptions()
	return &Config{
		Repositories: []Repository{
			{ID: "gmaven", Name: "GMaven", URL: "https://maven.google.com"},
			{ID: "maven", Name: "Maven", URL: "https://repo1.maven.org/maven2"},
		},
		Artifacts: []Artifact{
			{
				Coordinate: "com.google.android.material:material:1.6.1:aar",
				Repo:       "gmaven",
				RuleFields: RuleFields{Name: "com.google.android.material_material_md3"},
			},
		},
		RewriteRules:       []RewriteRule{},
		DependencyRewrites: []DependencyRewrite{},
		Blacklist:          append([]string(nil), repackage.DefaultBlacklist...),
		OutputDir:          DefaultOutputDir,
		WorkingDir:         DefaultWorkingDir,
		ExtractResources:   false,
		IncludeStaticDeps:  true,
		Manifest: ManifestConfig{
			Generator:     manifestDefaults.Generator,
			File:          manifestDefaults.File,
			SDKVersion:    manifestDefaults.SDKVersion,
			MinSDKVersion: manifestDefaults.MinSDKVersion,
			Excludes:      manifestDefaults.Excludes,
		},
		HTTP: HTTPConfig{Timeout: DefaultTimeout},
	}
}

// IsValid returns whether the Repository has valid fields.
func (r Repository) IsValid() (bool, []error) {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return false, []error{&InvalidRepositoryError{ID: r.ID, Reason: "id must be non-empty"}}
	case strings.TrimSpace(r.URL) == "":
		return false, []error{&InvalidRepositoryError{ID: r.ID, Reason: "url must be non-empty"}}
	}
	return true, nil
}

// Error implements the error interface for InvalidRepositoryError.
func (e *InvalidRepositoryError) Error() string {
	return fmt.Sprintf("invalid repository %q: %s", e.ID, e.Reason)
}

// Unwrap returns ErrInvalidRepository for errors.Is() compatibility.
func (e *InvalidRepositoryError) Unwrap() error { return ErrInvalidRepository }

// Spec parses the artifact coordinate.
func (a Artifact) Spec() (maven.Spec, error) {
	return maven.ParseSpec(a.Coordinate, a.Repo)
}

// Error implements the error interface for InvalidArtifactError.
func (e *InvalidArtifactError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid artifact %q: %v", e.Coordinate, e.Err)
	}
	return fmt.Sprintf("invalid artifact %q: %s", e.Coordinate, e.Reason)
}

// Unwrap returns ErrInvalidArtifact and the underlying cause.
func (e *InvalidArtifactError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidArtifact}
	}
	return []error{ErrInvalidArtifact, e.Err}
}

// IsValid returns whether the Config has valid fields: repository ids are
// unique, every artifact coordinate parses and names a known repository, and
// the output and working directories are distinct non-empty paths.
func (c Config) IsValid() (bool, []error) {
	var errs []error

	repos := make(map[string]bool, len(c.Repositories))
	for _, r := range c.Repositories {
		if valid, fieldErrs := r.IsValid(); !valid {
			errs = append(errs, fieldErrs...)
			continue
		}
		if repos[r.ID] {
			errs = append(errs, &InvalidRepositoryError{ID: r.ID, Reason: "duplicate id"})
		}
		repos[r.ID] = true
	}

	for _, a := range c.Artifacts {
		if _, err := a.Spec(); err != nil {
			errs = append(errs, &InvalidArtifactError{Coordinate: a.Coordinate, Err: err})
			continue
		}
		if !repos[a.Repo] {
			errs = append(errs, &InvalidArtifactError{
				Coordinate: a.Coordinate,
				Reason:     fmt.Sprintf("unknown repository %q", a.Repo),
			})
		}
	}

	for _, r := range c.RewriteRules {
		if strings.TrimSpace(r.Key) == "" {
			errs = append(errs, fmt.Errorf("%w: rewrite rule with empty key", ErrInvalidConfig))
		}
	}

	switch {
	case strings.TrimSpace(c.OutputDir) == "":
		errs = append(errs, fmt.Errorf("%w: output_dir must be non-empty", ErrInvalidConfig))
	case strings.TrimSpace(c.WorkingDir) == "":
		errs = append(errs, fmt.Errorf("%w: working_dir must be non-empty", ErrInvalidConfig))
	case c.OutputDir == c.WorkingDir:
		errs = append(errs, fmt.Errorf("%w: output_dir and working_dir must differ", ErrInvalidConfig))
	}

	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, 0, len(e.FieldErrors))
	for _, err := range e.FieldErrors {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig followed by the field errors.
func (e *InvalidConfigError) Unwrap() []error {
	return append([]error{ErrInvalidConfig}, e.FieldErrors...)
}

// Specs returns the configured artifact requests in declaration order.
func (c *Config) Specs() ([]maven.Spec, error) {
	specs := make([]maven.Spec, 0, len(c.Artifacts))
	for _, a := range c.Artifacts {
		spec, err := a.Spec()
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// RuleSet builds the rewrite rules for a run. Standalone rewrite rules are
// applied first so an artifact entry for the same key wins.
func (c *Config) RuleSet() (*rewrite.RuleSet, error) {
	rules := make(map[maven.Key]rewrite.Rule, len(c.RewriteRules)+len(c.Artifacts))
	for _, r := range c.RewriteRules {
		rules[maven.Key(r.Key)] = r.rule()
	}
	for _, a := range c.Artifacts {
		spec, err := a.Spec()
		if err != nil {
			return nil, err
		}
		rules[spec.Key()] = a.rule()
	}

	deps := make([]rewrite.DependencyRewrite, 0, len(c.DependencyRewrites))
	for _, d := range c.DependencyRewrites {
		deps = append(deps, rewrite.DependencyRewrite{From: d.From, To: d.To})
	}
	return rewrite.NewRuleSet(rules, deps), nil
}

// RemoteRepositories returns the repositories in resolver form.
func (c *Config) RemoteRepositories() []remote.Repository {
	repos := make([]remote.Repository, 0, len(c.Repositories))
	for _, r := range c.Repositories {
		repos = append(repos, remote.Repository{ID: r.ID, Name: r.Name, URL: r.URL})
	}
	return repos
}

// ManifestOptions returns the generator options.
func (c *Config) ManifestOptions() manifest.Options {
	return manifest.Options{
		Generator:     c.Manifest.Generator,
		File:          c.Manifest.File,
		SDKVersion:    c.Manifest.SDKVersion,
		MinSDKVersion: c.Manifest.MinSDKVersion,
		StaticDeps:    c.IncludeStaticDeps,
		Excludes:      c.Manifest.Excludes,
	}
}

func (f RuleFields) rule() rewrite.Rule {
	return rewrite.Rule{
		Name:             f.Name,
		Path:             f.Path,
		Host:             f.Host,
		HostAndDevice:    f.HostAndDevice,
		ExtraStaticLibs:  f.ExtraStaticLibs,
		OptionalUsesLibs: f.OptionalUsesLibs,
	}
}
