// SPDX-License-Identifier: MPL-2.0

package update

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mavensync/mavensync/internal/locator"
	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/remote"
	"github.com/mavensync/mavensync/internal/repackage"
	"github.com/mavensync/mavensync/internal/rewrite"
	"github.com/mavensync/mavensync/internal/vcs"
)

const (
	// CommitTitle is the first line of every update commit.
	CommitTitle = "Update prebuilt libraries"
	// TestReminder is printed after a successful commit.
	TestReminder = "Remember to test this change before uploading it!"
)

type (
	// VersionControl is the subset of git a run needs.
	VersionControl interface {
		vcs.Restorer
		HasUncommittedChanges(ctx context.Context) (bool, error)
		Add(ctx context.Context, paths ...string) error
		Commit(ctx context.Context, message string) error
	}

	// Resolver pins versions and downloads artifacts.
	Resolver interface {
		Resolve(ctx context.Context, spec maven.Spec) (maven.Spec, error)
		Fetch(ctx context.Context, spec maven.Spec, root string) (string, error)
		Repository(id string) (remote.Repository, bool)
	}

	// Generator writes the build manifest for a working directory.
	Generator interface {
		LookPath() (string, error)
		Emit(ctx context.Context, workingDir string) (string, error)
	}

	// Options are the fixed inputs of a run.
	Options struct {
		// Root is the version-controlled tree the run operates on.
		Root string
		// OutputDir and WorkingDir are relative to Root.
		OutputDir  string
		WorkingDir string
		// RepositoryIDs name the download directories under Root.
		RepositoryIDs []string
		// Specs are the configured artifact requests in declaration order.
		Specs []maven.Spec
		// Rules is the rewrite rule set shared by scanning and repackaging.
		Rules *rewrite.RuleSet
		// Blacklist is passed to the repackager; nil selects its default.
		Blacklist        []string
		ExtractResources bool
	}

	// Dependencies are the collaborators of a Service. Nil writers and loggers
	// fall back to the process streams.
	Dependencies struct {
		VCS       VersionControl
		Resolver  Resolver
		Generator Generator
		Logger    *log.Logger
		Stdout    io.Writer
	}

	// Service runs the synchronization pipeline.
	Service struct {
		opts       Options
		vcs        VersionControl
		resolver   Resolver
		generator  Generator
		locator    *locator.Locator
		repackager *repackage.Repackager
		logger     *log.Logger
		stdout     io.Writer
	}

	// Entry compares one configured artifact with the installed output.
	Entry struct {
		Spec maven.Spec
		// Installed is the version found in the output directory, "" if none.
		Installed string
		// RepoName is the display name of the source repository.
		RepoName string
	}

	// Result summarizes a run.
	Result struct {
		// Updates lists the artifacts that were fetched.
		Updates []Entry
		// Committed reports whether a commit was created.
		Committed bool
		// Message is the commit message, "" without a commit.
		Message string
	}
)

// NeedsUpdate reports whether the installed version differs from the
// resolved one.
func (e Entry) NeedsUpdate() bool {
	return e.Installed != e.Spec.Version
}

// New creates a Service.
func New(opts Options, deps Dependencies) *Service {
	if deps.Logger == nil {
		deps.Logger = log.New(os.Stderr)
	}
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	return &Service{
		opts:       opts,
		vcs:        deps.VCS,
		resolver:   deps.Resolver,
		generator:  deps.Generator,
		locator:    locator.New(opts.Rules, deps.Logger),
		repackager: repackage.New(opts.Rules, opts.Blacklist, deps.Stdout),
		logger:     deps.Logger,
		stdout:     deps.Stdout,
	}
}

// CheckPreconditions verifies the generator is installed and the tree is
// clean. It runs no network calls and changes nothing.
func (s *Service) CheckPreconditions(ctx context.Context) error {
	if _, err := s.generator.LookPath(); err != nil {
		return &PreconditionError{Check: CheckGenerator, Err: err}
	}

	dirty, err := s.vcs.HasUncommittedChanges(ctx)
	if err != nil {
		return &PreconditionError{Check: CheckCleanTree, Err: err}
	}
	if dirty {
		return &PreconditionError{Check: CheckCleanTree, Err: ErrUncommittedChanges}
	}
	return nil
}

// Run checks the preconditions and then runs the pipeline in a restore
// scope. The returned result is nil when the run failed before producing one.
func (s *Service) Run(ctx context.Context) (*Result, error) {
	if err := s.CheckPreconditions(ctx); err != nil {
		return nil, err
	}

	var result *Result
	err := vcs.Scoped(ctx, s.vcs, func(ctx context.Context) error {
		var runErr error
		result, runErr = s.run(ctx)
		return runErr
	})
	return result, err
}

// Plan resolves every configured artifact and compares it with the output
// directory. It fetches nothing but "latest" metadata.
func (s *Service) Plan(ctx context.Context) ([]Entry, error) {
	specs, err := s.resolveAll(ctx)
	if err != nil {
		return nil, err
	}
	currents, err := s.locator.Scan(s.path(s.opts.OutputDir))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.opts.OutputDir, err)
	}
	return s.entries(specs, currents), nil
}

func (s *Service) run(ctx context.Context) (*Result, error) {
	workingDir := s.path(s.opts.WorkingDir)
	if err := os.RemoveAll(workingDir); err != nil {
		return nil, fmt.Errorf("remove stale working directory: %w", err)
	}

	specs, err := s.resolveAll(ctx)
	if err != nil {
		return nil, err
	}

	currents, err := s.locator.Scan(s.path(s.opts.OutputDir))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.opts.OutputDir, err)
	}

	var updates []Entry
	for _, e := range s.entries(specs, currents) {
		if e.NeedsUpdate() {
			updates = append(updates, e)
		}
	}
	if len(updates) == 0 {
		s.logger.Info("No artifacts need to update")
		return &Result{}, nil
	}

	for _, u := range updates {
		s.logger.Debug("fetching", "artifact", u.Spec.String(), "installed", u.Installed)
		if _, err := s.resolver.Fetch(ctx, u.Spec, s.opts.Root); err != nil {
			return nil, err
		}
	}

	if err := s.transform(ctx, currents); err != nil {
		return nil, err
	}

	if err := s.vcs.Add(ctx, s.opts.OutputDir); err != nil {
		return nil, fmt.Errorf("stage %s: %w", s.opts.OutputDir, err)
	}
	msg := CommitMessage(updates)
	if err := s.vcs.Commit(ctx, msg); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	fmt.Fprintln(s.stdout, TestReminder)

	return &Result{Updates: updates, Committed: true, Message: msg}, nil
}

// transform repackages the fetched artifacts plus every installed artifact
// that was not replaced, generates the manifest and swaps the working
// directory in as the new output directory.
func (s *Service) transform(ctx context.Context, currents map[maven.Key]*locator.LibraryInfo) error {
	repoDirs := make([]string, 0, len(s.opts.RepositoryIDs))
	for _, id := range s.opts.RepositoryIDs {
		repoDirs = append(repoDirs, s.path(id))
	}
	infos, err := s.locator.Scan(repoDirs...)
	if err != nil {
		return fmt.Errorf("scan downloads: %w", err)
	}
	if len(infos) == 0 {
		return ErrNoArtifacts
	}
	for key, info := range currents {
		if _, ok := infos[key]; !ok {
			infos[key] = info
		}
	}

	workingDir := s.path(s.opts.WorkingDir)
	keys := slices.Sorted(maps.Keys(infos))
	for _, key := range keys {
		if err := s.repackager.Repackage(workingDir, infos[key], s.opts.ExtractResources); err != nil {
			return fmt.Errorf("repackage %s: %w", key, err)
		}
	}

	manifestPath, err := s.generator.Emit(ctx, workingDir)
	if err != nil {
		return err
	}
	s.logger.Debug("manifest written", "path", manifestPath)

	if err := repackage.ReplaceDir(workingDir, s.path(s.opts.OutputDir)); err != nil {
		return fmt.Errorf("replace %s: %w", s.opts.OutputDir, err)
	}
	return nil
}

func (s *Service) resolveAll(ctx context.Context) ([]maven.Spec, error) {
	specs := make([]maven.Spec, 0, len(s.opts.Specs))
	for _, spec := range s.opts.Specs {
		resolved, err := s.resolver.Resolve(ctx, spec)
		if err != nil {
			return nil, err
		}
		specs = append(specs, resolved)
	}
	return specs, nil
}

func (s *Service) entries(specs []maven.Spec, currents map[maven.Key]*locator.LibraryInfo) []Entry {
	entries := make([]Entry, 0, len(specs))
	for _, spec := range specs {
		e := Entry{Spec: spec, RepoName: spec.RepoID}
		if repo, ok := s.resolver.Repository(spec.RepoID); ok {
			e.RepoName = repo.Name
		}
		if current, ok := currents[spec.Key()]; ok {
			e.Installed = current.Version.String()
		}
		entries = append(entries, e)
	}
	return entries
}

func (s *Service) path(rel string) string {
	return filepath.Join(s.opts.Root, rel)
}

// CommitMessage builds the update commit message, one line per artifact.
func CommitMessage(updates []Entry) string {
	var sb strings.Builder
	sb.WriteString(CommitTitle)
	sb.WriteString("\n\n")
	for _, u := range updates {
		fmt.Fprintf(&sb, "Import %s %s from %s\n", u.Spec.Key(), u.Spec.Version, u.RepoName)
	}
	return sb.String()
}
