// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/mavensync/mavensync/internal/app/update"
	"github.com/mavensync/mavensync/internal/config"
	"github.com/mavensync/mavensync/internal/issue"
	"github.com/mavensync/mavensync/internal/maven"
	"github.com/mavensync/mavensync/internal/testutil"
)

type (
	fakeConfigProvider struct {
		cfg  *config.Config
		err  error
		opts []config.LoadOptions
	}

	fakeUpdater struct {
		result  *update.Result
		entries []update.Entry
		runErr  error
		planErr error
		runs    int
		plans   int
	}

	testApp struct {
		app      *App
		provider *fakeConfigProvider
		updater  *fakeUpdater
		requests []Request
		stdout   *bytes.Buffer
		stderr   *bytes.Buffer
	}
)

func (f *fakeConfigProvider) Load(_ context.Context, opts config.LoadOptions) (*config.Config, error) {
	f.opts = append(f.opts, opts)
	if f.err != nil {
		return nil, f.err
	}
	return f.cfg, nil
}

func (f *fakeUpdater) Run(context.Context) (*update.Result, error) {
	f.runs++
	if f.runErr != nil {
		return nil, f.runErr
	}
	return f.result, nil
}

func (f *fakeUpdater) Plan(context.Context) ([]update.Entry, error) {
	f.plans++
	return f.entries, f.planErr
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ta := &testApp{
		provider: &fakeConfigProvider{cfg: config.DefaultConfig()},
		updater:  &fakeUpdater{result: &update.Result{}},
		stdout:   &bytes.Buffer{},
		stderr:   &bytes.Buffer{},
	}
	ta.app = NewApp(Dependencies{
		Config: ta.provider,
		Updaters: func(_ *config.Config, req Request, _, _ io.Writer) (Updater, error) {
			ta.requests = append(ta.requests, req)
			return ta.updater, nil
		},
		Stdout: ta.stdout,
		Stderr: ta.stderr,
	})
	return ta
}

func (ta *testApp) execute(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCommand(ta.app)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func mustSpec(t *testing.T, coord, repo string) maven.Spec {
	t.Helper()
	spec, err := maven.ParseSpec(coord, repo)
	if err != nil {
		t.Fatalf("ParseSpec(%q): %v", coord, err)
	}
	return spec
}

func TestRoot_RunsUpdate(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	dir := t.TempDir()
	ta.updater.result = &update.Result{
		Updates:   []update.Entry{{Spec: mustSpec(t, "g:a:1.0.0:jar", "gmaven"), RepoName: "GMaven"}},
		Committed: true,
	}

	if err := ta.execute(t, "--workdir", dir, "--config", "custom.cue", "-v"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	if ta.updater.runs != 1 || ta.updater.plans != 0 {
		t.Errorf("runs=%d plans=%d, want 1/0", ta.updater.runs, ta.updater.plans)
	}
	if !strings.Contains(ta.stdout.String(), "Committed 1 updated artifact(s)") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}

	want := Request{Root: dir, ConfigPath: "custom.cue", Verbose: true}
	if len(ta.requests) != 1 || ta.requests[0] != want {
		t.Errorf("requests = %+v, want %+v", ta.requests, want)
	}
	if got := ta.provider.opts[0]; got.BaseDir != dir || got.ConfigFilePath != "custom.cue" {
		t.Errorf("load options = %+v", got)
	}
}

func TestRoot_NoUpdatesIsSuccess(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	if err := ta.execute(t, "update", "--workdir", t.TempDir()); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if strings.Contains(ta.stdout.String(), "Committed") {
		t.Errorf("unexpected commit notice: %q", ta.stdout.String())
	}
}

func TestUpdate_HelpDocumentsNoUpdateExitStatus(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	if err := ta.execute(t, "update", "--help"); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	out := ta.stdout.String()
	for _, want := range []string{"No artifacts need", "exits with status 0", "exited with status 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("update help missing %q:\n%s", want, out)
		}
	}
	if ta.updater.runs != 0 {
		t.Errorf("help ran the updater %d time(s)", ta.updater.runs)
	}
}

func TestRoot_RunFailureIsClassified(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.updater.runErr = &update.PreconditionError{Check: update.CheckCleanTree, Err: update.ErrUncommittedChanges}

	err := ta.execute(t, "--workdir", t.TempDir())

	var exitErr *ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("expected *ExitError with code 1, got %T: %v", err, err)
	}
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *ServiceError in chain, got %v", err)
	}
	if svcErr.IssueID != issue.UncommittedChangesId {
		t.Errorf("IssueID = %d, want %d", svcErr.IssueID, issue.UncommittedChangesId)
	}
	if !errors.Is(err, update.ErrUncommittedChanges) {
		t.Error("error chain lost the precondition cause")
	}
}

func TestRoot_ConfigFailureIsClassified(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.provider.err = issue.NewErrorContext().
		WithOperation("load configuration").
		Wrap(errors.New("bad cue")).
		BuildError()

	err := ta.execute(t, "--workdir", t.TempDir())

	var svcErr *ServiceError
	if !errors.As(err, &svcErr) || svcErr.IssueID != issue.ConfigLoadFailedId {
		t.Fatalf("expected config issue, got %v", err)
	}
	if ta.updater.runs != 0 {
		t.Error("update ran despite a config failure")
	}
}

func TestRoot_InvalidWorkdir(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	err := ta.execute(t, "--workdir", filepath.Join(t.TempDir(), "missing"))
	if err == nil || !strings.Contains(err.Error(), "invalid --workdir") {
		t.Fatalf("expected workdir error, got %v", err)
	}
	if len(ta.provider.opts) != 0 {
		t.Error("config loaded for an invalid workdir")
	}
}

func TestUpdate_DryRun(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.updater.entries = []update.Entry{
		{Spec: mustSpec(t, "g:a:1.0.0:jar", "gmaven"), Installed: "1.0.0", RepoName: "GMaven"},
		{Spec: mustSpec(t, "g:b:2.0.0:aar", "gmaven"), Installed: "1.5.0", RepoName: "GMaven"},
		{Spec: mustSpec(t, "g:c:3.0.0:jar", "maven"), RepoName: "Maven"},
	}

	if err := ta.execute(t, "update", "--dry-run", "--workdir", t.TempDir()); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if ta.updater.runs != 0 || ta.updater.plans != 1 {
		t.Errorf("runs=%d plans=%d, want 0/1", ta.updater.runs, ta.updater.plans)
	}

	out := ta.stdout.String()
	for _, want := range []string{
		"g:b 1.5.0 -> 2.0.0 (GMaven)",
		"g:c (none) -> 3.0.0 (Maven)",
		"Import g:b 2.0.0 from GMaven",
		"Import g:c 3.0.0 from Maven",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Import g:a") {
		t.Errorf("up-to-date artifact listed as pending:\n%s", out)
	}
}

func TestUpdate_DryRunNothingPending(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.updater.entries = []update.Entry{
		{Spec: mustSpec(t, "g:a:1.0.0:jar", "gmaven"), Installed: "1.0.0", RepoName: "GMaven"},
	}
	if err := ta.execute(t, "update", "--dry-run", "--workdir", t.TempDir()); err != nil {
		t.Fatalf("execute() error = %v", err)
	}
	if !strings.Contains(ta.stdout.String(), "All 1 artifact(s) are up to date") {
		t.Errorf("stdout = %q", ta.stdout.String())
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.updater.entries = []update.Entry{
		{Spec: mustSpec(t, "g:a:1.0.0:jar", "gmaven"), Installed: "1.0.0", RepoName: "GMaven"},
		{Spec: mustSpec(t, "g:b:2.0.0:aar", "gmaven"), Installed: "1.5.0", RepoName: "GMaven"},
		{Spec: mustSpec(t, "g:c:3.0.0:jar", "maven"), RepoName: "Maven"},
	}

	if err := ta.execute(t, "status", "--workdir", t.TempDir()); err != nil {
		t.Fatalf("execute() error = %v", err)
	}

	out := ta.stdout.String()
	for _, want := range []string{
		"g:a 1.0.0 [GMaven] up to date",
		"g:b 1.5.0 [GMaven] update to 2.0.0",
		"g:c (none) [Maven] not installed",
		"2 artifact(s) need an update",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("stdout missing %q:\n%s", want, out)
		}
	}
}

func TestStatus_PlanFailure(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	ta.updater.planErr = errors.New("offline")

	err := ta.execute(t, "status", "--workdir", t.TempDir())
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected *ExitError, got %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	t.Parallel()

	t.Run("cue", func(t *testing.T) {
		t.Parallel()
		ta := newTestApp(t)
		if err := ta.execute(t, "config", "show", "--workdir", t.TempDir()); err != nil {
			t.Fatalf("execute() error = %v", err)
		}
		out := ta.stdout.String()
		for _, want := range []string{"using built-in defaults", "repositories: [", `output_dir: "current"`} {
			if !strings.Contains(out, want) {
				t.Errorf("stdout missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("toml with source", func(t *testing.T) {
		t.Parallel()
		ta := newTestApp(t)
		ta.provider.cfg.Source = "/tmp/mavensync.cue"
		if err := ta.execute(t, "config", "show", "--format", "toml", "--workdir", t.TempDir()); err != nil {
			t.Fatalf("execute() error = %v", err)
		}
		if !strings.Contains(ta.stdout.String(), "[[repositories]]") {
			t.Errorf("stdout = %q", ta.stdout.String())
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()
		ta := newTestApp(t)
		err := ta.execute(t, "config", "show", "--format", "yaml", "--workdir", t.TempDir())
		if err == nil || !strings.Contains(err.Error(), `unknown format "yaml"`) {
			t.Errorf("expected format error, got %v", err)
		}
	})
}

func TestConfigInit(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t)
	dir := t.TempDir()
	path := filepath.Join(dir, config.LocalConfigFile)

	if err := ta.execute(t, "config", "init", "--workdir", dir); err != nil {
		t.Fatalf("first init error = %v", err)
	}
	testutil.AssertExists(t, path)
	if !strings.Contains(testutil.MustReadFile(t, path), "repositories: [") {
		t.Error("written config lacks the repositories block")
	}

	if err := ta.execute(t, "config", "init", "--workdir", dir); err == nil {
		t.Error("second init without --force should fail")
	}
	if err := ta.execute(t, "config", "init", "--force", "--workdir", dir); err != nil {
		t.Errorf("init --force error = %v", err)
	}
}

func TestNewUpdateService(t *testing.T) {
	t.Parallel()

	u, err := newUpdateService(config.DefaultConfig(), Request{Root: t.TempDir()}, io.Discard, io.Discard)
	if err != nil {
		t.Fatalf("newUpdateService() error = %v", err)
	}
	if u == nil {
		t.Fatal("newUpdateService() returned nil")
	}

	bad := config.DefaultConfig()
	bad.Artifacts = []config.Artifact{{Coordinate: "not-a-coordinate", Repo: "gmaven"}}
	if _, err := newUpdateService(bad, Request{Root: t.TempDir()}, io.Discard, io.Discard); !errors.Is(err, maven.ErrConfiguration) {
		t.Errorf("expected ErrConfiguration, got %v", err)
	}
}

func TestNewLogger(t *testing.T) {
	t.Parallel()

	if got := newLogger(io.Discard, false).GetLevel(); got != log.InfoLevel {
		t.Errorf("level = %v, want info", got)
	}
	if got := newLogger(io.Discard, true).GetLevel(); got != log.DebugLevel {
		t.Errorf("level = %v, want debug", got)
	}
}
