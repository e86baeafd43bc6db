// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/mavensync/mavensync/internal/app/update"
	"github.com/mavensync/mavensync/internal/config"
	"github.com/mavensync/mavensync/internal/manifest"
	"github.com/mavensync/mavensync/internal/remote"
	"github.com/mavensync/mavensync/internal/vcs"
)

type (
	// App wires CLI services and shared dependencies. All Cobra handlers
	// receive an App and delegate the actual work through its interfaces.
	App struct {
		Config   ConfigProvider
		Updaters UpdaterFactory
		stdout   io.Writer
		stderr   io.Writer
	}

	// Dependencies defines the injection points for building an App. Nil fields are
	// replaced with production defaults by NewApp.
	Dependencies struct {
		Config   ConfigProvider
		Updaters UpdaterFactory
		Stdout   io.Writer
		Stderr   io.Writer
	}

	// ConfigProvider loads configuration using explicit options.
	ConfigProvider interface {
		Load(ctx context.Context, opts config.LoadOptions) (*config.Config, error)
	}

	// Updater runs or previews a synchronization.
	Updater interface {
		Run(ctx context.Context) (*update.Result, error)
		Plan(ctx context.Context) ([]update.Entry, error)
	}

	// UpdaterFactory builds an Updater for one invocation.
	UpdaterFactory func(cfg *config.Config, req Request, stdout, stderr io.Writer) (Updater, error)

	// Request captures the global flag values of one invocation.
	Request struct {
		// Root is the version-controlled tree the run operates on.
		Root string
		// ConfigPath is the explicit --config value.
		ConfigPath string
		Verbose    bool
	}
)

// NewApp creates an App with defaults for omitted dependencies.
func NewApp(deps Dependencies) *App {
	if deps.Stdout == nil {
		deps.Stdout = os.Stdout
	}
	if deps.Stderr == nil {
		deps.Stderr = os.Stderr
	}
	if deps.Config == nil {
		deps.Config = config.NewProvider()
	}
	if deps.Updaters == nil {
		deps.Updaters = newUpdateService
	}

	return &App{
		Config:   deps.Config,
		Updaters: deps.Updaters,
		stdout:   deps.Stdout,
		stderr:   deps.Stderr,
	}
}

// loadConfig loads the configuration for req.
func (a *App) loadConfig(ctx context.Context, req Request) (*config.Config, error) {
	return a.Config.Load(ctx, config.LoadOptions{
		ConfigFilePath: req.ConfigPath,
		BaseDir:        req.Root,
	})
}

// updater loads the configuration and builds the Updater for req.
func (a *App) updater(ctx context.Context, req Request) (Updater, error) {
	cfg, err := a.loadConfig(ctx, req)
	if err != nil {
		return nil, err
	}
	return a.Updaters(cfg, req, a.stdout, a.stderr)
}

// newLogger creates the run logger. Verbose runs log at debug level.
func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "mavensync",
		Level:  level,
	})
}

// newUpdateService is the production UpdaterFactory. It converts the loaded
// configuration once into the domain objects each component consumes.
func newUpdateService(cfg *config.Config, req Request, stdout, stderr io.Writer) (Updater, error) {
	specs, err := cfg.Specs()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.RuleSet()
	if err != nil {
		return nil, err
	}

	userAgent := cfg.HTTP.UserAgent
	if userAgent == "" {
		userAgent = "mavensync/" + Version
	}
	client := remote.NewClient(
		remote.WithTimeout(cfg.HTTP.Timeout),
		remote.WithUserAgent(userAgent),
	)

	repoIDs := make([]string, 0, len(cfg.Repositories))
	for _, r := range cfg.Repositories {
		repoIDs = append(repoIDs, r.ID)
	}

	svc := update.New(update.Options{
		Root:             req.Root,
		OutputDir:        cfg.OutputDir,
		WorkingDir:       cfg.WorkingDir,
		RepositoryIDs:    repoIDs,
		Specs:            specs,
		Rules:            rules,
		Blacklist:        cfg.Blacklist,
		ExtractResources: cfg.ExtractResources,
	}, update.Dependencies{
		VCS:       vcs.NewGit(req.Root),
		Resolver:  remote.NewResolver(client, cfg.RemoteRepositories(), remote.NewVersionCache(), stdout),
		Generator: manifest.New(rules, cfg.ManifestOptions()),
		Logger:    newLogger(stderr, req.Verbose),
		Stdout:    stdout,
	})
	return svc, nil
}

// resolveRoot returns the absolute tree root for a --workdir value.
func resolveRoot(workdir string) (string, error) {
	if workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		return wd, nil
	}
	info, err := os.Stat(workdir)
	if err != nil {
		return "", fmt.Errorf("invalid --workdir: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("invalid --workdir: %s is not a directory", workdir)
	}
	return filepath.Abs(workdir)
}
