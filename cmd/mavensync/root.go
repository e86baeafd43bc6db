// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	verbose    bool
	configPath string
	workdir    string
}

// request resolves the flag values into a Request.
func (f *rootFlags) request() (Request, error) {
	root, err := resolveRoot(f.workdir)
	if err != nil {
		return Request{}, err
	}
	return Request{Root: root, ConfigPath: f.configPath, Verbose: f.verbose}, nil
}

// NewRootCommand builds the command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "mavensync",
		Short: "Synchronize prebuilt Maven artifacts into a git tree",
		Long: TitleStyle.Render("mavensync") + SubtitleStyle.Render(" - Synchronize prebuilt Maven artifacts into a git tree") + `

mavensync resolves the configured Maven artifacts, downloads the ones whose
version changed, repackages every tracked artifact into the output directory,
regenerates the build manifest and commits the result. A failed run leaves
the tree at its last commit.

` + SubtitleStyle.Render("Examples:") + `
  mavensync                   Update the tree in the current directory
  mavensync update --dry-run  Show what would be updated
  mavensync status            Show installed and available versions
  mavensync config init       Write a default mavensync.cue`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), app, flags, false)
		},
	}
	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable verbose output")
	pf.StringVar(&flags.configPath, "config", "", "config file (default is ./mavensync.cue, then the user config directory)")
	pf.StringVarP(&flags.workdir, "workdir", "C", "", "tree root to update (default is the current directory)")

	rootCmd.AddCommand(newUpdateCommand(app, flags))
	rootCmd.AddCommand(newStatusCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the production App and runs the command tree.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(handleError),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// failure classifies err for rendering and wraps it with exit code 1.
func failure(err error, verbose bool) error {
	issueID, styled := classifyError(err, verbose)
	return &ExitError{Code: 1, Err: newServiceError(err, issueID, styled)}
}
