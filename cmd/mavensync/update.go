// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mavensync/mavensync/internal/app/update"
)

func newUpdateCommand(app *App, flags *rootFlags) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch, repackage and commit changed artifacts",
		Long: `Fetch, repackage and commit changed artifacts.

This is what running mavensync without a subcommand does. The manifest
generator must be on PATH and the tree must have no uncommitted changes.

When every artifact is already up to date the run prints "No artifacts need
to update", creates no commit and exits with status 0. Earlier prebuilt
update scripts exited with status 1 in that case; scripts that relied on it
should check for the message or use --dry-run instead.

With --dry-run only the versions are resolved and the pending updates are
listed. Nothing is downloaded, changed or committed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), app, flags, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list pending updates without changing anything")

	return cmd
}

func runUpdate(ctx context.Context, app *App, flags *rootFlags, dryRun bool) error {
	req, err := flags.request()
	if err != nil {
		return err
	}

	u, err := app.updater(ctx, req)
	if err != nil {
		return failure(err, req.Verbose)
	}

	if dryRun {
		entries, planErr := u.Plan(ctx)
		if planErr != nil {
			return failure(planErr, req.Verbose)
		}
		renderDryRun(app.stdout, entries)
		return nil
	}

	result, err := u.Run(ctx)
	if err != nil {
		return failure(err, req.Verbose)
	}
	if result.Committed {
		fmt.Fprintf(app.stdout, "%s Committed %d updated artifact(s)\n", SuccessStyle.Render("✓"), len(result.Updates))
	}
	return nil
}

// renderDryRun prints the pending updates and the commit message a real run
// would create.
func renderDryRun(w io.Writer, entries []update.Entry) {
	var pending []update.Entry
	for _, e := range entries {
		if e.NeedsUpdate() {
			pending = append(pending, e)
		}
	}

	fmt.Fprintln(w, TitleStyle.Render("Dry run"))
	if len(pending) == 0 {
		fmt.Fprintf(w, "%s All %d artifact(s) are up to date\n", SuccessStyle.Render("✓"), len(entries))
		return
	}

	for _, e := range pending {
		fmt.Fprintf(w, "  %s %s -> %s (%s)\n",
			CmdStyle.Render(string(e.Spec.Key())),
			installedLabel(e.Installed),
			WarningStyle.Render(e.Spec.Version),
			e.RepoName)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, SubtitleStyle.Render("Commit message:"))
	fmt.Fprint(w, update.CommitMessage(pending))
}

func installedLabel(v string) string {
	if v == "" {
		return SubtitleStyle.Render("(none)")
	}
	return v
}
