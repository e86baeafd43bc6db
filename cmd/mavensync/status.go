// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mavensync/mavensync/internal/app/update"
)

func newStatusCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show installed and configured artifact versions",
		Long: `Show installed and configured artifact versions.

The output directory is scanned for installed artifacts and each configured
artifact is compared with it. Only "latest" coordinates need the network.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request()
			if err != nil {
				return err
			}
			u, err := app.updater(cmd.Context(), req)
			if err != nil {
				return failure(err, req.Verbose)
			}
			entries, err := u.Plan(cmd.Context())
			if err != nil {
				return failure(err, req.Verbose)
			}
			renderStatus(app.stdout, entries)
			return nil
		},
	}
}

func renderStatus(w io.Writer, entries []update.Entry) {
	fmt.Fprintln(w, TitleStyle.Render("Artifacts"))
	if len(entries) == 0 {
		fmt.Fprintf(w, "  %s\n", SubtitleStyle.Render("(none configured)"))
		return
	}

	pending := 0
	for _, e := range entries {
		var state string
		switch {
		case e.Installed == "":
			state = WarningStyle.Render("not installed")
			pending++
		case e.NeedsUpdate():
			state = WarningStyle.Render("update to " + e.Spec.Version)
			pending++
		default:
			state = SuccessStyle.Render("up to date")
		}
		fmt.Fprintf(w, "  %s %s [%s] %s\n",
			CmdStyle.Render(string(e.Spec.Key())),
			installedLabel(e.Installed),
			e.RepoName,
			state)
	}

	fmt.Fprintln(w)
	if pending == 0 {
		fmt.Fprintf(w, "%s Everything is up to date\n", SuccessStyle.Render("✓"))
		return
	}
	fmt.Fprintf(w, "%s %d artifact(s) need an update\n", WarningStyle.Render("!"), pending)
}
