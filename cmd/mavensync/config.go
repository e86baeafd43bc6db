// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mavensync/mavensync/internal/config"
)

const (
	formatCUE  = "cue"
	formatTOML = "toml"
)

// newConfigCommand creates the `mavensync config` command tree.
func newConfigCommand(app *App, flags *rootFlags) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage mavensync configuration",
		Long: `Manage mavensync configuration.

Configuration is looked up in this order:
  1. the file given with --config
  2. mavensync.cue in the tree root
  3. the user config file:
     - Linux: ~/.config/mavensync/config.cue
     - macOS: ~/Library/Application Support/mavensync/config.cue
     - Windows: %APPDATA%\mavensync\config.cue
  4. built-in defaults

Any key can also be overridden with a MAVENSYNC_ environment variable,
for example MAVENSYNC_OUTPUT_DIR.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	var format string
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(cmd.Context(), app, flags, format)
		},
	}
	showCmd.Flags().StringVar(&format, "format", formatCUE, "output format (cue or toml)")
	cfgCmd.AddCommand(showCmd)

	var force, global bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long: `Write a default configuration file.

By default mavensync.cue is written to the tree root. With --global the
user config file is written instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(app, flags, force, global)
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	initCmd.Flags().BoolVar(&global, "global", false, "write the user config file instead of ./mavensync.cue")
	cfgCmd.AddCommand(initCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file locations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath(app, flags)
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlags, format string) error {
	req, err := flags.request()
	if err != nil {
		return err
	}
	cfg, err := app.loadConfig(ctx, req)
	if err != nil {
		return failure(err, req.Verbose)
	}

	switch format {
	case formatCUE:
		if cfg.Source != "" {
			fmt.Fprintf(app.stdout, "// loaded from %s\n", cfg.Source)
		} else {
			fmt.Fprintln(app.stdout, "// using built-in defaults")
		}
		fmt.Fprint(app.stdout, config.GenerateCUE(cfg))
	case formatTOML:
		out, err := config.GenerateTOML(cfg)
		if err != nil {
			return err
		}
		fmt.Fprint(app.stdout, out)
	default:
		return fmt.Errorf("unknown format %q: must be %q or %q", format, formatCUE, formatTOML)
	}
	return nil
}

func initConfig(app *App, flags *rootFlags, force, global bool) error {
	path, err := initTarget(flags, global)
	if err != nil {
		return err
	}
	if err := config.WriteDefault(path, force); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func initTarget(flags *rootFlags, global bool) (string, error) {
	if global {
		cfgDir, err := config.ConfigDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt), nil
	}
	root, err := resolveRoot(flags.workdir)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, config.LocalConfigFile), nil
}

func showConfigPath(app *App, flags *rootFlags) error {
	root, err := resolveRoot(flags.workdir)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "Local config file: %s\n", filepath.Join(root, config.LocalConfigFile))

	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "User config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}
