// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaehyunup/envfile/internal/config"

	"github.com/spf13/cobra"
)

func newConfigCommand(app *App) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and create the envfile configuration",
		Long: `Inspect and create the envfile configuration.

Settings are read from, highest precedence first:
  1. command-line flags
  2. ` + config.ProjectConfigFileName + ` in the project root, or ` + filepath.Join("$XDG_CONFIG_HOME", config.AppName, config.UserConfigFileName) + `
  3. ENV_FILE_* environment variables
  4. built-in defaults`,
	}

	configCmd.AddCommand(newConfigShowCommand(app))
	configCmd.AddCommand(newConfigInitCommand(app))
	configCmd.AddCommand(newConfigPathCommand(app))

	return configCmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration and where each value came from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			cfg := s.cfg

			fmt.Fprintln(app.stdout, TitleStyle.Render("Configuration"))
			if cfg.Path != "" {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("file: "+cfg.Path))
			} else {
				fmt.Fprintln(app.stdout, SubtitleStyle.Render("file: none"))
			}
			fmt.Fprintln(app.stdout)

			keys := config.Keys()
			width := 0
			for _, key := range keys {
				width = max(width, len(key))
			}
			for _, key := range keys {
				fmt.Fprintf(app.stdout, "  %s %s %s\n",
					CmdStyle.Render(key+strings.Repeat(" ", width-len(key))),
					cfg.Value(key),
					SubtitleStyle.Render("("+cfg.Origin(key).String()+", "+config.EnvVar(key)+")"))
			}
			return nil
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to " + config.ProjectConfigFileName,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd)
			if err != nil {
				return err
			}

			path, err := config.WriteProjectConfig(s.root, s.cfg, force)
			if errors.Is(err, config.ErrConfigExists) {
				return fmt.Errorf("%w (use --force to overwrite)", err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render("Created")+" "+path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func newConfigPathCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use, or the user config directory when there is none",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			if s.cfg.Path != "" {
				fmt.Fprintln(app.stdout, s.cfg.Path)
				return nil
			}
			fmt.Fprintln(app.stdout, config.ConfigDir())
			return nil
		},
	}
}
