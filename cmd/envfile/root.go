// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for envfile.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jaehyunup/envfile/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/glamour"
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

// NewRootCommand builds the command tree for app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "envfile",
		Short: "Load .env and JSON env files into project tasks",
		Long: TitleStyle.Render("envfile") + SubtitleStyle.Render(" - Load .env and JSON env files into project tasks") + `

envfile finds .env, .env.local, .env.json and .env.local.json in the project
root, merges them and injects the result into the tasks declared in tasks.toml.
Variables already set in your shell are kept unless --override is given.

` + SubtitleStyle.Render("Examples:") + `
  envfile resolve                 Print the environment tasks receive
  envfile resolve --explain       Show which files were read and why
  envfile tasks                   List tasks and whether they get the env
  envfile run bootRun             Run a task with the env injected
  envfile check                   Validate every env file`,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&app.rootDir, "root", "C", ".", "project root directory")
	pf.StringVar(&app.configPath, "config", "", "config file (default is ./envfile.cue, then $XDG_CONFIG_HOME/envfile/config.cue)")
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "enable verbose output")
	pf.String("mode", "dotenv", "env file style checked first: dotenv or json")
	pf.Bool("override", false, "let env file values replace variables already set")
	pf.Bool("apply-to-all", true, "inject into every exec task")
	pf.String("task", "bootRun", "exec task that receives the env when --apply-to-all=false")
	pf.String("policy", "single", "discovery policy: single (first file wins) or merge (all files)")
	pf.String("priority", "json", "family read last by the merge policy: dotenv or json")
	pf.Bool("prefer-base", false, "let .env and .env.json win over their .local variants")
	pf.Bool("strict-style", false, "only consider the --mode family with the single policy")
	pf.String("runtime", "virtual", "task runtime: virtual or native")

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.AddCommand(newResolveCommand(app))
	rootCmd.AddCommand(newTasksCommand(app))
	rootCmd.AddCommand(newRunCommand(app))
	rootCmd.AddCommand(newCheckCommand(app))
	rootCmd.AddCommand(newConfigCommand(app))

	return rootCmd
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute builds the command tree and runs it. This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})

	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
		fang.WithErrorHandler(func(w io.Writer, _ fang.Styles, err error) {
			app.printError(w, err)
		}),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// printError writes err for the user. Catalogue entries linked to an
// ActionableError are rendered in verbose mode.
func (a *App) printError(w io.Writer, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		return
	}

	fmt.Fprintln(w, ErrorStyle.Render("Error:")+" "+formatErrorForDisplay(err, a.verbose))

	var ae *issue.ActionableError
	if !a.verbose || !errors.As(err, &ae) {
		return
	}
	if entry := issue.Get(ae.Issue); entry != nil {
		if out, renderErr := entry.Render("auto"); renderErr == nil {
			fmt.Fprint(w, out)
		}
	}
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// renderMarkdown renders md for the terminal.
func renderMarkdown(md string) (string, error) {
	return glamour.Render(md, "auto")
}
