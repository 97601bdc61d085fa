// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jaehyunup/envfile/internal/project"
	"github.com/jaehyunup/envfile/internal/runner"
	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type (
	// checkReport collects the findings of one check run.
	checkReport struct {
		failures int
		warnings int
	}

	// finding is a single check result for a file or task.
	finding struct {
		subject string
		lines   []string
		failed  bool
	}
)

func newCheckCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the env files and task scripts of the project",
		Long: `Validate every env file candidate and every task of the project.

Invalid JSON env files, unreadable files and task scripts that do not parse
are errors. Skipped dotenv lines and values other dotenv loaders read
differently are warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd)
			if err != nil {
				return err
			}

			var report checkReport
			fmt.Fprintln(app.stdout, TitleStyle.Render("Env files"))
			for _, name := range []string{envfile.DotenvFile, envfile.DotenvLocalFile, envfile.JSONFile, envfile.JSONLocalFile} {
				report.print(app, checkEnvFile(s.root, name))
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("Tasks"))
			for _, f := range checkTasks(s.root) {
				report.print(app, f)
			}

			summary := fmt.Sprintf("%d error(s), %d warning(s)", report.failures, report.warnings)
			if report.failures > 0 {
				fmt.Fprintln(app.stdout, ErrorStyle.Render(summary))
				return &ExitError{Code: 1}
			}
			fmt.Fprintln(app.stdout, SuccessStyle.Render(summary))
			return nil
		},
	}
}

func (r *checkReport) print(app *App, f finding) {
	mark := SuccessStyle.Render("ok")
	switch {
	case f.failed:
		mark = ErrorStyle.Render("error")
		r.failures++
	case len(f.lines) > 0:
		mark = WarningStyle.Render("warn")
		r.warnings += len(f.lines)
	}
	fmt.Fprintf(app.stdout, "  %s %s\n", mark, CmdStyle.Render(f.subject))
	for _, line := range f.lines {
		fmt.Fprintln(app.stdout, "      "+SubtitleStyle.Render(line))
	}
}

// checkEnvFile validates the candidate name in root. Candidates that are
// not regular files are reported the way resolution treats them: ignored.
func checkEnvFile(root, name string) finding {
	f := finding{subject: name}
	path := filepath.Join(root, name)

	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		f.subject += SubtitleStyle.Render(" (not present)")
		return f
	}
	if err != nil {
		f.failed = true
		f.lines = []string{err.Error()}
		return f
	}
	if !info.Mode().IsRegular() {
		f.lines = []string{fmt.Sprintf("not a regular file (%s), ignored", info.Mode().Type())}
		return f
	}

	content, err := os.ReadFile(path)
	if err != nil {
		f.failed = true
		f.lines = []string{err.Error()}
		return f
	}

	switch {
	case name == envfile.JSONFile || name == envfile.JSONLocalFile:
		m, err := envfile.ParseJSON(content)
		if err != nil {
			f.failed = true
			f.lines = []string{err.Error()}
			return f
		}
		f.subject += SubtitleStyle.Render(fmt.Sprintf(" (%d variables)", len(m)))
	default:
		m, skipped := envfile.ParseDotenvLines(content)
		f.subject += SubtitleStyle.Render(fmt.Sprintf(" (%d variables)", len(m)))
		for _, sl := range skipped {
			f.lines = append(f.lines, fmt.Sprintf("line %d skipped: %s", sl.Line, sl.Reason))
		}
		f.lines = append(f.lines, dotenvCompatWarnings(m, content)...)
	}
	return f
}

// dotenvCompatWarnings lists keys that godotenv-style loaders read with a
// different value, typically because of escapes or ${VAR} expansion.
func dotenvCompatWarnings(m envfile.Mapping, content []byte) []string {
	other, err := godotenv.UnmarshalBytes(content)
	if err != nil {
		return []string{"other dotenv loaders reject this file: " + err.Error()}
	}

	var warnings []string
	for _, key := range m.Keys() {
		if v, ok := other[key]; ok && v != m[key] {
			warnings = append(warnings, fmt.Sprintf("%s is %q here but %q for other dotenv loaders", key, m[key], v))
		}
	}
	return warnings
}

// checkTasks parses every task file and validates the task scripts.
func checkTasks(root string) []finding {
	tasks, err := project.Discover(root)
	if err != nil {
		return []finding{{subject: project.TaskFileName, lines: []string{err.Error()}, failed: true}}
	}
	if len(tasks) == 0 {
		return []finding{{subject: project.TaskFileName + SubtitleStyle.Render(" (no tasks)")}}
	}

	vrt := runner.NewVirtualRuntime()
	findings := make([]finding, 0, len(tasks))
	for _, t := range tasks {
		f := finding{subject: t.Path()}
		if err := vrt.Validate(t.Run); err != nil {
			f.failed = true
			f.lines = []string{err.Error()}
		}
		if !t.Kind.Injectable() {
			f.lines = append(f.lines, fmt.Sprintf("kind %q never receives env file variables", t.Kind))
		}
		findings = append(findings, f)
	}
	return findings
}
