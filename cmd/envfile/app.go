// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jaehyunup/envfile/internal/config"
	"github.com/jaehyunup/envfile/internal/issue"
	"github.com/jaehyunup/envfile/internal/project"
	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

type (
	// App wires CLI services and shared dependencies. All Cobra command
	// handlers receive an App reference.
	App struct {
		Config      config.Provider
		Environment envfile.EnvironmentReader
		Environ     func() []string
		stdout      io.Writer
		stderr      io.Writer

		rootDir    string
		configPath string
		verbose    bool
	}

	// Dependencies defines the injection points for building an App. Nil
	// fields are replaced with production defaults by NewApp.
	Dependencies struct {
		Config      config.Provider
		Environment envfile.EnvironmentReader
		Environ     func() []string
		Stdout      io.Writer
		Stderr      io.Writer
	}

	// session is the per-invocation state shared by the subcommands.
	session struct {
		cfg    *config.Config
		root   string
		logger *log.Logger
	}
)

// NewApp creates an App, filling unset dependencies with production defaults.
func NewApp(deps Dependencies) *App {
	app := &App{
		Config:      deps.Config,
		Environment: deps.Environment,
		Environ:     deps.Environ,
		stdout:      deps.Stdout,
		stderr:      deps.Stderr,
		rootDir:     ".",
	}
	if app.Config == nil {
		app.Config = config.NewProvider()
	}
	if app.Environment == nil {
		app.Environment = envfile.OSEnvironment{}
	}
	if app.Environ == nil {
		app.Environ = os.Environ
	}
	if app.stdout == nil {
		app.stdout = os.Stdout
	}
	if app.stderr == nil {
		app.stderr = os.Stderr
	}
	return app
}

// newSession checks the project root, loads the configuration with the
// command's flags on top and builds the logger.
func (a *App) newSession(cmd *cobra.Command) (*session, error) {
	root, err := filepath.Abs(a.rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	if info, statErr := os.Stat(root); statErr != nil || !info.IsDir() {
		if statErr == nil {
			statErr = fmt.Errorf("not a directory")
		}
		return nil, issue.NewErrorContext().
			WithOperation("open project").
			WithResource(root).
			WithIssue(issue.RootNotFoundId).
			WithSuggestion("Pass an existing directory with --root").
			Wrap(statErr).
			BuildError()
	}

	cfg, err := a.Config.Load(cmd.Context(), config.LoadOptions{
		ConfigFilePath: a.configPath,
		ProjectRoot:    root,
		Environment:    a.Environment,
		Flags:          cmd.Flags(),
	})
	if err != nil {
		return nil, err
	}
	a.verbose = cfg.UI.Verbose

	return &session{
		cfg:    cfg,
		root:   root,
		logger: newLogger(a.stderr, cfg.UI.Verbose),
	}, nil
}

// resolve runs the env file resolution for the session's root.
func (s *session) resolve(env envfile.EnvironmentReader) (*envfile.Resolution, error) {
	opts := s.cfg.Options()
	opts.Environment = env
	opts.Logger = s.logger

	res, err := envfile.Resolve(s.root, opts)
	if err != nil {
		return nil, resolveError(s.root, err)
	}
	return res, nil
}

// discoverTasks lists the tasks of the project tree.
func (s *session) discoverTasks() ([]*project.Task, error) {
	tasks, err := project.Discover(s.root)
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("discover tasks").
			WithResource(s.root).
			WithIssue(issue.TaskFileParseErrorId).
			WithSuggestion("Fix the task file named in the error").
			Wrap(err).
			BuildError()
	}
	s.logger.Debug("discovered tasks", "count", len(tasks))
	return tasks, nil
}

func resolveError(root string, err error) error {
	ctx := issue.NewErrorContext().
		WithOperation("resolve env files").
		WithResource(root).
		Wrap(err)

	if errors.Is(err, envfile.ErrInvalidJSON) {
		ctx.WithIssue(issue.InvalidJSONEnvFileId).
			WithSuggestion("JSON env files must be a flat object of string values").
			WithSuggestion("Run 'envfile check' to validate every env file")
	} else {
		ctx.WithIssue(issue.EnvFileUnreadableId).
			WithSuggestion("Check the permissions of the env files in the project root")
	}
	return ctx.BuildError()
}

func newLogger(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix: "envfile",
		Level:  level,
	})
}
