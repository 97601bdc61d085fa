// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"

	"github.com/jaehyunup/envfile/internal/inject"
	"github.com/jaehyunup/envfile/internal/issue"
	"github.com/jaehyunup/envfile/internal/project"
	"github.com/jaehyunup/envfile/internal/runner"

	"github.com/spf13/cobra"
)

func newRunCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <task> [args...]",
		Short: "Run a task with the env files injected",
		Long: `Run a task declared in tasks.toml.

The resolved env file variables are injected when the task is selected:
test tasks always are, exec tasks follow --apply-to-all, --task and the
task's own apply_env_file setting. Variables declared in the task's env
table win over injected ones.

Arguments after the task name are passed to the script as $1, $2, ...`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTask(cmd, args[0], args[1:])
		},
	}
	cmd.Flags().SetInterspersed(false)
	return cmd
}

func (a *App) runTask(cmd *cobra.Command, ref string, args []string) error {
	s, err := a.newSession(cmd)
	if err != nil {
		return err
	}

	tasks, err := s.discoverTasks()
	if err != nil {
		return err
	}
	task, err := project.Find(tasks, ref)
	if err != nil {
		return issue.NewErrorContext().
			WithOperation("find task").
			WithResource(ref).
			WithIssue(issue.TaskNotFoundId).
			WithSuggestion("Run 'envfile tasks' to list the available tasks").
			Wrap(err).
			BuildError()
	}

	res, err := s.resolve(a.Environment)
	if err != nil {
		return err
	}

	injector := inject.NewInjector(s.cfg.Selector(), inject.WithLogger(s.logger))
	injector.Apply([]*project.Task{task}, res.Env)

	rt, err := runner.New(string(s.cfg.Runtime))
	if err != nil {
		return err
	}
	s.logger.Debug("running task", "task", task.Path(), "runtime", rt.Name(), "dir", task.WorkDir())

	result := rt.Execute(cmd.Context(), &runner.Request{
		Task:    task,
		Args:    args,
		Environ: a.Environ(),
		Stdin:   cmd.InOrStdin(),
		Stdout:  a.stdout,
		Stderr:  a.stderr,
	})

	if result.Error != nil {
		errCtx := issue.NewErrorContext().
			WithOperation("run task").
			WithResource(task.Path()).
			Wrap(result.Error)
		if errors.Is(result.Error, runner.ErrShellNotFound) {
			errCtx.WithIssue(issue.ShellNotFoundId).
				WithSuggestion("Use the built-in shell with --runtime virtual")
		} else {
			errCtx.WithIssue(issue.ScriptExecutionFailedId).
				WithSuggestion("Check the task script in " + project.TaskFileName)
		}
		return &ExitError{Code: 1, Err: errCtx.BuildError()}
	}
	if !result.Success() {
		s.logger.Debug("task failed", "task", task.Path(), "exit_code", result.ExitCode)
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}
