// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/jaehyunup/envfile/internal/inject"

	"github.com/spf13/cobra"
)

func newTasksCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"list"},
		Short:   "List the tasks and whether they receive the env files",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			tasks, err := s.discoverTasks()
			if err != nil {
				return err
			}
			if len(tasks) == 0 {
				fmt.Fprintln(app.stdout, WarningStyle.Render("No tasks found.")+" Declare tasks in "+CmdStyle.Render("tasks.toml")+".")
				return nil
			}

			plan := inject.NewInjector(s.cfg.Selector(), inject.WithLogger(s.logger)).Plan(tasks)

			width := 0
			for _, in := range plan {
				width = max(width, len(in.Task.Path()))
			}

			fmt.Fprintln(app.stdout, TitleStyle.Render("Tasks"))
			for _, in := range plan {
				mark := ErrorStyle.Render("-")
				if in.Applied {
					mark = SuccessStyle.Render("+")
				}
				name := CmdStyle.Render(in.Task.Path() + strings.Repeat(" ", width-len(in.Task.Path())))
				line := fmt.Sprintf("  %s %s  %s", mark, name, columnStyle.Render(in.Task.Kind.String()))
				line += SubtitleStyle.Render(" (" + string(in.Reason) + ")")
				if in.Task.Description != "" {
					line += "  " + in.Task.Description
				}
				fmt.Fprintln(app.stdout, line)
			}
			return nil
		},
	}
}
