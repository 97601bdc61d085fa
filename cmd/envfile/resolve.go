// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/spf13/cobra"
)

func newResolveCommand(app *App) *cobra.Command {
	var (
		format  string
		explain bool
		raw     bool
	)

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the environment resolved from the env files",
		Long: `Resolve the env files of the project root and print the result.

By default only the variables that would be injected are printed: variables
already set in the current environment are left out unless --override is
given. Use --raw to print the merged files before that step.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := app.newSession(cmd)
			if err != nil {
				return err
			}
			res, err := s.resolve(app.Environment)
			if err != nil {
				return err
			}

			if explain {
				return app.printExplanation(res)
			}

			m := res.Env
			if raw {
				m = res.Raw
			}
			out, err := formatMapping(m, OutputFormat(strings.ToLower(format)))
			if err != nil {
				return err
			}
			fmt.Fprint(app.stdout, out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", string(FormatDotenv), "output format: dotenv, json, yaml or shell")
	cmd.Flags().BoolVar(&explain, "explain", false, "describe the files that were read and the variables that were dropped")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the merged files without the override policy")

	return cmd
}

// printExplanation renders a markdown report of a resolution.
func (a *App) printExplanation(res *envfile.Resolution) error {
	out, err := renderMarkdown(explainResolution(res))
	if err != nil {
		return err
	}
	fmt.Fprint(a.stdout, out)
	return nil
}

func explainResolution(res *envfile.Resolution) string {
	opts := res.Options

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Env files for %s\n\n", res.Root)
	fmt.Fprintf(&sb, "- policy: `%s`\n", opts.Policy)
	if opts.Policy == envfile.PolicyMerge {
		fmt.Fprintf(&sb, "- priority: `%s`\n", opts.Priority)
	} else {
		fmt.Fprintf(&sb, "- mode: `%s`\n", opts.Style)
	}
	fmt.Fprintf(&sb, "- override: `%t`\n", opts.Override)

	sb.WriteString("\n## Files read\n\n")
	if len(res.Sources) == 0 {
		sb.WriteString("No env file found.\n")
	}
	for i, src := range res.Sources {
		fmt.Fprintf(&sb, "%d. `%s` (%s)\n", i+1, src.Name, src.Style)
	}
	if opts.Policy == envfile.PolicyMerge && len(res.Sources) > 1 {
		sb.WriteString("\nLater files win over earlier ones.\n")
	}

	fmt.Fprintf(&sb, "\n## Variables\n\n%d resolved, %d injected.\n", len(res.Raw), len(res.Env))
	if len(res.Dropped) > 0 {
		sb.WriteString("\nAlready set in the environment, left untouched:\n\n")
		for _, key := range res.Dropped {
			fmt.Fprintf(&sb, "- `%s`\n", key)
		}
	}
	return sb.String()
}
