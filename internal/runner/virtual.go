// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// VirtualRuntime executes scripts with the embedded mvdan/sh interpreter.
// External commands are still resolved on the host PATH.
type VirtualRuntime struct{}

// NewVirtualRuntime creates a new virtual runtime
func NewVirtualRuntime() *VirtualRuntime {
	return &VirtualRuntime{}
}

// Name returns the runtime name
func (r *VirtualRuntime) Name() string {
	return VirtualName
}

// Available always returns true; the interpreter is built in.
func (r *VirtualRuntime) Available() bool {
	return true
}

// Validate checks that script parses.
func (r *VirtualRuntime) Validate(script string) error {
	_, err := parseScript(script)
	return err
}

// Execute runs the task script in the virtual shell
func (r *VirtualRuntime) Execute(ctx context.Context, req *Request) *Result {
	prog, err := parseScript(req.Task.Run)
	if err != nil {
		return errorResult(err)
	}

	opts := []interp.RunnerOption{
		interp.Dir(req.Task.WorkDir()),
		interp.Env(expand.ListEnviron(req.environ()...)),
		interp.StdIO(req.Stdin, req.Stdout, req.Stderr),
	}

	// "--" keeps args like "-v" from being read as shell options.
	if len(req.Args) > 0 {
		params := append([]string{"--"}, req.Args...)
		opts = append(opts, interp.Params(params...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return errorResult(fmt.Errorf("failed to create interpreter: %w", err))
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &Result{ExitCode: int(exitStatus)}
		}
		return errorResult(fmt.Errorf("script execution failed: %w", err))
	}

	return &Result{}
}

func parseScript(script string) (*syntax.File, error) {
	prog, err := syntax.NewParser().Parse(strings.NewReader(script), scriptName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptSyntax, err)
	}
	return prog, nil
}
