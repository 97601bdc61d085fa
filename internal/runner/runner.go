// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/jaehyunup/envfile/internal/project"
	"github.com/jaehyunup/envfile/pkg/envfile"
)

const (
	// VirtualName is the name of the embedded shell runtime.
	VirtualName = "virtual"
	// NativeName is the name of the host shell runtime.
	NativeName = "native"

	// scriptName is $0 for task scripts.
	scriptName = "envfile"
)

var (
	// ErrUnknownRuntime is returned by New for unrecognized runtime names.
	ErrUnknownRuntime = errors.New("unknown runtime")
	// ErrShellNotFound is returned by the native runtime when no shell is available.
	ErrShellNotFound = errors.New("no shell found")
	// ErrScriptSyntax is returned by the virtual runtime for scripts that do not parse.
	ErrScriptSyntax = errors.New("script syntax error")
)

type (
	// Runtime executes a task script.
	Runtime interface {
		// Name returns the runtime name.
		Name() string
		// Available reports whether the runtime can run on this host.
		Available() bool
		// Execute runs the task. It never returns nil.
		Execute(ctx context.Context, req *Request) *Result
	}

	// Request describes one task execution.
	Request struct {
		Task *project.Task
		// Args are the positional parameters ($1, $2, ...).
		Args []string
		// Environ is the host environment the task env is laid over.
		// Nil means os.Environ().
		Environ []string
		Stdin   io.Reader
		Stdout  io.Writer
		Stderr  io.Writer
	}

	// Result is the outcome of an execution. Error is set only for failures
	// to start or interpret the script; a script that runs and exits
	// non-zero has a nil Error.
	Result struct {
		ExitCode int
		Error    error
	}
)

// New returns the runtime with the given name.
func New(name string) (Runtime, error) {
	switch name {
	case VirtualName:
		return NewVirtualRuntime(), nil
	case NativeName:
		return NewNativeRuntime(), nil
	default:
		return nil, fmt.Errorf("%w: %q (valid: virtual, native)", ErrUnknownRuntime, name)
	}
}

// Success reports whether the script ran and exited zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0 && r.Error == nil
}

// BuildEnviron overlays task on base (KEY=VALUE entries) and returns the
// result sorted by key. Task values replace host values.
func BuildEnviron(base []string, task envfile.Mapping) []string {
	env := envfile.Mapping(envfile.EnvironmentFromList(base))
	maps.Copy(env, task)
	return env.Environ()
}

func (req *Request) environ() []string {
	base := req.Environ
	if base == nil {
		base = os.Environ()
	}
	return BuildEnviron(base, req.Task.Env)
}

func errorResult(err error) *Result {
	return &Result{ExitCode: 1, Error: err}
}
