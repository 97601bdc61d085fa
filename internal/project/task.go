// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jaehyunup/envfile/pkg/envfile"
)

const (
	// KindExec marks a task that launches the application.
	KindExec Kind = "exec"
	// KindTest marks a task that runs the test suite.
	KindTest Kind = "test"
)

var (
	// ErrTaskNotFound is returned when a task reference matches no task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrAmbiguousTask is returned when an unqualified reference matches tasks in several subprojects.
	ErrAmbiguousTask = errors.New("ambiguous task reference")
	// ErrInvalidTask is the sentinel error wrapped by InvalidTaskError.
	ErrInvalidTask = errors.New("invalid task")
)

type (
	// Kind is the task category. Only exec and test tasks take part in
	// env file injection; other kinds are parsed and listed but never injected.
	Kind string

	// Task is a runnable unit declared in a tasks.toml file.
	Task struct {
		// Name is unique within its project.
		Name string `toml:"name"`
		// Kind defaults to KindExec.
		Kind Kind `toml:"kind"`
		// Run is the shell script executed by the task.
		Run string `toml:"run"`
		// Dir is the working directory, relative to the project directory unless absolute.
		Dir string `toml:"dir"`
		// Env holds task-scoped variables. Injected env file values are merged
		// in underneath them.
		Env envfile.Mapping `toml:"env"`
		// ApplyEnvFile opts the task in (true) or out (false) of injection.
		// Nil leaves the decision to the selection rules.
		ApplyEnvFile *bool `toml:"apply_env_file"`
		// Description is shown by the task listing.
		Description string `toml:"description"`

		// Project is the slash-separated project path relative to the root, "" for the root project.
		Project string `toml:"-"`
		// ProjectDir is the absolute project directory.
		ProjectDir string `toml:"-"`
	}

	// InvalidTaskError is returned when a task declaration is incomplete.
	// It wraps ErrInvalidTask for errors.Is() compatibility.
	InvalidTaskError struct {
		Index  int
		Name   string
		Reason string
	}
)

// String returns the string representation of the Kind.
func (k Kind) String() string { return string(k) }

// Injectable reports whether tasks of this kind can receive env file values.
func (k Kind) Injectable() bool {
	return k == KindExec || k == KindTest
}

// Path returns the qualified task reference, "name" for root tasks and
// "project:name" for subproject tasks.
func (t *Task) Path() string {
	if t.Project == "" {
		return t.Name
	}
	return t.Project + ":" + t.Name
}

// WorkDir returns the directory the task script runs in.
func (t *Task) WorkDir() string {
	if t.Dir == "" {
		return t.ProjectDir
	}
	if filepath.IsAbs(t.Dir) {
		return t.Dir
	}
	return filepath.Join(t.ProjectDir, filepath.FromSlash(t.Dir))
}

// Find returns the task referenced by ref. A qualified reference
// ("api:bootRun") must match exactly. An unqualified name prefers the root
// project and otherwise must match exactly one subproject task.
func Find(tasks []*Task, ref string) (*Task, error) {
	project, name, qualified := cutReference(ref)

	var matches []*Task
	for _, t := range tasks {
		if t.Name != name {
			continue
		}
		if qualified {
			if t.Project == project {
				return t, nil
			}
			continue
		}
		if t.Project == "" {
			return t, nil
		}
		matches = append(matches, t)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, ref)
	case 1:
		return matches[0], nil
	default:
		paths := make([]string, 0, len(matches))
		for _, t := range matches {
			paths = append(paths, t.Path())
		}
		return nil, fmt.Errorf("%w: %s matches %s", ErrAmbiguousTask, ref, strings.Join(paths, ", "))
	}
}

// cutReference splits "project:name" at the last colon. A leading colon
// (":bootRun") addresses the root project.
func cutReference(ref string) (project, name string, qualified bool) {
	idx := strings.LastIndexByte(ref, ':')
	if idx < 0 {
		return "", ref, false
	}
	return strings.Trim(ref[:idx], ":"), ref[idx+1:], true
}

// Error implements the error interface for InvalidTaskError.
func (e *InvalidTaskError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("task #%d: %s", e.Index+1, e.Reason)
	}
	return fmt.Sprintf("task %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidTask for errors.Is() compatibility.
func (e *InvalidTaskError) Unwrap() error { return ErrInvalidTask }
