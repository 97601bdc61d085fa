// SPDX-License-Identifier: MPL-2.0

package project

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// TaskFileName is the task file looked up in every project directory.
const TaskFileName = "tasks.toml"

// ErrTaskFile is the sentinel error wrapped by TaskFileError.
var ErrTaskFile = errors.New("invalid task file")

type (
	// TaskFileError reports a tasks.toml that cannot be parsed.
	// It wraps ErrTaskFile and the underlying cause.
	TaskFileError struct {
		Path string
		// Line is 1-based, 0 when unknown.
		Line int
		Err  error
	}

	taskFile struct {
		Tasks []*Task `toml:"task"`
	}
)

// skippedDirs are never searched for subprojects.
var skippedDirs = []string{"vendor", "node_modules"}

// Discover enumerates the tasks of the project rooted at root and of every
// subproject below it. Hidden directories, vendor and node_modules are not
// searched. Tasks are ordered by project path, then declaration order.
func Discover(root string) ([]*Task, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root '%s': %w", root, err)
	}

	var tasks []*Task
	err = filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			if path != absRoot && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != TaskFileName || !d.Type().IsRegular() {
			return nil
		}

		dir := filepath.Dir(path)
		rel, err := filepath.Rel(absRoot, dir)
		if err != nil {
			return err
		}
		project := filepath.ToSlash(rel)
		if project == "." {
			project = ""
		}

		parsed, err := ParseFile(path)
		if err != nil {
			return err
		}
		for _, t := range parsed {
			t.Project = project
			t.ProjectDir = dir
		}
		tasks = append(tasks, parsed...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(tasks, func(a, b *Task) int {
		return strings.Compare(a.Project, b.Project)
	})
	return tasks, nil
}

// ParseFile reads and parses a single tasks.toml.
func ParseFile(path string) ([]*Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file '%s': %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes tasks.toml content. Unknown fields are rejected; a task
// without a kind is an exec task.
func Parse(path string, data []byte) ([]*Task, error) {
	var f taskFile
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, newTaskFileError(path, err)
	}

	seen := make(map[string]bool, len(f.Tasks))
	for i, t := range f.Tasks {
		t.Name = strings.TrimSpace(t.Name)
		switch {
		case t.Name == "":
			return nil, &TaskFileError{Path: path, Err: &InvalidTaskError{Index: i, Reason: "missing name"}}
		case strings.ContainsAny(t.Name, ": \t"):
			return nil, &TaskFileError{Path: path, Err: &InvalidTaskError{Index: i, Name: t.Name, Reason: "name must not contain ':' or whitespace"}}
		case seen[t.Name]:
			return nil, &TaskFileError{Path: path, Err: &InvalidTaskError{Index: i, Name: t.Name, Reason: "duplicate name"}}
		case strings.TrimSpace(t.Run) == "":
			return nil, &TaskFileError{Path: path, Err: &InvalidTaskError{Index: i, Name: t.Name, Reason: "missing run script"}}
		}
		seen[t.Name] = true

		if t.Kind == "" {
			t.Kind = KindExec
		}
		if t.Env == nil {
			t.Env = make(map[string]string)
		}
	}
	return f.Tasks, nil
}

func newTaskFileError(path string, err error) *TaskFileError {
	tfe := &TaskFileError{Path: path, Err: err}

	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		tfe.Line, _ = decodeErr.Position()
	}
	var strictErr *toml.StrictMissingError
	if errors.As(err, &strictErr) && len(strictErr.Errors) > 0 {
		tfe.Line, _ = strictErr.Errors[0].Position()
	}
	return tfe
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || slices.Contains(skippedDirs, name)
}

// Error implements the error interface for TaskFileError.
func (e *TaskFileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns ErrTaskFile and the cause for errors.Is() and errors.As().
func (e *TaskFileError) Unwrap() []error { return []error{ErrTaskFile, e.Err} }
