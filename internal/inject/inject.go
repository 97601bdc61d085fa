// SPDX-License-Identifier: MPL-2.0

package inject

import (
	"io"
	"maps"

	"github.com/jaehyunup/envfile/internal/project"
	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/charmbracelet/log"
)

const (
	// ReasonTestTask: test tasks always receive the mapping.
	ReasonTestTask Reason = "test task"
	// ReasonApplyToAll: every exec task receives the mapping.
	ReasonApplyToAll Reason = "apply_to_all"
	// ReasonNamedTask: the exec task is the configured task name.
	ReasonNamedTask Reason = "named task"
	// ReasonOptIn: the task sets apply_env_file = true.
	ReasonOptIn Reason = "apply_env_file = true"
	// ReasonOptOut: the task sets apply_env_file = false.
	ReasonOptOut Reason = "apply_env_file = false"
	// ReasonNotSelected: an exec task that no rule selected.
	ReasonNotSelected Reason = "not selected"
	// ReasonUnsupportedKind: the task kind never receives the mapping.
	ReasonUnsupportedKind Reason = "unsupported kind"
)

type (
	// TaskEnvironmentSink adds variables to a task's environment.
	TaskEnvironmentSink interface {
		MergeEnvironment(task *project.Task, env envfile.Mapping)
	}

	// TaskSink merges into Task.Env. Variables the task declares itself are
	// kept and win over injected ones.
	TaskSink struct{}

	// Reason explains an injection decision.
	Reason string

	// Selector holds the task selection rules.
	Selector struct {
		// ApplyToAll injects into every exec task.
		ApplyToAll bool
		// TaskName is the exec task that receives the mapping when ApplyToAll is off.
		TaskName string
	}

	// Injection records the decision made for one task.
	Injection struct {
		Task    *project.Task
		Applied bool
		Reason  Reason
	}

	// Injector applies one resolved mapping to many tasks.
	Injector struct {
		selector Selector
		sink     TaskEnvironmentSink
		logger   *log.Logger
	}

	// Option configures an Injector.
	Option func(*Injector)
)

// WithSink replaces the default TaskSink.
func WithSink(sink TaskEnvironmentSink) Option {
	return func(i *Injector) { i.sink = sink }
}

// WithLogger sets the logger that receives per-task decisions at debug level.
func WithLogger(logger *log.Logger) Option {
	return func(i *Injector) { i.logger = logger }
}

// NewInjector creates an Injector for the given selection rules.
func NewInjector(selector Selector, opts ...Option) *Injector {
	i := &Injector{
		selector: selector,
		sink:     TaskSink{},
		logger:   log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// MergeEnvironment implements TaskEnvironmentSink.
func (TaskSink) MergeEnvironment(task *project.Task, env envfile.Mapping) {
	merged := env.Clone()
	maps.Copy(merged, task.Env)
	task.Env = merged
}

// Select reports whether task receives the mapping and why.
func (s Selector) Select(task *project.Task) (bool, Reason) {
	switch task.Kind {
	case project.KindTest:
		return true, ReasonTestTask
	case project.KindExec:
		switch {
		case s.ApplyToAll:
			return true, ReasonApplyToAll
		case task.ApplyEnvFile != nil && !*task.ApplyEnvFile:
			return false, ReasonOptOut
		case task.Name == s.TaskName:
			return true, ReasonNamedTask
		case task.ApplyEnvFile != nil:
			return true, ReasonOptIn
		default:
			return false, ReasonNotSelected
		}
	default:
		return false, ReasonUnsupportedKind
	}
}

// Plan returns the decisions for tasks without touching them.
func (i *Injector) Plan(tasks []*project.Task) []Injection {
	report := make([]Injection, 0, len(tasks))
	for _, task := range tasks {
		applied, reason := i.selector.Select(task)
		report = append(report, Injection{Task: task, Applied: applied, Reason: reason})
	}
	return report
}

// Apply merges env into every selected task. The same mapping is shared by
// all tasks; each task gets its own copy.
func (i *Injector) Apply(tasks []*project.Task, env envfile.Mapping) []Injection {
	report := i.Plan(tasks)
	for _, inj := range report {
		if inj.Applied {
			i.sink.MergeEnvironment(inj.Task, env)
		}
		i.logger.Debug("env file injection",
			"task", inj.Task.Path(),
			"kind", inj.Task.Kind,
			"applied", inj.Applied,
			"reason", inj.Reason,
			"keys", len(env),
		)
	}
	return report
}
