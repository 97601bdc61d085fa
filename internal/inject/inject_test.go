// SPDX-License-Identifier: MPL-2.0

package inject

import (
	"bytes"
	"testing"

	"github.com/jaehyunup/envfile/internal/project"
	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

type recordingSink struct {
	calls []string
}

func (r *recordingSink) MergeEnvironment(task *project.Task, _ envfile.Mapping) {
	r.calls = append(r.calls, task.Path())
}

func TestSelector_Select(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		selector   Selector
		task       project.Task
		wantApply  bool
		wantReason Reason
	}{
		{
			name:       "test task always",
			selector:   Selector{ApplyToAll: false, TaskName: "bootRun"},
			task:       project.Task{Name: "unit", Kind: project.KindTest, ApplyEnvFile: boolPtr(false)},
			wantApply:  true,
			wantReason: ReasonTestTask,
		},
		{
			name:       "apply to all",
			selector:   Selector{ApplyToAll: true, TaskName: "bootRun"},
			task:       project.Task{Name: "serve", Kind: project.KindExec},
			wantApply:  true,
			wantReason: ReasonApplyToAll,
		},
		{
			name:       "apply to all beats opt out",
			selector:   Selector{ApplyToAll: true},
			task:       project.Task{Name: "serve", Kind: project.KindExec, ApplyEnvFile: boolPtr(false)},
			wantApply:  true,
			wantReason: ReasonApplyToAll,
		},
		{
			name:       "named task",
			selector:   Selector{TaskName: "bootRun"},
			task:       project.Task{Name: "bootRun", Kind: project.KindExec},
			wantApply:  true,
			wantReason: ReasonNamedTask,
		},
		{
			name:       "named task opted out",
			selector:   Selector{TaskName: "bootRun"},
			task:       project.Task{Name: "bootRun", Kind: project.KindExec, ApplyEnvFile: boolPtr(false)},
			wantApply:  false,
			wantReason: ReasonOptOut,
		},
		{
			name:       "opt in",
			selector:   Selector{TaskName: "bootRun"},
			task:       project.Task{Name: "serve", Kind: project.KindExec, ApplyEnvFile: boolPtr(true)},
			wantApply:  true,
			wantReason: ReasonOptIn,
		},
		{
			name:       "other exec task",
			selector:   Selector{TaskName: "bootRun"},
			task:       project.Task{Name: "serve", Kind: project.KindExec},
			wantApply:  false,
			wantReason: ReasonNotSelected,
		},
		{
			name:       "unsupported kind",
			selector:   Selector{ApplyToAll: true},
			task:       project.Task{Name: "lint", Kind: "check", ApplyEnvFile: boolPtr(true)},
			wantApply:  false,
			wantReason: ReasonUnsupportedKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			applied, reason := tt.selector.Select(&tt.task)
			assert.Equal(t, tt.wantApply, applied)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestTaskSink_TaskKeysWin(t *testing.T) {
	t.Parallel()

	task := &project.Task{Name: "bootRun", Kind: project.KindExec, Env: envfile.Mapping{"PORT": "9090", "CI": "true"}}
	env := envfile.Mapping{"PORT": "8080", "DB_URL": "postgres://localhost/app"}

	TaskSink{}.MergeEnvironment(task, env)

	assert.Equal(t, envfile.Mapping{"PORT": "9090", "CI": "true", "DB_URL": "postgres://localhost/app"}, task.Env)
	assert.Equal(t, "8080", env["PORT"], "the shared mapping must not be modified")
}

func TestTaskSink_NilTaskEnv(t *testing.T) {
	t.Parallel()

	task := &project.Task{Name: "bootRun"}
	TaskSink{}.MergeEnvironment(task, envfile.Mapping{"A": "1"})

	assert.Equal(t, envfile.Mapping{"A": "1"}, task.Env)
}

func TestInjector_Apply(t *testing.T) {
	t.Parallel()

	tasks := []*project.Task{
		{Name: "bootRun", Kind: project.KindExec},
		{Name: "serve", Kind: project.KindExec},
		{Name: "test", Kind: project.KindTest, Project: "api"},
	}
	env := envfile.Mapping{"A": "1"}

	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	report := NewInjector(Selector{TaskName: "bootRun"}, WithLogger(logger)).Apply(tasks, env)

	require.Len(t, report, 3)
	assert.True(t, report[0].Applied)
	assert.False(t, report[1].Applied)
	assert.True(t, report[2].Applied)

	assert.Equal(t, envfile.Mapping{"A": "1"}, tasks[0].Env)
	assert.Empty(t, tasks[1].Env)
	assert.Equal(t, envfile.Mapping{"A": "1"}, tasks[2].Env)

	// Each task owns its copy.
	tasks[0].Env["A"] = "changed"
	assert.Equal(t, "1", tasks[2].Env["A"])
	assert.Equal(t, "1", env["A"])

	out := buf.String()
	assert.Contains(t, out, "env file injection")
	assert.Contains(t, out, "api:test")
	assert.Contains(t, out, string(ReasonNotSelected))
}

func TestInjector_CustomSink(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	tasks := []*project.Task{
		{Name: "bootRun", Kind: project.KindExec},
		{Name: "lint", Kind: "check"},
		{Name: "it", Kind: project.KindTest, Project: "web"},
	}

	NewInjector(Selector{ApplyToAll: true}, WithSink(sink)).Apply(tasks, envfile.Mapping{"A": "1"})

	assert.Equal(t, []string{"bootRun", "web:it"}, sink.calls)
	assert.Nil(t, tasks[0].Env, "a custom sink replaces the default merge")
}

func TestInjector_PlanDoesNotMutate(t *testing.T) {
	t.Parallel()

	task := &project.Task{Name: "bootRun", Kind: project.KindExec}
	report := NewInjector(Selector{ApplyToAll: true}).Plan([]*project.Task{task})

	require.Len(t, report, 1)
	assert.True(t, report[0].Applied)
	assert.Equal(t, ReasonApplyToAll, report[0].Reason)
	assert.Nil(t, task.Env)
}
