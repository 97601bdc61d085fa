// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/jaehyunup/envfile/internal/config"
	"github.com/jaehyunup/envfile/internal/issue"
	"github.com/jaehyunup/envfile/internal/testutil"
	"github.com/jaehyunup/envfile/pkg/envfile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTasks = `
[[task]]
name = "bootRun"
run = 'echo "port=$APP_PORT user=$APP_USER args=$*"'

[[task]]
name = "lint"
run = 'echo "port=$APP_PORT"'

[[task]]
name = "test"
kind = "test"
run = 'echo "port=$APP_PORT"'
env = { APP_PORT = "9999" }

[[task]]
name = "fail"
run = "exit 3"
`

type testCLI struct {
	app    *App
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestCLI(ambient envfile.MapEnvironment) *testCLI {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	app := NewApp(Dependencies{
		Config:      config.NewProvider(),
		Environment: ambient,
		Environ:     func() []string { return []string{"HOST_ONLY=1"} },
		Stdout:      stdout,
		Stderr:      stderr,
	})
	return &testCLI{app: app, stdout: stdout, stderr: stderr}
}

func (c *testCLI) run(t *testing.T, args ...string) error {
	t.Helper()

	root := NewRootCommand(c.app)
	root.SilenceErrors = true
	root.SilenceUsage = true
	root.SetArgs(args)
	return root.ExecuteContext(t.Context())
}

func TestResolveCommand(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, map[string]string{
		".env":       "APP_PORT=8080\nAPP_USER=file\n",
		".env.local": "APP_PORT=9090\n",
	})

	cli := newTestCLI(envfile.MapEnvironment{"APP_USER": "ambient"})
	require.NoError(t, cli.run(t, "--root", dir, "resolve"))
	assert.Equal(t, "APP_PORT=\"9090\"\n", cli.stdout.String())

	cli = newTestCLI(envfile.MapEnvironment{"APP_USER": "ambient"})
	require.NoError(t, cli.run(t, "--root", dir, "--prefer-base", "resolve", "--format", "json"))
	assert.Equal(t, "{\n  \"APP_PORT\": \"8080\"\n}\n", cli.stdout.String())

	cli = newTestCLI(envfile.MapEnvironment{"APP_USER": "ambient"})
	require.NoError(t, cli.run(t, "--root", dir, "--prefer-base", "resolve", "--raw", "-o", "shell"))
	assert.Equal(t, "export APP_PORT='8080'\nexport APP_USER='file'\n", cli.stdout.String())
}

func TestResolveCommand_EnvironmentSettings(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, map[string]string{
		".env":      "K=dotenv\n",
		".env.json": `{"K": "json"}`,
	})

	cli := newTestCLI(envfile.MapEnvironment{"ENV_FILE_MODE": "json"})
	require.NoError(t, cli.run(t, "--root", dir, "resolve"))
	assert.Equal(t, "K=\"json\"\n", cli.stdout.String())

	cli = newTestCLI(envfile.MapEnvironment{"ENV_FILE_POLICY": "merge", "ENV_FILE_PRIORITY": "dotenv"})
	require.NoError(t, cli.run(t, "--root", dir, "resolve"))
	assert.Equal(t, "K=\"dotenv\"\n", cli.stdout.String())
}

func TestResolveCommand_Explain(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, map[string]string{".env": "HOME=x\nAPP=1\n"})

	cli := newTestCLI(envfile.MapEnvironment{"HOME": "/home/me"})
	require.NoError(t, cli.run(t, "--root", dir, "resolve", "--explain"))

	out := cli.stdout.String()
	assert.Contains(t, out, ".env")
	assert.Contains(t, out, "HOME")
	assert.Contains(t, out, "2 resolved, 1 injected")
}

func TestResolveCommand_Errors(t *testing.T) {
	t.Parallel()

	t.Run("missing root", func(t *testing.T) {
		t.Parallel()

		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", filepath.Join(t.TempDir(), "missing"), "resolve")

		var ae *issue.ActionableError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, issue.RootNotFoundId, ae.Issue)
	})

	t.Run("invalid json", func(t *testing.T) {
		t.Parallel()

		dir := testutil.WriteProject(t, map[string]string{".env.json": `{"PORT": 8080}`})
		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", dir, "--mode", "json", "resolve")

		var ae *issue.ActionableError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, issue.InvalidJSONEnvFileId, ae.Issue)
		assert.ErrorIs(t, err, envfile.ErrInvalidJSON)
	})

	t.Run("unknown format", func(t *testing.T) {
		t.Parallel()

		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", t.TempDir(), "resolve", "--format", "toml")
		require.Error(t, err)
	})
}

func TestRunCommand(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, map[string]string{
		".env":       "APP_PORT=8080\nAPP_USER=file\n",
		"tasks.toml": testTasks,
	})

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"exec task with args", []string{"run", "bootRun", "a", "-v"}, "port=8080 user=ambient args=a -v\n"},
		{"apply to all", []string{"run", "lint"}, "port=8080\n"},
		{"not selected", []string{"--apply-to-all=false", "run", "lint"}, "port=\n"},
		{"named task", []string{"--apply-to-all=false", "--task", "lint", "run", "lint"}, "port=8080\n"},
		{"task env wins", []string{"--apply-to-all=false", "run", "test"}, "port=9999\n"},
		{"override", []string{"--override", "run", "bootRun"}, "port=8080 user=file args=\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cli := newTestCLI(envfile.MapEnvironment{"APP_USER": "ambient"})
			cli.app.Environ = func() []string { return []string{"APP_USER=ambient"} }

			require.NoError(t, cli.run(t, append([]string{"--root", dir}, tt.args...)...))
			assert.Equal(t, tt.want, cli.stdout.String())
		})
	}
}

func TestRunCommand_Failures(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, map[string]string{"tasks.toml": testTasks})

	t.Run("exit code", func(t *testing.T) {
		t.Parallel()

		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", dir, "run", "fail")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 3, exitErr.Code)
		assert.NoError(t, exitErr.Err)
	})

	t.Run("task not found", func(t *testing.T) {
		t.Parallel()

		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", dir, "run", "deploy")

		var ae *issue.ActionableError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, issue.TaskNotFoundId, ae.Issue)
	})

	t.Run("unknown runtime", func(t *testing.T) {
		t.Parallel()

		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", dir, "--runtime", "container", "run", "lint")

		var ae *issue.ActionableError
		require.ErrorAs(t, err, &ae)
		assert.Equal(t, issue.ConfigLoadFailedId, ae.Issue)
	})
}

func TestTasksCommand(t *testing.T) {
	t.Parallel()

	dir := testutil.WriteProject(t, map[string]string{
		"tasks.toml":     testTasks,
		"api/tasks.toml": "[[task]]\nname = \"serve\"\nrun = \"true\"\napply_env_file = false\n",
	})

	cli := newTestCLI(envfile.MapEnvironment{})
	require.NoError(t, cli.run(t, "--root", dir, "--apply-to-all=false", "tasks"))

	out := cli.stdout.String()
	assert.Regexp(t, `\+ bootRun\s+exec\s+\(named task\)`, out)
	assert.Regexp(t, `- lint\s+exec\s+\(not selected\)`, out)
	assert.Regexp(t, `\+ test\s+test\s+\(test task\)`, out)
	assert.Regexp(t, `- api:serve\s+exec\s+\(apply_env_file = false\)`, out)
}

func TestCheckCommand(t *testing.T) {
	t.Parallel()

	t.Run("valid project", func(t *testing.T) {
		t.Parallel()

		dir := testutil.WriteProject(t, map[string]string{
			".env":       "A=1\n",
			".env.json":  `{"B": "2"}`,
			"tasks.toml": testTasks,
		})
		cli := newTestCLI(envfile.MapEnvironment{})
		require.NoError(t, cli.run(t, "--root", dir, "check"))
		assert.Contains(t, cli.stdout.String(), "0 error(s), 0 warning(s)")
	})

	t.Run("problems", func(t *testing.T) {
		t.Parallel()

		dir := testutil.WriteProject(t, map[string]string{
			".env":       "A=1\nB=\"a\\tb\"\nbroken\n",
			".env.json":  `{"B": 2}`,
			"tasks.toml": "[[task]]\nname = \"bad\"\nrun = \"echo 'unterminated\"\n",
		})
		cli := newTestCLI(envfile.MapEnvironment{})
		err := cli.run(t, "--root", dir, "check")

		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
		assert.Equal(t, 1, exitErr.Code)

		out := cli.stdout.String()
		assert.Contains(t, out, "line 3 skipped")
		assert.Contains(t, out, "other dotenv loaders")
		assert.Contains(t, out, "invalid JSON env file")
		assert.Contains(t, out, "2 error(s)")
	})

	t.Run("directory candidate is ignored", func(t *testing.T) {
		t.Parallel()

		dir := testutil.WriteProject(t, map[string]string{".env.local.json": `{"A": "1"}`})
		testutil.MustMkdirAll(t, filepath.Join(dir, ".env"))

		cli := newTestCLI(envfile.MapEnvironment{})
		require.NoError(t, cli.run(t, "--root", dir, "check"))

		out := cli.stdout.String()
		assert.Contains(t, out, "not a regular file")
		assert.Contains(t, out, "ignored")
		assert.Contains(t, out, "0 error(s), 1 warning(s)")

		cli = newTestCLI(envfile.MapEnvironment{})
		require.NoError(t, cli.run(t, "--root", dir, "--mode", "json", "resolve"))
		assert.Equal(t, "A=\"1\"\n", cli.stdout.String())
	})
}

func TestConfigCommands(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cli := newTestCLI(envfile.MapEnvironment{"ENV_FILE_TASK": "serve"})
	require.NoError(t, cli.run(t, "--root", dir, "--mode", "json", "config", "show"))
	out := cli.stdout.String()
	assert.Regexp(t, `mode\s+json \(flag, ENV_FILE_MODE\)`, out)
	assert.Regexp(t, `task\s+serve \(env, ENV_FILE_TASK\)`, out)
	assert.Regexp(t, `policy\s+single \(default, ENV_FILE_POLICY\)`, out)

	cli = newTestCLI(envfile.MapEnvironment{})
	require.NoError(t, cli.run(t, "--root", dir, "--override", "config", "init"))
	path := filepath.Join(dir, config.ProjectConfigFileName)
	assert.FileExists(t, path)

	cli = newTestCLI(envfile.MapEnvironment{})
	err := cli.run(t, "--root", dir, "config", "init")
	assert.ErrorIs(t, err, config.ErrConfigExists)

	cli = newTestCLI(envfile.MapEnvironment{})
	require.NoError(t, cli.run(t, "--root", dir, "config", "show"))
	assert.Regexp(t, `override\s+true \(file, ENV_FILE_OVERRIDE\)`, cli.stdout.String())

	cli = newTestCLI(envfile.MapEnvironment{})
	require.NoError(t, cli.run(t, "--root", dir, "config", "path"))
	assert.Equal(t, path+"\n", cli.stdout.String())
}

func TestPrintError(t *testing.T) {
	t.Parallel()

	app := NewApp(Dependencies{Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}})

	var buf bytes.Buffer
	app.printError(&buf, &ExitError{Code: 2})
	assert.Empty(t, buf.String())

	ae := issue.NewErrorContext().
		WithOperation("run task").
		WithResource("bootRun").
		WithSuggestion("try again").
		WithIssue(issue.ScriptExecutionFailedId).
		Wrap(errors.New("boom")).
		BuildError()

	app.printError(&buf, &ExitError{Code: 1, Err: ae})
	out := buf.String()
	assert.Contains(t, out, "failed to run task: bootRun: boom")
	assert.Contains(t, out, "try again")
	assert.NotContains(t, out, "Task script failed")

	buf.Reset()
	app.verbose = true
	app.printError(&buf, ae)
	out = buf.String()
	assert.Contains(t, out, "Error chain:")
	assert.Contains(t, out, "Task script failed")
}
