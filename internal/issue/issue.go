// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	RootNotFoundId
	EnvFileUnreadableId
	InvalidJSONEnvFileId
	TaskFileParseErrorId
	TaskNotFoundId
	ScriptExecutionFailedId
	ShellNotFoundId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	Issue struct {
		id       Id          // ID used to lookup the issue
		mdMsg    MarkdownMsg // Markdown text that will be rendered
		docLinks []HttpLink
		extLinks []HttpLink // external links that might be useful for the user
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the issue markdown with the given glamour style
// ("dark", "light", "notty", "auto" or a path to a JSON style).
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Where configuration comes from (highest precedence first):
1. Command-line flags (--mode, --override, --apply-to-all, ...)
2. envfile.cue in the project root, or ~/.config/envfile/config.cue
3. Environment variables (ENV_FILE_MODE, ENV_FILE_OVERRIDE, ...)
4. Built-in defaults

## Things you can try:
- Check the CUE syntax of your config file
- Show the effective configuration:
~~~
$ envfile config show
~~~`,
	}

	rootNotFoundIssue = &Issue{
		id: RootNotFoundId,
		mdMsg: `
# Project root not found!

The directory given with --root does not exist or is not a directory.

## Things you can try:
- Run envfile from your project directory
- Pass an existing directory:
~~~
$ envfile --root /path/to/project resolve
~~~`,
	}

	envFileUnreadableIssue = &Issue{
		id: EnvFileUnreadableId,
		mdMsg: `
# Env file cannot be read!

An env file exists but could not be read. Missing files are fine; unreadable
ones abort the resolution so that no partial environment is injected.

## Things you can try:
- Check the file permissions:
~~~
$ ls -l .env .env.local .env.json .env.local.json
~~~
- Make sure the candidate is a regular file`,
	}

	invalidJSONEnvFileIssue = &Issue{
		id: InvalidJSONEnvFileId,
		mdMsg: `
# Invalid JSON env file!

JSON env files must contain a single flat object whose values are all strings.

## Example:
~~~json
{
  "DATABASE_URL": "postgres://localhost/app",
  "PORT": "8080"
}
~~~

## Not allowed:
- Numbers or booleans (write "8080" instead of 8080)
- null values
- Nested objects and arrays`,
	}

	taskFileParseErrorIssue = &Issue{
		id: TaskFileParseErrorId,
		mdMsg: `
# Failed to parse tasks.toml!

## Example tasks.toml:
~~~toml
[[task]]
name = "bootRun"
kind = "exec"
run = "./gradlew bootRun"

[[task]]
name = "test"
kind = "test"
run = "go test ./..."
env = { CI = "true" }
~~~

## Things you can try:
- Check the TOML syntax
- Every task needs a name and a run script`,
	}

	taskNotFoundIssue = &Issue{
		id: TaskNotFoundId,
		mdMsg: `
# Task not found!

## Things you can try:
- List the available tasks:
~~~
$ envfile tasks
~~~
- Qualify the task with its project path (e.g. api:bootRun)`,
	}

	scriptExecutionFailedIssue = &Issue{
		id: ScriptExecutionFailedId,
		mdMsg: `
# Task script failed!

The task ran but its script could not be executed.

## Things you can try:
- Check the script syntax in tasks.toml
- Inspect the injected environment:
~~~
$ envfile resolve --explain
~~~
- Switch runtimes with --runtime native or --runtime virtual`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

Could not find a suitable shell for the 'native' runtime.

## Shells we look for:
- Linux/macOS: $SHELL, bash, sh
- Windows: cmd

## Things you can try:
- Install bash or another POSIX shell
- Use the 'virtual' runtime instead (built-in shell):
~~~
$ envfile run --runtime virtual <task>
~~~`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():      configLoadFailedIssue,
		rootNotFoundIssue.Id():          rootNotFoundIssue,
		envFileUnreadableIssue.Id():     envFileUnreadableIssue,
		invalidJSONEnvFileIssue.Id():    invalidJSONEnvFileIssue,
		taskFileParseErrorIssue.Id():    taskFileParseErrorIssue,
		taskNotFoundIssue.Id():          taskNotFoundIssue,
		scriptExecutionFailedIssue.Id(): scriptExecutionFailedIssue,
		shellNotFoundIssue.Id():         shellNotFoundIssue,
	}
)

// Values returns all catalogue entries ordered by Id.
func Values() []*Issue {
	ids := maps.Keys(issues)
	slices.Sort(ids)

	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalogue entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
