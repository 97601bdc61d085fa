// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// NativeRuntime executes scripts with the host shell
type NativeRuntime struct {
	// Shell overrides the default shell
	Shell string
}

// NewNativeRuntime creates a new native runtime
func NewNativeRuntime() *NativeRuntime {
	return &NativeRuntime{}
}

// Name returns the runtime name
func (r *NativeRuntime) Name() string {
	return NativeName
}

// Available returns whether a shell can be found
func (r *NativeRuntime) Available() bool {
	_, err := r.getShell()
	return err == nil
}

// Execute runs the task script with the host shell
func (r *NativeRuntime) Execute(ctx context.Context, req *Request) *Result {
	shell, err := r.getShell()
	if err != nil {
		return errorResult(err)
	}

	args := shellArgs(shell, req.Task.Run, req.Args)
	cmd := exec.CommandContext(ctx, shell, args...)
	cmd.Dir = req.Task.WorkDir()
	cmd.Env = req.environ()
	cmd.Stdin = req.Stdin
	cmd.Stdout = req.Stdout
	cmd.Stderr = req.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &Result{ExitCode: exitErr.ExitCode()}
		}
		return errorResult(fmt.Errorf("failed to execute task: %w", err))
	}

	return &Result{}
}

// getShell determines which shell to use
func (r *NativeRuntime) getShell() (string, error) {
	if r.Shell != "" {
		return r.Shell, nil
	}

	if runtime.GOOS == "windows" {
		if cmd, err := exec.LookPath("cmd"); err == nil {
			return cmd, nil
		}
		return "", ErrShellNotFound
	}

	if shell := os.Getenv("SHELL"); shell != "" {
		return shell, nil
	}
	for _, name := range []string{"bash", "sh"} {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrShellNotFound
}

// shellArgs builds the shell arguments for script. POSIX shells get
// `-c script envfile args...` so args become $1, $2, ...; cmd.exe cannot
// take positional args after /C and only receives the script.
func shellArgs(shell, script string, args []string) []string {
	base := filepath.Base(shell)
	// Windows paths seen on a Unix host.
	if idx := strings.LastIndex(base, "\\"); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimSuffix(base, ".exe")

	if strings.EqualFold(base, "cmd") {
		return []string{"/C", script}
	}

	out := make([]string, 0, len(args)+3)
	out = append(out, "-c", script, scriptName)
	return append(out, args...)
}
