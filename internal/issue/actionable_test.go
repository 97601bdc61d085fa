// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"io/fs"
	"strings"
	"testing"
)

func TestActionableError_Error(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      *ActionableError
		expected string
	}{
		{
			name:     "operation only",
			err:      &ActionableError{Operation: "resolve env files"},
			expected: "failed to resolve env files",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "load env file", Resource: ".env.json"},
			expected: "failed to load env file: .env.json",
		},
		{
			name:     "full context",
			err:      &ActionableError{Operation: "load env file", Resource: ".env", Cause: errors.New("permission denied")},
			expected: "failed to load env file: .env: permission denied",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestActionableError_ErrorsIs(t *testing.T) {
	t.Parallel()

	err := NewErrorContext().
		WithOperation("load env file").
		Wrap(fs.ErrPermission).
		BuildError()

	if !errors.Is(err, fs.ErrPermission) {
		t.Error("errors.Is should see through ActionableError")
	}

	var ae *ActionableError
	if !errors.As(err, &ae) {
		t.Fatal("errors.As should find ActionableError")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	inner := errors.New("value of \"PORT\" must be a string")
	err := &ActionableError{
		Operation:   "load env file",
		Resource:    ".env.json",
		Suggestions: []string{"Quote the value", "Run envfile check"},
		Cause:       errors.Join(inner),
	}

	short := err.Format(false)
	if !strings.Contains(short, "  • Quote the value") || !strings.Contains(short, "  • Run envfile check") {
		t.Errorf("Format(false) missing suggestions:\n%s", short)
	}
	if strings.Contains(short, "Error chain:") {
		t.Errorf("Format(false) should not include the error chain:\n%s", short)
	}

	long := err.Format(true)
	if !strings.Contains(long, "Error chain:") || !strings.Contains(long, "1. ") {
		t.Errorf("Format(true) missing error chain:\n%s", long)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if got := NewErrorContext().WithResource(".env").Build(); got != nil {
		t.Errorf("Build() without operation = %+v, want nil", got)
	}
	if err := NewErrorContext().BuildError(); err != nil {
		t.Errorf("BuildError() without operation = %v, want nil", err)
	}

	cause := errors.New("boom")
	ctx := NewErrorContext().
		WithOperation("run task").
		WithResource("api:bootRun").
		WithIssue(ScriptExecutionFailedId).
		WithSuggestion("first").
		Wrap(cause)

	ae := ctx.Build()
	if ae.Operation != "run task" || ae.Resource != "api:bootRun" || ae.Issue != ScriptExecutionFailedId {
		t.Errorf("unexpected fields: %+v", ae)
	}
	if !errors.Is(ae.Cause, cause) {
		t.Errorf("Cause = %v, want %v", ae.Cause, cause)
	}

	// Suggestions added after Build do not leak into the built error.
	ctx.WithSuggestion("second")
	if len(ae.Suggestions) != 1 {
		t.Errorf("Suggestions = %v, want one entry", ae.Suggestions)
	}
}

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	if WrapWithContext(nil, "op", "res") != nil {
		t.Error("WrapWithContext(nil) should return nil")
	}

	ae := WrapWithContext(errors.New("x"), "discover tasks", "/repo")
	if got, want := ae.Error(), "failed to discover tasks: /repo: x"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
