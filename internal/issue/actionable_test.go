// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"errors"
	"fmt"
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
			err:      &ActionableError{Operation: "prepare release"},
			expected: "failed to prepare release",
		},
		{
			name:     "operation with resource",
			err:      &ActionableError{Operation: "publish release", Resource: "origin"},
			expected: "failed to publish release: origin",
		},
		{
			name:     "operation with cause",
			err:      &ActionableError{Operation: "load configuration", Cause: errors.New("syntax error")},
			expected: "failed to load configuration: syntax error",
		},
		{
			name: "full context",
			err: &ActionableError{
				Operation: "update manifest",
				Resource:  "Cargo.toml",
				Cause:     errors.New("version declaration not found"),
			},
			expected: "failed to update manifest: Cargo.toml: version declaration not found",
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

func TestActionableError_Unwrap(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("dirty")
	err := WrapWithContext(fmt.Errorf("check: %w", sentinel), "prepare release", ".")
	if !errors.Is(err, sentinel) {
		t.Error("errors.Is should reach the wrapped sentinel")
	}
	if WrapWithContext(nil, "x", "y") != nil {
		t.Error("WrapWithContext(nil) should be nil")
	}
}

func TestActionableError_Format(t *testing.T) {
	t.Parallel()

	root := errors.New("exit status 128")
	err := &ActionableError{
		Operation:   "publish release",
		Resource:    "origin",
		Suggestions: []string{"Check credentials", "Retry with 'relprep push 0.2.0'"},
		Cause:       fmt.Errorf("push refs/tags/v0.2.0: %w", root),
	}

	plain := err.Format(false)
	if !strings.HasPrefix(plain, "failed to publish release: origin: push refs/tags/v0.2.0") {
		t.Errorf("Format(false) = %q", plain)
	}
	if !strings.Contains(plain, "\n  • Check credentials\n  • Retry") {
		t.Errorf("Format(false) suggestions = %q", plain)
	}
	if strings.Contains(plain, "Error chain") {
		t.Error("Format(false) must not include the chain")
	}

	verbose := err.Format(true)
	if !strings.Contains(verbose, "Error chain:\n  1. push refs/tags/v0.2.0: exit status 128\n  2. exit status 128") {
		t.Errorf("Format(true) = %q", verbose)
	}
}

func TestErrorContext_Build(t *testing.T) {
	t.Parallel()

	if NewErrorContext().WithResource("x").Build() != nil {
		t.Error("Build() without operation should be nil")
	}
	if NewErrorContext().BuildError() != nil {
		t.Error("BuildError() without operation should be nil")
	}

	cause := errors.New("boom")
	built := NewErrorContext().
		WithOperation("prepare release").
		WithResource("Cargo.toml").
		WithSuggestion("one").
		WithSuggestions("two", "three").
		Wrap(cause).
		Build()
	if built.Operation != "prepare release" || built.Resource != "Cargo.toml" || built.Cause != cause {
		t.Errorf("Build() = %+v", built)
	}
	if len(built.Suggestions) != 3 || !built.HasSuggestions() {
		t.Errorf("Suggestions = %v", built.Suggestions)
	}

	var ae *ActionableError
	if err := NewErrorContext().WithOperation("x").BuildError(); !errors.As(err, &ae) {
		t.Errorf("BuildError() = %T", err)
	}
}
