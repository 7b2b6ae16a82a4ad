// SPDX-License-Identifier: MPL-2.0

package release

import (
	"errors"
	"fmt"
	"strings"

	"github.com/notion-sync/relprep/internal/vcs"
)

var (
	// ErrUsage is returned when no version was supplied.
	ErrUsage = errors.New("usage error")
	// ErrDirtyWorkingTree is returned when tracked files or the index differ from HEAD.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
	// ErrRepositoryCommandFailed is returned when a commit, branch, tag or push operation fails.
	ErrRepositoryCommandFailed = errors.New("repository command failed")
	// ErrPublishFailed is returned when pushing the release to the remote fails.
	ErrPublishFailed = errors.New("publish failed")
)

type (
	// UsageError reports a malformed invocation.
	UsageError struct {
		Reason string
	}

	// DirtyTreeError lists what keeps the tree from being clean.
	DirtyTreeError struct {
		Modified []string
		Staged   []string
	}

	// RepositoryCommandError names the repository operation that failed.
	RepositoryCommandError struct {
		Op  string
		Err error
	}

	// PublishError names the push target that failed.
	PublishError struct {
		Remote string
		Target vcs.RefSpec
		Err    error
	}

	// StepError carries the last state the flow reached before failing.
	StepError struct {
		State State
		Err   error
	}
)

// Error implements the error interface.
func (e *UsageError) Error() string { return e.Reason }

// Unwrap returns ErrUsage for errors.Is() compatibility.
func (e *UsageError) Unwrap() error { return ErrUsage }

// Error implements the error interface.
func (e *DirtyTreeError) Error() string {
	var parts []string
	if len(e.Modified) > 0 {
		parts = append(parts, fmt.Sprintf("modified: %s", strings.Join(e.Modified, ", ")))
	}
	if len(e.Staged) > 0 {
		parts = append(parts, fmt.Sprintf("staged: %s", strings.Join(e.Staged, ", ")))
	}
	return fmt.Sprintf("%s (%s)", ErrDirtyWorkingTree, strings.Join(parts, "; "))
}

// Unwrap returns ErrDirtyWorkingTree for errors.Is() compatibility.
func (e *DirtyTreeError) Unwrap() error { return ErrDirtyWorkingTree }

// Error implements the error interface.
func (e *RepositoryCommandError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the sentinel and the cause.
func (e *RepositoryCommandError) Unwrap() []error {
	return []error{ErrRepositoryCommandFailed, e.Err}
}

// Error implements the error interface.
func (e *PublishError) Error() string {
	return fmt.Sprintf("push %s to %s: %v", e.Target.Src.Short(), e.Remote, e.Err)
}

// Unwrap exposes the publish sentinel, the repository sentinel and the cause.
func (e *PublishError) Unwrap() []error {
	return []error{ErrPublishFailed, ErrRepositoryCommandFailed, e.Err}
}

// Error implements the error interface.
func (e *StepError) Error() string { return e.Err.Error() }

// Unwrap returns the step's cause.
func (e *StepError) Unwrap() error { return e.Err }
