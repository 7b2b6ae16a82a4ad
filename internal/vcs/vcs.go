// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

const (
	// BackendAuto selects BackendCLI when a git binary is on PATH and BackendGoGit otherwise.
	BackendAuto Backend = "auto"
	// BackendCLI runs the git binary.
	BackendCLI Backend = "cli"
	// BackendGoGit uses the go-git library.
	BackendGoGit Backend = "go-git"

	// DefaultRemote is the remote used when none is configured.
	DefaultRemote = "origin"

	branchPrefix = "refs/heads/"
	tagPrefix    = "refs/tags/"
)

var (
	// ErrInvalidBackend is returned when a Backend value is not recognized.
	ErrInvalidBackend = errors.New("invalid repository backend")
	// ErrRefExists is returned when a branch or tag to be created already exists.
	ErrRefExists = errors.New("ref already exists")
	// ErrRefNotFound is returned when a ref that must exist is missing.
	ErrRefNotFound = errors.New("ref not found")
	// ErrDetachedHead is returned when HEAD does not point at a branch.
	ErrDetachedHead = errors.New("HEAD is detached")
	// ErrNothingToCommit is returned when a commit would be empty.
	ErrNothingToCommit = errors.New("nothing to commit")
	// ErrNotRepository is returned when the directory is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")
)

type (
	// Client is the repository capability used by the release flow.
	// Implementations must never overwrite an existing ref.
	Client interface {
		// Root returns the absolute path of the working tree top level.
		Root() string
		// Status reports tracked changes in the working tree and the index.
		Status(ctx context.Context) (Status, error)
		// Stage adds the given paths (relative to the repository root) to the index.
		Stage(ctx context.Context, paths ...string) error
		// Commit records the index with message and returns the commit hash.
		Commit(ctx context.Context, message string) (string, error)
		// HeadBranch returns the branch HEAD points at.
		HeadBranch(ctx context.Context) (RefName, error)
		// RefExists reports whether ref is present locally.
		RefExists(ctx context.Context, ref RefName) (bool, error)
		// CreateBranch creates branch name at the target revision.
		CreateBranch(ctx context.Context, name, target string) error
		// CreateTag creates tag name at the target revision. A non-empty
		// message produces an annotated tag.
		CreateTag(ctx context.Context, name, target, message string) error
		// Push publishes spec to remote. A remote that is already up to date is not an error.
		Push(ctx context.Context, remote string, spec RefSpec) error
	}

	// Backend names a Client implementation.
	Backend string

	// InvalidBackendError is returned when a Backend value is not recognized.
	InvalidBackendError struct {
		Value Backend
	}

	// Status is the tracked state of the repository. Untracked files are
	// deliberately absent.
	Status struct {
		// Modified lists tracked paths whose working tree content differs from the index.
		Modified []string
		// Staged lists paths whose index entry differs from HEAD.
		Staged []string
	}

	// RefName is a fully-qualified reference name such as "refs/tags/v1.0.0".
	RefName string

	// RefSpec maps a local ref onto a remote ref.
	RefSpec struct {
		Src RefName
		Dst RefName
	}

	// Signature identifies the author of commits and annotated tags.
	Signature struct {
		Name  string
		Email string
	}

	// RefExistsError reports an attempt to create a ref that is already present.
	RefExistsError struct {
		Ref RefName
	}

	// Options configures a backend opened through Open.
	Options struct {
		// Signature overrides the author/committer/tagger identity. Nil uses
		// the repository and global git configuration.
		Signature *Signature
	}
)

// Open returns the Client for backend rooted at the repository containing dir.
func Open(backend Backend, dir string, opts Options) (Client, error) {
	if err := backend.Validate(); err != nil {
		return nil, err
	}

	switch backend.Resolve() {
	case BackendCLI:
		return OpenCLI(dir, WithCLISignature(opts.Signature))
	default:
		return OpenGoGit(dir, WithSignature(opts.Signature))
	}
}

// Validate returns an error if the Backend is not one of the known values.
func (b Backend) Validate() error {
	switch b {
	case BackendAuto, BackendCLI, BackendGoGit:
		return nil
	default:
		return &InvalidBackendError{Value: b}
	}
}

// Resolve maps BackendAuto onto a concrete backend.
func (b Backend) Resolve() Backend {
	if b != BackendAuto {
		return b
	}
	if _, err := exec.LookPath("git"); err == nil {
		return BackendCLI
	}
	return BackendGoGit
}

// String returns the string representation of the Backend.
func (b Backend) String() string { return string(b) }

// Error implements the error interface.
func (e *InvalidBackendError) Error() string {
	return fmt.Sprintf("invalid repository backend %q (valid: auto, cli, go-git)", e.Value)
}

// Unwrap returns ErrInvalidBackend for errors.Is() compatibility.
func (e *InvalidBackendError) Unwrap() error { return ErrInvalidBackend }

// Clean reports whether neither the working tree nor the index has tracked changes.
func (s Status) Clean() bool { return len(s.Modified) == 0 && len(s.Staged) == 0 }

// BranchRef returns the fully-qualified name of branch.
func BranchRef(branch string) RefName { return RefName(branchPrefix + branch) }

// TagRef returns the fully-qualified name of tag.
func TagRef(tag string) RefName { return RefName(tagPrefix + tag) }

// IsBranch reports whether the ref lives under refs/heads/.
func (r RefName) IsBranch() bool { return strings.HasPrefix(string(r), branchPrefix) }

// IsTag reports whether the ref lives under refs/tags/.
func (r RefName) IsTag() bool { return strings.HasPrefix(string(r), tagPrefix) }

// Short returns the name without its refs/heads/ or refs/tags/ prefix.
func (r RefName) Short() string {
	s := string(r)
	s = strings.TrimPrefix(s, branchPrefix)
	return strings.TrimPrefix(s, tagPrefix)
}

// String returns the fully-qualified name.
func (r RefName) String() string { return string(r) }

// Same returns the refspec publishing ref under the same name.
func Same(ref RefName) RefSpec { return RefSpec{Src: ref, Dst: ref} }

// String returns the "src:dst" form understood by git push.
func (s RefSpec) String() string { return string(s.Src) + ":" + string(s.Dst) }

// Error implements the error interface.
func (e *RefExistsError) Error() string {
	return fmt.Sprintf("%s already exists", e.Ref)
}

// Unwrap returns ErrRefExists for errors.Is() compatibility.
func (e *RefExistsError) Unwrap() error { return ErrRefExists }
