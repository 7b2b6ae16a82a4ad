// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/notion-sync/relprep/internal/manifest"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/version"
)

// DefaultManifestPath is the manifest edited when Settings.ManifestPath is empty.
const DefaultManifestPath = "Cargo.toml"

type (
	// Settings configures a Releaser.
	Settings struct {
		// ManifestPath is the manifest to rewrite, relative to the repository root.
		ManifestPath string
		// Companions are staged with the manifest when they exist (e.g. Cargo.lock).
		Companions []string
		// Remote is the publish destination.
		Remote string
		// AnnotatedTags creates annotated tags carrying the commit message.
		AnnotatedTags bool
	}

	// Request is one release invocation.
	Request struct {
		// Version is the raw, unvalidated version argument.
		Version string
		// Push publishes the branch and tag after they are created.
		Push bool
	}

	// Result describes what a release run did. It is returned alongside an
	// error too, describing the steps that completed.
	Result struct {
		Version  version.Version
		State    State
		Manifest *manifest.Edit
		Staged   []string
		Commit   string
		Branch   vcs.RefName
		Tag      vcs.RefName
		Remote   string
		Pushed   []vcs.RefSpec
	}

	// Option configures a Releaser.
	Option func(*Releaser)

	// Releaser runs the release flow against one repository.
	Releaser struct {
		client    vcs.Client
		settings  Settings
		editor    *manifest.Editor
		guard     *Guard
		publisher *Publisher
		observe   func(State)
	}
)

// WithEditor replaces the manifest editor.
func WithEditor(editor *manifest.Editor) Option {
	return func(r *Releaser) {
		r.editor = editor
	}
}

// WithObserver registers fn to be called on every state transition.
func WithObserver(fn func(State)) Option {
	return func(r *Releaser) {
		r.observe = fn
	}
}

// New returns a Releaser operating on client.
func New(client vcs.Client, settings Settings, opts ...Option) *Releaser {
	if settings.ManifestPath == "" {
		settings.ManifestPath = DefaultManifestPath
	}
	r := &Releaser{
		client:    client,
		settings:  settings,
		editor:    manifest.NewEditor(),
		guard:     NewGuard(client),
		publisher: NewPublisher(client, settings.Remote),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Publisher returns the publisher used for --push.
func (r *Releaser) Publisher() *Publisher { return r.publisher }

// Validate checks the version argument: a *UsageError when it is missing,
// a version.ErrInvalidFormat error when it is malformed.
func (req Request) Validate() (version.Version, error) {
	if req.Version == "" {
		return version.Version{}, &UsageError{Reason: "a release version is required (e.g. " + version.Example + ")"}
	}
	return version.Parse(req.Version)
}

// CommitMessage returns the release commit message for v.
func CommitMessage(v version.Version) string {
	return "Release " + v.Tag()
}

// Prepare validates the request, rewrites the manifest, commits it, creates
// the release branch and tag and, when requested, publishes them. It stops
// at the first failure, returning a *StepError that records the last state
// reached.
func (r *Releaser) Prepare(ctx context.Context, req Request) (*Result, error) {
	res := &Result{State: StateStart, Remote: r.publisher.Remote()}

	v, err := req.Validate()
	if err != nil {
		return res, r.fail(res, err)
	}
	res.Version = v
	res.Branch = vcs.BranchRef(v.Tag())
	res.Tag = vcs.TagRef(v.Tag())
	r.advance(res, StateVersionValidated)

	if err := r.guard.Check(ctx); err != nil {
		return res, r.fail(res, err)
	}
	r.advance(res, StateTreeVerifiedClean)

	if err := r.preflight(ctx, res, req.Push); err != nil {
		return res, r.fail(res, err)
	}

	edit, err := r.editor.SetVersion(r.abs(r.settings.ManifestPath), v)
	if err != nil {
		return res, r.fail(res, err)
	}
	res.Manifest = edit
	r.advance(res, StateManifestUpdated)

	if err := r.commit(ctx, res); err != nil {
		return res, r.fail(res, err)
	}
	r.advance(res, StateCommitted)

	if err := r.client.CreateBranch(ctx, v.Tag(), res.Commit); err != nil {
		return res, r.fail(res, &RepositoryCommandError{Op: "create branch " + v.Tag(), Err: err})
	}
	r.advance(res, StateBranched)

	message := ""
	if r.settings.AnnotatedTags {
		message = CommitMessage(v)
	}
	if err := r.client.CreateTag(ctx, v.Tag(), res.Commit, message); err != nil {
		return res, r.fail(res, &RepositoryCommandError{Op: "create tag " + v.Tag(), Err: err})
	}
	r.advance(res, StateTagged)

	if req.Push {
		pushed, err := r.publisher.Publish(ctx, v)
		res.Pushed = pushed
		if err != nil {
			return res, r.fail(res, err)
		}
		r.advance(res, StatePublished)
	}

	r.advance(res, StateDone)
	return res, nil
}

// preflight refuses to start when the release refs already exist, and
// resolves the branch to publish before anything is written.
func (r *Releaser) preflight(ctx context.Context, res *Result, push bool) error {
	for _, ref := range []vcs.RefName{res.Branch, res.Tag} {
		exists, err := r.client.RefExists(ctx, ref)
		if err != nil {
			return &RepositoryCommandError{Op: "look up " + ref.String(), Err: err}
		}
		if exists {
			return &vcs.RefExistsError{Ref: ref}
		}
	}
	if push {
		if _, err := r.client.HeadBranch(ctx); err != nil {
			return &RepositoryCommandError{Op: "resolve current branch", Err: err}
		}
	}
	return nil
}

func (r *Releaser) commit(ctx context.Context, res *Result) error {
	paths, err := r.stagePaths()
	if err != nil {
		return err
	}
	slog.Debug("staging files", "paths", paths)
	if err := r.client.Stage(ctx, paths...); err != nil {
		return &RepositoryCommandError{Op: "stage release files", Err: err}
	}
	res.Staged = paths

	hash, err := r.client.Commit(ctx, CommitMessage(res.Version))
	if err != nil {
		return &RepositoryCommandError{Op: "commit release", Err: err}
	}
	res.Commit = hash
	return nil
}

// stagePaths returns the manifest and the companions present on disk,
// relative to the repository root in slash form.
func (r *Releaser) stagePaths() ([]string, error) {
	rel, err := r.rel(r.settings.ManifestPath)
	if err != nil {
		return nil, err
	}
	paths := []string{rel}
	for _, companion := range r.settings.Companions {
		if _, err := os.Stat(r.abs(companion)); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				slog.Debug("companion file absent, not staging", "path", companion)
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", companion, err)
		}
		p, err := r.rel(companion)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

func (r *Releaser) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(r.client.Root(), path)
}

func (r *Releaser) rel(path string) (string, error) {
	rel, err := filepath.Rel(r.client.Root(), r.abs(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s inside repository: %w", path, err)
	}
	return filepath.ToSlash(rel), nil
}

func (r *Releaser) advance(res *Result, s State) {
	res.State = s
	slog.Debug("release state", "state", s.String())
	if r.observe != nil {
		r.observe(s)
	}
}

func (r *Releaser) fail(res *Result, err error) error {
	return &StepError{State: res.State, Err: err}
}
