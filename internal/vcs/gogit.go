// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

type (
	// GoGit is a Client backed by go-git.
	GoGit struct {
		repo *git.Repository
		sig  *Signature
		// now stamps commits and tags; replaced in tests for stable hashes.
		now func() time.Time
	}

	// GoGitOption configures a GoGit client.
	GoGitOption func(*GoGit)
)

// WithSignature sets the identity used for commits and annotated tags.
// A nil signature falls back to the repository and global git configuration.
func WithSignature(sig *Signature) GoGitOption {
	return func(g *GoGit) {
		g.sig = sig
	}
}

// WithClock sets the time source for commit and tag signatures.
func WithClock(now func() time.Time) GoGitOption {
	return func(g *GoGit) {
		g.now = now
	}
}

// OpenGoGit opens the repository containing dir.
func OpenGoGit(dir string, opts ...GoGitOption) (*GoGit, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%s: %w", dir, ErrNotRepository)
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}
	return NewGoGit(repo, opts...), nil
}

// NewGoGit wraps an already opened repository.
func NewGoGit(repo *git.Repository, opts ...GoGitOption) *GoGit {
	g := &GoGit{repo: repo, now: time.Now}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Root implements Client.
func (g *GoGit) Root() string {
	wt, err := g.repo.Worktree()
	if err != nil {
		return ""
	}
	return wt.Filesystem.Root()
}

// Status implements Client.
func (g *GoGit) Status(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return Status{}, err
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return Status{}, fmt.Errorf("open worktree: %w", err)
	}
	st, err := wt.Status()
	if err != nil {
		return Status{}, fmt.Errorf("read worktree status: %w", err)
	}

	var out Status
	for path, fs := range st {
		if fs.Staging == git.Untracked {
			continue
		}
		if fs.Staging != git.Unmodified {
			out.Staged = append(out.Staged, path)
		}
		if fs.Worktree != git.Unmodified && fs.Worktree != git.Untracked {
			out.Modified = append(out.Modified, path)
		}
	}
	slices.Sort(out.Staged)
	slices.Sort(out.Modified)

	return out, nil
}

// Stage implements Client.
func (g *GoGit) Stage(ctx context.Context, paths ...string) error {
	wt, err := g.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := wt.Add(p); err != nil {
			return fmt.Errorf("stage %s: %w", p, err)
		}
	}
	return nil
}

// Commit implements Client.
func (g *GoGit) Commit(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	wt, err := g.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}

	sig := g.signature()
	hash, err := wt.Commit(message, &git.CommitOptions{Author: sig, Committer: sig})
	if err != nil {
		if errors.Is(err, git.ErrEmptyCommit) {
			return "", ErrNothingToCommit
		}
		return "", fmt.Errorf("commit: %w", err)
	}

	return hash.String(), nil
}

// HeadBranch implements Client.
func (g *GoGit) HeadBranch(ctx context.Context) (RefName, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	head, err := g.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	if !head.Name().IsBranch() {
		return "", ErrDetachedHead
	}
	return RefName(head.Name()), nil
}

// RefExists implements Client.
func (g *GoGit) RefExists(ctx context.Context, ref RefName) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	_, err := g.repo.Reference(plumbing.ReferenceName(ref), false)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("look up %s: %w", ref, err)
	}
}

// CreateBranch implements Client.
func (g *GoGit) CreateBranch(ctx context.Context, name, target string) error {
	ref := BranchRef(name)
	hash, err := g.resolveNew(ctx, ref, target)
	if err != nil {
		return err
	}

	if err := g.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.ReferenceName(ref), hash)); err != nil {
		return fmt.Errorf("create branch %s: %w", name, err)
	}
	return nil
}

// CreateTag implements Client.
func (g *GoGit) CreateTag(ctx context.Context, name, target, message string) error {
	ref := TagRef(name)
	hash, err := g.resolveNew(ctx, ref, target)
	if err != nil {
		return err
	}

	if message == "" {
		if err := g.repo.Storer.SetReference(plumbing.NewHashReference(plumbing.ReferenceName(ref), hash)); err != nil {
			return fmt.Errorf("create tag %s: %w", name, err)
		}
		return nil
	}

	if _, err := g.repo.CreateTag(name, hash, &git.CreateTagOptions{
		Tagger:  g.signature(),
		Message: message,
	}); err != nil {
		if errors.Is(err, git.ErrTagExists) {
			return &RefExistsError{Ref: ref}
		}
		return fmt.Errorf("create tag %s: %w", name, err)
	}
	return nil
}

// Push implements Client.
func (g *GoGit) Push(ctx context.Context, remote string, spec RefSpec) error {
	if remote == "" {
		remote = DefaultRemote
	}

	r, err := g.repo.Remote(remote)
	if err != nil {
		return fmt.Errorf("remote %s: %w", remote, err)
	}

	rs := config.RefSpec(spec.String())
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("refspec %s: %w", spec, err)
	}

	err = g.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remote,
		RefSpecs:   []config.RefSpec{rs},
		Auth:       remoteAuth(r.Config().URLs),
	})
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		slog.Debug("remote already up to date", "remote", remote, "refspec", spec.String())
		return nil
	}
	if err != nil {
		return fmt.Errorf("push %s to %s: %w", spec, remote, err)
	}
	return nil
}

// resolveNew resolves target to a commit and fails if ref already exists.
func (g *GoGit) resolveNew(ctx context.Context, ref RefName, target string) (plumbing.Hash, error) {
	exists, err := g.RefExists(ctx, ref)
	if err != nil {
		return plumbing.ZeroHash, err
	}
	if exists {
		return plumbing.ZeroHash, &RefExistsError{Ref: ref}
	}

	hash, err := g.repo.ResolveRevision(plumbing.Revision(target))
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("resolve %s: %w", target, err)
	}
	return *hash, nil
}

// signature returns nil when no identity is configured so go-git reads
// user.name and user.email from the repository and global config.
func (g *GoGit) signature() *object.Signature {
	if g.sig == nil || g.sig.Name == "" || g.sig.Email == "" {
		return nil
	}
	return &object.Signature{Name: g.sig.Name, Email: g.sig.Email, When: g.now()}
}

// remoteAuth picks credentials for HTTP remotes from the environment. SSH
// remotes get nil so go-git falls back to the SSH agent.
func remoteAuth(urls []string) transport.AuthMethod {
	if len(urls) == 0 {
		return nil
	}
	u := urls[0]
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		return nil
	}

	for _, c := range []struct{ env, user string }{
		{"GITHUB_TOKEN", "x-access-token"},
		{"GITLAB_TOKEN", "gitlab-ci-token"},
		{"GIT_TOKEN", "git"},
	} {
		if token := os.Getenv(c.env); token != "" {
			return &http.BasicAuth{Username: c.user, Password: token}
		}
	}
	return nil
}

var _ Client = (*GoGit)(nil)
