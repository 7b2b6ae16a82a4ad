// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/version"
)

// Publisher pushes a prepared release to a remote.
type Publisher struct {
	client vcs.Client
	remote string
}

// NewPublisher returns a Publisher for remote. An empty remote means vcs.DefaultRemote.
func NewPublisher(client vcs.Client, remote string) *Publisher {
	if remote == "" {
		remote = vcs.DefaultRemote
	}
	return &Publisher{client: client, remote: remote}
}

// Remote returns the remote the publisher pushes to.
func (p *Publisher) Remote() string { return p.remote }

// Targets returns the refs Publish pushes, in order: the branch HEAD points
// at, then the release tag.
func (p *Publisher) Targets(ctx context.Context, v version.Version) ([]vcs.RefSpec, error) {
	head, err := p.client.HeadBranch(ctx)
	if err != nil {
		return nil, &PublishError{Remote: p.remote, Target: vcs.Same("HEAD"), Err: err}
	}
	return []vcs.RefSpec{vcs.Same(head), vcs.Same(vcs.TagRef(v.Tag()))}, nil
}

// Publish pushes the current branch and the release tag. It stops at the
// first failed push and returns the refs pushed before it.
func (p *Publisher) Publish(ctx context.Context, v version.Version) ([]vcs.RefSpec, error) {
	targets, err := p.Targets(ctx, v)
	if err != nil {
		return nil, err
	}

	pushed := make([]vcs.RefSpec, 0, len(targets))
	for _, spec := range targets {
		slog.Debug("pushing", "remote", p.remote, "ref", spec.Src.String())
		if err := p.client.Push(ctx, p.remote, spec); err != nil {
			return pushed, &PublishError{Remote: p.remote, Target: spec, Err: err}
		}
		pushed = append(pushed, spec)
	}
	return pushed, nil
}

// Republish pushes an already prepared release again. The release tag must
// exist locally.
func (p *Publisher) Republish(ctx context.Context, v version.Version) ([]vcs.RefSpec, error) {
	tag := vcs.TagRef(v.Tag())
	exists, err := p.client.RefExists(ctx, tag)
	if err != nil {
		return nil, &RepositoryCommandError{Op: "look up " + tag.String(), Err: err}
	}
	if !exists {
		return nil, &RepositoryCommandError{
			Op:  "look up " + tag.String(),
			Err: fmt.Errorf("%s: %w", tag.Short(), vcs.ErrRefNotFound),
		}
	}
	return p.Publish(ctx, v)
}

// FollowUpCommand returns the git command line that publishes v by hand.
func FollowUpCommand(remote string, v version.Version) string {
	if remote == "" {
		remote = vcs.DefaultRemote
	}
	return fmt.Sprintf("git push %s HEAD && git push %s %s", remote, remote, v.Tag())
}
