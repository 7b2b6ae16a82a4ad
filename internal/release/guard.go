// SPDX-License-Identifier: MPL-2.0

package release

import (
	"context"
	"log/slog"

	"github.com/notion-sync/relprep/internal/vcs"
)

// Guard refuses to proceed when the repository has tracked changes.
type Guard struct {
	client vcs.Client
}

// NewGuard returns a Guard reading state from client.
func NewGuard(client vcs.Client) *Guard {
	return &Guard{client: client}
}

// Check queries the repository and returns a *DirtyTreeError when tracked
// files or the index differ from HEAD. Untracked files never block.
func (g *Guard) Check(ctx context.Context) error {
	status, err := g.client.Status(ctx)
	if err != nil {
		return &RepositoryCommandError{Op: "read repository status", Err: err}
	}
	if !status.Clean() {
		slog.Debug("working tree is dirty", "modified", status.Modified, "staged", status.Staged)
		return &DirtyTreeError{Modified: status.Modified, Staged: status.Staged}
	}
	return nil
}

