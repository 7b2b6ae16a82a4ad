// SPDX-License-Identifier: MPL-2.0

package vcstest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/notion-sync/relprep/internal/vcs"
)

// TestSignature is the identity fixtures commit with.
var TestSignature = vcs.Signature{Name: "Release Bot", Email: "release-bot@example.com"}

// InitRepo creates a repository on branch main in a temp directory, writes
// files and records them in a single initial commit.
func InitRepo(t *testing.T, files map[string]string) (string, *git.Repository) {
	t.Helper()

	dir := t.TempDir()
	repo, err := git.PlainInitWithOptions(dir, &git.PlainInitOptions{
		InitOptions: git.InitOptions{DefaultBranch: plumbing.Main},
	})
	if err != nil {
		t.Fatalf("init repository: %v", err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("open worktree: %v", err)
	}
	for name, content := range files {
		WriteFile(t, dir, name, content)
		if _, err := wt.Add(name); err != nil {
			t.Fatalf("stage %s: %v", name, err)
		}
	}

	sig := &object.Signature{Name: TestSignature.Name, Email: TestSignature.Email, When: time.Unix(1700000000, 0)}
	if _, err := wt.Commit("initial commit", &git.CommitOptions{Author: sig, Committer: sig, AllowEmptyCommits: true}); err != nil {
		t.Fatalf("initial commit: %v", err)
	}

	return dir, repo
}

// WriteFile writes content to name inside dir, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

// AddBareRemote creates a bare repository and registers it as remote name.
// It returns the bare repository so tests can inspect what was pushed.
func AddBareRemote(t *testing.T, repo *git.Repository, name string) *git.Repository {
	t.Helper()

	bareDir := t.TempDir()
	bare, err := git.PlainInit(bareDir, true)
	if err != nil {
		t.Fatalf("init bare remote: %v", err)
	}
	if _, err := repo.CreateRemote(&config.RemoteConfig{Name: name, URLs: []string{bareDir}}); err != nil {
		t.Fatalf("create remote %s: %v", name, err)
	}
	return bare
}

// CommitCount returns the number of commits reachable from HEAD.
func CommitCount(t *testing.T, repo *git.Repository) int {
	t.Helper()

	head, err := repo.Head()
	if err != nil {
		t.Fatalf("resolve HEAD: %v", err)
	}
	iter, err := repo.Log(&git.LogOptions{From: head.Hash()})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	n := 0
	if err := iter.ForEach(func(*object.Commit) error {
		n++
		return nil
	}); err != nil {
		t.Fatalf("walk log: %v", err)
	}
	return n
}
