// SPDX-License-Identifier: MPL-2.0

// Package vcstest provides an in-memory vcs.Client for orchestration tests.
package vcstest

import (
	"context"
	"fmt"
	"sync"

	"github.com/notion-sync/relprep/internal/vcs"
)

type (
	// Fake records every call and keeps refs in memory. Set the *Err fields
	// to make the corresponding operation fail.
	Fake struct {
		mu sync.Mutex

		// Dir is returned by Root.
		Dir    string
		State  vcs.Status
		Head   vcs.RefName
		Refs   map[vcs.RefName]string
		Calls  []Call
		Pushed []vcs.RefSpec

		StatusErr       error
		StageErr        error
		CommitErr       error
		CreateBranchErr error
		CreateTagErr    error
		// PushErr maps a destination ref to the error its push returns.
		PushErr map[vcs.RefName]error

		commits int
	}

	// Call is one recorded Client invocation.
	Call struct {
		Op   string
		Args []string
	}
)

// New returns a clean fake repository on branch main rooted at dir.
func New(dir string) *Fake {
	return &Fake{
		Dir:  dir,
		Head: vcs.BranchRef("main"),
		Refs: map[vcs.RefName]string{vcs.BranchRef("main"): "c0"},
	}
}

// Ops returns the recorded operation names in order.
func (f *Fake) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ops := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		ops[i] = c.Op
	}
	return ops
}

// Root implements vcs.Client.
func (f *Fake) Root() string { return f.Dir }

// Status implements vcs.Client.
func (f *Fake) Status(_ context.Context) (vcs.Status, error) {
	f.record("status")
	if f.StatusErr != nil {
		return vcs.Status{}, f.StatusErr
	}
	return f.State, nil
}

// Stage implements vcs.Client.
func (f *Fake) Stage(_ context.Context, paths ...string) error {
	f.record("stage", paths...)
	return f.StageErr
}

// Commit implements vcs.Client.
func (f *Fake) Commit(_ context.Context, message string) (string, error) {
	f.record("commit", message)
	if f.CommitErr != nil {
		return "", f.CommitErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commits++
	hash := fmt.Sprintf("c%d", f.commits)
	f.Refs[f.Head] = hash
	return hash, nil
}

// HeadBranch implements vcs.Client.
func (f *Fake) HeadBranch(_ context.Context) (vcs.RefName, error) {
	f.record("head")
	if f.Head == "" {
		return "", vcs.ErrDetachedHead
	}
	return f.Head, nil
}

// RefExists implements vcs.Client.
func (f *Fake) RefExists(_ context.Context, ref vcs.RefName) (bool, error) {
	f.record("ref-exists", string(ref))
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Refs[ref]
	return ok, nil
}

// CreateBranch implements vcs.Client.
func (f *Fake) CreateBranch(_ context.Context, name, target string) error {
	f.record("create-branch", name, target)
	if f.CreateBranchErr != nil {
		return f.CreateBranchErr
	}
	return f.create(vcs.BranchRef(name), target)
}

// CreateTag implements vcs.Client.
func (f *Fake) CreateTag(_ context.Context, name, target, message string) error {
	f.record("create-tag", name, target, message)
	if f.CreateTagErr != nil {
		return f.CreateTagErr
	}
	return f.create(vcs.TagRef(name), target)
}

// Push implements vcs.Client.
func (f *Fake) Push(_ context.Context, remote string, spec vcs.RefSpec) error {
	f.record("push", remote, spec.String())
	if err := f.PushErr[spec.Dst]; err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Pushed = append(f.Pushed, spec)
	return nil
}

func (f *Fake) create(ref vcs.RefName, target string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.Refs[ref]; ok {
		return &vcs.RefExistsError{Ref: ref}
	}
	f.Refs[ref] = target
	return nil
}

func (f *Fake) record(op string, args ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Op: op, Args: args})
}

var _ vcs.Client = (*Fake)(nil)
