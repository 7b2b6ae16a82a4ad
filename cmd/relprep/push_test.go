// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/notion-sync/relprep/internal/issue"
	"github.com/notion-sync/relprep/internal/release"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/version"
)

func TestPush(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	ta.repo.Refs[vcs.TagRef("v0.2.0")] = "c0"

	if err := ta.run(t, "push", "0.2.0"); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, ta.stderr)
	}

	want := []vcs.RefSpec{vcs.Same(vcs.BranchRef("main")), vcs.Same(vcs.TagRef("v0.2.0"))}
	if !slices.Equal(ta.repo.Pushed, want) {
		t.Errorf("pushed %v, want %v", ta.repo.Pushed, want)
	}
	if !strings.Contains(ta.stdout.String(), "Published release v0.2.0") {
		t.Errorf("stdout = %q", ta.stdout)
	}
	if slices.Contains(ta.repo.Ops(), "commit") {
		t.Errorf("push committed: %v", ta.repo.Ops())
	}
}

func TestPush_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		setup     func(*testApp)
		wantErr   error
		wantIssue issue.Id
	}{
		{
			name:      "invalid version",
			args:      []string{"push", "v0.2.0"},
			wantErr:   version.ErrInvalidFormat,
			wantIssue: issue.InvalidVersionId,
		},
		{
			name:      "tag missing",
			args:      []string{"push", "0.2.0"},
			wantErr:   vcs.ErrRefNotFound,
			wantIssue: issue.RepositoryCommandFailedId,
		},
		{
			name: "remote rejects",
			args: []string{"push", "0.2.0"},
			setup: func(ta *testApp) {
				ta.repo.Refs[vcs.TagRef("v0.2.0")] = "c0"
				ta.repo.PushErr = map[vcs.RefName]error{vcs.BranchRef("main"): errors.New("rejected")}
			},
			wantErr:   release.ErrPublishFailed,
			wantIssue: issue.PublishFailedId,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ta := newTestApp(t, nil)
			if tt.setup != nil {
				tt.setup(ta)
			}

			err := ta.run(t, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			var svcErr *ServiceError
			if !errors.As(err, &svcErr) || svcErr.IssueID != tt.wantIssue {
				t.Errorf("error %v does not carry issue %d", err, tt.wantIssue)
			}
			if len(ta.repo.Pushed) != 0 {
				t.Errorf("pushed %v", ta.repo.Pushed)
			}
		})
	}
}

func TestPush_RequiresVersion(t *testing.T) {
	t.Parallel()

	ta := newTestApp(t, nil)
	if err := ta.run(t, "push"); err == nil {
		t.Fatal("expected an argument error")
	}
}
