// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/notion-sync/relprep/internal/issue"
	"github.com/notion-sync/relprep/internal/manifest"
	"github.com/notion-sync/relprep/internal/release"
	"github.com/notion-sync/relprep/internal/vcs"
	"github.com/notion-sync/relprep/internal/version"
)

// ServiceError is an error that carries rendering information for the CLI
// layer: an optional pre-styled message and an optional issue catalog ID.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// renderServiceError prints the styled message and, when verbose, the issue
// catalog entry rendered with the given glamour style.
func renderServiceError(stderr io.Writer, svcErr *ServiceError, verbose bool, style string) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if !verbose || svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(style)
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", int(svcErr.IssueID), "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}

// classifyError maps a failure of operation onto its catalog entry and
// remediation hints. Publish failures are checked before generic repository
// failures because they carry both sentinels.
func classifyError(operation string, remote string, v version.Version, err error) *ServiceError {
	ec := issue.NewErrorContext().WithOperation(operation).Wrap(err)
	var id issue.Id

	switch {
	case errors.Is(err, release.ErrUsage):
		id = issue.MissingVersionId
		ec.WithSuggestion("Pass the version to release, e.g. 'relprep " + version.Example + "'")
	case errors.Is(err, version.ErrInvalidFormat):
		id = issue.InvalidVersionId
		ec.WithSuggestion("Use three dot-separated numbers without a 'v' prefix, e.g. " + version.Example)
	case errors.Is(err, release.ErrDirtyWorkingTree):
		id = issue.DirtyWorkingTreeId
		ec.WithSuggestions(
			"Commit or stash your changes, then run the release again",
			"Run 'git status' to see what changed",
		)
	case errors.Is(err, manifest.ErrPatternNotFound), errors.Is(err, fs.ErrNotExist):
		id = issue.ManifestNotFoundId
		ec.WithSuggestion("Make sure the manifest declares a line like 'version = \"0.1.0\"'")
	case errors.Is(err, manifest.ErrPatternAmbiguous):
		id = issue.ManifestAmbiguousId
		ec.WithSuggestion("Keep a single version declaration or point manifest.path at the right file")
	case errors.Is(err, manifest.ErrInvalidDocument):
		id = issue.ManifestAmbiguousId
	case errors.Is(err, vcs.ErrRefExists):
		id = issue.ReleaseExistsId
		ec.WithSuggestion("Pick a new version, or delete the existing branch and tag if the previous attempt was abandoned")
	case errors.Is(err, release.ErrPublishFailed):
		id = issue.PublishFailedId
		if !v.IsZero() {
			ec.WithSuggestions(
				"Retry with 'relprep push "+v.String()+"'",
				"Or push manually: "+release.FollowUpCommand(remote, v),
			)
		}
	case errors.Is(err, vcs.ErrNotRepository):
		id = issue.NotRepositoryId
		ec.WithSuggestion("Run relprep inside the repository or pass --dir")
	case errors.Is(err, release.ErrRepositoryCommandFailed):
		id = issue.RepositoryCommandFailedId
		ec.WithSuggestion("Re-run with --verbose to see the failing git command")
	}

	ae := ec.Build()
	return newServiceError(ae, id, formatHints(ae))
}

// configError wraps a configuration load failure.
func configError(err error) *ServiceError {
	ae := asActionable(err)
	if ae == nil {
		ae = issue.WrapWithContext(err, "load configuration", "")
	}
	return newServiceError(ae, issue.ConfigLoadFailedId, formatHints(ae))
}

func asActionable(err error) *issue.ActionableError {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae
	}
	return nil
}

// formatHints renders one "hint:" line per suggestion.
func formatHints(ae *issue.ActionableError) string {
	if ae == nil || !ae.HasSuggestions() {
		return ""
	}
	var b strings.Builder
	for _, s := range ae.Suggestions {
		b.WriteString(WarningStyle.Render("hint: " + s))
		b.WriteString("\n")
	}
	return b.String()
}
