// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Id identifies a catalog entry.
type Id int

const (
	MissingVersionId Id = iota + 1
	InvalidVersionId
	DirtyWorkingTreeId
	ManifestNotFoundId
	ManifestAmbiguousId
	ReleaseExistsId
	RepositoryCommandFailedId
	PublishFailedId
	NotRepositoryId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

// Issue is a Markdown help page shown for a class of failures.
type Issue struct {
	id       Id
	mdMsg    MarkdownMsg
	docLinks []HttpLink
	extLinks []HttpLink
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render returns the page rendered for the terminal with the glamour style
// at stylePath ("dark", "light", "auto" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

var (
	defaultRender = glamour.Render
	render        = defaultRender

	missingVersionIssue = &Issue{
		id: MissingVersionId,
		mdMsg: `
# No release version given

relprep needs the version to release as its only argument.

## Usage
~~~
$ relprep 0.2.0
$ relprep 0.2.0 --push
~~~`,
	}

	invalidVersionIssue = &Issue{
		id: InvalidVersionId,
		mdMsg: `
# Invalid release version

A release version is exactly three dot-separated groups of ASCII digits,
such as ` + "`0.2.0`" + `. The ` + "`v`" + ` prefix is added to the branch and
tag names automatically.

## Rejected forms
- ` + "`v0.2.0`" + ` (prefix)
- ` + "`0.2`" + ` (two groups)
- ` + "`0.2.0-rc1`" + ` (pre-release suffix)`,
		extLinks: []HttpLink{"https://semver.org"},
	}

	dirtyWorkingTreeIssue = &Issue{
		id: DirtyWorkingTreeId,
		mdMsg: `
# Working tree is not clean

A release commit must contain the version bump and nothing else, so tracked
files and the index have to match HEAD. Untracked files are ignored.

## Things you can try:
- Commit your work:
~~~
$ git commit -am "..."
~~~
- Or set it aside for the release:
~~~
$ git stash
$ relprep 0.2.0
$ git stash pop
~~~`,
	}

	manifestNotFoundIssue = &Issue{
		id: ManifestNotFoundId,
		mdMsg: `
# Version declaration not found

The manifest must contain a line of the form:
~~~toml
version = "0.1.0"
~~~

## Things you can try:
- Point relprep at the right manifest with ` + "`manifest.path`" + ` in relprep.cue
- Workspace members inheriting ` + "`version.workspace = true`" + ` are released from
  the workspace root manifest`,
	}

	manifestAmbiguousIssue = &Issue{
		id: ManifestAmbiguousId,
		mdMsg: `
# More than one version declaration

Only one line of the manifest may declare ` + "`version = \"X.Y.Z\"`" + `. Inline
tables such as ` + "`serde = { version = \"1.0\" }`" + ` are fine; standalone
dependency tables are not.

## Things you can try:
- Rewrite dependency tables using the inline form
- Move the declaration to ` + "`[workspace.package]`" + ` and inherit it`,
	}

	releaseExistsIssue = &Issue{
		id: ReleaseExistsId,
		mdMsg: `
# Release already exists

A branch or tag with this release name is already present. Nothing was changed.

## Things you can try:
- Pick the next version
- Publish the existing release if it was never pushed:
~~~
$ relprep push 0.2.0
~~~`,
	}

	repositoryCommandFailedIssue = &Issue{
		id: RepositoryCommandFailedId,
		mdMsg: `
# A repository operation failed

Steps completed before the failure are kept; relprep never rewrites history.

## Things you can try:
- Inspect the state with ` + "`git status`" + ` and ` + "`git log -1`" + `
- Undo a release commit that has no branch or tag yet:
~~~
$ git reset --hard HEAD~1
~~~
- Run with ` + "`--verbose`" + ` to see every git invocation`,
	}

	publishFailedIssue = &Issue{
		id: PublishFailedId,
		mdMsg: `
# Publishing the release failed

The release commit, branch and tag exist locally. Only the push failed.

## Things you can try:
- Check remote access and credentials (GITHUB_TOKEN, GITLAB_TOKEN or GIT_TOKEN for HTTPS remotes)
- Retry the push alone:
~~~
$ relprep push 0.2.0
~~~`,
	}

	notRepositoryIssue = &Issue{
		id: NotRepositoryId,
		mdMsg: `
# Not a git repository

relprep runs inside the repository being released.

## Things you can try:
- Change into the repository or pass ` + "`--dir <path>`" + `
- Create one with ` + "`git init`",
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration

relprep reads, in order: the ` + "`--config`" + ` file, ` + "`relprep.cue`" + ` in the
repository, then ` + "`config.cue`" + ` in the user configuration directory.

## Things you can try:
~~~
$ relprep config path
$ relprep config dump > relprep.cue
~~~`,
	}

	issues = map[Id]*Issue{
		missingVersionIssue.Id():          missingVersionIssue,
		invalidVersionIssue.Id():          invalidVersionIssue,
		dirtyWorkingTreeIssue.Id():        dirtyWorkingTreeIssue,
		manifestNotFoundIssue.Id():        manifestNotFoundIssue,
		manifestAmbiguousIssue.Id():       manifestAmbiguousIssue,
		releaseExistsIssue.Id():           releaseExistsIssue,
		repositoryCommandFailedIssue.Id(): repositoryCommandFailedIssue,
		publishFailedIssue.Id():           publishFailedIssue,
		notRepositoryIssue.Id():           notRepositoryIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
	}
)

// Values returns every catalog entry ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
