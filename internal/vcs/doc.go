// SPDX-License-Identifier: MPL-2.0

// Package vcs is the narrow repository capability the release flow runs on.
//
// [Client] exposes only what a release needs: inspecting the working tree,
// staging, committing, creating refs that must not already exist and
// pushing refspecs. Two backends implement it:
//
//   - [GoGit] drives the repository in-process through go-git.
//   - [CLI] shells out to the git binary, inheriting the user's git config,
//     credential helpers and hooks.
//
// [Open] picks a backend from a [Backend] value. The vcstest subpackage holds
// an in-memory fake for orchestration tests.
package vcs
