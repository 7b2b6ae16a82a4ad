// SPDX-License-Identifier: MPL-2.0

// Package release prepares a versioned release of the repository.
//
// [Releaser.Prepare] runs the release flow strictly in order and stops at the
// first failure:
//
//	Start → VersionValidated → TreeVerifiedClean → ManifestUpdated →
//	Committed → Branched → Tagged → [Published] → Done
//
// The working tree must be clean (tracked files and index match HEAD)
// before anything is written. Branch and tag names are both "v<version>"
// and are checked for existence before the manifest is touched, so a
// repeated release fails without mutating anything. Steps that already ran
// are never undone; a failed publish leaves a valid local release that
// [Publisher.Republish] can push again.
package release
