// SPDX-License-Identifier: MPL-2.0

// Package manifest rewrites the version declaration of a project manifest.
//
// The manifest must contain exactly one line of the form
//
//	version = "X.Y.Z"
//
// (single quotes and extra blanks around "=" are tolerated). Editing is a
// byte-level replacement of the quoted payload on that line: the key, the
// quoting, trailing comments, line endings and every other line are written
// back unchanged. TOML manifests are additionally decoded after the edit so
// a replacement that would corrupt the document is never written.
package manifest
