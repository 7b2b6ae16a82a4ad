// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a Markdown help catalog
// rendered with glamour when a release step fails.
package issue
