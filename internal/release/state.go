// SPDX-License-Identifier: MPL-2.0

package release

import (
	"errors"
	"fmt"
)

const (
	// StateStart is the state before any validation happened.
	StateStart State = iota
	// StateVersionValidated means the requested version string was accepted.
	StateVersionValidated
	// StateTreeVerifiedClean means no tracked changes were found.
	StateTreeVerifiedClean
	// StateManifestUpdated means the manifest declaration was rewritten.
	StateManifestUpdated
	// StateCommitted means the release commit exists.
	StateCommitted
	// StateBranched means the release branch exists.
	StateBranched
	// StateTagged means the release tag exists.
	StateTagged
	// StatePublished means the branch and tag were pushed.
	StatePublished
	// StateDone is terminal: the flow completed.
	StateDone
)

// ErrInvalidState is returned when a State value is not one of the defined flow states.
var ErrInvalidState = errors.New("invalid release state")

type (
	// State is a position in the release flow.
	State int

	// InvalidStateError is returned when a State value is not recognized.
	// It wraps ErrInvalidState for errors.Is() compatibility.
	InvalidStateError struct {
		Value State
	}
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateVersionValidated:
		return "version-validated"
	case StateTreeVerifiedClean:
		return "tree-verified-clean"
	case StateManifestUpdated:
		return "manifest-updated"
	case StateCommitted:
		return "committed"
	case StateBranched:
		return "branched"
	case StateTagged:
		return "tagged"
	case StatePublished:
		return "published"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Validate returns nil if the State is one of the defined flow states.
func (s State) Validate() error {
	if s < StateStart || s > StateDone {
		return &InvalidStateError{Value: s}
	}
	return nil
}

// Mutated reports whether the repository may have been changed on reaching s.
func (s State) Mutated() bool { return s >= StateManifestUpdated }

// Error implements the error interface for InvalidStateError.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid release state %d", e.Value)
}

// Unwrap returns the sentinel error for errors.Is() compatibility.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }
