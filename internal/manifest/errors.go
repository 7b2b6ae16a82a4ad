// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"errors"
	"fmt"
)

var (
	// ErrPatternNotFound is returned when no line holds a version declaration.
	ErrPatternNotFound = errors.New("manifest version declaration not found")
	// ErrPatternAmbiguous is returned when more than one line holds a version declaration.
	ErrPatternAmbiguous = errors.New("manifest version declaration is ambiguous")
	// ErrInvalidDocument is returned when the edited manifest no longer decodes
	// or decodes to a different version.
	ErrInvalidDocument = errors.New("edited manifest is invalid")
)

type (
	// PatternNotFoundError reports a manifest without a version declaration.
	PatternNotFoundError struct {
		Path string
	}

	// PatternAmbiguousError reports a manifest with several declaration lines.
	PatternAmbiguousError struct {
		Path  string
		Lines []int
	}

	// InvalidDocumentError wraps the decode failure of an edited manifest.
	InvalidDocumentError struct {
		Path string
		Err  error
	}
)

// Error implements the error interface.
func (e *PatternNotFoundError) Error() string {
	return fmt.Sprintf("%s: no line matches version = \"X.Y.Z\"", e.Path)
}

// Unwrap returns ErrPatternNotFound for errors.Is() compatibility.
func (e *PatternNotFoundError) Unwrap() error { return ErrPatternNotFound }

// Error implements the error interface.
func (e *PatternAmbiguousError) Error() string {
	return fmt.Sprintf("%s: version declared on %d lines %v, expected exactly one", e.Path, len(e.Lines), e.Lines)
}

// Unwrap returns ErrPatternAmbiguous for errors.Is() compatibility.
func (e *PatternAmbiguousError) Unwrap() error { return ErrPatternAmbiguous }

// Error implements the error interface.
func (e *InvalidDocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap returns both the sentinel and the decode error.
func (e *InvalidDocumentError) Unwrap() []error { return []error{ErrInvalidDocument, e.Err} }
