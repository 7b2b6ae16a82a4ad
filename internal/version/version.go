// SPDX-License-Identifier: MPL-2.0

// Package version parses release version strings.
//
// A release version is exactly three dot-separated groups of ASCII digits
// ("0.2.0"). Pre-release and build metadata, a leading "v" and surrounding
// whitespace are all rejected. Groups are kept verbatim: "01.2.3" is
// accepted and stays "01.2.3".
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Example is the version shown to users when a candidate is rejected.
const Example = "0.2.0"

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid version format")

var pattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)$`)

type (
	// Version is a validated release version. The zero value is not valid;
	// obtain one through Parse or MustParse.
	Version struct {
		major string
		minor string
		patch string
	}

	// InvalidFormatError is returned when a candidate does not match
	// MAJOR.MINOR.PATCH.
	InvalidFormatError struct {
		Value string
	}
)

// Parse validates candidate and returns the corresponding Version.
func Parse(candidate string) (Version, error) {
	m := pattern.FindStringSubmatch(candidate)
	if m == nil {
		return Version{}, &InvalidFormatError{Value: candidate}
	}
	return Version{major: m[1], minor: m[2], patch: m[3]}, nil
}

// MustParse is like Parse but panics on an invalid candidate. Tests only.
func MustParse(candidate string) Version {
	v, err := Parse(candidate)
	if err != nil {
		panic(err)
	}
	return v
}

// Major returns the first group as written.
func (v Version) Major() string { return v.major }

// Minor returns the second group as written.
func (v Version) Minor() string { return v.minor }

// Patch returns the third group as written.
func (v Version) Patch() string { return v.patch }

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool { return v.major == "" }

// String returns the "major.minor.patch" form.
func (v Version) String() string {
	if v.IsZero() {
		return ""
	}
	return strings.Join([]string{v.major, v.minor, v.patch}, ".")
}

// Tag returns the ref name used for both the release branch and tag.
func (v Version) Tag() string { return "v" + v.String() }

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid version %q: expected MAJOR.MINOR.PATCH (e.g. %s)", e.Value, Example)
}

// Unwrap returns ErrInvalidFormat so callers can use errors.Is for programmatic detection.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }
