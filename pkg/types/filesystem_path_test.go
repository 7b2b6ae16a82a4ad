// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"testing"
)

func TestFilesystemPath_Validate(t *testing.T) {
	t.Parallel()

	for _, p := range []FilesystemPath{"Cargo.toml", "Cargo.lock", "crates/notion-sync/Cargo.toml", "."} {
		if err := p.Validate(); err != nil {
			t.Errorf("FilesystemPath(%q).Validate() = %v", p, err)
		}
	}

	for _, p := range []FilesystemPath{"", " \t"} {
		err := p.Validate()
		var pathErr *InvalidFilesystemPathError
		if !errors.As(err, &pathErr) || pathErr.Value != p {
			t.Errorf("FilesystemPath(%q).Validate() = %v, want *InvalidFilesystemPathError", p, err)
		}
		if !errors.Is(err, ErrInvalidFilesystemPath) {
			t.Errorf("FilesystemPath(%q).Validate() does not wrap ErrInvalidFilesystemPath", p)
		}
	}
}
