// SPDX-License-Identifier: MPL-2.0

package version

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		candidate string
		want      string
		wantErr   bool
	}{
		{"simple", "1.2.3", "1.2.3", false},
		{"zeros", "0.0.0", "0.0.0", false},
		{"release example", "0.2.0", "0.2.0", false},
		{"multi digit groups", "10.20.300", "10.20.300", false},
		{"leading zero kept", "01.2.3", "01.2.3", false},
		{"huge group", "99999999999999999999999.0.1", "99999999999999999999999.0.1", false},
		{"two groups", "1.2", "", true},
		{"four groups", "1.2.3.4", "", true},
		{"prerelease", "1.2.3-rc1", "", true},
		{"build metadata", "1.2.3+build.5", "", true},
		{"v prefix", "v1.2.3", "", true},
		{"leading space", " 1.2.3", "", true},
		{"trailing newline", "1.2.3\n", "", true},
		{"letters", "abc", "", true},
		{"empty", "", "", true},
		{"negative", "-1.2.3", "", true},
		{"empty group", "1..3", "", true},
		{"non ascii digit", "1.2.٣", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, err := Parse(tt.candidate)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %q, want error", tt.candidate, v)
				}
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("error should wrap ErrInvalidFormat, got: %v", err)
				}
				var fmtErr *InvalidFormatError
				if !errors.As(err, &fmtErr) {
					t.Fatalf("error should be *InvalidFormatError, got: %T", err)
				}
				if fmtErr.Value != tt.candidate {
					t.Errorf("InvalidFormatError.Value = %q, want %q", fmtErr.Value, tt.candidate)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) returned unexpected error: %v", tt.candidate, err)
			}
			if v.String() != tt.want {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.candidate, v.String(), tt.want)
			}
		})
	}
}

func TestVersion_Components(t *testing.T) {
	t.Parallel()

	v := MustParse("01.20.3")
	if v.Major() != "01" || v.Minor() != "20" || v.Patch() != "3" {
		t.Errorf("components = %q %q %q, want %q %q %q", v.Major(), v.Minor(), v.Patch(), "01", "20", "3")
	}
}

func TestVersion_Tag(t *testing.T) {
	t.Parallel()

	if got := MustParse("0.2.0").Tag(); got != "v0.2.0" {
		t.Errorf("Tag() = %q, want %q", got, "v0.2.0")
	}
}

func TestVersion_Zero(t *testing.T) {
	t.Parallel()

	var v Version
	if !v.IsZero() {
		t.Error("zero Version should report IsZero")
	}
	if v.String() != "" {
		t.Errorf("zero Version String() = %q, want empty", v.String())
	}
}

func TestInvalidFormatError_MentionsExample(t *testing.T) {
	t.Parallel()

	_, err := Parse("abc")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), Example) {
		t.Errorf("error %q should mention the example %q", err.Error(), Example)
	}
}
