// SPDX-License-Identifier: MPL-2.0

package manifest

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/notion-sync/relprep/internal/version"

	"github.com/pelletier/go-toml/v2"
)

// declPattern matches a version declaration line. Group 2 holds a
// double-quoted payload, group 3 a single-quoted one.
var declPattern = regexp.MustCompile(`^([ \t]*version[ \t]*=[ \t]*)(?:"(\d+\.\d+\.\d+)"|'(\d+\.\d+\.\d+)')`)

type (
	// Declaration locates the version declaration inside a manifest.
	Declaration struct {
		// Line is the 1-based line number.
		Line int
		// Version is the payload currently declared, verbatim.
		Version string

		// start and end delimit the payload in the whole file.
		start int
		end   int
	}

	// Edit describes a completed rewrite.
	Edit struct {
		Path     string
		Line     int
		Previous string
		Current  string
	}

	// Option configures an Editor.
	Option func(*Editor)

	// Editor reads and rewrites manifest version declarations.
	Editor struct {
		// checkTOML forces (true) or disables (false) TOML verification.
		// nil means "verify files with a .toml extension".
		checkTOML *bool
	}
)

// WithTOMLCheck forces TOML verification on or off regardless of the file extension.
func WithTOMLCheck(enabled bool) Option {
	return func(e *Editor) {
		e.checkTOML = &enabled
	}
}

// NewEditor creates an Editor.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Read returns the single version declaration of the manifest at path.
func (e *Editor) Read(path string) (Declaration, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Declaration{}, fmt.Errorf("read manifest: %w", err)
	}
	return find(path, data)
}

// SetVersion replaces the declared version with v and writes the file in place.
// Nothing is written when the declaration is missing or ambiguous, or when the
// edited TOML document fails verification.
func (e *Editor) SetVersion(path string, v version.Version) (*Edit, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat manifest: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	decl, err := find(path, data)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(data)+len(v.String())-len(decl.Version))
	out = append(out, data[:decl.start]...)
	out = append(out, v.String()...)
	out = append(out, data[decl.end:]...)

	if e.shouldCheckTOML(path) {
		if err := verifyTOML(out, v); err != nil {
			return nil, &InvalidDocumentError{Path: path, Err: err}
		}
	}

	if err := os.WriteFile(path, out, info.Mode().Perm()); err != nil {
		return nil, fmt.Errorf("write manifest: %w", err)
	}

	slog.Debug("manifest updated", "path", path, "line", decl.Line, "from", decl.Version, "to", v.String())

	return &Edit{
		Path:     path,
		Line:     decl.Line,
		Previous: decl.Version,
		Current:  v.String(),
	}, nil
}

func (e *Editor) shouldCheckTOML(path string) bool {
	if e.checkTOML != nil {
		return *e.checkTOML
	}
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// find scans data line by line and returns the only declaration.
func find(path string, data []byte) (Declaration, error) {
	var (
		found []Declaration
		lines []int
	)

	offset := 0
	lineNo := 0
	for offset < len(data) {
		lineNo++
		end := bytes.IndexByte(data[offset:], '\n')
		if end < 0 {
			end = len(data)
		} else {
			end += offset
		}
		line := bytes.TrimSuffix(data[offset:end], []byte("\r"))

		if m := declPattern.FindSubmatchIndex(line); m != nil {
			// Exactly one of the two payload groups participates.
			s, e := m[4], m[5]
			if s < 0 {
				s, e = m[6], m[7]
			}
			found = append(found, Declaration{
				Line:    lineNo,
				Version: string(line[s:e]),
				start:   offset + s,
				end:     offset + e,
			})
			lines = append(lines, lineNo)
		}

		offset = end + 1
	}

	switch len(found) {
	case 0:
		return Declaration{}, &PatternNotFoundError{Path: path}
	case 1:
		return found[0], nil
	default:
		return Declaration{}, &PatternAmbiguousError{Path: path, Lines: lines}
	}
}

// verifyTOML decodes the edited document and checks the package version,
// covering both [package] and [workspace.package] tables.
func verifyTOML(doc []byte, v version.Version) error {
	var tree map[string]any
	if err := toml.Unmarshal(doc, &tree); err != nil {
		return fmt.Errorf("decode TOML: %w", err)
	}

	for _, table := range packageTables(tree) {
		declared, ok := table["version"].(string)
		if !ok {
			continue
		}
		if declared != v.String() {
			return fmt.Errorf("package version is %q after edit, want %q", declared, v.String())
		}
	}
	return nil
}

func packageTables(tree map[string]any) []map[string]any {
	var tables []map[string]any
	if pkg, ok := tree["package"].(map[string]any); ok {
		tables = append(tables, pkg)
	}
	if ws, ok := tree["workspace"].(map[string]any); ok {
		if pkg, ok := ws["package"].(map[string]any); ok {
			tables = append(tables, pkg)
		}
	}
	return tables
}
