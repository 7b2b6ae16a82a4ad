// SPDX-License-Identifier: MPL-2.0

package vcs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// This allows injection of mock implementations for testing.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// CLI is a Client that runs the git binary inside the repository root.
	CLI struct {
		binary      string
		root        string
		sig         *Signature
		execCommand ExecCommandFunc
	}

	// CLIOption configures a CLI client.
	CLIOption func(*CLI)

	// CommandError reports a failed git invocation with its stderr.
	CommandError struct {
		Args     []string
		Stderr   string
		ExitCode int
		Err      error
	}
)

// WithBinary sets the git executable.
func WithBinary(path string) CLIOption {
	return func(c *CLI) {
		c.binary = path
	}
}

// WithExecCommand sets a custom exec command function for testing.
func WithExecCommand(fn ExecCommandFunc) CLIOption {
	return func(c *CLI) {
		c.execCommand = fn
	}
}

// WithCLISignature exports sig as GIT_AUTHOR_*/GIT_COMMITTER_* for every invocation.
func WithCLISignature(sig *Signature) CLIOption {
	return func(c *CLI) {
		c.sig = sig
	}
}

// OpenCLI locates the repository root containing dir.
func OpenCLI(dir string, opts ...CLIOption) (*CLI, error) {
	c := &CLI{binary: "git", root: dir, execCommand: exec.CommandContext}
	for _, opt := range opts {
		opt(c)
	}

	top, err := c.output(context.Background(), "rev-parse", "--show-toplevel")
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", dir, ErrNotRepository, err)
	}
	c.root = strings.TrimSpace(top)
	return c, nil
}

// Root implements Client.
func (c *CLI) Root() string { return c.root }

// Status implements Client.
func (c *CLI) Status(ctx context.Context) (Status, error) {
	out, err := c.output(ctx, "status", "--porcelain=v1", "-z", "--untracked-files=no")
	if err != nil {
		return Status{}, err
	}
	return parsePorcelain(out), nil
}

// Stage implements Client.
func (c *CLI) Stage(ctx context.Context, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	_, err := c.output(ctx, append([]string{"add", "--"}, paths...)...)
	return err
}

// Commit implements Client.
func (c *CLI) Commit(ctx context.Context, message string) (string, error) {
	// diff --cached --quiet exits 0 when the index matches HEAD.
	if _, err := c.output(ctx, "diff", "--cached", "--quiet"); err == nil {
		return "", ErrNothingToCommit
	} else if !isExit(err, 1) {
		return "", err
	}

	if _, err := c.output(ctx, "commit", "-m", message); err != nil {
		return "", err
	}
	hash, err := c.output(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(hash), nil
}

// HeadBranch implements Client.
func (c *CLI) HeadBranch(ctx context.Context) (RefName, error) {
	out, err := c.output(ctx, "symbolic-ref", "-q", "HEAD")
	if err != nil {
		if isExit(err, 1) {
			return "", ErrDetachedHead
		}
		return "", err
	}
	return RefName(strings.TrimSpace(out)), nil
}

// RefExists implements Client.
func (c *CLI) RefExists(ctx context.Context, ref RefName) (bool, error) {
	_, err := c.output(ctx, "show-ref", "--verify", "--quiet", string(ref))
	switch {
	case err == nil:
		return true, nil
	case isExit(err, 1):
		return false, nil
	default:
		return false, err
	}
}

// CreateBranch implements Client.
func (c *CLI) CreateBranch(ctx context.Context, name, target string) error {
	if err := c.ensureAbsent(ctx, BranchRef(name)); err != nil {
		return err
	}
	_, err := c.output(ctx, "branch", name, target)
	return err
}

// CreateTag implements Client.
func (c *CLI) CreateTag(ctx context.Context, name, target, message string) error {
	if err := c.ensureAbsent(ctx, TagRef(name)); err != nil {
		return err
	}
	if message == "" {
		_, err := c.output(ctx, "tag", name, target)
		return err
	}
	_, err := c.output(ctx, "tag", "-a", "-m", message, name, target)
	return err
}

// Push implements Client.
func (c *CLI) Push(ctx context.Context, remote string, spec RefSpec) error {
	if remote == "" {
		remote = DefaultRemote
	}
	_, err := c.output(ctx, "push", remote, spec.String())
	return err
}

func (c *CLI) ensureAbsent(ctx context.Context, ref RefName) error {
	exists, err := c.RefExists(ctx, ref)
	if err != nil {
		return err
	}
	if exists {
		return &RefExistsError{Ref: ref}
	}
	return nil
}

// output runs git with args in the repository root and returns stdout.
func (c *CLI) output(ctx context.Context, args ...string) (string, error) {
	cmd := c.execCommand(ctx, c.binary, args...)
	cmd.Dir = c.root
	cmd.Env = append(os.Environ(), c.env()...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running git", "args", args, "dir", c.root)
	if err := cmd.Run(); err != nil {
		cmdErr := &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), ExitCode: -1, Err: err}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			cmdErr.ExitCode = exitErr.ExitCode()
		}
		return "", cmdErr
	}
	return stdout.String(), nil
}

func (c *CLI) env() []string {
	env := []string{"GIT_TERMINAL_PROMPT=0", "LC_ALL=C"}
	if c.sig != nil && c.sig.Name != "" && c.sig.Email != "" {
		env = append(env,
			"GIT_AUTHOR_NAME="+c.sig.Name,
			"GIT_AUTHOR_EMAIL="+c.sig.Email,
			"GIT_COMMITTER_NAME="+c.sig.Name,
			"GIT_COMMITTER_EMAIL="+c.sig.Email,
		)
	}
	return env
}

// parsePorcelain reads `git status --porcelain=v1 -z` output.
func parsePorcelain(out string) Status {
	var st Status
	fields := strings.Split(out, "\x00")
	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		x, y, path := entry[0], entry[1], entry[3:]
		if x == '?' || x == '!' {
			continue
		}
		if x != ' ' {
			st.Staged = append(st.Staged, path)
		}
		if y != ' ' {
			st.Modified = append(st.Modified, path)
		}
		// Renames and copies carry the source path as the next field.
		if x == 'R' || x == 'C' {
			i++
		}
	}
	return st
}

func isExit(err error, code int) bool {
	var cmdErr *CommandError
	return errors.As(err, &cmdErr) && cmdErr.ExitCode == code
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	msg := "git " + strings.Join(e.Args, " ")
	if e.Stderr != "" {
		return msg + ": " + e.Stderr
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying exec error.
func (e *CommandError) Unwrap() error { return e.Err }

var _ Client = (*CLI)(nil)
