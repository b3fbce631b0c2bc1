// Package git reads the repository facts layer needs: where the work tree
// and git directory are, which paths the index tracks, and where the global
// excludes file lives. It shells out to the git binary.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

// Runner executes git with args in dir and returns stdout.
type Runner interface {
	Run(ctx context.Context, dir string, args ...string) ([]byte, error)
}

// ExecRunner runs the git binary found on PATH.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(ctx context.Context, dir string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, lerrors.New(lerrors.ErrCodeGitNotFound, "git executable not found", err).
				WithSuggestion("Install git and make sure it is on PATH")
		}
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, &CommandError{Args: args, Stderr: msg, Err: err}
	}
	return out, nil
}

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s: %s", strings.Join(e.Args, " "), e.Stderr)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// exitCode returns the exit status of a failed git command, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

// Repo is a discovered work tree.
type Repo struct {
	// Root is the absolute work tree root.
	Root string
	// GitDir is the absolute git directory (usually Root/.git).
	GitDir string

	runner Runner
}

// Option configures Discover.
type Option func(*options)

type options struct {
	runner Runner
}

// WithRunner replaces the git runner, for tests.
func WithRunner(r Runner) Option {
	return func(o *options) {
		o.runner = r
	}
}

// Discover finds the repository containing dir. Outside a work tree it
// returns a RepositoryError.
func Discover(ctx context.Context, dir string, opts ...Option) (*Repo, error) {
	o := options{runner: ExecRunner{}}
	for _, opt := range opts {
		opt(&o)
	}

	out, err := o.runner.Run(ctx, dir, "rev-parse", "--show-toplevel", "--absolute-git-dir")
	if err != nil {
		if lerrors.IsRepositoryError(err) {
			return nil, err
		}
		return nil, lerrors.RepositoryError(fmt.Sprintf("'%s' is not inside a git work tree", dir), err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) < 2 {
		return nil, lerrors.RepositoryError("unexpected output from git rev-parse", nil).
			WithDetail("output", string(out))
	}

	repo := &Repo{
		Root:   filepath.Clean(strings.TrimSpace(lines[0])),
		GitDir: filepath.Clean(strings.TrimSpace(lines[1])),
		runner: o.runner,
	}
	slog.Debug("repository discovered",
		slog.String("root", repo.Root),
		slog.String("git_dir", repo.GitDir))
	return repo, nil
}

// ExcludePath returns the path of .git/info/exclude.
func (r *Repo) ExcludePath() string {
	return filepath.Join(r.GitDir, "info", "exclude")
}

// Name derives a short repository name from the origin remote URL, falling
// back to the work tree directory name.
func (r *Repo) Name(ctx context.Context) string {
	if url := r.RemoteURL(ctx, "origin"); url != "" {
		url = strings.TrimRight(strings.ReplaceAll(url, ":", "/"), "/")
		if name := strings.TrimSuffix(path.Base(url), ".git"); name != "" && name != "." && name != "/" {
			return name
		}
	}
	return filepath.Base(r.Root)
}

// RemoteURL returns the URL of the named remote, or "" when unset.
func (r *Repo) RemoteURL(ctx context.Context, name string) string {
	out, err := r.runner.Run(ctx, r.Root, "remote", "get-url", name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}
