// Package workspacetest builds throwaway repositories for tests that need a
// loaded workspace without a git binary.
package workspacetest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/git"
	"github.com/Aman-CERP/layer/internal/workspace"
)

// Git answers the git calls workspace.Load makes for a repository at Root.
type Git struct {
	Root    string
	Tracked []string
	Remote  string
}

// Run implements git.Runner.
func (g *Git) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	switch strings.Join(args, " ") {
	case "rev-parse --show-toplevel --absolute-git-dir":
		return []byte(g.Root + "\n" + filepath.Join(g.Root, ".git") + "\n"), nil
	case "ls-files -z --cached --full-name":
		return []byte(strings.Join(g.Tracked, "\x00")), nil
	case "remote get-url origin":
		if g.Remote != "" {
			return []byte(g.Remote + "\n"), nil
		}
	}
	return nil, errors.New("unsupported git call: " + strings.Join(args, " "))
}

// Repo is a temporary work tree.
type Repo struct {
	Root string
	Git  *Git
}

// New writes files under a temporary root and isolates the user config
// and global excludes lookups. Paths ending in '/' become empty directories.
func New(t *testing.T, files map[string]string, tracked ...string) *Repo {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "info"), 0o755))
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return &Repo{Root: root, Git: &Git{Root: root, Tracked: tracked}}
}

// Options returns load options wired to the fake git.
func (r *Repo) Options() workspace.Options {
	return workspace.Options{GitOptions: []git.Option{git.WithRunner(r.Git)}}
}

// Load loads the workspace.
func (r *Repo) Load(t *testing.T) *workspace.Workspace {
	t.Helper()
	ws, err := workspace.Load(context.Background(), r.Root, r.Options())
	require.NoError(t, err)
	return ws
}

// ReadExclude returns the current .git/info/exclude content.
func (r *Repo) ReadExclude(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(r.Root, ".git", "info", "exclude"))
	if errors.Is(err, os.ErrNotExist) {
		return ""
	}
	require.NoError(t, err)
	return string(data)
}
