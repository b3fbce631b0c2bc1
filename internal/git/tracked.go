package git

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

// TrackedIndex is the set of paths in the git index.
type TrackedIndex struct {
	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewTrackedIndex builds an index from repo-relative tracked file paths.
func NewTrackedIndex(paths []string) *TrackedIndex {
	t := &TrackedIndex{
		files: make(map[string]struct{}, len(paths)),
		dirs:  make(map[string]struct{}),
	}
	for _, p := range paths {
		if p == "" {
			continue
		}
		t.files[p] = struct{}{}
		for i := 0; i < len(p); i++ {
			if p[i] == '/' {
				t.dirs[p[:i]] = struct{}{}
			}
		}
	}
	return t
}

// Tracked reports whether path is tracked. A directory counts as tracked
// when any tracked file lies beneath it.
func (t *TrackedIndex) Tracked(path string, isDir bool) bool {
	path = strings.TrimSuffix(path, "/")
	if isDir {
		_, ok := t.dirs[path]
		return ok
	}
	_, ok := t.files[path]
	return ok
}

// Len returns the number of tracked files.
func (t *TrackedIndex) Len() int {
	return len(t.files)
}

// Paths returns the tracked files in sorted order.
func (t *TrackedIndex) Paths() []string {
	out := make([]string, 0, len(t.files))
	for p := range t.files {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Under returns the tracked files inside dir, sorted.
func (t *TrackedIndex) Under(dir string) []string {
	prefix := strings.TrimSuffix(dir, "/") + "/"
	var out []string
	for p := range t.files {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out
}

// TrackedIndex reads the index with `git ls-files -z`.
func (r *Repo) TrackedIndex(ctx context.Context) (*TrackedIndex, error) {
	out, err := r.runner.Run(ctx, r.Root, "ls-files", "-z", "--cached", "--full-name")
	if err != nil {
		return nil, lerrors.RepositoryError("cannot read the git index", err)
	}

	paths := strings.Split(strings.TrimRight(string(out), "\x00"), "\x00")
	idx := NewTrackedIndex(paths)
	slog.Debug("index loaded", slog.Int("tracked", idx.Len()))
	return idx, nil
}
