package resolve

import (
	"os"
	"path/filepath"
	"strings"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

// Candidate is a path under consideration.
type Candidate struct {
	// Path is repo-relative, slash separated, without a leading "./".
	Path   string
	IsDir  bool
	Exists bool
}

// NewCandidate builds a Candidate for path, which may be absolute or relative
// to root. Existence and directory-ness are read from disk. A path that does
// not exist but ends in a separator is taken as a directory.
func NewCandidate(root, path string) (Candidate, error) {
	trailingSlash := strings.HasSuffix(path, "/") || strings.HasSuffix(path, string(filepath.Separator))

	rel, err := RelPath(root, path)
	if err != nil {
		return Candidate{}, err
	}

	c := Candidate{Path: rel, IsDir: trailingSlash}
	if info, err := os.Lstat(filepath.Join(root, filepath.FromSlash(rel))); err == nil {
		c.Exists = true
		c.IsDir = info.IsDir()
	}
	return c, nil
}

// RelPath converts path to a clean repo-relative slash path. Paths that
// leave the repository, and the root itself, are rejected with a ScopeError.
func RelPath(root, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(root, filepath.FromSlash(path))
	}

	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil {
		return "", lerrors.ScopeError(path)
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, "../") {
		return "", lerrors.ScopeError(path)
	}
	return rel, nil
}

// Ancestors returns the directories above path, shallowest first.
func Ancestors(path string) []string {
	var dirs []string
	for i := 0; i < len(path); i++ {
		if path[i] == '/' {
			dirs = append(dirs, path[:i])
		}
	}
	return dirs
}
