package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Aman-CERP/layer/internal/gitignore"
	"github.com/Aman-CERP/layer/internal/resolve"
)

// sourceCacheSize bounds the number of parsed .gitignore files kept.
const sourceCacheSize = 1000

// IgnoreFile is the per-directory ignore file name.
const IgnoreFile = ".gitignore"

// Scanner walks work trees and caches the .gitignore sources it parses.
type Scanner struct {
	// sources caches parsed .gitignore files by absolute directory.
	sources *lru.Cache[string, *gitignore.RuleSource]
	cacheMu sync.RWMutex
}

// New creates a Scanner.
func New() (*Scanner, error) {
	cache, err := lru.New[string, *gitignore.RuleSource](sourceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create source cache: %w", err)
	}
	return &Scanner{sources: cache}, nil
}

// Walk collects the files and directories under root down to
// opts.MaxDepth. Unreadable entries are skipped.
func (s *Scanner) Walk(ctx context.Context, root string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = &Options{}
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %w", err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to stat root directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root path is not a directory: %s", absRoot)
	}

	skip := map[string]struct{}{".git": {}}
	for _, d := range opts.SkipDirs {
		skip[d] = struct{}{}
	}

	res := &Result{}
	err = filepath.WalkDir(absRoot, func(p string, d fs.DirEntry, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			slog.Debug("skipping unreadable path",
				slog.String("path", p),
				slog.String("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(absRoot, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if rel == "." {
			if hasIgnoreFile(p) {
				res.IgnoreDirs = append(res.IgnoreDirs, "")
			}
			return nil
		}

		if d.IsDir() {
			if _, ok := skip[d.Name()]; ok {
				return filepath.SkipDir
			}
		}

		res.Candidates = append(res.Candidates, resolve.Candidate{
			Path:   rel,
			IsDir:  d.IsDir(),
			Exists: true,
		})

		if d.IsDir() {
			if hasIgnoreFile(p) {
				res.IgnoreDirs = append(res.IgnoreDirs, rel)
			}
			if Depth(rel) >= maxDepth {
				return filepath.SkipDir
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("walk complete",
		slog.String("root", absRoot),
		slog.Int("candidates", len(res.Candidates)),
		slog.Int("ignore_files", len(res.IgnoreDirs)))
	return res, nil
}

// Sources returns the .gitignore source of each directory in dirs, in order.
func (s *Scanner) Sources(root string, dirs []string) []*gitignore.RuleSource {
	out := make([]*gitignore.RuleSource, 0, len(dirs))
	for _, dir := range dirs {
		if src := s.Source(root, dir); src != nil {
			out = append(out, src)
		}
	}
	return out
}

// SourcesFor returns the .gitignore sources that can govern rel: the root
// file and one per ancestor directory of rel that has one.
func (s *Scanner) SourcesFor(root, rel string) []*gitignore.RuleSource {
	dirs := append([]string{""}, resolve.Ancestors(rel)...)
	return s.Sources(root, dirs)
}

// Source loads the .gitignore in the repo-relative directory dir, or
// returns nil when there is none. Parsed files are cached.
func (s *Scanner) Source(root, dir string) *gitignore.RuleSource {
	absDir := filepath.Join(root, filepath.FromSlash(dir))

	s.cacheMu.RLock()
	src, ok := s.sources.Get(absDir)
	s.cacheMu.RUnlock()
	if ok {
		return src
	}

	file := filepath.Join(absDir, IgnoreFile)
	if !hasIgnoreFile(absDir) {
		return nil
	}
	src = gitignore.LoadSource(file, path.Join(dir, IgnoreFile), dir, gitignore.TierGitignore)

	s.cacheMu.Lock()
	s.sources.Add(absDir, src)
	s.cacheMu.Unlock()

	return src
}

// InvalidateCache drops every cached source. Call it when a .gitignore
// changes.
func (s *Scanner) InvalidateCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	s.sources.Purge()
}

func hasIgnoreFile(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, IgnoreFile))
	return err == nil && !info.IsDir()
}
