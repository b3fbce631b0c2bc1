// Package scanner walks a work tree to a fixed depth and loads the
// .gitignore files found on the way.
package scanner

import "github.com/Aman-CERP/layer/internal/resolve"

// DefaultMaxDepth is how many directory levels a walk descends when the
// caller does not say.
const DefaultMaxDepth = 2

// Options configures a walk.
type Options struct {
	// MaxDepth limits how deep candidates are collected. A top-level entry
	// has depth 1. Values <= 0 use DefaultMaxDepth.
	MaxDepth int

	// SkipDirs are directory base names never descended into.
	// .git is always skipped.
	SkipDirs []string
}

// Result is what one walk found.
type Result struct {
	// Candidates are the files and directories within MaxDepth, in walk
	// order (lexical per directory).
	Candidates []resolve.Candidate

	// IgnoreDirs are the repo-relative directories holding a .gitignore,
	// "" for the root. Only directories within MaxDepth are visited.
	IgnoreDirs []string
}

// Depth returns the number of segments in a repo-relative path.
func Depth(rel string) int {
	if rel == "" {
		return 0
	}
	n := 1
	for i := 0; i < len(rel); i++ {
		if rel[i] == '/' {
			n++
		}
	}
	return n
}
