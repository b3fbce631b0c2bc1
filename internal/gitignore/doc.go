// Package gitignore compiles ignore-rule lines and ignore files.
//
// It implements the pattern syntax documented at
// https://git-scm.com/docs/gitignore, compiled into segments instead of
// regular expressions so a match can always be traced back to a rule.
//
// Features:
//   - Wildcards (*, ?, [a-z], [!abc])
//   - Double star segments (**/foo, foo/**, a/**/b)
//   - Anchored patterns (/build)
//   - Negation patterns (!important.log)
//   - Directory-only patterns (build/)
//   - Malformed lines kept as non-matching patterns
//
// A single Pattern only answers whether it matches one path. Walking
// parent directories and applying precedence between files is the job
// of the resolve package.
//
// Usage:
//
//	src, err := gitignore.ParseSource(f, ".gitignore", "", gitignore.TierGitignore)
//	for _, p := range src.Patterns {
//	    if p.Match("logs/error.log", false) {
//	        // p applies
//	    }
//	}
package gitignore
