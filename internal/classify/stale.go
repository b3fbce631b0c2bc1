package classify

import (
	"github.com/Aman-CERP/layer/internal/gitignore"
	"github.com/Aman-CERP/layer/internal/resolve"
)

// StaleEntry is an exclude line whose target is gone.
type StaleEntry struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// Exister reports whether a repo-relative path exists and is a directory.
type Exister func(path string) (exists, isDir bool)

// StaleEntries checks literal exclude lines against the filesystem. It does
// not use the resolver: a missing path cannot be matched meaningfully.
//
//   - a literal entry is stale when its path is missing
//   - a directory entry (dir/) is stale when no directory exists there
//   - a glob entry is stale when it matches none of the walked paths
//
// Negations and malformed lines are never stale.
func StaleEntries(entries []string, exists Exister, walked []resolve.Candidate) []StaleEntry {
	var stale []StaleEntry
	for _, raw := range entries {
		p, ok := gitignore.Compile(raw, 0)
		if !ok || p.Err != nil || p.Negated {
			continue
		}

		if p.IsLiteral() {
			found, isDir := exists(p.LiteralPath())
			switch {
			case !found:
				stale = append(stale, StaleEntry{Entry: raw, Reason: "path no longer exists"})
			case p.DirOnly && !isDir:
				stale = append(stale, StaleEntry{Entry: raw, Reason: "no longer a directory"})
			}
			continue
		}

		if !matchesAny(p, walked) {
			stale = append(stale, StaleEntry{Entry: raw, Reason: "pattern matches nothing"})
		}
	}
	return stale
}

func matchesAny(p *gitignore.Pattern, walked []resolve.Candidate) bool {
	for _, c := range walked {
		if p.Match(c.Path, c.IsDir) {
			return true
		}
	}
	return false
}
