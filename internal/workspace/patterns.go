package workspace

import (
	"strings"

	"github.com/samber/lo"
)

// PatternMatch is one catalog entry and the walked paths it matched.
type PatternMatch struct {
	Pattern string   `json:"pattern"`
	Files   []string `json:"files,omitempty"`
}

// GroupMatches is a catalog group with per-entry matches.
type GroupMatches struct {
	Name     string         `json:"name"`
	Patterns []PatternMatch `json:"patterns"`
}

// Matched reports whether any entry in the group matched a path.
func (g GroupMatches) Matched() bool {
	return lo.SomeBy(g.Patterns, func(p PatternMatch) bool { return len(p.Files) > 0 })
}

// Patterns returns the catalog with the walked paths each entry matches.
// With matchedOnly, groups and entries without a match are dropped.
func (ws *Workspace) Patterns(matchedOnly bool) []GroupMatches {
	byPattern := make(map[string][]string)
	for _, e := range ws.Catalog.Entries() {
		for _, c := range ws.Walk.Candidates {
			if e.Match(c.Path, c.IsDir) && !coveredBy(byPattern[e.Pattern], c.Path) {
				byPattern[e.Pattern] = append(byPattern[e.Pattern], Display(c))
			}
		}
	}

	out := make([]GroupMatches, 0, len(ws.Catalog.Groups()))
	for _, g := range ws.Catalog.Groups() {
		gm := GroupMatches{Name: g.Name}
		for _, p := range g.Entries {
			files := byPattern[p]
			if matchedOnly && len(files) == 0 {
				continue
			}
			gm.Patterns = append(gm.Patterns, PatternMatch{Pattern: p, Files: files})
		}
		if matchedOnly && !gm.Matched() {
			continue
		}
		out = append(out, gm)
	}
	return out
}

// coveredBy reports whether path sits inside a directory already listed.
func coveredBy(listed []string, path string) bool {
	return lo.SomeBy(listed, func(l string) bool {
		return strings.HasSuffix(l, "/") && strings.HasPrefix(path, l)
	})
}
