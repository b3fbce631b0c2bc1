// Package catalog holds the table of known AI-assistant context paths that
// layer offers to hide.
package catalog

import (
	"strings"

	"github.com/samber/lo"

	"github.com/Aman-CERP/layer/internal/gitignore"
)

// Kind describes how a catalog entry is matched.
type Kind int

const (
	// KindFile is a single literal file.
	KindFile Kind = iota
	// KindDir is a directory and everything beneath it.
	KindDir
	// KindGlob is a wildcard pattern.
	KindGlob
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindGlob:
		return "glob"
	default:
		return "file"
	}
}

// Entry is one known path.
type Entry struct {
	Pattern string `json:"pattern"`
	Group   string `json:"group"`
	Kind    Kind   `json:"-"`

	compiled *gitignore.Pattern
}

// Group is a named set of entries belonging to one tool.
type Group struct {
	Name    string   `json:"name"`
	Entries []string `json:"entries"`
}

// CustomGroup is the group name for patterns added through configuration.
const CustomGroup = "Custom"

var builtin = []Group{
	{Name: "Claude Code", Entries: []string{"CLAUDE.md", "CLAUDE.local.md", ".claude/", ".claude.json", "Agents.md"}},
	{Name: "Cursor / PearAI", Entries: []string{".cursorrules", ".cursor/", ".cursorignore", ".pearai/"}},
	{Name: "Windsurf", Entries: []string{".windsurfrules", ".windsurf/"}},
	{Name: "Aider", Entries: []string{".aider*", ".aider.conf.yml", ".aiderignore"}},
	{Name: "Cline / Roo Code", Entries: []string{".clinerules", ".cline/", ".roocodes/", ".roocoderules", ".roo/", ".roomodes"}},
	{Name: "GitHub Copilot", Entries: []string{".github/copilot-instructions.md", ".github/copilot-custom-instructions.md"}},
	{Name: "OpenAI Codex", Entries: []string{"AGENTS.md"}},
	{Name: "Generic AI Context", Entries: []string{"agents.md", "AI.md", "AI_CONTEXT.md", "CONTEXT.md", "INSTRUCTIONS.md", "PROMPT.md", "SYSTEM.md"}},
	{Name: "Continue / Void", Entries: []string{".continue/", ".void/"}},
	{Name: "Gemini", Entries: []string{"GEMINI.md", ".gemini/"}},
}

// Catalog matches paths against the known entries.
type Catalog struct {
	groups  []Group
	entries []Entry
}

// New builds the catalog from the built-in table plus extra patterns.
// Blank extras and extras duplicating a built-in entry are dropped. An extra
// that does not compile stays in Groups but never matches.
func New(extra []string) *Catalog {
	groups := make([]Group, 0, len(builtin)+1)
	groups = append(groups, builtin...)

	known := lo.FlatMap(builtin, func(g Group, _ int) []string { return g.Entries })
	custom := lo.Uniq(lo.Filter(lo.Map(extra, func(s string, _ int) string { return strings.TrimSpace(s) }),
		func(s string, _ int) bool { return s != "" && !lo.Contains(known, s) }))
	if len(custom) > 0 {
		groups = append(groups, Group{Name: CustomGroup, Entries: custom})
	}

	c := &Catalog{groups: groups}
	for _, g := range builtin {
		for _, raw := range g.Entries {
			c.add(g.Name, raw, gitignore.MustCompile(anchor(raw)))
		}
	}
	for _, raw := range custom {
		if p, ok := gitignore.Compile(anchor(raw), 0); ok && p.Err == nil {
			c.add(CustomGroup, raw, p)
		}
	}
	return c
}

func (c *Catalog) add(group, raw string, p *gitignore.Pattern) {
	c.entries = append(c.entries, Entry{Pattern: raw, Group: group, Kind: KindOf(raw), compiled: p})
}

// anchor roots an entry at the repository top level.
func anchor(raw string) string {
	if strings.HasPrefix(raw, "/") {
		return raw
	}
	return "/" + raw
}

// KindOf classifies a raw entry.
func KindOf(raw string) Kind {
	switch {
	case strings.HasSuffix(raw, "/"):
		return KindDir
	case strings.ContainsAny(raw, "*?["):
		return KindGlob
	default:
		return KindFile
	}
}

// Groups returns the catalog table, custom patterns last.
func (c *Catalog) Groups() []Group {
	return c.groups
}

// Entries returns every compiled entry.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Match returns the entry matching the repo-relative path, if any.
func (c *Catalog) Match(path string, isDir bool) (Entry, bool) {
	for _, e := range c.entries {
		if e.compiled.Match(path, isDir) {
			return e, true
		}
	}
	return Entry{}, false
}

// Matches reports whether path is a known context path.
func (c *Catalog) Matches(path string, isDir bool) bool {
	_, ok := c.Match(path, isDir)
	return ok
}

// Match reports whether this entry matches the repo-relative path.
func (e Entry) Match(path string, isDir bool) bool {
	return e.compiled != nil && e.compiled.Match(path, isDir)
}
