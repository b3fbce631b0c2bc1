package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Match(t *testing.T) {
	c := New(nil)

	tests := []struct {
		path  string
		isDir bool
		group string
		ok    bool
	}{
		{path: "CLAUDE.md", group: "Claude Code", ok: true},
		{path: ".claude", isDir: true, group: "Claude Code", ok: true},
		{path: ".claude", isDir: false, ok: false},
		{path: ".aider.chat.history.md", group: "Aider", ok: true},
		{path: ".github/copilot-instructions.md", group: "GitHub Copilot", ok: true},
		{path: "AGENTS.md", group: "OpenAI Codex", ok: true},
		{path: "Agents.md", group: "Claude Code", ok: true},
		{path: "agents.md", group: "Generic AI Context", ok: true},
		{path: ".pearai", isDir: true, group: "Cursor / PearAI", ok: true},
		{path: ".roocodes", isDir: true, group: "Cline / Roo Code", ok: true},
		{path: ".roocoderules", group: "Cline / Roo Code", ok: true},
		{path: ".github/copilot-custom-instructions.md", group: "GitHub Copilot", ok: true},
		{path: "docs/CLAUDE.md", ok: false},
		{path: "README.md", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e, ok := c.Match(tt.path, tt.isDir)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.group, e.Group)
			}
		})
	}
}

func TestCatalog_IncludesKnownTools(t *testing.T) {
	var entries []string
	for _, g := range New(nil).Groups() {
		entries = append(entries, g.Entries...)
	}

	for _, want := range []string{
		"CLAUDE.md", ".claude/", ".claude.json", "Agents.md",
		".cursorrules", ".cursor/", ".cursorignore", ".pearai/",
		".windsurfrules", ".windsurf/",
		".aider*", ".aider.conf.yml", ".aiderignore",
		".clinerules", ".cline/", ".roocodes/", ".roocoderules",
		".github/copilot-instructions.md", ".github/copilot-custom-instructions.md",
		"AGENTS.md", "agents.md",
		"AI.md", "AI_CONTEXT.md", "CONTEXT.md", "INSTRUCTIONS.md", "PROMPT.md", "SYSTEM.md",
		".continue/", ".void/",
	} {
		assert.Contains(t, entries, want)
	}
	assert.NotContains(t, entries, "AI_INSTRUCTIONS.md")
}

func TestCatalog_ExtraPatterns(t *testing.T) {
	// Given: custom patterns, one duplicating a built-in and one blank
	c := New([]string{"notes/ai/", "CLAUDE.md", " ", "notes/ai/"})

	// Then: a single custom group holds the new pattern
	groups := c.Groups()
	last := groups[len(groups)-1]
	assert.Equal(t, CustomGroup, last.Name)
	assert.Equal(t, []string{"notes/ai/"}, last.Entries)

	e, ok := c.Match("notes/ai", true)
	require.True(t, ok)
	assert.Equal(t, KindDir, e.Kind)
	assert.Equal(t, CustomGroup, e.Group)
}

func TestCatalog_NoCustomGroupWithoutExtras(t *testing.T) {
	for _, g := range New(nil).Groups() {
		assert.NotEqual(t, CustomGroup, g.Name)
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindDir, KindOf(".cursor/"))
	assert.Equal(t, KindGlob, KindOf(".aider*"))
	assert.Equal(t, KindFile, KindOf("CLAUDE.md"))
	assert.Equal(t, "glob", KindGlob.String())
}
