package gitignore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSource_KeepsOrderAndLineNumbers(t *testing.T) {
	// Given: a gitignore with comments, blanks and a malformed line
	content := "# header\n\n*.log\n[bad\n!keep.log\n"

	// When: parsing
	src, err := ParseSource(strings.NewReader(content), "pkg/.gitignore", "pkg", TierGitignore)

	// Then: every rule line is kept in order with its line number
	require.NoError(t, err)
	require.Len(t, src.Patterns, 3)
	assert.Equal(t, 3, src.Patterns[0].Line)
	assert.Equal(t, 4, src.Patterns[1].Line)
	assert.Error(t, src.Patterns[1].Err)
	assert.Equal(t, 5, src.Patterns[2].Line)
	assert.True(t, src.Patterns[2].Negated)

	// And: patterns point back at their source
	for _, p := range src.Patterns {
		assert.Same(t, src, p.Source)
	}
}

func TestParseSource_HandlesCRLF(t *testing.T) {
	src, err := ParseSource(strings.NewReader("CLAUDE.md\r\n.cursor/\r\n"), ".gitignore", "", TierGitignore)

	require.NoError(t, err)
	require.Len(t, src.Patterns, 2)
	assert.Equal(t, "CLAUDE.md", src.Patterns[0].Raw)
	assert.True(t, src.Patterns[1].DirOnly)
}

func TestLoadSource_MissingFileIsEmpty(t *testing.T) {
	src := LoadSource(filepath.Join(t.TempDir(), "nope"), ".gitignore", "", TierGitignore)

	require.NotNil(t, src)
	assert.Equal(t, 0, src.Len())
	assert.Equal(t, TierGitignore, src.Tier)
}

func TestLoadSource_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".gitignore")
	require.NoError(t, os.WriteFile(file, []byte("node_modules/\n"), 0o644))

	src := LoadSource(file, "sub/.gitignore", "./sub/", TierGitignore)

	require.Equal(t, 1, src.Len())
	assert.Equal(t, "sub", src.Scope)
	assert.Equal(t, 1, src.Depth())
}

func TestRuleSource_Rel(t *testing.T) {
	root := NewSource(".gitignore", "", TierGitignore)
	nested := NewSource("a/b/.gitignore", "a/b", TierGitignore)

	rel, ok := root.Rel("a/b/c.txt")
	assert.True(t, ok)
	assert.Equal(t, "a/b/c.txt", rel)

	rel, ok = nested.Rel("a/b/c.txt")
	assert.True(t, ok)
	assert.Equal(t, "c.txt", rel)

	// The scope directory itself and siblings are out of scope
	_, ok = nested.Rel("a/b")
	assert.False(t, ok)
	_, ok = nested.Rel("a/bc/d.txt")
	assert.False(t, ok)

	assert.Equal(t, 2, nested.Depth())
	assert.Equal(t, 0, root.Depth())
}

func TestRuleSource_Applies(t *testing.T) {
	root := NewSource(".gitignore", "", TierGitignore)
	nested := NewSource("a/b/.gitignore", "a/b", TierGitignore)

	assert.True(t, root.Applies("anything"))
	assert.True(t, nested.Applies("a/b"))
	assert.True(t, nested.Applies("a/b/c"))
	assert.False(t, nested.Applies("a"))
	assert.False(t, nested.Applies("a/bc"))
}

func TestTier_String(t *testing.T) {
	assert.Equal(t, "global", TierGlobal.String())
	assert.Equal(t, "gitignore", TierGitignore.String())
	assert.Equal(t, "local-exclude", TierLocalExclude.String())
	assert.Equal(t, "unknown", Tier(9).String())
}

func TestParsePatterns_SkipsCommentsAndEmpty(t *testing.T) {
	content := "# managed by layer\nCLAUDE.md\n\n  .cursor/  \n# end layer\n\\#literal\n"

	got := ParsePatterns(content)

	assert.Equal(t, []string{"CLAUDE.md", ".cursor/", `\#literal`}, got)
}

func TestTrimRule(t *testing.T) {
	assert.Equal(t, "notes.md", TrimRule("  notes.md \t \r"))
	assert.Equal(t, `name\ `, TrimRule(`name\ `))
	assert.Equal(t, `name\ `, TrimRule(`name\   `))
	assert.Equal(t, "", TrimRule("   "))
}
