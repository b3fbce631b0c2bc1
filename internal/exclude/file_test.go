package exclude

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/gitignore"
)

const sample = `# git ls-files --others --exclude-from=.git/info/exclude
*.swp
# managed by layer
CLAUDE.md
.claude/
# end layer
local-notes.txt
`

func TestParse_SplitsSections(t *testing.T) {
	f := Parse("exclude", sample)

	assert.Equal(t, []string{"CLAUDE.md", ".claude/"}, f.Entries())
	assert.Equal(t, []string{"*.swp", "local-notes.txt"}, f.UserEntries())
	assert.Equal(t, []string{"*.swp", "CLAUDE.md", ".claude/", "local-notes.txt"}, f.AllEntries())
	assert.True(t, f.Has("CLAUDE.md"))
	assert.False(t, f.Has("*.swp"))
	assert.True(t, f.HasUser("*.swp"))
}

func TestParse_RoundTripsVerbatim(t *testing.T) {
	assert.Equal(t, sample, Parse("exclude", sample).String())
}

func TestParse_MissingEndMarker(t *testing.T) {
	f := Parse("exclude", "keep\n# managed by layer\nCLAUDE.md\nAGENTS.md")

	assert.Equal(t, []string{"CLAUDE.md", "AGENTS.md"}, f.Entries())
	assert.Equal(t, []string{"keep"}, f.UserEntries())
	assert.Equal(t, "keep\n# managed by layer\nCLAUDE.md\nAGENTS.md\n# end layer\n", f.String())
}

func TestFile_AddSkipsDuplicates(t *testing.T) {
	f := Parse("exclude", sample)

	added := f.Add("CLAUDE.md", "AGENTS.md", "*.swp", "AGENTS.md", "")

	assert.Equal(t, []string{"AGENTS.md"}, added)
	assert.Equal(t, []string{"CLAUDE.md", ".claude/", "AGENTS.md"}, f.Entries())
}

func TestFile_AddCreatesSection(t *testing.T) {
	f := Parse("exclude", "*.swp\n")

	f.Add("CLAUDE.md")

	assert.Equal(t, "*.swp\n# managed by layer\nCLAUDE.md\n# end layer\n", f.String())
}

func TestFile_RemoveOnlyTouchesManaged(t *testing.T) {
	f := Parse("exclude", sample)

	removed := f.Remove("CLAUDE.md", "*.swp")

	assert.Equal(t, []string{"CLAUDE.md"}, removed)
	assert.Equal(t, []string{".claude/"}, f.Entries())
	assert.True(t, f.HasUser("*.swp"))

	assert.True(t, f.RemoveUser("*.swp"))
	assert.False(t, f.RemoveUser("*.swp"))
	assert.Equal(t, []string{"local-notes.txt"}, f.UserEntries())
}

func TestFile_ClearDropsSection(t *testing.T) {
	f := Parse("exclude", sample)

	n := f.Clear()

	assert.Equal(t, 2, n)
	assert.Empty(t, f.Entries())
	assert.NotContains(t, f.String(), StartMarker)
	assert.Contains(t, f.String(), "local-notes.txt")
}

func TestFile_EmptyRendersEmpty(t *testing.T) {
	assert.Equal(t, "", Parse("exclude", "").String())
}

func TestFile_SourceAndLineOf(t *testing.T) {
	f := Parse(".git/info/exclude", sample)

	src := f.Source(".git/info/exclude", gitignore.TierLocalExclude)

	require.Len(t, src.Patterns, 4)
	assert.Equal(t, gitignore.TierLocalExclude, src.Tier)
	assert.Equal(t, 4, src.Patterns[1].Line)
	assert.Equal(t, 4, f.LineOf("CLAUDE.md"))
	assert.Equal(t, 0, f.LineOf("missing"))
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "info", "exclude"))

	require.NoError(t, err)
	assert.Empty(t, f.AllEntries())
}

func TestSave_CreatesDirectoryAndWritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "info", "exclude")
	f, err := Load(path)
	require.NoError(t, err)
	f.Add("CLAUDE.md")

	require.NoError(t, f.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# managed by layer\nCLAUDE.md\n# end layer\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp file should be gone")
}

func TestUpdate_SavesOnlyOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exclude")

	_, err := Update(context.Background(), path, func(f *File) (bool, error) {
		return false, nil
	})
	require.NoError(t, err)
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	f, err := Update(context.Background(), path, func(f *File) (bool, error) {
		return len(f.Add("AGENTS.md")) > 0, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"AGENTS.md"}, f.Entries())

	reloaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"AGENTS.md"}, reloaded.Entries())
}

func TestNormalizeEntry(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0o755))

	tests := []struct {
		in   string
		want string
	}{
		{in: "CLAUDE.md", want: "CLAUDE.md"},
		{in: "./CLAUDE.md", want: "CLAUDE.md"},
		{in: "  docs\\notes.md ", want: "docs/notes.md"},
		{in: ".claude", want: ".claude/"},
		{in: ".claude/", want: ".claude/"},
		{in: "missing-dir/", want: "missing-dir/"},
		{in: ".aider*", want: ".aider*"},
		{in: "!keep.md", want: "!keep.md"},
		{in: filepath.Join(root, "AGENTS.md"), want: "AGENTS.md"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeEntry(root, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeEntry_Rejects(t *testing.T) {
	root := t.TempDir()

	_, err := NormalizeEntry(root, "../outside.md")
	assert.True(t, lerrors.IsScopeError(err))

	_, err = NormalizeEntry(root, " ./ ")
	assert.Equal(t, lerrors.ErrCodeInvalidInput, lerrors.GetCode(err))
}

func TestFile_DisableEnable(t *testing.T) {
	// Given: a managed block with two entries
	f := Parse("exclude", sample)

	// When: one is switched off
	off := f.Disable("CLAUDE.md", "AGENTS.md")

	// Then: it stays in the block as a comment and no longer counts as a rule
	assert.Equal(t, []string{"CLAUDE.md"}, off)
	assert.Equal(t, []string{".claude/"}, f.Entries())
	assert.Equal(t, []string{"CLAUDE.md"}, f.Disabled())
	assert.Contains(t, f.String(), "# managed by layer\n# off: CLAUDE.md\n.claude/\n# end layer\n")

	// When: it is switched back on
	on := f.Enable("CLAUDE.md")

	// Then: the file is back to its original form
	assert.Equal(t, []string{"CLAUDE.md"}, on)
	assert.Equal(t, sample, f.String())
}

func TestFile_DisabledOnlyBlockIsKept(t *testing.T) {
	f := Parse("exclude", "# managed by layer\nCLAUDE.md\n# end layer\n")

	f.Disable("CLAUDE.md")

	assert.Empty(t, f.Entries())
	assert.Equal(t, "# managed by layer\n# off: CLAUDE.md\n# end layer\n", f.String())
}

func TestFile_AddReenablesDisabled(t *testing.T) {
	f := Parse("exclude", "# managed by layer\n# off: CLAUDE.md\n# end layer\n")

	added := f.Add("CLAUDE.md")

	assert.Equal(t, []string{"CLAUDE.md"}, added)
	assert.Empty(t, f.Disabled())
	assert.Equal(t, "# managed by layer\nCLAUDE.md\n# end layer\n", f.String())
}

func TestFile_RemoveAndClearIncludeDisabled(t *testing.T) {
	f := Parse("exclude", "# managed by layer\n# off: CLAUDE.md\nAGENTS.md\n# end layer\n")

	assert.Equal(t, []string{"CLAUDE.md"}, f.Remove("CLAUDE.md"))
	assert.Empty(t, f.Disabled())

	f.Disable("AGENTS.md")
	assert.Equal(t, 1, f.Clear())
	assert.Equal(t, "", f.String())
}

func TestFile_EscapedTrailingSpaceIsKept(t *testing.T) {
	// Given: a rule whose trailing space is escaped and one with plain
	// trailing blanks
	f := Parse("exclude", "# managed by layer\nname\\ \nnotes.md  \n# end layer\n")

	// Then: the escaped space stays part of the entry
	assert.Equal(t, []string{`name\ `, "notes.md"}, f.Entries())
	assert.True(t, f.Has(`name\ `))
	assert.Equal(t, 2, f.LineOf(`name\ `))

	// And: it can be disabled, enabled and removed by that name
	assert.Equal(t, []string{`name\ `}, f.Disable(`name\ `))
	assert.Equal(t, []string{`name\ `}, f.Disabled())
	assert.Equal(t, []string{`name\ `}, f.Enable(`name\ `))
	assert.Equal(t, []string{`name\ `}, f.Remove(`name\ `))
	assert.Equal(t, []string{"notes.md"}, f.Entries())
}
