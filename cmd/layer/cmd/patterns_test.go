package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/catalog"
	"github.com/Aman-CERP/layer/internal/workspace"
)

func TestPatterns_StaticWorksOutsideRepository(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	res := runLayer(t, nil, "", "patterns")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Claude Code\n")
	assert.Regexp(t, `CLAUDE\.md\s+\(file\)`, res.out)
	assert.Regexp(t, `\.claude/\s+\(dir\)`, res.out)
	assert.Regexp(t, `\.aider\*\s+\(glob\)`, res.out)
}

func TestPatterns_CustomGroupFromConfig(t *testing.T) {
	// Given: a user config with an extra pattern
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "layer"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "layer", "config.yaml"),
		[]byte("catalog:\n  extra:\n    - NOTES.ai.md\n"), 0o644))

	// When: listing as JSON
	res := runLayer(t, nil, "", "patterns", "--json")

	// Then: the custom group comes last
	require.NoError(t, res.err)
	var groups []catalog.Group
	require.NoError(t, json.Unmarshal([]byte(res.out), &groups))
	last := groups[len(groups)-1]
	assert.Equal(t, catalog.CustomGroup, last.Name)
	assert.Equal(t, []string{"NOTES.ai.md"}, last.Entries)
}

func TestPatterns_Matched(t *testing.T) {
	repo := newRepo(t)

	res := runLayer(t, repo, "", "patterns", "--matched", "--show-files")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Claude Code\n")
	assert.Contains(t, res.out, "OpenAI Codex\n")
	assert.Contains(t, res.out, "    AGENTS.md\n")
	assert.NotContains(t, res.out, "Windsurf")
}

func TestPatterns_MatchedJSONOmitsFilesByDefault(t *testing.T) {
	repo := newRepo(t)

	res := runLayer(t, repo, "", "patterns", "--matched", "--json")

	require.NoError(t, res.err)
	var groups []workspace.GroupMatches
	require.NoError(t, json.Unmarshal([]byte(res.out), &groups))
	require.NotEmpty(t, groups)
	for _, g := range groups {
		for _, p := range g.Patterns {
			assert.Empty(t, p.Files)
		}
	}
}

func TestPatterns_MatchedNothing(t *testing.T) {
	repo := newRepo(t)
	require.NoError(t, os.Remove(filepath.Join(repo.Root, "CLAUDE.md")))
	require.NoError(t, os.Remove(filepath.Join(repo.Root, "AGENTS.md")))
	require.NoError(t, os.Remove(filepath.Join(repo.Root, ".cursorrules")))

	res := runLayer(t, repo, "", "patterns", "--matched")

	assert.Equal(t, ExitNothing, res.code)
	assert.Contains(t, res.out, "No known patterns match files in this repository.")
}

func TestPatterns_ShowFilesRequiresMatched(t *testing.T) {
	repo := newRepo(t)

	res := runLayer(t, repo, "", "patterns", "--show-files")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "--show-files requires --matched")
}
