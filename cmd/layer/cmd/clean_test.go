package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/workspace/workspacetest"
)

func TestClean_RemovesStaleAfterConfirmation(t *testing.T) {
	// Given: one stale entry
	repo := newRepo(t)

	// When: confirming on stdin
	res := runLayer(t, repo, "y\n", "clean")

	// Then: only the stale entry is gone
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Found 1 stale entry:")
	assert.Contains(t, res.out, "Removed 1 stale entry.")
	assert.Equal(t, "# managed by layer\nCLAUDE.md\n.cursorrules\n# end layer\n", repo.ReadExclude(t))
}

func TestClean_Declined(t *testing.T) {
	repo := newRepo(t)
	before := repo.ReadExclude(t)

	res := runLayer(t, repo, "n\n", "clean")

	assert.Equal(t, ExitNothing, res.code)
	assert.Contains(t, res.out, "No changes made.")
	assert.Equal(t, before, repo.ReadExclude(t))
}

func TestClean_DryRun(t *testing.T) {
	repo := newRepo(t)
	before := repo.ReadExclude(t)

	res := runLayer(t, repo, "", "clean", "--dry-run")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Would remove 1 stale entry:")
	assert.Contains(t, res.out, "gone.md")
	assert.Equal(t, before, repo.ReadExclude(t))
}

func TestClean_NothingStale(t *testing.T) {
	repo := workspacetest.New(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\n# end layer\n",
		"CLAUDE.md":         "x",
	})

	res := runLayer(t, repo, "", "clean", "-y")

	assert.Equal(t, ExitNothing, res.code)
	assert.Contains(t, res.out, "No stale entries found.")
}

func TestClean_AllIncludesRedundant(t *testing.T) {
	// Given: an entry the root .gitignore already has
	repo := workspacetest.New(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\nAGENTS.md\n# end layer\n",
		".gitignore":        "AGENTS.md\n",
		"CLAUDE.md":         "x",
		"AGENTS.md":         "x",
	})

	// When: cleaning with --all
	res := runLayer(t, repo, "", "clean", "--all", "-y")

	// Then: the redundant entry is removed
	require.NoError(t, res.err)
	assert.Equal(t, "# managed by layer\nCLAUDE.md\n# end layer\n", repo.ReadExclude(t))
}
