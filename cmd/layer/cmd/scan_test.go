package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/workspace/workspacetest"
)

func TestScan_DryRunListsSections(t *testing.T) {
	// Given: exposed, layered, ignored and new context files
	repo := workspacetest.New(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\n# end layer\n",
		".gitignore":        ".cursor/\n",
		"CLAUDE.md":         "x",
		"AGENTS.md":         "x",
		"GEMINI.md":         "x",
		".cursor/rules.md":  "x",
		".cursorrules":      "x",
	}, ".cursorrules")

	// When: scanning without writing
	res := runLayer(t, repo, "", "scan", "--dry-run")

	// Then: every group is listed and nothing is written
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Scanning for context files...")
	assert.Contains(t, res.out, "Exposed (tracked by git):")
	assert.Contains(t, res.out, "git rm --cached .cursorrules")
	assert.Contains(t, res.out, "Already layered:\n  CLAUDE.md\n")
	assert.Contains(t, res.out, "Already ignored by Git:\n  .cursor/\n")
	assert.Contains(t, res.out, "Found 2 new context files:")
	assert.Contains(t, res.out, "AGENTS.md")
	assert.Contains(t, res.out, "GEMINI.md")
	assert.Equal(t, "# managed by layer\nCLAUDE.md\n# end layer\n", repo.ReadExclude(t))
}

func TestScan_NeedsTerminalToPick(t *testing.T) {
	repo := newRepo(t)

	res := runLayer(t, repo, "", "scan")

	require.Error(t, res.err)
	assert.Contains(t, res.out, "AGENTS.md")
	assert.Contains(t, res.err.Error(), "terminal")
}

func TestScan_NothingNew(t *testing.T) {
	repo := workspacetest.New(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\n# end layer\n",
		"CLAUDE.md":         "x",
	})

	res := runLayer(t, repo, "", "scan")

	assert.Equal(t, ExitNothing, res.code)
	assert.Contains(t, res.out, "No new context files found.")
}

func TestScan_DepthFlag(t *testing.T) {
	repo := workspacetest.New(t, map[string]string{".github/copilot-instructions.md": "x"})

	shallow := runLayer(t, repo, "", "scan", "--dry-run", "--depth", "1")
	deep := runLayer(t, repo, "", "scan", "--dry-run")
	invalid := runLayer(t, repo, "", "scan", "--depth", "0")

	assert.Equal(t, ExitNothing, shallow.code)
	require.NoError(t, deep.err)
	assert.Contains(t, deep.out, ".github/copilot-instructions.md")
	require.Error(t, invalid.err)
}
