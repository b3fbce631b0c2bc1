package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/workspace/workspacetest"
)

func TestClear_RemovesManagedBlockOnly(t *testing.T) {
	// Given: managed entries and a user rule
	repo := workspacetest.New(t, map[string]string{
		".git/info/exclude": "*.swp\n# managed by layer\nCLAUDE.md\nAGENTS.md\n# end layer\n",
	})

	// When: clearing with confirmation
	res := runLayer(t, repo, "yes\n", "clear")

	// Then: the user rule survives
	require.NoError(t, res.err)
	assert.Contains(t, res.out, "This will remove all 2 entries.")
	assert.Contains(t, res.out, "All entries removed.")
	assert.Equal(t, "*.swp\n", repo.ReadExclude(t))
}

func TestClear_DefaultsToNo(t *testing.T) {
	repo := newRepo(t)
	before := repo.ReadExclude(t)

	res := runLayer(t, repo, "\n", "clear")

	assert.Equal(t, ExitNothing, res.code)
	assert.Equal(t, before, repo.ReadExclude(t))
}

func TestClear_DryRun(t *testing.T) {
	repo := newRepo(t)
	before := repo.ReadExclude(t)

	res := runLayer(t, repo, "", "clear", "--dry-run")

	require.NoError(t, res.err)
	assert.Contains(t, res.out, "Would remove all 3 entries.")
	assert.Equal(t, before, repo.ReadExclude(t))
}

func TestClear_Empty(t *testing.T) {
	repo := workspacetest.New(t, map[string]string{"README.md": "x"})

	res := runLayer(t, repo, "", "clear", "-y")

	assert.Equal(t, ExitNothing, res.code)
	assert.Contains(t, res.out, "Nothing to clear.")
}
