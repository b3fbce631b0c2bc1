package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/layer/internal/classify"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/git"
)

// fakeGit answers the git calls Load makes for a repository at root.
type fakeGit struct {
	root    string
	tracked []string
}

func (f *fakeGit) Run(_ context.Context, _ string, args ...string) ([]byte, error) {
	switch strings.Join(args, " ") {
	case "rev-parse --show-toplevel --absolute-git-dir":
		return []byte(f.root + "\n" + filepath.Join(f.root, ".git") + "\n"), nil
	case "ls-files -z --cached --full-name":
		return []byte(strings.Join(f.tracked, "\x00")), nil
	}
	return nil, errors.New("unsupported")
}

type fixture struct {
	root string
	git  *fakeGit
}

func newFixture(t *testing.T, files map[string]string, tracked ...string) *fixture {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := t.TempDir()
	for p, content := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return &fixture{root: root, git: &fakeGit{root: root, tracked: tracked}}
}

func (f *fixture) load(t *testing.T) *Workspace {
	t.Helper()
	ws, err := Load(context.Background(), f.root, Options{GitOptions: []git.Option{git.WithRunner(f.git)}})
	require.NoError(t, err)
	return ws
}

func paths(entries []classify.Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, Display(e.Candidate))
	}
	return out
}

func TestLoad_BuildsSourcesInPrecedenceOrder(t *testing.T) {
	fx := newFixture(t, map[string]string{
		".gitignore":        "*.log\n",
		"web/.gitignore":    "dist/\n",
		".git/info/exclude": "# managed by layer\nCLAUDE.md\n# end layer\n",
		"CLAUDE.md":         "x",
	})

	ws := fx.load(t)

	require.Len(t, ws.Sources, 4)
	assert.Equal(t, "global", ws.Sources[0].Tier.String())
	assert.Equal(t, ".gitignore", ws.Sources[1].Path)
	assert.Equal(t, "web/.gitignore", ws.Sources[2].Path)
	assert.Equal(t, ExcludeDisplay, ws.Sources[3].Path)
	assert.Equal(t, []string{"CLAUDE.md"}, ws.Exclude.Entries())
}

func TestLoad_OutsideRepository(t *testing.T) {
	_, err := Load(context.Background(), t.TempDir(), Options{GitOptions: []git.Option{git.WithRunner(failingGit{})}})
	assert.True(t, lerrors.IsRepositoryError(err))
}

type failingGit struct{}

func (failingGit) Run(context.Context, string, ...string) ([]byte, error) {
	return nil, errors.New("fatal: not a git repository")
}

func TestDashboard_ClaudeScenario(t *testing.T) {
	// Given: a layered file, a tracked layered file, an unlayered catalog
	// file and a stale entry
	fx := newFixture(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\n.cursorrules\ngone.md\n# end layer\n",
		"CLAUDE.md":         "x",
		".cursorrules":      "x",
		"AGENTS.md":         "x",
	}, ".cursorrules")

	// When: building the dashboard
	d, err := fx.load(t).Dashboard(context.Background())
	require.NoError(t, err)

	// Then: each path lands in its section
	assert.Equal(t, []string{"CLAUDE.md"}, paths(d.Layered))
	assert.Equal(t, []string{".cursorrules"}, paths(d.Exposed))
	assert.Equal(t, []string{"AGENTS.md"}, paths(d.Discovered))
	require.Len(t, d.Stale, 1)
	assert.Equal(t, "gone.md", d.Stale[0].Entry)
	assert.True(t, d.Problems())
}

func TestDashboard_DirectoryEntryCollapsesChildren(t *testing.T) {
	fx := newFixture(t, map[string]string{
		".git/info/exclude":     "# managed by layer\n.claude/\n# end layer\n",
		".claude/settings.json": "{}",
		".claude/agents/a.md":   "a",
	})

	d, err := fx.load(t).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{".claude/"}, paths(d.Layered))
	assert.Empty(t, d.Discovered)
	assert.False(t, d.Problems())
}

func TestDashboard_GlobEntryAndGitignoredCatalogPath(t *testing.T) {
	fx := newFixture(t, map[string]string{
		".gitignore":        "AGENTS.md\n",
		".git/info/exclude": "# managed by layer\n.aider*\n# end layer\n",
		".aider.conf.yml":   "x",
		".aiderignore":      "x",
		"AGENTS.md":         "x",
	}, ".gitignore")

	d, err := fx.load(t).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{".aider.conf.yml", ".aiderignore"}, paths(d.Layered))
	assert.Equal(t, []string{"AGENTS.md"}, paths(d.Ignored))
	assert.Empty(t, d.Stale)
}

func TestDashboard_KnownDirectoryWithIgnoredContents(t *testing.T) {
	// Given: .cursor/ holds only a gitignored file and .windsurf/ holds a
	// file that is not ignored
	fx := newFixture(t, map[string]string{
		".gitignore":            "*.json\n",
		".cursor/settings.json": "{}",
		".windsurf/rules.md":    "x",
		".windsurf/cache.json":  "{}",
	}, ".gitignore")
	require.NoError(t, os.MkdirAll(filepath.Join(fx.root, ".continue"), 0o755))

	// When: building the dashboard
	d, err := fx.load(t).Dashboard(context.Background())
	require.NoError(t, err)

	// Then: the fully ignored and the empty directories are Ignored
	assert.Equal(t, []string{".continue/", ".cursor/"}, paths(d.Ignored))
	assert.Equal(t, []string{".windsurf/"}, paths(d.Discovered))
}

func TestDashboard_TrackedCatalogFile(t *testing.T) {
	fx := newFixture(t, map[string]string{"CLAUDE.md": "x"}, "CLAUDE.md")

	d, err := fx.load(t).Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"CLAUDE.md"}, paths(d.Tracked))
	assert.True(t, d.Problems())

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"tracked":[{"path":"CLAUDE.md","status":"tracked","tracked":true}]`)
}

func TestWorkspace_ExplainBeyondWalkDepth(t *testing.T) {
	// Given: a .gitignore deeper than the default walk
	fx := newFixture(t, map[string]string{
		"a/b/c/.gitignore": "*.tmp\n",
		"a/b/c/d/x.tmp":    "x",
	})
	ws := fx.load(t)

	c, err := ws.Candidate("a/b/c/d/x.tmp")
	require.NoError(t, err)

	// When: classifying and explaining the deep path
	entry := ws.Classify(c)
	trace := ws.Explain(c)

	// Then: the deep rule decides
	assert.Equal(t, classify.StatusIgnored, entry.Status)
	require.NotNil(t, trace.Verdict.Source)
	assert.Equal(t, "a/b/c/.gitignore", trace.Verdict.Source.Path)
	assert.Equal(t, entry.Verdict.Pattern, trace.Verdict.Pattern)
}

func TestWorkspace_ClassifyDeletedLayeredFileIsStale(t *testing.T) {
	// Given: a layered entry whose file was deleted
	ws := newFixture(t, map[string]string{
		".git/info/exclude": "# managed by layer\nCLAUDE.md\ngone.md\n# end layer\n",
		"CLAUDE.md":         "x",
	}).load(t)

	gone, err := ws.Candidate("gone.md")
	require.NoError(t, err)
	present, err := ws.Candidate("CLAUDE.md")
	require.NoError(t, err)

	// Then: the missing path is stale, the present one layered
	assert.Equal(t, classify.StatusStale, ws.Classify(gone).Status)
	assert.Equal(t, classify.StatusLayered, ws.Classify(present).Status)
}

func TestWorkspace_CandidateOutsideRepo(t *testing.T) {
	ws := newFixture(t, nil).load(t)

	_, err := ws.Candidate("../elsewhere")

	assert.True(t, lerrors.IsScopeError(err))
}

func TestWorkspace_Exists(t *testing.T) {
	ws := newFixture(t, map[string]string{".claude/x": ""}).load(t)

	exists, isDir := ws.Exists(".claude/")
	assert.True(t, exists)
	assert.True(t, isDir)

	exists, _ = ws.Exists("nope")
	assert.False(t, exists)
}

func TestPatterns_MatchedOnly(t *testing.T) {
	// Given: a Claude directory with children and a Cursor rules file
	fx := newFixture(t, map[string]string{
		".claude/settings.json": "{}",
		".cursorrules":          "x",
		"README.md":             "x",
	})
	ws := fx.load(t)

	// When: listing only matched groups
	groups := ws.Patterns(true)

	// Then: only groups with a match on disk remain, children collapse
	// under their directory
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Claude Code", "Cursor / PearAI"}, names)
	require.Len(t, groups[0].Patterns, 1)
	assert.Equal(t, ".claude/", groups[0].Patterns[0].Pattern)
	assert.Equal(t, []string{".claude/"}, groups[0].Patterns[0].Files)
	assert.Equal(t, []string{".cursorrules"}, groups[1].Patterns[0].Files)
}

func TestPatterns_AllGroups(t *testing.T) {
	fx := newFixture(t, map[string]string{"README.md": "x"})

	groups := fx.load(t).Patterns(false)

	require.NotEmpty(t, groups)
	assert.Equal(t, "Claude Code", groups[0].Name)
	assert.False(t, groups[0].Matched())
	assert.Len(t, groups[0].Patterns, 4)
}
