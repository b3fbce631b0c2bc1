package resolve

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/gitignore"
)

func file(path string) Candidate { return Candidate{Path: path, Exists: true} }
func dir(path string) Candidate  { return Candidate{Path: path, IsDir: true, Exists: true} }

func rootIgnore(lines ...string) *gitignore.RuleSource {
	return gitignore.NewSource(".gitignore", "", gitignore.TierGitignore, lines...)
}

func exclude(lines ...string) *gitignore.RuleSource {
	return gitignore.NewSource(".git/info/exclude", "", gitignore.TierLocalExclude, lines...)
}

func global(lines ...string) *gitignore.RuleSource {
	return gitignore.NewSource("~/.config/git/ignore", "", gitignore.TierGlobal, lines...)
}

// =============================================================================
// Precedence
// =============================================================================

func TestResolve_NoMatchIsNotIgnored(t *testing.T) {
	v := Resolve(file("main.go"), []*gitignore.RuleSource{rootIgnore("*.log")})

	assert.False(t, v.Ignored)
	assert.False(t, v.Decided())
	assert.Nil(t, v.Source)
	_, ok := v.Tier()
	assert.False(t, ok)
}

func TestResolve_LocalExcludeNegationOverridesGitignore(t *testing.T) {
	// Given: node_modules/ ignored in .gitignore and a re-include in info/exclude
	sources := []*gitignore.RuleSource{
		rootIgnore("node_modules/"),
		exclude("!build/output.log"),
	}

	// When/Then: the re-included file is not ignored
	v := Resolve(file("build/output.log"), sources)
	assert.False(t, v.Ignored)
	require.NotNil(t, v.Pattern)
	assert.Equal(t, "!build/output.log", v.Pattern.Raw)
	assert.Equal(t, gitignore.TierLocalExclude, v.Source.Tier)

	// And: anything under node_modules/ is ignored through its parent
	v = Resolve(file("node_modules/lodash/index.js"), sources)
	assert.True(t, v.Ignored)
	assert.Equal(t, "node_modules/", v.Pattern.Raw)
	assert.Equal(t, "node_modules", v.Via)
}

func TestResolve_NegationVoidedByIgnoredParent(t *testing.T) {
	// Given: a directory ignore and a negation for a child in the same file
	sources := []*gitignore.RuleSource{rootIgnore("secrets/", "!secrets/keep.txt")}

	// When: resolving the child
	v := Resolve(file("secrets/keep.txt"), sources)

	// Then: the parent ignore stands
	assert.True(t, v.Ignored)
	assert.Equal(t, "secrets/", v.Pattern.Raw)
	assert.Equal(t, "secrets", v.Via)
}

func TestResolve_NegationVoidedByHigherTierParent(t *testing.T) {
	sources := []*gitignore.RuleSource{
		rootIgnore("!.claude/settings.json"),
		exclude(".claude/"),
	}

	v := Resolve(file(".claude/settings.json"), sources)

	assert.True(t, v.Ignored)
	assert.Equal(t, gitignore.TierLocalExclude, v.Source.Tier)
}

func TestResolve_TierOrder(t *testing.T) {
	tests := []struct {
		name    string
		sources []*gitignore.RuleSource
		ignored bool
		tier    gitignore.Tier
	}{
		{
			name:    "gitignore negation beats global ignore",
			sources: []*gitignore.RuleSource{global("*.md"), rootIgnore("!CLAUDE.md")},
			ignored: false,
			tier:    gitignore.TierGitignore,
		},
		{
			name:    "exclude beats gitignore negation",
			sources: []*gitignore.RuleSource{rootIgnore("!CLAUDE.md"), exclude("CLAUDE.md")},
			ignored: true,
			tier:    gitignore.TierLocalExclude,
		},
		{
			name:    "input order does not matter",
			sources: []*gitignore.RuleSource{exclude("CLAUDE.md"), rootIgnore("!CLAUDE.md"), global("!*.md")},
			ignored: true,
			tier:    gitignore.TierLocalExclude,
		},
		{
			name:    "last line wins within a source",
			sources: []*gitignore.RuleSource{exclude("CLAUDE.md", "!CLAUDE.md")},
			ignored: false,
			tier:    gitignore.TierLocalExclude,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Resolve(file("CLAUDE.md"), tt.sources)
			assert.Equal(t, tt.ignored, v.Ignored)
			tier, ok := v.Tier()
			require.True(t, ok)
			assert.Equal(t, tt.tier, tier)
		})
	}
}

func TestResolve_DeeperGitignoreOutranksShallower(t *testing.T) {
	// Given: root ignores *.md and docs/.gitignore re-includes notes.md
	deep := gitignore.NewSource("docs/.gitignore", "docs", gitignore.TierGitignore, "!notes.md")
	sources := []*gitignore.RuleSource{deep, rootIgnore("*.md")}

	// Then: the deeper file wins regardless of input order
	v := Resolve(file("docs/notes.md"), sources)
	assert.False(t, v.Ignored)
	assert.Same(t, deep, v.Source)

	// And: siblings of the scope are untouched by it
	v = Resolve(file("notes.md"), sources)
	assert.True(t, v.Ignored)
}

func TestResolve_OutOfScopeSourceExcluded(t *testing.T) {
	other := gitignore.NewSource("web/.gitignore", "web", gitignore.TierGitignore, "*.md")

	v := Resolve(file("docs/README.md"), []*gitignore.RuleSource{other})

	assert.False(t, v.Ignored)
	assert.False(t, v.Decided())
}

func TestResolve_ScopedPatternsAreRelativeToScope(t *testing.T) {
	src := gitignore.NewSource("pkg/.gitignore", "pkg", gitignore.TierGitignore, "/gen")

	assert.True(t, Resolve(dir("pkg/gen"), []*gitignore.RuleSource{src}).Ignored)
	assert.False(t, Resolve(dir("pkg/sub/gen"), []*gitignore.RuleSource{src}).Ignored)
}

func TestResolve_DirectoryOnlyRule(t *testing.T) {
	sources := []*gitignore.RuleSource{exclude(".claude/")}

	// A plain file named .claude is not matched
	assert.False(t, Resolve(file(".claude"), sources).Ignored)

	// The directory and everything beneath it is
	assert.True(t, Resolve(dir(".claude"), sources).Ignored)
	v := Resolve(file(".claude/commands/review.md"), sources)
	assert.True(t, v.Ignored)
	assert.Equal(t, ".claude", v.Via)
}

func TestResolve_UnanchoredGlobMatchesAnySegment(t *testing.T) {
	sources := []*gitignore.RuleSource{rootIgnore("build")}

	v := Resolve(file("src/build/out.bin"), sources)

	assert.True(t, v.Ignored)
	assert.Equal(t, "src/build", v.Via)
}

func TestResolve_NegatedAncestorOfHigherTierReopens(t *testing.T) {
	sources := []*gitignore.RuleSource{
		rootIgnore("vendor/"),
		exclude("!vendor/"),
	}

	assert.False(t, Resolve(file("vendor/lib.go"), sources).Ignored)
}

func TestResolve_MalformedPatternIgnored(t *testing.T) {
	v := Resolve(file("abc"), []*gitignore.RuleSource{rootIgnore("[abc", "abc")})

	assert.True(t, v.Ignored)
	assert.Equal(t, "abc", v.Pattern.Raw)
}

// =============================================================================
// Properties
// =============================================================================

func TestResolve_Idempotent(t *testing.T) {
	sources := []*gitignore.RuleSource{rootIgnore("secrets/", "!secrets/keep.txt"), exclude("*.md")}
	r := NewResolver(sources)

	for _, c := range []Candidate{file("secrets/keep.txt"), file("a/README.md"), dir("secrets"), file("x.go")} {
		assert.Equal(t, r.Resolve(c), r.Resolve(c), c.Path)
		assert.Equal(t, Resolve(c, sources), r.Resolve(c), c.Path)
	}
}

func TestResolve_NonMatchingSourceIsMonotonic(t *testing.T) {
	base := []*gitignore.RuleSource{rootIgnore("*.log", "tmp/"), exclude("CLAUDE.md")}
	extra := append(base, gitignore.NewSource("z/.gitignore", "z", gitignore.TierGitignore, "*.nothing"), global("unrelated"))

	for _, c := range []Candidate{file("a.log"), file("tmp/x"), file("CLAUDE.md"), file("main.go")} {
		assert.Equal(t, Resolve(c, base), Resolve(c, extra), c.Path)
	}
}

func TestResolve_VerdictPatternAlwaysMatched(t *testing.T) {
	sources := []*gitignore.RuleSource{rootIgnore("secrets/", "!secrets/keep.txt", "*.tmp"), exclude("!a.tmp")}

	for _, c := range []Candidate{file("secrets/keep.txt"), file("a.tmp"), file("b.tmp"), file("secrets/x/y")} {
		v := Resolve(c, sources)
		require.NotNil(t, v.Pattern, c.Path)
		path := c.Path
		isDir := c.IsDir
		if v.Via != "" {
			path, isDir = v.Via, true
		}
		rel, ok := v.Source.Rel(path)
		require.True(t, ok)
		assert.True(t, v.Pattern.Match(rel, isDir), c.Path)
	}
}

// =============================================================================
// Candidates
// =============================================================================

func TestNewCandidate(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".claude"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "CLAUDE.md"), []byte("x"), 0o644))

	c, err := NewCandidate(root, "CLAUDE.md")
	require.NoError(t, err)
	assert.Equal(t, Candidate{Path: "CLAUDE.md", Exists: true}, c)

	c, err = NewCandidate(root, filepath.Join(root, ".claude"))
	require.NoError(t, err)
	assert.Equal(t, Candidate{Path: ".claude", IsDir: true, Exists: true}, c)

	c, err = NewCandidate(root, "./gone/")
	require.NoError(t, err)
	assert.Equal(t, Candidate{Path: "gone", IsDir: true}, c)
}

func TestNewCandidate_OutsideRepoIsScopeError(t *testing.T) {
	root := t.TempDir()

	for _, p := range []string{"../elsewhere.md", ".", filepath.Dir(root)} {
		_, err := NewCandidate(root, p)
		require.Error(t, err, p)
		assert.True(t, lerrors.IsScopeError(err), p)
	}
}

func TestAncestors(t *testing.T) {
	assert.Nil(t, Ancestors("CLAUDE.md"))
	assert.Equal(t, []string{"a", "a/b"}, Ancestors("a/b/c"))
}
