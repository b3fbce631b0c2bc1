// Package workspace loads everything one layer invocation needs about a
// repository: the exclude file, tracked paths, ignore sources, the walked
// tree and the catalog. A Workspace is a snapshot; reload it to observe
// changes on disk.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/layer/internal/catalog"
	"github.com/Aman-CERP/layer/internal/classify"
	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/git"
	"github.com/Aman-CERP/layer/internal/gitignore"
	"github.com/Aman-CERP/layer/internal/resolve"
	"github.com/Aman-CERP/layer/internal/scanner"
)

// ExcludeDisplay is how the local exclude file is named in traces.
const ExcludeDisplay = ".git/info/exclude"

// Options configures Load.
type Options struct {
	// MaxDepth limits the tree walk. Zero uses scanner.DefaultMaxDepth.
	MaxDepth int
	// CatalogExtra adds patterns to the built-in catalog.
	CatalogExtra []string
	// SkipDirs are directory names the walk never enters.
	SkipDirs []string
	// Scanner is reused across loads when set, keeping its source cache.
	Scanner *scanner.Scanner
	// GitOptions are passed to git.Discover.
	GitOptions []git.Option
}

// Workspace is one snapshot of a repository.
type Workspace struct {
	Repo    *git.Repo
	Exclude *exclude.File
	Tracked *git.TrackedIndex
	Catalog *catalog.Catalog
	Walk    *scanner.Result

	// GlobalPath is the resolved global excludes file.
	GlobalPath string
	// Sources are every rule source in load order: global, .gitignore files
	// shallowest first, then info/exclude.
	Sources []*gitignore.RuleSource

	Resolver   *resolve.Resolver
	Classifier *classify.Classifier

	global  *gitignore.RuleSource
	local   *gitignore.RuleSource
	scanner *scanner.Scanner
}

// Load discovers the repository containing dir and reads its state. The
// index, the tree walk and the exclude file are read concurrently.
func Load(ctx context.Context, dir string, opts Options) (*Workspace, error) {
	repo, err := git.Discover(ctx, dir, opts.GitOptions...)
	if err != nil {
		return nil, err
	}

	sc := opts.Scanner
	if sc == nil {
		if sc, err = scanner.New(); err != nil {
			return nil, err
		}
	}

	ws := &Workspace{
		Repo:    repo,
		Catalog: catalog.New(opts.CatalogExtra),
		scanner: sc,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		idx, err := repo.TrackedIndex(gctx)
		ws.Tracked = idx
		return err
	})
	g.Go(func() error {
		res, err := sc.Walk(gctx, repo.Root, &scanner.Options{MaxDepth: opts.MaxDepth, SkipDirs: opts.SkipDirs})
		ws.Walk = res
		return err
	})
	g.Go(func() error {
		f, err := exclude.Load(repo.ExcludePath())
		ws.Exclude = f
		return err
	})
	g.Go(func() error {
		ws.GlobalPath = repo.GlobalExcludesPath(gctx)
		ws.global = gitignore.LoadSource(ws.GlobalPath, ws.GlobalPath, "", gitignore.TierGlobal)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ws.local = ws.Exclude.Source(ExcludeDisplay, gitignore.TierLocalExclude)
	ws.Sources = ws.sources(sc.Sources(repo.Root, ws.Walk.IgnoreDirs))
	ws.Resolver = resolve.NewResolver(ws.Sources)
	ws.Classifier = classify.New(ws.Resolver, ws.Tracked, ws.Catalog)
	return ws, nil
}

func (ws *Workspace) sources(gitignores []*gitignore.RuleSource) []*gitignore.RuleSource {
	out := make([]*gitignore.RuleSource, 0, len(gitignores)+2)
	out = append(out, ws.global)
	out = append(out, gitignores...)
	out = append(out, ws.local)
	return out
}

// Root returns the work tree root.
func (ws *Workspace) Root() string {
	return ws.Repo.Root
}

// Candidate builds a candidate for a path given on the command line.
func (ws *Workspace) Candidate(path string) (resolve.Candidate, error) {
	return resolve.NewCandidate(ws.Repo.Root, path)
}

// Exists reports whether a repo-relative path exists and is a directory.
func (ws *Workspace) Exists(rel string) (exists, isDir bool) {
	info, err := os.Lstat(filepath.Join(ws.Repo.Root, filepath.FromSlash(strings.TrimSuffix(rel, "/"))))
	if err != nil {
		return false, false
	}
	return true, info.IsDir()
}

// ClassifierFor returns a classifier over the sources that can govern rel:
// the global file, every .gitignore above rel (including ones the walk did
// not reach) and info/exclude.
func (ws *Workspace) ClassifierFor(rel string) *classify.Classifier {
	resolver := resolve.NewResolver(ws.sources(ws.scanner.SourcesFor(ws.Repo.Root, rel)))
	return classify.New(resolver, ws.Tracked, ws.Catalog)
}

// Classify resolves and classifies one candidate. A missing path hidden by
// a stale managed entry is Stale.
func (ws *Workspace) Classify(c resolve.Candidate) classify.Entry {
	e := ws.ClassifierFor(c.Path).Entry(c)
	if c.Exists || e.Verdict.Pattern == nil {
		return e
	}
	if tier, _ := e.Verdict.Tier(); tier != gitignore.TierLocalExclude {
		return e
	}
	raw := e.Verdict.Pattern.Raw
	for _, st := range ws.Stale() {
		if st.Entry == raw {
			e.Status = classify.StatusStale
			break
		}
	}
	return e
}

// Explain traces the verdict for one candidate.
func (ws *Workspace) Explain(c resolve.Candidate) resolve.Trace {
	return ws.ClassifierFor(c.Path).Explain(c)
}

// Stale returns the managed entries whose targets are gone.
func (ws *Workspace) Stale() []classify.StaleEntry {
	return classify.StaleEntries(ws.Exclude.Entries(), ws.Exists, ws.Walk.Candidates)
}
