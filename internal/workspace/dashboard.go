package workspace

import (
	"context"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/Aman-CERP/layer/internal/classify"
	"github.com/Aman-CERP/layer/internal/gitignore"
	"github.com/Aman-CERP/layer/internal/resolve"
)

// Dashboard groups the context paths of a repository by status.
type Dashboard struct {
	Layered    []classify.Entry      `json:"layered"`
	Exposed    []classify.Entry      `json:"exposed"`
	Discovered []classify.Entry      `json:"discovered"`
	Tracked    []classify.Entry      `json:"tracked"`
	Ignored    []classify.Entry      `json:"ignored"`
	Stale      []classify.StaleEntry `json:"stale"`
}

// Problems reports whether anything needs fixing: a layered path that git
// still tracks, or a tracked context file.
func (d *Dashboard) Problems() bool {
	return len(d.Exposed) > 0 || len(d.Tracked) > 0
}

// Empty reports whether the dashboard has nothing to show.
func (d *Dashboard) Empty() bool {
	return len(d.Layered)+len(d.Exposed)+len(d.Discovered)+len(d.Tracked)+len(d.Ignored)+len(d.Stale) == 0
}

// Dashboard classifies the managed entries and every catalog path found by
// the walk.
//
// A literal entry is classified as itself. A glob entry is classified
// through each walked path it matches. Catalog paths already covered by a
// managed entry are not repeated. A known directory that is empty, or whose
// walked files are all ignored, counts as Ignored rather than Discovered.
func (ws *Workspace) Dashboard(ctx context.Context) (*Dashboard, error) {
	cands := ws.entryCandidates()
	seen := make(map[string]struct{}, len(cands))
	for _, c := range cands {
		seen[c.Path] = struct{}{}
	}
	for _, c := range ws.Walk.Candidates {
		if _, ok := seen[c.Path]; ok {
			continue
		}
		if ws.Catalog.Matches(c.Path, c.IsDir) {
			seen[c.Path] = struct{}{}
			cands = append(cands, c)
		}
	}

	entries, err := ws.Classifier.ClassifyCandidates(ctx, cands)
	if err != nil {
		return nil, err
	}
	for i, e := range entries {
		if e.Status == classify.StatusDiscovered && e.Candidate.IsDir && ws.contentsIgnored(e.Candidate.Path) {
			entries[i].Status = classify.StatusIgnored
		}
	}
	entries = collapse(entries)

	d := &Dashboard{Stale: ws.Stale()}
	for _, e := range entries {
		switch e.Status {
		case classify.StatusLayered:
			d.Layered = append(d.Layered, e)
		case classify.StatusExposed:
			d.Exposed = append(d.Exposed, e)
		case classify.StatusDiscovered:
			d.Discovered = append(d.Discovered, e)
		case classify.StatusTracked:
			d.Tracked = append(d.Tracked, e)
		case classify.StatusIgnored:
			if ws.Catalog.Matches(e.Candidate.Path, e.Candidate.IsDir) {
				d.Ignored = append(d.Ignored, e)
			}
		}
	}
	for _, list := range [][]classify.Entry{d.Layered, d.Exposed, d.Discovered, d.Tracked, d.Ignored} {
		sortEntries(list)
	}
	return d, nil
}

// entryCandidates expands the managed entries into existing candidates.
func (ws *Workspace) entryCandidates() []resolve.Candidate {
	var out []resolve.Candidate
	for _, raw := range ws.Exclude.Entries() {
		p, ok := gitignore.Compile(raw, 0)
		if !ok || p.Err != nil || p.Negated {
			continue
		}
		if p.IsLiteral() {
			rel := p.LiteralPath()
			exists, isDir := ws.Exists(rel)
			if !exists || (p.DirOnly && !isDir) {
				continue
			}
			out = append(out, resolve.Candidate{Path: rel, IsDir: isDir, Exists: true})
			continue
		}
		out = append(out, lo.Filter(ws.Walk.Candidates, func(c resolve.Candidate, _ int) bool {
			return p.Match(c.Path, c.IsDir)
		})...)
	}
	return lo.UniqBy(out, func(c resolve.Candidate) string { return c.Path })
}

// contentsIgnored reports whether every walked file beneath dir is ignored.
// A directory with no walked files counts as ignored.
func (ws *Workspace) contentsIgnored(dir string) bool {
	prefix := dir + "/"
	for _, c := range ws.Walk.Candidates {
		if c.IsDir || !strings.HasPrefix(c.Path, prefix) {
			continue
		}
		if !ws.Resolver.Resolve(c).Ignored {
			return false
		}
	}
	return true
}

// collapse drops entries that sit inside a directory entry with the same
// status, so a layered .claude/ is not followed by each of its files.
func collapse(entries []classify.Entry) []classify.Entry {
	dirs := make(map[string]classify.Status)
	for _, e := range entries {
		if e.Candidate.IsDir {
			dirs[e.Candidate.Path] = e.Status
		}
	}
	return lo.Filter(entries, func(e classify.Entry, _ int) bool {
		for _, anc := range resolve.Ancestors(e.Candidate.Path) {
			if st, ok := dirs[anc]; ok && st == e.Status {
				return false
			}
		}
		return true
	})
}

func sortEntries(entries []classify.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Candidate.Path < entries[j].Candidate.Path
	})
}

// Display returns the path as shown to users: directories end in '/'.
func Display(c resolve.Candidate) string {
	if c.IsDir && !strings.HasSuffix(c.Path, "/") {
		return c.Path + "/"
	}
	return c.Path
}
