package doctor

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/Aman-CERP/layer/internal/gitignore"
	"github.com/Aman-CERP/layer/internal/resolve"
	"github.com/Aman-CERP/layer/internal/workspace"
)

// Kind is the health of one exclude entry.
type Kind int

const (
	// KindLayered is healthy: the target exists and is untracked.
	KindLayered Kind = iota
	// KindExposed matches files git still tracks.
	KindExposed
	// KindStale matches nothing on disk.
	KindStale
	// KindRedundant is already listed in the root .gitignore.
	KindRedundant
)

var kindNames = [...]string{"layered", "exposed", "stale", "redundant"}

// String returns the lower-case kind name.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Diagnosis is the result for one entry.
type Diagnosis struct {
	Entry   string   `json:"entry"`
	Kind    Kind     `json:"kind"`
	Message string   `json:"message"`
	Fix     string   `json:"fix,omitempty"`
	Matches int      `json:"matches"`
	Tracked []string `json:"tracked,omitempty"`
}

// Report is the outcome of a doctor run.
type Report struct {
	Diagnoses []Diagnosis  `json:"entries"`
	Counts    map[Kind]int `json:"counts"`
}

// Empty reports whether there were no entries to check.
func (r *Report) Empty() bool {
	return len(r.Diagnoses) == 0
}

// ExitCode maps the report to the command exit status: 1 when something
// is exposed or stale, 2 when there is nothing layered to check.
func (r *Report) ExitCode() int {
	switch {
	case r.Counts[KindExposed] > 0 || r.Counts[KindStale] > 0:
		return 1
	case r.Empty() || (r.Counts[KindLayered] == 0 && r.Counts[KindRedundant] > 0):
		return 2
	default:
		return 0
	}
}

// Summary renders the counts as "2 layered · 1 stale".
func (r *Report) Summary() string {
	var parts []string
	for k := KindLayered; k <= KindRedundant; k++ {
		if n := r.Counts[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	return strings.Join(parts, " · ")
}

// Checker diagnoses the managed entries of a workspace.
type Checker struct {
	ws *workspace.Workspace
}

// New creates a Checker for ws.
func New(ws *workspace.Workspace) *Checker {
	return &Checker{ws: ws}
}

// Run diagnoses every managed entry in file order.
func (c *Checker) Run(ctx context.Context) (*Report, error) {
	rep := &Report{Counts: make(map[Kind]int)}
	ignored := c.rootGitignore()

	for _, entry := range c.ws.Exclude.Entries() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		d := c.diagnose(entry, ignored)
		rep.Diagnoses = append(rep.Diagnoses, d)
		rep.Counts[d.Kind]++
	}
	return rep, nil
}

func (c *Checker) diagnose(entry string, ignored map[string]bool) Diagnosis {
	d := Diagnosis{Entry: entry, Kind: KindLayered, Message: "layered"}

	p, ok := gitignore.Compile(entry, 0)
	if !ok || p.Err != nil || p.Negated {
		// Negations and unparsable lines cannot be checked against disk.
		return d
	}

	matches, tracked := c.resolve(p)
	d.Matches = matches
	d.Tracked = tracked

	switch {
	case matches == 0:
		d.Kind = KindStale
		d.Message = "stale, file not found"
		d.Fix = "layer rm " + entry
	case len(tracked) > 0:
		d.Kind = KindExposed
		d.Message = "exposed, tracked by git"
		switch {
		case !p.IsLiteral():
			d.Message = fmt.Sprintf("exposed, %d files match, %d tracked", matches, len(tracked))
			d.Fix = fmt.Sprintf("git rm --cached <file> (%d tracked of %d matches)", len(tracked), matches)
		case p.DirOnly:
			d.Fix = "git rm --cached -r " + strings.TrimSuffix(p.LiteralPath(), "/")
		default:
			d.Fix = "git rm --cached " + p.LiteralPath()
		}
	case ignored[canonical(entry)]:
		d.Kind = KindRedundant
		d.Message = "redundant, already in .gitignore"
		d.Fix = "layer rm " + entry
	}
	return d
}

// resolve counts what an entry covers on disk and in the index.
func (c *Checker) resolve(p *gitignore.Pattern) (matches int, tracked []string) {
	idx := c.ws.Tracked

	if p.IsLiteral() {
		rel := p.LiteralPath()
		exists, isDir := c.ws.Exists(rel)
		if !exists || (p.DirOnly && !isDir) {
			return 0, nil
		}
		if isDir {
			return 1, idx.Under(rel)
		}
		if idx.Tracked(rel, false) {
			return 1, []string{rel}
		}
		return 1, nil
	}

	walked := lo.Filter(c.ws.Walk.Candidates, func(cand resolve.Candidate, _ int) bool {
		return p.Match(cand.Path, cand.IsDir)
	})
	tracked = lo.Filter(idx.Paths(), func(path string, _ int) bool {
		return matchesFileOrParent(p, path)
	})
	paths := lo.Uniq(append(lo.Map(walked, func(cand resolve.Candidate, _ int) string { return cand.Path }), tracked...))
	return len(paths), tracked
}

// matchesFileOrParent reports whether p matches path or one of its parent
// directories, which is how git applies a rule to a tracked file.
func matchesFileOrParent(p *gitignore.Pattern, path string) bool {
	if p.Match(path, false) {
		return true
	}
	for i := len(path) - 1; i > 0; i-- {
		if path[i] == '/' && p.Match(path[:i], true) {
			return true
		}
	}
	return false
}

// rootGitignore returns the canonical rule lines of the repository's root
// .gitignore.
func (c *Checker) rootGitignore() map[string]bool {
	out := make(map[string]bool)
	for _, src := range c.ws.Sources {
		if src.Tier != gitignore.TierGitignore || src.Scope != "" {
			continue
		}
		for _, p := range src.Patterns {
			out[canonical(p.Raw)] = true
		}
	}
	return out
}

// canonical strips the differences that do not change a root-level rule.
func canonical(entry string) string {
	return strings.TrimPrefix(strings.TrimSpace(entry), "/")
}
