// Package resolve decides whether a path is ignored and which rule decided it.
//
// All rule sources are merged into one total order, ascending precedence:
//
//	(tier, source depth, source position, line)
//
// Global rules come first, then .gitignore files from shallow to deep, then
// .git/info/exclude. The last matching rule in that order wins. Resolve and
// Explain share the same evaluation, so a trace always ends in the verdict
// Resolve returns.
package resolve

import (
	"cmp"
	gopath "path"
	"slices"

	"github.com/Aman-CERP/layer/internal/gitignore"
)

// Verdict is the outcome of resolving one Candidate.
type Verdict struct {
	Ignored bool
	// Pattern is the deciding rule, nil when nothing matched.
	Pattern *gitignore.Pattern
	// Source is the file that holds Pattern.
	Source *gitignore.RuleSource
	// Via is the ancestor directory Pattern matched when the candidate was
	// ignored through a parent rather than by its own match.
	Via string
}

// Decided reports whether any rule decided the verdict.
func (v Verdict) Decided() bool {
	return v.Pattern != nil
}

// Tier returns the tier of the deciding source.
func (v Verdict) Tier() (gitignore.Tier, bool) {
	if v.Source == nil {
		return 0, false
	}
	return v.Source.Tier, true
}

// ranked is a pattern placed in the merged order.
type ranked struct {
	pattern *gitignore.Pattern
	source  *gitignore.RuleSource
	ord     int
}

// Resolver holds the merged rule order for a set of sources. It is
// immutable and safe for concurrent use.
type Resolver struct {
	rules []ranked
}

// NewResolver merges sources into precedence order.
func NewResolver(sources []*gitignore.RuleSource) *Resolver {
	ordered := make([]*gitignore.RuleSource, 0, len(sources))
	for _, s := range sources {
		if s != nil {
			ordered = append(ordered, s)
		}
	}
	slices.SortStableFunc(ordered, func(a, b *gitignore.RuleSource) int {
		if a.Tier != b.Tier {
			return cmp.Compare(a.Tier, b.Tier)
		}
		return cmp.Compare(a.Depth(), b.Depth())
	})

	r := &Resolver{}
	for _, s := range ordered {
		for _, p := range s.Patterns {
			r.rules = append(r.rules, ranked{pattern: p, source: s, ord: len(r.rules)})
		}
	}
	return r
}

// Resolve decides c against sources.
func Resolve(c Candidate, sources []*gitignore.RuleSource) Verdict {
	return NewResolver(sources).Resolve(c)
}

// Resolve decides c.
func (r *Resolver) Resolve(c Candidate) Verdict {
	return r.evaluate(c, nil)
}

// Len returns the number of merged rules.
func (r *Resolver) Len() int {
	return len(r.rules)
}

// evaluate is the single resolution algorithm. rec, when non-nil, is told
// about every rule tested.
func (r *Resolver) evaluate(c Candidate, rec *recorder) Verdict {
	if c.Path == "" {
		return Verdict{}
	}

	// Walk ancestors shallowest first, tracking the rule that currently
	// keeps the chain ignored.
	var (
		blocker     ranked
		blockerPath string
		blocked     bool
	)
	for _, dir := range Ancestors(c.Path) {
		m, ok := r.lastMatch(dir, true, rec, false)
		if !ok {
			continue
		}
		switch {
		case !m.pattern.Negated:
			blocker, blockerPath, blocked = m, dir, true
		case blocked && m.source.Tier > blocker.source.Tier:
			rec.override(blockerPath, blocker, m)
			blocked = false
		case blocked:
			rec.void(dir, m, blockerPath)
		}
	}

	m, ok := r.lastMatch(c.Path, c.IsDir, rec, true)
	switch {
	case !ok && blocked:
		return Verdict{Ignored: true, Pattern: blocker.pattern, Source: blocker.source, Via: blockerPath}
	case !ok:
		return Verdict{}
	case !m.pattern.Negated:
		return Verdict{Ignored: true, Pattern: m.pattern, Source: m.source}
	case blocked && blocker.source.Tier >= m.source.Tier:
		// A negation cannot re-include a path whose parent directory is
		// excluded by a rule of the same or a higher tier.
		rec.void(c.Path, m, blockerPath)
		return Verdict{Ignored: true, Pattern: blocker.pattern, Source: blocker.source, Via: blockerPath}
	default:
		if blocked {
			rec.override(blockerPath, blocker, m)
		}
		return Verdict{Ignored: false, Pattern: m.pattern, Source: m.source}
	}
}

// lastMatch returns the highest ranked rule matching path. Sources whose
// scope is not above path are skipped entirely.
func (r *Resolver) lastMatch(path string, isDir bool, rec *recorder, candidate bool) (ranked, bool) {
	var (
		best  ranked
		found bool
	)
	dir := gopath.Dir(path)
	for _, rp := range r.rules {
		if !rp.source.Applies(dir) {
			continue
		}
		rel, ok := rp.source.Rel(path)
		if !ok {
			continue
		}
		matched := rp.pattern.Match(rel, isDir)
		rec.test(path, rel, isDir, rp, matched, candidate)
		if matched {
			best, found = rp, true
		}
	}
	return best, found
}
