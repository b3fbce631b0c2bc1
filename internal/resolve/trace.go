package resolve

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/Aman-CERP/layer/internal/gitignore"
)

// Step is one rule tested while resolving a candidate.
type Step struct {
	Source  *gitignore.RuleSource
	Pattern *gitignore.Pattern
	// Path is the path the rule was tested against: the candidate itself or
	// one of its ancestor directories.
	Path string

	Matched    bool
	Superseded bool
	Decisive   bool
	Note       string

	ord int
}

// Trace is the ordered explanation of one resolution, lowest precedence first.
type Trace struct {
	Candidate Candidate
	Steps     []Step
	Verdict   Verdict
}

// Matched returns only the steps whose rule matched.
func (t Trace) Matched() []Step {
	var out []Step
	for _, s := range t.Steps {
		if s.Matched {
			out = append(out, s)
		}
	}
	return out
}

// Explain replays the resolution of c against sources.
func Explain(c Candidate, sources []*gitignore.RuleSource) Trace {
	return NewResolver(sources).Explain(c)
}

// Explain replays the resolution of c, recording every rule tested against
// the candidate and every rule that matched one of its ancestors.
func (r *Resolver) Explain(c Candidate) Trace {
	rec := &recorder{}
	v := r.evaluate(c, rec)

	steps := rec.steps
	slices.SortStableFunc(steps, func(a, b Step) int {
		if a.ord != b.ord {
			return cmp.Compare(a.ord, b.ord)
		}
		return cmp.Compare(strings.Count(a.Path, "/"), strings.Count(b.Path, "/"))
	})

	// Within each tested path only the last match survives.
	last := make(map[string]int)
	for i, s := range steps {
		if s.Matched {
			last[s.Path] = i
		}
	}
	decidingPath := c.Path
	if v.Via != "" {
		decidingPath = v.Via
	}
	for i := range steps {
		s := &steps[i]
		if !s.Matched {
			continue
		}
		if last[s.Path] != i {
			s.Superseded = true
		}
		if s.Pattern == v.Pattern && s.Path == decidingPath {
			s.Decisive = true
		}
	}

	return Trace{Candidate: c, Steps: steps, Verdict: v}
}

// recorder collects steps during evaluation. A nil recorder records nothing.
type recorder struct {
	steps []Step
}

func (rec *recorder) test(path, rel string, isDir bool, rp ranked, matched, candidate bool) {
	if rec == nil {
		return
	}
	if !candidate && !matched {
		return
	}

	s := Step{
		Source:  rp.source,
		Pattern: rp.pattern,
		Path:    path,
		Matched: matched,
		ord:     rp.ord,
	}
	switch {
	case rp.pattern.Err != nil:
		s.Note = "failed to parse: " + rp.pattern.Err.Error()
	case !matched && rp.pattern.DirOnly && !isDir && rp.pattern.Match(rel, true):
		s.Note = "directory-only; candidate is a file"
	}
	rec.steps = append(rec.steps, s)
}

// void marks the matched negation for path as overridden by an ignored parent.
func (rec *recorder) void(path string, rp ranked, parent string) {
	if rec == nil {
		return
	}
	for i := range rec.steps {
		s := &rec.steps[i]
		if s.Path == path && s.ord == rp.ord {
			s.Superseded = true
			s.Note = fmt.Sprintf("negation voided: parent directory %s/ is ignored", parent)
		}
	}
}

// override marks the parent match at path as lifted by the higher-tier
// negation by.
func (rec *recorder) override(path string, rp, by ranked) {
	if rec == nil {
		return
	}
	for i := range rec.steps {
		s := &rec.steps[i]
		if s.Path == path && s.ord == rp.ord {
			s.Superseded = true
			s.Note = fmt.Sprintf("overridden by %s negation %s", by.source.Tier, by.pattern.Raw)
		}
	}
}
