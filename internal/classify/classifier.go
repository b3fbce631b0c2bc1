package classify

import (
	"encoding/json"

	"github.com/Aman-CERP/layer/internal/gitignore"
	"github.com/Aman-CERP/layer/internal/resolve"
)

// Matcher reports whether a path is a known context path.
type Matcher interface {
	Matches(path string, isDir bool) bool
}

// Tracker reports whether git tracks a path. For a directory it reports
// whether any tracked file lies beneath it.
type Tracker interface {
	Tracked(path string, isDir bool) bool
}

// Entry is a classified candidate.
type Entry struct {
	Candidate resolve.Candidate `json:"-"`
	Verdict   resolve.Verdict   `json:"-"`
	Tracked   bool              `json:"tracked"`
	Status    Status            `json:"status"`
}

type entryJSON struct {
	Path    string `json:"path"`
	Dir     bool   `json:"dir,omitempty"`
	Status  Status `json:"status"`
	Tracked bool   `json:"tracked"`
	Source  string `json:"source,omitempty"`
	Line    int    `json:"line,omitempty"`
	Pattern string `json:"pattern,omitempty"`
	Via     string `json:"via,omitempty"`
}

// MarshalJSON flattens the candidate and the deciding rule.
func (e Entry) MarshalJSON() ([]byte, error) {
	out := entryJSON{
		Path:    e.Candidate.Path,
		Dir:     e.Candidate.IsDir,
		Status:  e.Status,
		Tracked: e.Tracked,
		Via:     e.Verdict.Via,
	}
	if p := e.Verdict.Pattern; p != nil {
		out.Pattern = p.Raw
		out.Line = p.Line
	}
	if s := e.Verdict.Source; s != nil {
		out.Source = s.Path
	}
	return json.Marshal(out)
}

// Classify assigns one status from a verdict and tracked state.
//
//   - ignored by info/exclude: Exposed when tracked, otherwise Layered
//   - ignored by another tier: Ignored
//   - known path on disk and untracked: Discovered
//   - known path and tracked: Tracked
func Classify(c resolve.Candidate, v resolve.Verdict, tracked bool, known Matcher) Status {
	if v.Ignored {
		if tier, _ := v.Tier(); tier == gitignore.TierLocalExclude {
			if tracked {
				return StatusExposed
			}
			return StatusLayered
		}
		return StatusIgnored
	}

	if known == nil || !known.Matches(c.Path, c.IsDir) {
		return StatusNone
	}
	if tracked {
		return StatusTracked
	}
	if c.Exists {
		return StatusDiscovered
	}
	return StatusNone
}

// Classifier classifies candidates against one snapshot of rules, tracked
// state and catalog. It holds no mutable state.
type Classifier struct {
	resolver *resolve.Resolver
	tracker  Tracker
	known    Matcher
}

// New creates a Classifier.
func New(resolver *resolve.Resolver, tracker Tracker, known Matcher) *Classifier {
	return &Classifier{resolver: resolver, tracker: tracker, known: known}
}

// Entry resolves and classifies a single candidate.
func (c *Classifier) Entry(cand resolve.Candidate) Entry {
	v := c.resolver.Resolve(cand)
	tracked := c.tracker != nil && c.tracker.Tracked(cand.Path, cand.IsDir)
	return Entry{
		Candidate: cand,
		Verdict:   v,
		Tracked:   tracked,
		Status:    Classify(cand, v, tracked, c.known),
	}
}

// Explain returns the resolution trace for a candidate.
func (c *Classifier) Explain(cand resolve.Candidate) resolve.Trace {
	return c.resolver.Explain(cand)
}
