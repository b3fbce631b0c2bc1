package mcp

import (
	"github.com/Aman-CERP/layer/internal/classify"
	"github.com/Aman-CERP/layer/internal/resolve"
	"github.com/Aman-CERP/layer/internal/workspace"
)

// Tool names.
const (
	ToolStatus   = "layer_status"
	ToolWhy      = "layer_why"
	ToolPatterns = "layer_patterns"
)

// StatusInput defines the input schema for the layer_status tool (no parameters).
type StatusInput struct{}

// StatusOutput defines the output schema for the layer_status tool.
type StatusOutput struct {
	Root       string        `json:"root" jsonschema:"absolute path of the repository root"`
	Layered    []EntryOutput `json:"layered" jsonschema:"context paths hidden by .git/info/exclude"`
	Exposed    []EntryOutput `json:"exposed" jsonschema:"layered paths that git still tracks"`
	Discovered []EntryOutput `json:"discovered" jsonschema:"known context paths that are not hidden yet"`
	Tracked    []EntryOutput `json:"tracked" jsonschema:"known context paths committed to the repository"`
	Ignored    int           `json:"ignored" jsonschema:"number of context paths already hidden by .gitignore or the global file"`
	Stale      []StaleOutput `json:"stale" jsonschema:"managed entries whose target no longer exists"`
	Problems   bool          `json:"problems" jsonschema:"true when anything is exposed or stale"`
}

// EntryOutput is one classified path.
type EntryOutput struct {
	Path    string `json:"path" jsonschema:"repo-relative path, directories end in /"`
	Status  string `json:"status"`
	Tracked bool   `json:"tracked"`
	Source  string `json:"source,omitempty" jsonschema:"ignore file holding the deciding rule"`
	Line    int    `json:"line,omitempty" jsonschema:"line of the deciding rule"`
	Pattern string `json:"pattern,omitempty" jsonschema:"the deciding rule"`
}

// StaleOutput is one managed entry with nothing left to hide.
type StaleOutput struct {
	Entry  string `json:"entry"`
	Reason string `json:"reason"`
}

// WhyInput defines the input schema for the layer_why tool.
type WhyInput struct {
	Path    string `json:"path" jsonschema:"path to explain, absolute or relative to the repository root"`
	Verbose bool   `json:"verbose,omitempty" jsonschema:"include every rule tested, not only the ones that matched"`
}

// WhyOutput defines the output schema for the layer_why tool.
type WhyOutput struct {
	Entry   EntryOutput  `json:"entry"`
	Ignored bool         `json:"ignored"`
	Via     string       `json:"via,omitempty" jsonschema:"ancestor directory the deciding rule matched"`
	Trace   []StepOutput `json:"trace" jsonschema:"rules considered, lowest precedence first"`
}

// StepOutput is one rule in a trace.
type StepOutput struct {
	Source     string `json:"source"`
	Tier       string `json:"tier"`
	Line       int    `json:"line"`
	Pattern    string `json:"pattern"`
	Path       string `json:"path" jsonschema:"path the rule was tested against"`
	Matched    bool   `json:"matched"`
	Superseded bool   `json:"superseded,omitempty"`
	Decisive   bool   `json:"decisive,omitempty"`
	Note       string `json:"note,omitempty"`
}

// PatternsInput defines the input schema for the layer_patterns tool.
type PatternsInput struct {
	Matched bool `json:"matched,omitempty" jsonschema:"only list groups with a path on disk"`
}

// PatternsOutput defines the output schema for the layer_patterns tool.
type PatternsOutput struct {
	Groups []workspace.GroupMatches `json:"groups"`
}

// ToEntryOutput converts a classified entry.
func ToEntryOutput(e classify.Entry) EntryOutput {
	out := EntryOutput{
		Path:    workspace.Display(e.Candidate),
		Status:  e.Status.String(),
		Tracked: e.Tracked,
	}
	if p := e.Verdict.Pattern; p != nil {
		out.Pattern = p.Raw
		out.Line = p.Line
	}
	if s := e.Verdict.Source; s != nil {
		out.Source = s.Path
	}
	return out
}

// ToStatusOutput converts a dashboard.
func ToStatusOutput(root string, d *workspace.Dashboard) StatusOutput {
	out := StatusOutput{
		Root:       root,
		Layered:    toEntries(d.Layered),
		Exposed:    toEntries(d.Exposed),
		Discovered: toEntries(d.Discovered),
		Tracked:    toEntries(d.Tracked),
		Ignored:    len(d.Ignored),
		Stale:      make([]StaleOutput, 0, len(d.Stale)),
		Problems:   d.Problems(),
	}
	for _, s := range d.Stale {
		out.Stale = append(out.Stale, StaleOutput{Entry: s.Entry, Reason: s.Reason})
	}
	return out
}

func toEntries(entries []classify.Entry) []EntryOutput {
	out := make([]EntryOutput, 0, len(entries))
	for _, e := range entries {
		out = append(out, ToEntryOutput(e))
	}
	return out
}

// ToWhyOutput converts an entry and its trace. Unless verbose, only matching
// rules are kept.
func ToWhyOutput(e classify.Entry, trace resolve.Trace, verbose bool) WhyOutput {
	out := WhyOutput{
		Entry:   ToEntryOutput(e),
		Ignored: e.Verdict.Ignored,
		Via:     e.Verdict.Via,
		Trace:   []StepOutput{},
	}
	steps := trace.Steps
	if !verbose {
		steps = trace.Matched()
	}
	for _, s := range steps {
		step := StepOutput{
			Path:       s.Path,
			Matched:    s.Matched,
			Superseded: s.Superseded,
			Decisive:   s.Decisive,
			Note:       s.Note,
		}
		if s.Source != nil {
			step.Source = s.Source.Path
			step.Tier = s.Source.Tier.String()
		}
		if s.Pattern != nil {
			step.Pattern = s.Pattern.Raw
			step.Line = s.Pattern.Line
		}
		out.Trace = append(out.Trace, step)
	}
	return out
}
