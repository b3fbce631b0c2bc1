package cmd

import (
	"fmt"
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/classify"
	layermcp "github.com/Aman-CERP/layer/internal/mcp"
	"github.com/Aman-CERP/layer/internal/resolve"
	"github.com/Aman-CERP/layer/internal/ui"
	"github.com/Aman-CERP/layer/internal/workspace"
)

func newWhyCmd(a *app) *cobra.Command {
	var (
		verbose    bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "why <path>",
		Short: "Explain why a path is or is not ignored",
		Long: `Explain which ignore rule decides a path.

Rules are weighed in git's order: the global excludes file first, then
each .gitignore from the root down, then .git/info/exclude. The last
matching rule wins, and a directory excluded by a parent rule cannot be
re-included by a negation.

Exit codes: 0 hidden as intended, 1 something to fix, 2 not covered by
any rule.`,
		Example: `  layer why CLAUDE.md
  layer why -v .claude/settings.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runWhy(cmd, args[0], verbose, jsonOutput)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show every rule tested, not only the matches")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func (a *app) runWhy(cmd *cobra.Command, path string, verbose, jsonOutput bool) error {
	ws, err := a.load(cmd.Context())
	if err != nil {
		return err
	}
	cand, err := ws.Candidate(path)
	if err != nil {
		return err
	}
	entry := ws.Classify(cand)
	trace := ws.Explain(cand)
	code := whyExitCode(entry)

	if jsonOutput {
		if err := encodeJSON(cmd, layermcp.ToWhyOutput(entry, trace, verbose)); err != nil {
			return err
		}
		return exitWith(code)
	}

	out := cmd.OutOrStdout()
	s := a.styles(cmd)
	name := workspace.Display(cand)
	v := entry.Verdict

	switch entry.Status {
	case classify.StatusLayered:
		_, _ = fmt.Fprintf(out, "%s '%s' is layered, hidden from git\n", s.Layered.Render(ui.MarkLayered), name)
	case classify.StatusExposed:
		_, _ = fmt.Fprintf(out, "%s '%s' is layered but still tracked by git\n", s.Exposed.Render(ui.MarkExposed), name)
	case classify.StatusStale:
		_, _ = fmt.Fprintf(out, "%s '%s' is layered but does not exist\n", s.Stale.Render(ui.MarkStale), name)
	case classify.StatusIgnored:
		_, _ = fmt.Fprintf(out, "%s '%s' is already handled by %s\n", s.Dim.Render(ui.MarkIgnored), name, sourceName(v.Source.Tier.String(), v.Source.Path))
	case classify.StatusTracked:
		_, _ = fmt.Fprintf(out, "%s '%s' is tracked by git and not layered\n", s.Exposed.Render(ui.MarkExposed), name)
	case classify.StatusDiscovered:
		_, _ = fmt.Fprintf(out, "%s '%s' is untracked and not in any layer\n", s.Discovered.Render(ui.MarkDiscovered), name)
	default:
		if v.Decided() && !v.Ignored {
			_, _ = fmt.Fprintf(out, "'%s' is re-included by a negation\n", name)
		} else {
			_, _ = fmt.Fprintf(out, "'%s' is not matched by any ignore rule\n", name)
		}
	}

	_, _ = fmt.Fprintln(out)
	if v.Decided() {
		_, _ = fmt.Fprintf(out, "  Decided by: %s (line %d)  %s\n", v.Source.Path, v.Pattern.Line, v.Pattern.Raw)
	}
	if v.Via != "" {
		_, _ = fmt.Fprintf(out, "  Via:        parent directory '%s/'\n", v.Via)
	}
	_, _ = fmt.Fprintf(out, "  Tracked:    %s\n", yesNo(entry.Tracked))
	_, _ = fmt.Fprintf(out, "  Exists:     %s\n", yesNo(cand.Exists))

	steps := trace.Steps
	if !verbose {
		steps = trace.Matched()
	}
	if len(steps) > 0 {
		_, _ = fmt.Fprintln(out)
		if verbose {
			_, _ = fmt.Fprintln(out, s.Header.Render("Rules tested (lowest precedence first):"))
		} else {
			_, _ = fmt.Fprintln(out, s.Header.Render("Matching rules (lowest precedence first):"))
		}
		printSteps(out, steps, s)
	}

	switch {
	case entry.Status == classify.StatusExposed || entry.Status == classify.StatusTracked:
		_, _ = fmt.Fprintf(out, "\n  Fix: %s\n", ui.UntrackCommand(cand.Path, cand.IsDir))
	case entry.Status == classify.StatusStale:
		_, _ = fmt.Fprintf(out, "\n  Fix: layer rm %s\n", name)
	case entry.Status == classify.StatusDiscovered:
		_, _ = fmt.Fprintf(out, "\n  Fix: layer add %s\n", name)
	}

	if !cand.Exists {
		if hint := didYouMean(cand.Path, walkedPaths(ws)); hint != "" {
			_, _ = fmt.Fprintf(out, "\n  '%s' does not exist. %s\n", name, hint)
		}
	}

	return exitWith(code)
}

// whyExitCode is 0 when the path is hidden as intended or is ordinary
// tracked content, 1 when something needs fixing and 2 when no rule covers
// an untracked path.
func whyExitCode(e classify.Entry) int {
	switch e.Status {
	case classify.StatusLayered:
		return ExitOK
	case classify.StatusExposed, classify.StatusTracked, classify.StatusStale:
		return ExitProblems
	case classify.StatusIgnored:
		if e.Tracked {
			return ExitProblems
		}
		return ExitOK
	case classify.StatusDiscovered:
		return ExitNothing
	}
	if e.Tracked || e.Verdict.Ignored {
		return ExitOK
	}
	return ExitNothing
}

func printSteps(out io.Writer, steps []resolve.Step, s ui.Styles) {
	for _, st := range steps {
		loc := "?"
		if st.Source != nil && st.Pattern != nil {
			loc = fmt.Sprintf("%s:%d", st.Source.Path, st.Pattern.Line)
		}
		raw := ""
		if st.Pattern != nil {
			raw = st.Pattern.Raw
		}

		var mark string
		switch {
		case st.Decisive:
			mark = s.Layered.Render("decides")
		case st.Superseded:
			mark = s.Dim.Render("overridden")
		case st.Matched:
			mark = s.Warning.Render("matches")
		default:
			mark = s.Dim.Render("no match")
		}

		line := fmt.Sprintf("  %-32s %-24s %s", loc, raw, mark)
		if st.Path != "" && st.Matched {
			line += s.Dim.Render(" on " + st.Path)
		}
		if st.Note != "" {
			line += s.Dim.Render(" (" + st.Note + ")")
		}
		_, _ = fmt.Fprintln(out, line)
	}
}

func sourceName(tier, path string) string {
	switch tier {
	case "global":
		return "the global gitignore (" + path + ")"
	default:
		return path
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func walkedPaths(ws *workspace.Workspace) []string {
	return lo.Map(ws.Walk.Candidates, func(c resolve.Candidate, _ int) string { return c.Path })
}
