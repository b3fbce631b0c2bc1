package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/samber/lo"

	"github.com/Aman-CERP/layer/internal/classify"
	"github.com/Aman-CERP/layer/internal/workspace"
)

// row is one dashboard line: a path and an optional hint column.
type row struct {
	path string
	hint string
}

// DashboardRenderer prints a workspace.Dashboard.
type DashboardRenderer struct {
	out    io.Writer
	styles Styles
}

// NewDashboardRenderer creates a dashboard renderer.
func NewDashboardRenderer(out io.Writer, noColor bool) *DashboardRenderer {
	return &DashboardRenderer{out: out, styles: GetStyles(noColor)}
}

// Render prints the dashboard. Quiet repositories get a one-line summary.
func (r *DashboardRenderer) Render(d *workspace.Dashboard) {
	if len(d.Exposed)+len(d.Discovered)+len(d.Tracked)+len(d.Stale) == 0 {
		r.summary(d)
		return
	}

	sections := 0
	section := func(mark, title string, markStyle, pathStyle, hintStyle renderFunc, rows []row) {
		if len(rows) == 0 {
			return
		}
		if sections > 0 {
			_, _ = fmt.Fprintln(r.out)
		}
		sections++
		_, _ = fmt.Fprintf(r.out, "  %s %s:\n", markStyle(mark), fmt.Sprintf("%s (%d)", title, len(rows)))
		width := lo.Max(lo.Map(rows, func(x row, _ int) int { return len(x.path) }))
		for _, x := range rows {
			if x.hint == "" {
				_, _ = fmt.Fprintf(r.out, "    %s\n", pathStyle(x.path))
				continue
			}
			pad := strings.Repeat(" ", width-len(x.path))
			_, _ = fmt.Fprintf(r.out, "    %s%s  %s\n", pathStyle(x.path), pad, hintStyle(x.hint))
		}
	}

	s := r.styles
	section(MarkLayered, "Layered", s.Layered.Render, s.Layered.Render, s.Dim.Render,
		rows(d.Layered, nil))
	section(MarkExposed, "Exposed", s.Exposed.Render, plain, s.Warning.Render,
		rows(d.Exposed, untrackHint))
	section(MarkDiscovered, "Discovered", s.Discovered.Render, plain, s.Dim.Render,
		rows(d.Discovered, func(e classify.Entry) string { return "layer add " + workspace.Display(e.Candidate) }))
	section(MarkExposed, "Exposed, tracked", s.Exposed.Render, plain, s.Warning.Render,
		rows(d.Tracked, untrackHint))
	section(MarkStale, "Stale", s.Stale.Render, plain, s.Dim.Render,
		lo.Map(d.Stale, func(e classify.StaleEntry, _ int) row { return row{path: e.Entry, hint: e.Reason} }))

	if len(d.Ignored) > 0 {
		_, _ = fmt.Fprintf(r.out, "\n  %s %s\n", s.Dim.Render(MarkIgnored),
			s.Dim.Render(fmt.Sprintf("%d other context %s already ignored by .gitignore", len(d.Ignored), plural(len(d.Ignored), "path", "paths"))))
	}
}

// renderFunc matches lipgloss.Style.Render so plain text can stand in.
type renderFunc = func(...string) string

func plain(s ...string) string { return strings.Join(s, " ") }

func (r *DashboardRenderer) summary(d *workspace.Dashboard) {
	s := r.styles
	layered, ignored := len(d.Layered), len(d.Ignored)
	switch {
	case layered == 0 && ignored == 0:
		_, _ = fmt.Fprintf(r.out, "No context files found. Run %s to get started.\n", s.Header.Render("layer scan"))
	case layered == 0:
		_, _ = fmt.Fprintf(r.out, "  %s All clear, %d already ignored by .gitignore.\n", s.Header.Render(MarkLayered), ignored)
	case ignored > 0:
		_, _ = fmt.Fprintf(r.out, "  %s %d %s in your local layer. (%d others ignored by .gitignore)\n",
			s.Header.Render(MarkLayered), layered, plural(layered, "file", "files"), ignored)
	default:
		_, _ = fmt.Fprintf(r.out, "  %s %d %s in your local layer.\n",
			s.Header.Render(MarkLayered), layered, plural(layered, "file", "files"))
	}
}

func rows(entries []classify.Entry, hint func(classify.Entry) string) []row {
	return lo.Map(entries, func(e classify.Entry, _ int) row {
		x := row{path: workspace.Display(e.Candidate)}
		if hint != nil {
			x.hint = hint(e)
		}
		return x
	})
}

// UntrackCommand is the fix for a tracked path that should be layered.
func UntrackCommand(path string, isDir bool) string {
	path = strings.TrimSuffix(path, "/")
	if strings.ContainsAny(path, " '\"") {
		path = "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
	}
	if isDir {
		return "git rm --cached -r " + path
	}
	return "git rm --cached " + path
}

func untrackHint(e classify.Entry) string {
	return UntrackCommand(e.Candidate.Path, e.Candidate.IsDir)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
