package cmd

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/doctor"
	"github.com/Aman-CERP/layer/internal/ui"
)

// lsEntry is one row of 'layer ls --json'.
type lsEntry struct {
	Entry  string `json:"entry"`
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
	Manual bool   `json:"manual,omitempty"`
}

func newLsCmd(a *app) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List layered entries with their status",
		Long: `List the entries in .git/info/exclude. Managed entries show whether
they are layered, exposed (still tracked), stale (nothing matches) or
redundant (also in the root .gitignore). Entries switched off with
'layer off' are listed as off. Entries written by hand outside the managed
block are marked (manual).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runLs(cmd, jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}

func (a *app) runLs(cmd *cobra.Command, jsonOutput bool) error {
	ws, err := a.load(cmd.Context())
	if err != nil {
		return err
	}
	rep, err := doctor.New(ws).Run(cmd.Context())
	if err != nil {
		return err
	}

	rows := lo.Map(rep.Diagnoses, func(d doctor.Diagnosis, _ int) lsEntry {
		return lsEntry{Entry: d.Entry, Status: d.Kind.String(), Detail: lsDetail(d)}
	})
	for _, e := range ws.Exclude.Disabled() {
		rows = append(rows, lsEntry{Entry: e, Status: "off", Detail: "off (layer on to re-enable)"})
	}
	for _, e := range ws.Exclude.UserEntries() {
		rows = append(rows, lsEntry{Entry: e, Status: "manual", Manual: true})
	}

	if jsonOutput {
		if err := encodeJSON(cmd, rows); err != nil {
			return err
		}
		if len(rows) == 0 {
			return exitWith(ExitNothing)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	s := a.styles(cmd)
	if len(rows) == 0 {
		_, _ = fmt.Fprintf(out, "No layered entries. Run %s or %s to get started.\n",
			s.Header.Render("layer add"), s.Header.Render("layer scan"))
		return exitWith(ExitNothing)
	}

	width := lo.Max(lo.Map(rows, func(r lsEntry, _ int) int { return len(r.Entry) }))
	for i, r := range rows {
		if i > 0 && r.Manual && !rows[i-1].Manual {
			_, _ = fmt.Fprintln(out)
		}
		name := r.Entry + strings.Repeat(" ", width-len(r.Entry))
		switch r.Status {
		case doctor.KindExposed.String():
			_, _ = fmt.Fprintf(out, "  %s %s  %s\n", s.Exposed.Render(ui.MarkExposed), name, s.Warning.Render(r.Detail))
		case doctor.KindStale.String():
			_, _ = fmt.Fprintf(out, "  %s %s  %s\n", s.Stale.Render(ui.MarkStale), name, s.Error.Render(r.Detail))
		case doctor.KindRedundant.String():
			_, _ = fmt.Fprintf(out, "  %s %s  %s\n", s.Layered.Render(ui.MarkLayered), name, s.Dim.Render(r.Detail))
		case "off":
			_, _ = fmt.Fprintf(out, "  %s %s  %s\n", s.Dim.Render(ui.MarkIgnored), name, s.Dim.Render(r.Detail))
		case "manual":
			_, _ = fmt.Fprintf(out, "  %s %s  %s\n", s.Dim.Render(ui.MarkIgnored), name, s.Dim.Render("(manual)"))
		default:
			_, _ = fmt.Fprintf(out, "  %s %s  %s\n", s.Layered.Render(ui.MarkLayered), name, s.Dim.Render(r.Detail))
		}
	}
	return nil
}

func lsDetail(d doctor.Diagnosis) string {
	switch d.Kind {
	case doctor.KindExposed:
		return "exposed, " + d.Fix
	case doctor.KindStale:
		return "stale"
	case doctor.KindRedundant:
		return "layered, redundant (in .gitignore)"
	}
	if d.Matches > 1 {
		return fmt.Sprintf("layered (%d files)", d.Matches)
	}
	return "layered"
}
