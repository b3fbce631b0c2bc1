package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/output"
	"github.com/Aman-CERP/layer/internal/ui"
)

func newRmCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "rm [entries...]",
		Aliases: []string{"remove"},
		Short:   "Stop hiding files",
		Long: `Remove entries from the layer-managed block of .git/info/exclude.

Entries you wrote outside the managed block are removed too when named
explicitly. Without arguments a picker lists the managed entries.`,
		Example: `  layer rm CLAUDE.md
  layer rm --dry-run .claude/
  layer rm`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRm(cmd, args, dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without writing")

	return cmd
}

func (a *app) runRm(cmd *cobra.Command, args []string, dryRun bool) error {
	out := a.output(cmd)
	ws, err := a.load(cmd.Context())
	if err != nil {
		return err
	}

	managed := append(ws.Exclude.Entries(), ws.Exclude.Disabled()...)
	if len(managed) == 0 && len(ws.Exclude.UserEntries()) == 0 {
		out.Status("", "No layered entries to remove.")
		return exitWith(ExitNothing)
	}

	var targets []string
	if len(args) == 0 {
		nodes := lo.Map(managed, func(e string, _ int) ui.Node { return ui.Node{Path: e} })
		selected, ok, err := a.pick(cmd, "Select entries to remove", nodes, nil)
		if err != nil {
			return err
		}
		if !ok || len(selected) == 0 {
			out.Status("", "No entries selected.")
			return exitWith(ExitNothing)
		}
		targets = selected
	} else {
		targets = lo.Uniq(lo.FilterMap(args, func(raw string, _ int) (string, bool) {
			return lookupEntry(ws.Root(), raw, append(ws.Exclude.AllEntries(), ws.Exclude.Disabled()...))
		}))
	}

	var fromManaged, fromUser []string
	for _, t := range targets {
		switch {
		case lo.Contains(managed, t):
			fromManaged = append(fromManaged, t)
		case ws.Exclude.HasUser(t):
			fromUser = append(fromUser, t)
		default:
			out.Statusf(output.IconSkip, "'%s' is not layered", t)
			if hint := didYouMean(t, ws.Exclude.AllEntries()); hint != "" {
				out.Hint(hint)
			}
		}
	}
	if len(fromManaged)+len(fromUser) == 0 {
		if dryRun {
			dryRunNotice(out)
		}
		return exitWith(ExitNothing)
	}

	if dryRun {
		for _, t := range fromManaged {
			out.Statusf(output.IconDryRun, "Would remove '%s'", t)
		}
		for _, t := range fromUser {
			out.Statusf(output.IconDryRun, "Would remove '%s' (manual)", t)
		}
		dryRunNotice(out)
		return nil
	}

	var removed []string
	_, err = exclude.Update(cmd.Context(), ws.Exclude.Path(), func(f *exclude.File) (bool, error) {
		removed = f.Remove(fromManaged...)
		for _, t := range fromUser {
			if f.RemoveUser(t) {
				removed = append(removed, t)
			}
		}
		return len(removed) > 0, nil
	})
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return exitWith(ExitNothing)
	}
	for _, t := range removed {
		out.Successf("Removed '%s'", t)
	}
	return nil
}

// lookupEntry maps user input to the entry it names. Input that matches an
// entry as typed wins; otherwise it is normalized like 'layer add' would.
func lookupEntry(root, raw string, entries []string) (string, bool) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", false
	}
	if lo.Contains(entries, t) {
		return t, true
	}
	if n, err := exclude.NormalizeEntry(root, t); err == nil {
		if lo.Contains(entries, n) {
			return n, true
		}
		if !strings.HasSuffix(n, "/") && lo.Contains(entries, n+"/") {
			return n + "/", true
		}
		return n, true
	}
	return t, true
}
