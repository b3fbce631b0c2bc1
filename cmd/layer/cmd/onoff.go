package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/output"
)

// toggle describes one direction of 'layer on' / 'layer off'.
type toggle struct {
	verb    string // "enable" or "disable"
	done    string // "Enabled" or "Disabled"
	state   string // state targets end up in: "on" or "off"
	sources func(*exclude.File) []string
	apply   func(f *exclude.File, entries ...string) []string
}

var (
	toggleOff = toggle{
		verb: "disable", done: "Disabled", state: "off",
		sources: (*exclude.File).Entries,
		apply:   (*exclude.File).Disable,
	}
	toggleOn = toggle{
		verb: "enable", done: "Enabled", state: "on",
		sources: (*exclude.File).Disabled,
		apply:   (*exclude.File).Enable,
	}
)

func newOffCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "off [entries...]",
		Short: "Temporarily stop hiding layered entries",
		Long: `Switch managed entries off without forgetting them. The entry stays in
.git/info/exclude as a comment, so git sees the files again until
'layer on' restores it. Without arguments every entry is switched off.`,
		Example: `  layer off CLAUDE.md
  layer off`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runToggle(cmd, toggleOff, args, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	return cmd
}

func newOnCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "on [entries...]",
		Short: "Re-enable entries switched off with 'layer off'",
		Long: `Switch disabled entries back on. Without arguments every disabled entry
is restored.`,
		Example: `  layer on CLAUDE.md
  layer on`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runToggle(cmd, toggleOn, args, dryRun)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would change without writing")
	return cmd
}

func (a *app) runToggle(cmd *cobra.Command, t toggle, args []string, dryRun bool) error {
	repo, err := a.repo(cmd.Context())
	if err != nil {
		return err
	}
	f, err := exclude.Load(repo.ExcludePath())
	if err != nil {
		return err
	}

	out := a.output(cmd)
	candidates := t.sources(f)
	if len(candidates) == 0 {
		_, _ = fmt.Fprintf(out.Out(), "No entries to %s.\n", t.verb)
		return exitWith(ExitNothing)
	}

	targets := candidates
	if len(args) > 0 {
		known := append(f.Entries(), f.Disabled()...)
		targets = nil
		for _, raw := range args {
			e, ok := lookupEntry(repo.Root, raw, known)
			if !ok {
				continue
			}
			switch {
			case lo.Contains(candidates, e):
				targets = append(targets, e)
			case lo.Contains(known, e):
				out.Statusf(output.IconSkip, "'%s' is already %s", e, t.state)
			default:
				out.Statusf(output.IconSkip, "'%s' is not layered", e)
				if hint := didYouMean(e, known); hint != "" {
					out.Hint(hint)
				}
			}
		}
		targets = lo.Uniq(targets)
	}
	if len(targets) == 0 {
		return exitWith(ExitNothing)
	}

	if dryRun {
		for _, e := range targets {
			out.Statusf(output.IconDryRun, "Would %s '%s'", t.verb, e)
		}
		dryRunNotice(out)
		return nil
	}

	var changed []string
	if _, err := exclude.Update(cmd.Context(), f.Path(), func(f *exclude.File) (bool, error) {
		changed = t.apply(f, targets...)
		return len(changed) > 0, nil
	}); err != nil {
		return err
	}
	for _, e := range changed {
		out.Successf("%s '%s'", t.done, e)
	}
	if len(changed) == 0 {
		return exitWith(ExitNothing)
	}
	return nil
}
