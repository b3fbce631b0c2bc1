package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/doctor"
	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/output"
)

func newCleanCmd(a *app) *cobra.Command {
	var (
		dryRun    bool
		all       bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove stale entries",
		Long: `Remove managed entries that no longer match anything on disk.
With --all, entries the root .gitignore already covers are removed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ws, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			rep, err := doctor.New(ws).Run(cmd.Context())
			if err != nil {
				return err
			}

			targets := lo.FilterMap(rep.Diagnoses, func(d doctor.Diagnosis, _ int) (string, bool) {
				return d.Entry, d.Kind == doctor.KindStale || (all && d.Kind == doctor.KindRedundant)
			})

			out := a.output(cmd)
			noun := "stale"
			if all {
				noun = "stale or redundant"
			}
			if len(targets) == 0 {
				_, _ = fmt.Fprintf(out.Out(), "No %s entries found.\n", noun)
				return exitWith(ExitNothing)
			}

			if dryRun {
				_, _ = fmt.Fprintf(out.Out(), "Would remove %s:\n", plural(len(targets), noun+" entry", noun+" entries"))
				for _, t := range targets {
					out.Status(output.IconDryRun, t)
				}
				dryRunNotice(out)
				return nil
			}

			_, _ = fmt.Fprintf(out.Out(), "Found %s:\n", plural(len(targets), noun+" entry", noun+" entries"))
			for _, t := range targets {
				out.Status(output.IconRemove, t)
			}
			ok, err := a.confirm(cmd, "Remove these entries?", assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(out.Out(), "No changes made.")
				return exitWith(ExitNothing)
			}

			var removed []string
			if _, err := exclude.Update(cmd.Context(), ws.Exclude.Path(), func(f *exclude.File) (bool, error) {
				removed = f.Remove(targets...)
				return len(removed) > 0, nil
			}); err != nil {
				return err
			}
			out.Successf("Removed %s.", plural(len(removed), noun+" entry", noun+" entries"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without writing")
	cmd.Flags().BoolVar(&all, "all", false, "Also remove entries the root .gitignore already covers")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}

// plural formats n with the singular or plural noun.
func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
