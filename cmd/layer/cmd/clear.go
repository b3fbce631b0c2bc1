package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/exclude"
)

func newClearCmd(a *app) *cobra.Command {
	var (
		dryRun    bool
		assumeYes bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove every layered entry",
		Long: `Remove all entries from the layer-managed block of .git/info/exclude.
Lines outside the block are kept. Run 'layer backup' first to keep a copy.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.repo(cmd.Context())
			if err != nil {
				return err
			}
			f, err := exclude.Load(repo.ExcludePath())
			if err != nil {
				return err
			}

			out := a.output(cmd)
			n := len(f.Entries()) + len(f.Disabled())
			if n == 0 {
				_, _ = fmt.Fprintln(out.Out(), "No layered entries. Nothing to clear.")
				return exitWith(ExitNothing)
			}

			if dryRun {
				_, _ = fmt.Fprintf(out.Out(), "Would remove all %s.\n", plural(n, "entry", "entries"))
				dryRunNotice(out)
				return nil
			}

			out.Warningf("This will remove all %s.", plural(n, "entry", "entries"))
			ok, err := a.confirm(cmd, "Are you sure?", assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(out.Out(), "No changes made.")
				return exitWith(ExitNothing)
			}

			if _, err := exclude.Update(cmd.Context(), f.Path(), func(f *exclude.File) (bool, error) {
				return f.Clear() > 0, nil
			}); err != nil {
				return err
			}
			out.Success("All entries removed.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without writing")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")

	return cmd
}
