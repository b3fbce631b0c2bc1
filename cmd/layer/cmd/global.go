package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/git"
	"github.com/Aman-CERP/layer/internal/output"
)

func newGlobalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "global",
		Short: "Manage the global gitignore",
		Long: `Manage patterns in your global gitignore (core.excludesFile, or
~/.config/git/ignore when unset). These apply to every repository on
this machine. Patterns are written as typed.`,
	}

	cmd.AddCommand(newGlobalAddCmd(a), newGlobalLsCmd(a), newGlobalRmCmd(a))
	return cmd
}

func newGlobalAddCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add <patterns...>",
		Short: "Add patterns to the global gitignore",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.globalPath(cmd.Context())
			out := a.output(cmd)

			patterns, err := globalPatterns(args)
			if err != nil {
				return err
			}
			current, err := exclude.Load(path)
			if err != nil {
				return err
			}

			var fresh []string
			for _, p := range patterns {
				if current.Has(p) || current.HasUser(p) {
					out.Statusf(output.IconSkip, "'%s' already in global gitignore", p)
					continue
				}
				fresh = append(fresh, p)
			}
			if len(fresh) == 0 {
				return exitWith(ExitNothing)
			}
			if dryRun {
				for _, p := range fresh {
					out.Statusf(output.IconDryRun, "Would add '%s' to global gitignore (%s)", p, path)
				}
				dryRunNotice(out)
				return nil
			}

			var added []string
			if _, err := exclude.Update(cmd.Context(), path, func(f *exclude.File) (bool, error) {
				added = f.Add(fresh...)
				return len(added) > 0, nil
			}); err != nil {
				return err
			}
			for _, p := range added {
				out.Successf("Added '%s' to global gitignore (%s)", p, path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be added without writing")
	return cmd
}

func newGlobalLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "ls",
		Aliases: []string{"list"},
		Short:   "List global gitignore patterns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.globalPath(cmd.Context())
			f, err := exclude.Load(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := a.styles(cmd)
			managed, user := f.Entries(), f.UserEntries()
			if len(managed)+len(user) == 0 {
				_, _ = fmt.Fprintf(out, "Global gitignore (%s) is empty.\n", path)
				return exitWith(ExitNothing)
			}

			_, _ = fmt.Fprintf(out, "Global gitignore (%s):\n", path)
			for _, e := range managed {
				_, _ = fmt.Fprintf(out, "  %s\n", e)
			}
			for _, e := range user {
				_, _ = fmt.Fprintf(out, "  %s  %s\n", e, s.Dim.Render("(external)"))
			}
			return nil
		},
	}
}

func newGlobalRmCmd(a *app) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:     "rm <patterns...>",
		Aliases: []string{"remove"},
		Short:   "Remove patterns from the global gitignore",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.globalPath(cmd.Context())
			out := a.output(cmd)

			patterns, err := globalPatterns(args)
			if err != nil {
				return err
			}
			current, err := exclude.Load(path)
			if err != nil {
				return err
			}

			var targets []string
			for _, p := range patterns {
				if !current.Has(p) && !current.HasUser(p) {
					out.Statusf(output.IconSkip, "'%s' not in global gitignore", p)
					continue
				}
				targets = append(targets, p)
			}
			if len(targets) == 0 {
				return exitWith(ExitNothing)
			}
			if dryRun {
				for _, p := range targets {
					out.Statusf(output.IconDryRun, "Would remove '%s' from global gitignore", p)
				}
				dryRunNotice(out)
				return nil
			}

			var removed []string
			if _, err := exclude.Update(cmd.Context(), path, func(f *exclude.File) (bool, error) {
				removed = f.Remove(targets...)
				for _, p := range targets {
					if f.RemoveUser(p) {
						removed = append(removed, p)
					}
				}
				removed = lo.Uniq(removed)
				return len(removed) > 0, nil
			}); err != nil {
				return err
			}
			for _, p := range removed {
				out.Successf("Removed '%s' from global gitignore.", p)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be removed without writing")
	return cmd
}

// globalPath resolves the global excludes file through the current
// repository's git when there is one.
func (a *app) globalPath(ctx context.Context) string {
	if repo, err := a.repo(ctx); err == nil {
		return repo.GlobalExcludesPath(ctx)
	}
	return git.GlobalExcludesPath(ctx, nil, "")
}

func globalPatterns(args []string) ([]string, error) {
	patterns := make([]string, 0, len(args))
	for _, arg := range args {
		p := strings.TrimSpace(arg)
		if p == "" || strings.HasPrefix(p, "#") {
			return nil, lerrors.ValidationError(fmt.Sprintf("'%s' is not a valid pattern", arg), nil)
		}
		patterns = append(patterns, p)
	}
	return lo.Uniq(patterns), nil
}
