package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/catalog"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/workspace"
)

type patternsOptions struct {
	matched   bool
	showFiles bool
	json      bool
}

func newPatternsCmd(a *app) *cobra.Command {
	var opts patternsOptions

	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "List the known AI context file patterns",
		Long: `List the file and directory patterns layer recognizes, grouped by
tool. Extra patterns come from 'catalog.extra' in the configuration.

With --matched, only patterns that match something in the current
repository are shown; --show-files also lists the matching paths.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.showFiles && !opts.matched {
				return lerrors.ValidationError("--show-files requires --matched", nil)
			}
			if opts.matched {
				return a.runPatternsMatched(cmd, opts)
			}
			return a.runPatternsStatic(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.matched, "matched", "m", false, "Only show patterns matching files in this repository")
	cmd.Flags().BoolVar(&opts.showFiles, "show-files", false, "List the files each pattern matches (requires --matched)")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Output as JSON")

	return cmd
}

// runPatternsStatic prints the catalog. It works outside a repository.
func (a *app) runPatternsStatic(cmd *cobra.Command, opts patternsOptions) error {
	cfg, err := a.config(cmd.Context())
	if err != nil {
		return err
	}
	groups := catalog.New(cfg.Catalog.Extra).Groups()

	if opts.json {
		return encodeJSON(cmd, groups)
	}

	out := cmd.OutOrStdout()
	s := a.styles(cmd)
	for i, g := range groups {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintln(out, s.Header.Render(g.Name))
		width := lo.Max(lo.Map(g.Entries, func(e string, _ int) int { return len(e) }))
		for _, e := range g.Entries {
			_, _ = fmt.Fprintf(out, "  %-*s  %s\n", width, e, s.Dim.Render("("+catalog.KindOf(e).String()+")"))
		}
	}
	return nil
}

func (a *app) runPatternsMatched(cmd *cobra.Command, opts patternsOptions) error {
	ws, err := a.load(cmd.Context())
	if err != nil {
		return err
	}
	groups := ws.Patterns(true)

	if opts.json {
		if !opts.showFiles {
			groups = lo.Map(groups, func(g workspace.GroupMatches, _ int) workspace.GroupMatches {
				g.Patterns = lo.Map(g.Patterns, func(p workspace.PatternMatch, _ int) workspace.PatternMatch {
					return workspace.PatternMatch{Pattern: p.Pattern}
				})
				return g
			})
		}
		if err := encodeJSON(cmd, groups); err != nil {
			return err
		}
		if len(groups) == 0 {
			return exitWith(ExitNothing)
		}
		return nil
	}

	out := cmd.OutOrStdout()
	if len(groups) == 0 {
		_, _ = fmt.Fprintln(out, "No known patterns match files in this repository.")
		return exitWith(ExitNothing)
	}

	s := a.styles(cmd)
	for i, g := range groups {
		if i > 0 {
			_, _ = fmt.Fprintln(out)
		}
		_, _ = fmt.Fprintln(out, s.Header.Render(g.Name))
		for _, p := range g.Patterns {
			_, _ = fmt.Fprintf(out, "  %s  %s\n", p.Pattern, s.Dim.Render(fmt.Sprintf("(%d)", len(p.Files))))
			if opts.showFiles {
				for _, f := range p.Files {
					_, _ = fmt.Fprintf(out, "    %s\n", s.Dim.Render(f))
				}
			}
		}
	}
	return nil
}

func encodeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
