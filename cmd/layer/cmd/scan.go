package cmd

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/classify"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/output"
	"github.com/Aman-CERP/layer/internal/ui"
	"github.com/Aman-CERP/layer/internal/workspace"
)

func newScanCmd(a *app) *cobra.Command {
	var (
		depth  int
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Find AI context files and pick which to layer",
		Long: `Walk the repository for known AI context files and group them:
tracked files that need 'git rm --cached', files already layered, files
a .gitignore already hides, and new files you can layer. New files are
offered in a picker with everything selected.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := a.workspaceOptions(cmd.Context())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("depth") {
				if depth < 1 {
					return lerrors.ValidationError("--depth must be at least 1", nil)
				}
				opts.MaxDepth = depth
			}
			dir, err := a.workDir()
			if err != nil {
				return err
			}
			ws, err := workspace.Load(cmd.Context(), dir, opts)
			if err != nil {
				return err
			}
			return a.runScan(cmd, ws, dryRun)
		},
	}

	cmd.Flags().IntVarP(&depth, "depth", "d", 0, "Maximum directory depth to scan")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be layered without writing")

	return cmd
}

func (a *app) runScan(cmd *cobra.Command, ws *workspace.Workspace, dryRun bool) error {
	out := a.output(cmd)
	_, _ = fmt.Fprintln(out.Out(), "Scanning for context files...")
	out.Newline()

	d, err := ws.Dashboard(cmd.Context())
	if err != nil {
		return err
	}

	display := func(e classify.Entry, _ int) string { return workspace.Display(e.Candidate) }

	exposed := append(lo.Map(d.Exposed, display), lo.Map(d.Tracked, display)...)
	if len(exposed) > 0 {
		out.Warning("Exposed (tracked by git):")
		for _, e := range append(d.Exposed, d.Tracked...) {
			out.Status(output.IconWarn, workspace.Display(e.Candidate))
			out.Hint(ui.UntrackCommand(e.Candidate.Path, e.Candidate.IsDir))
		}
		out.Newline()
	}
	if len(d.Layered) > 0 {
		out.List("Already layered:", lo.Map(d.Layered, display))
		out.Newline()
	}
	if len(d.Ignored) > 0 {
		out.List("Already ignored by Git:", lo.Map(d.Ignored, display))
		out.Newline()
	}

	discovered := lo.Map(d.Discovered, display)
	if len(discovered) == 0 {
		out.Status("", "No new context files found.")
		if len(exposed) > 0 {
			return exitWith(ExitProblems)
		}
		return exitWith(ExitNothing)
	}

	if dryRun || !ui.Interactive(cmd.InOrStdin(), cmd.OutOrStdout()) {
		_, _ = fmt.Fprintf(out.Out(), "Found %d new context files:\n", len(discovered))
		for _, p := range discovered {
			out.Status(output.IconAdd, p)
		}
		if dryRun {
			out.Newline()
			dryRunNotice(out)
			return nil
		}
		return lerrors.ValidationError("interactive selection requires a terminal", nil).
			WithSuggestion("Run 'layer add <paths...>' to layer them")
	}

	selected, ok, err := a.pick(cmd, "Select files to add to your local layer",
		ui.BuildTree(discovered, groupNote(ws)), discovered)
	if err != nil {
		return err
	}
	if !ok || len(selected) == 0 {
		out.Status("", "No files selected.")
		return exitWith(ExitNothing)
	}

	added, err := a.addEntries(cmd, ws, selected, false)
	if err != nil {
		return err
	}
	if added == 0 {
		return exitWith(ExitNothing)
	}
	return nil
}
