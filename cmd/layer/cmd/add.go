package cmd

import (
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/classify"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/output"
	"github.com/Aman-CERP/layer/internal/ui"
	"github.com/Aman-CERP/layer/internal/workspace"
)

func newAddCmd(a *app) *cobra.Command {
	var (
		interactive bool
		dryRun      bool
	)

	cmd := &cobra.Command{
		Use:   "add [paths...]",
		Short: "Hide files from git in this clone only",
		Long: `Add paths to the layer-managed block of .git/info/exclude.

Paths are made relative to the repository root and existing directories get
a trailing '/'. Glob patterns such as '.aider*' are written as typed.
A file that git already tracks stays visible until it is untracked with
'git rm --cached'.`,
		Example: `  # Layer a file and a directory
  layer add CLAUDE.md .claude

  # Pick from discovered context files
  layer add -i

  # Preview
  layer add --dry-run AGENTS.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := a.load(cmd.Context())
			if err != nil {
				return err
			}
			if interactive || (len(args) == 0 && ui.Interactive(cmd.InOrStdin(), cmd.OutOrStdout())) {
				return a.addInteractive(cmd, ws, dryRun)
			}
			if len(args) == 0 {
				return lerrors.ValidationError("no paths provided", nil).
					WithSuggestion("Use 'layer add <paths...>' or run 'layer add -i' in a terminal")
			}
			added, err := a.addEntries(cmd, ws, args, dryRun)
			if err != nil {
				return err
			}
			if added == 0 {
				return exitWith(ExitNothing)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick paths from discovered context files")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be layered without writing")

	return cmd
}

// addEntries normalizes raw paths and appends the new ones to the managed
// block. It returns how many entries were (or would be) added.
func (a *app) addEntries(cmd *cobra.Command, ws *workspace.Workspace, raw []string, dryRun bool) (int, error) {
	out := a.output(cmd)

	entries := make([]string, 0, len(raw))
	for _, r := range raw {
		e, err := exclude.NormalizeEntry(ws.Root(), r)
		if err != nil {
			return 0, err
		}
		entries = append(entries, e)
	}

	var fresh []string
	for _, e := range lo.Uniq(entries) {
		if ws.Exclude.Has(e) {
			out.Statusf(output.IconSkip, "'%s' already layered", e)
			continue
		}
		if trackedEntry(ws, e) {
			out.Warningf("'%s' is tracked by git, layering won't hide it until it is untracked", e)
			out.Hint(ui.UntrackCommand(strings.TrimSuffix(e, "/"), strings.HasSuffix(e, "/")))
		}
		fresh = append(fresh, e)
	}

	if dryRun {
		for _, e := range fresh {
			out.Statusf(output.IconDryRun, "Would layer '%s'", e)
		}
		dryRunNotice(out)
		return len(fresh), nil
	}
	if len(fresh) == 0 {
		return 0, nil
	}

	var added []string
	_, err := exclude.Update(cmd.Context(), ws.Exclude.Path(), func(f *exclude.File) (bool, error) {
		added = f.Add(fresh...)
		return len(added) > 0, nil
	})
	if err != nil {
		return 0, err
	}
	for _, e := range added {
		out.Successf("Layered '%s'", e)
	}
	return len(added), nil
}

// trackedEntry reports whether a literal entry names a tracked file or a
// directory holding tracked files. Globs and negations are not checked.
func trackedEntry(ws *workspace.Workspace, entry string) bool {
	if strings.HasPrefix(entry, "!") || strings.ContainsAny(entry, "*?[") {
		return false
	}
	isDir := strings.HasSuffix(entry, "/")
	return ws.Tracked.Tracked(strings.TrimSuffix(entry, "/"), isDir)
}

func (a *app) addInteractive(cmd *cobra.Command, ws *workspace.Workspace, dryRun bool) error {
	d, err := ws.Dashboard(cmd.Context())
	if err != nil {
		return err
	}
	paths := lo.Map(d.Discovered, func(e classify.Entry, _ int) string { return workspace.Display(e.Candidate) })
	if len(paths) == 0 {
		a.output(cmd).Status("", "No context files found.")
		return exitWith(ExitNothing)
	}

	selected, ok, err := a.pick(cmd, "Select files to add to your local layer",
		ui.BuildTree(paths, groupNote(ws)), nil)
	if err != nil {
		return err
	}
	if !ok || len(selected) == 0 {
		a.output(cmd).Status("", "No files selected.")
		return exitWith(ExitNothing)
	}

	added, err := a.addEntries(cmd, ws, selected, dryRun)
	if err != nil {
		return err
	}
	if added == 0 {
		return exitWith(ExitNothing)
	}
	return nil
}

// groupNote annotates picker rows with the tool a path belongs to.
func groupNote(ws *workspace.Workspace) func(string) string {
	return func(p string) string {
		if e, ok := ws.Catalog.Match(strings.TrimSuffix(p, "/"), strings.HasSuffix(p, "/")); ok {
			return e.Group
		}
		return ""
	}
}
