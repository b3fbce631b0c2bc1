package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/backup"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/exclude"
	"github.com/Aman-CERP/layer/internal/output"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Save the layered entries outside the repository",
		Long: `Copy the layer-managed entries of this repository to the backup
directory (backup.dir, default ~/.layer-backups) so they can be
restored after a fresh clone. The backup is named after the origin
remote, or the directory name when there is no remote.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.backupStore(cmd)
			if err != nil {
				return err
			}
			repo, err := a.repo(cmd.Context())
			if err != nil {
				return err
			}
			f, err := exclude.Load(repo.ExcludePath())
			if err != nil {
				return err
			}

			out := a.output(cmd)
			entries := f.Entries()
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(out.Out(), "No layered entries to back up.")
				return exitWith(ExitNothing)
			}

			b := &backup.Backup{
				Repo:    repo.Name(cmd.Context()),
				Source:  repo.RemoteURL(cmd.Context(), "origin"),
				Entries: entries,
			}
			existed, err := store.Save(b)
			if err != nil {
				return err
			}
			if existed {
				out.Successf("Updated backup for '%s' at %s", b.Repo, b.Path)
			} else {
				out.Successf("Backed up %s to %s", plural(len(entries), "entry", "entries"), b.Path)
			}
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	var (
		list      bool
		assumeYes bool
		dryRun    bool
	)

	cmd := &cobra.Command{
		Use:   "restore [repo]",
		Short: "Restore layered entries from a backup",
		Long: `Add the entries saved by 'layer backup' back into .git/info/exclude.
Entries already present are left alone. The backup of the current
repository is used unless a name is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.backupStore(cmd)
			if err != nil {
				return err
			}
			if list {
				return a.listBackups(cmd, store)
			}

			repo, err := a.repo(cmd.Context())
			if err != nil {
				return err
			}
			name := repo.Name(cmd.Context())
			if len(args) == 1 {
				name = args[0]
			}

			out := a.output(cmd)
			b, err := store.Load(name)
			if lerrors.GetCode(err) == lerrors.ErrCodeBackupNotFound {
				_, _ = fmt.Fprintf(out.Out(), "No backup found for '%s'. Run 'layer backup' to create one.\n", backup.SanitizeName(name))
				return exitWith(ExitNothing)
			}
			if err != nil {
				return err
			}

			f, err := exclude.Load(repo.ExcludePath())
			if err != nil {
				return err
			}
			missing := b.Missing(f.Entries())

			_, _ = fmt.Fprintf(out.Out(), "Found backup for '%s' (%s, saved %s)\n",
				b.Repo, plural(len(b.Entries), "entry", "entries"), b.Age())
			if len(missing) == 0 {
				_, _ = fmt.Fprintln(out.Out(), "All backup entries are already present in .git/info/exclude.")
				return exitWith(ExitNothing)
			}
			for _, e := range missing {
				out.Status(output.IconAdd, e)
			}
			if dryRun {
				dryRunNotice(out)
				return nil
			}

			ok, err := a.confirm(cmd, "Restore these entries?", assumeYes)
			if err != nil {
				return err
			}
			if !ok {
				_, _ = fmt.Fprintln(out.Out(), "No changes made.")
				return exitWith(ExitNothing)
			}

			var added []string
			if _, err := exclude.Update(cmd.Context(), f.Path(), func(f *exclude.File) (bool, error) {
				added = f.Add(missing...)
				return len(added) > 0, nil
			}); err != nil {
				return err
			}
			out.Successf("Restored %s.", plural(len(added), "entry", "entries"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "List available backups")
	cmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be restored without writing")

	return cmd
}

func (a *app) listBackups(cmd *cobra.Command, store *backup.Store) error {
	backups, err := store.List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(backups) == 0 {
		_, _ = fmt.Fprintf(out, "No backups found in %s.\n", store.Dir())
		return exitWith(ExitNothing)
	}
	_, _ = fmt.Fprintln(out, "Available backups:")
	for _, b := range backups {
		_, _ = fmt.Fprintf(out, "  %s\n", b.Summary())
	}
	return nil
}

func (a *app) backupStore(cmd *cobra.Command) (*backup.Store, error) {
	cfg, err := a.config(cmd.Context())
	if err != nil {
		return nil, err
	}
	return backup.NewStore(cfg.Backup.Dir), nil
}
