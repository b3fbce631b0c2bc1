package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

const defaultEditor = "vi"

func newEditCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "edit",
		Short: "Open .git/info/exclude in your editor",
		Long: `Open .git/info/exclude in $VISUAL, $EDITOR, the 'editor' config
setting or vi, in that order. Keep layer's entries between the
'# >>> layer' and '# <<< layer' markers so layer can manage them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.repo(cmd.Context())
			if err != nil {
				return err
			}
			cfg, err := a.config(cmd.Context())
			if err != nil {
				return err
			}

			path := repo.ExcludePath()
			if err := ensureFile(path); err != nil {
				return err
			}

			editor := resolveEditor(cfg.Editor)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Opening .git/info/exclude in %s...\n", editor)
			return runEditor(cmd, editor, path)
		},
	}
}

// resolveEditor picks $VISUAL, then $EDITOR, then the configured editor.
func resolveEditor(configured string) string {
	for _, e := range []string{os.Getenv("VISUAL"), os.Getenv("EDITOR"), configured} {
		if strings.TrimSpace(e) != "" {
			return strings.TrimSpace(e)
		}
	}
	return defaultEditor
}

func runEditor(cmd *cobra.Command, editor, path string) error {
	args := strings.Fields(editor)
	c := exec.CommandContext(commandContext(cmd), args[0], append(args[1:], path)...)
	c.Stdin = cmd.InOrStdin()
	c.Stdout = cmd.OutOrStdout()
	c.Stderr = cmd.ErrOrStderr()
	if err := c.Run(); err != nil {
		return lerrors.New(lerrors.ErrCodeEditorFailed, fmt.Sprintf("editor '%s' failed", editor), err).
			WithSuggestion("Set $EDITOR or the 'editor' config option to a working editor")
	}
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func ensureFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot create %s", filepath.Dir(path)), err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot open %s", path), err)
	}
	return f.Close()
}
