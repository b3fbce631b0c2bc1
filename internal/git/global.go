package git

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// GlobalExcludesPath returns the user's global excludes file: the value of
// core.excludesFile as git sees it from dir, otherwise
// $XDG_CONFIG_HOME/git/ignore (~/.config/git/ignore). A leading ~ is
// expanded. An empty dir uses the working directory. System and repository
// config are consulted as git itself does.
func GlobalExcludesPath(ctx context.Context, runner Runner, dir string) string {
	if runner == nil {
		runner = ExecRunner{}
	}

	home, _ := os.UserHomeDir()
	if dir == "" {
		dir, _ = os.Getwd()
	}

	out, err := runner.Run(ctx, dir, "config", "--get", "core.excludesFile")
	switch {
	case err == nil:
		if p := strings.TrimSpace(string(out)); p != "" {
			return expandHome(p, home)
		}
	case exitCode(err) != 1:
		// Exit 1 only means the key is unset.
		slog.Debug("reading core.excludesFile failed", slog.String("error", err.Error()))
	}
	return defaultGlobalPath(home)
}

// GlobalExcludesPath returns the global excludes file for this repository's
// git configuration.
func (r *Repo) GlobalExcludesPath(ctx context.Context) string {
	return GlobalExcludesPath(ctx, r.runner, r.Root)
}

func defaultGlobalPath(home string) string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "git", "ignore")
	}
	return filepath.Join(home, ".config", "git", "ignore")
}

func expandHome(p, home string) string {
	if p == "~" {
		return home
	}
	if strings.HasPrefix(p, "~/") {
		return filepath.Join(home, p[2:])
	}
	return p
}
