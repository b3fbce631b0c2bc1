package cmd

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/scanner"
	"github.com/Aman-CERP/layer/internal/ui"
	"github.com/Aman-CERP/layer/internal/watcher"
	"github.com/Aman-CERP/layer/internal/workspace"
)

type statusOptions struct {
	json  bool
	watch bool
}

func (o *statusOptions) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.json, "json", false, "Output as JSON")
	cmd.Flags().BoolVarP(&o.watch, "watch", "w", false, "Redraw when files or ignore rules change")
}

func newStatusCmd(a *app) *cobra.Command {
	var opts statusOptions

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show layered, exposed and discovered context files",
		Long: `Show the state of every AI context file in the repository:

  Layered     hidden by .git/info/exclude
  Exposed     layered but still tracked by git (needs git rm --cached)
  Discovered  known context files that are not hidden yet
  Stale       exclude entries whose file no longer exists

Exits 1 when anything is exposed or stale.`,
		Example: `  # Dashboard
  layer status

  # Machine-readable
  layer status --json

  # Keep the dashboard up to date while you work
  layer status --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStatus(cmd, opts)
		},
	}
	opts.bind(cmd)

	return cmd
}

func (a *app) runStatus(cmd *cobra.Command, opts statusOptions) error {
	if opts.watch {
		if opts.json {
			return lerrors.ValidationError("--watch cannot be combined with --json", nil)
		}
		return a.watchStatus(cmd)
	}

	ws, err := a.load(cmd.Context())
	if err != nil {
		return err
	}
	d, err := ws.Dashboard(cmd.Context())
	if err != nil {
		return err
	}

	if opts.json {
		if err := encodeJSON(cmd, d); err != nil {
			return err
		}
	} else {
		ui.NewDashboardRenderer(cmd.OutOrStdout(), !a.useColor(cmd)).Render(d)
	}

	if d.Problems() {
		return exitWith(ExitProblems)
	}
	return nil
}

const clearScreen = "\033[H\033[2J"

// watchStatus redraws the dashboard on every debounced batch of changes
// until interrupted.
func (a *app) watchStatus(cmd *cobra.Command) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ws, err := a.load(ctx)
	if err != nil {
		return err
	}
	opts, err := a.workspaceOptions(ctx)
	if err != nil {
		return err
	}
	sc, err := scanner.New()
	if err != nil {
		return err
	}
	opts.Scanner = sc

	w, err := watcher.New(watcher.Targets{
		Root:       ws.Root(),
		GitDir:     ws.Repo.GitDir,
		GlobalPath: ws.GlobalPath,
	}, watcher.Options{MaxDepth: opts.MaxDepth, SkipDirs: opts.SkipDirs})
	if err != nil {
		return err
	}
	defer func() { _ = w.Stop() }()

	go func() {
		if err := w.Start(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("watcher stopped", slog.String("error", err.Error()))
		}
	}()

	redraw := func() error {
		ws, err := workspace.Load(ctx, ws.Root(), opts)
		if err != nil {
			return err
		}
		d, err := ws.Dashboard(ctx)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if ui.IsTTY(out) {
			_, _ = fmt.Fprint(out, clearScreen)
		}
		ui.NewDashboardRenderer(out, !a.useColor(cmd)).Render(d)
		_, _ = fmt.Fprintf(out, "\n%s\n", a.styles(cmd).Dim.Render("Watching for changes. Press Ctrl+C to stop."))
		return nil
	}

	if err := redraw(); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case batch, ok := <-w.Events():
			if !ok {
				return nil
			}
			if watcher.RulesChanged(batch) {
				sc.InvalidateCache()
			}
			slog.Debug("redrawing status", slog.Int("events", len(batch)))
			if err := redraw(); err != nil {
				return err
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			slog.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
