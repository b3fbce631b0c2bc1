package cmd

import (
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/logging"
	layermcp "github.com/Aman-CERP/layer/internal/mcp"
)

func newMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve layer status over MCP on stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so AI tools can ask
which context files are layered, exposed or discovered, and why a path is
ignored. Tools: layer_status, layer_why, layer_patterns.

Nothing but JSON-RPC is written to stdout. Logs go to the log file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			level := "info"
			if cfg, err := a.config(ctx); err == nil {
				level = cfg.Log.Level
			}
			if a.debug {
				level = "debug"
			}
			cleanup, err := logging.SetupServerMode(level)
			if err != nil {
				return err
			}
			defer cleanup()

			dir, err := a.workDir()
			if err != nil {
				return err
			}
			opts, err := a.workspaceOptions(ctx)
			if err != nil {
				return err
			}
			srv, err := layermcp.NewServer(ctx, dir, opts)
			if err != nil {
				slog.Error("mcp server failed to start", slog.String("error", err.Error()))
				return err
			}

			slog.Info("mcp server starting", slog.String("root", srv.Root()))
			err = srv.Serve(ctx)
			if ctx.Err() != nil {
				return nil
			}
			return err
		},
	}
}
