package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/spf13/cobra"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/logging"
)

type logsOptions struct {
	follow  bool
	lines   int
	level   string
	filter  string
	logFile string
}

func newLogsCmd(a *app) *cobra.Command {
	var opts logsOptions

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View layer's own log file",
		Long: `Show recent records from ~/.layer/logs/layer.log, or follow new ones.

Examples:
  layer logs                   # last 50 records
  layer logs -n 200            # last 200 records
  layer logs -f                # follow like tail -f
  layer logs --level warn      # warnings and errors only
  layer logs --filter exclude  # records matching a regular expression`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runLogs(cmd, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.follow, "follow", "f", false, "Follow log output (like tail -f)")
	cmd.Flags().IntVarP(&opts.lines, "lines", "n", 50, "Number of lines to show")
	cmd.Flags().StringVar(&opts.level, "level", "", "Minimum level (debug|info|warn|error)")
	cmd.Flags().StringVar(&opts.filter, "filter", "", "Only show records matching this regular expression")
	cmd.Flags().StringVar(&opts.logFile, "file", "", "Read this log file instead of the default")

	return cmd
}

func (a *app) runLogs(cmd *cobra.Command, opts logsOptions) error {
	if opts.lines < 1 {
		return lerrors.ValidationError("--lines must be at least 1", nil)
	}
	var pattern *regexp.Regexp
	if opts.filter != "" {
		var err error
		if pattern, err = regexp.Compile(opts.filter); err != nil {
			return lerrors.ValidationError("invalid --filter pattern", err)
		}
	}

	path := opts.logFile
	if path == "" {
		path = logging.DefaultLogPath()
	}
	out := a.output(cmd)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		out.Warningf("No log file at %s yet.", path)
		return exitWith(ExitNothing)
	}

	viewer := logging.NewViewer(logging.ViewerConfig{
		Level:   opts.level,
		Pattern: pattern,
		NoColor: !a.useColor(cmd),
	}, cmd.OutOrStdout())

	if opts.follow {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Following %s (Ctrl+C to stop)\n", path)
		return followLogs(commandContext(cmd), cmd, viewer, path)
	}

	entries, err := viewer.Tail(path, opts.lines)
	if err != nil {
		return lerrors.IOError("cannot read the log file", err)
	}
	viewer.Print(entries)
	return nil
}

func followLogs(ctx context.Context, cmd *cobra.Command, viewer *logging.Viewer, path string) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries := make(chan logging.LogEntry, 100)
	errCh := make(chan error, 1)
	go func() {
		errCh <- viewer.Follow(ctx, path, entries)
	}()

	for {
		select {
		case entry := <-entries:
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), viewer.FormatEntry(entry))
		case err := <-errCh:
			if err != nil {
				return lerrors.IOError("cannot follow the log file", err)
			}
			return nil
		}
	}
}
