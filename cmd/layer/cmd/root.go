// Package cmd provides the CLI commands for layer.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/layer/internal/config"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/git"
	"github.com/Aman-CERP/layer/internal/logging"
	"github.com/Aman-CERP/layer/internal/output"
	"github.com/Aman-CERP/layer/internal/ui"
	"github.com/Aman-CERP/layer/internal/workspace"
	"github.com/Aman-CERP/layer/pkg/version"
)

// Exit codes shared by every command.
const (
	ExitOK       = 0
	ExitProblems = 1
	ExitNothing  = 2
)

// ExitError carries a non-zero exit status without an error message. The
// command has already told the user what happened.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// exitWith returns nil for ExitOK and an ExitError otherwise.
func exitWith(code int) error {
	if code == ExitOK {
		return nil
	}
	return &ExitError{Code: code}
}

// ExitCode maps the result of Execute to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitProblems
}

// app holds the state shared by all commands of one invocation.
type app struct {
	debug   bool
	noColor bool
	dir     string

	// gitOpts are passed to every repository lookup. Tests use them to
	// replace the git binary.
	gitOpts []git.Option

	cfg            *config.Config
	loggingCleanup func()
}

// NewRootCmd creates the root command for the layer CLI.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&app{})
}

func newRootCmd(a *app) *cobra.Command {
	var statusOpts statusOptions

	cmd := &cobra.Command{
		Use:   "layer",
		Short: "Keep AI context files out of git without touching .gitignore",
		Long: `layer hides AI assistant context files (CLAUDE.md, .cursorrules,
.claude/ and friends) from git using .git/info/exclude, a per-clone ignore
file that is never committed.

Run 'layer' with no arguments to see what is layered, what is still exposed
and which context files were discovered.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStatus(cmd, statusOpts)
		},
	}

	cmd.SetVersionTemplate("layer version {{.Version}}\n")

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging to stderr and ~/.layer/logs/")
	cmd.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable coloured output")
	cmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", "", "Run as if layer was started in this directory")
	statusOpts.bind(cmd)

	cmd.PersistentPreRunE = a.setup

	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newRmCmd(a))
	cmd.AddCommand(newLsCmd(a))
	cmd.AddCommand(newScanCmd(a))
	cmd.AddCommand(newPatternsCmd(a))
	cmd.AddCommand(newWhyCmd(a))
	cmd.AddCommand(newDoctorCmd(a))
	cmd.AddCommand(newCleanCmd(a))
	cmd.AddCommand(newClearCmd(a))
	cmd.AddCommand(newOffCmd(a))
	cmd.AddCommand(newOnCmd(a))
	cmd.AddCommand(newBackupCmd(a))
	cmd.AddCommand(newRestoreCmd(a))
	cmd.AddCommand(newGlobalCmd(a))
	cmd.AddCommand(newEditCmd(a))
	cmd.AddCommand(newConfigCmd(a))
	cmd.AddCommand(newMCPCmd(a))
	cmd.AddCommand(newLogsCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// setup loads configuration and starts logging. The mcp command sets up
// its own file-only logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "mcp" {
		return nil
	}

	level := "info"
	if cfg, err := a.config(cmd.Context()); err == nil {
		level = cfg.Log.Level
		a.noColor = a.noColor || cfg.UI.NoColor
	}

	logCfg := logging.DefaultConfig()
	logCfg.Level = level
	if a.debug {
		logCfg = logging.DebugConfig()
	}
	a.loggingCleanup = logging.SetupDefault(logCfg)

	slog.Debug("command started",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", version.Version))
	return nil
}

func (a *app) close() {
	if a.loggingCleanup != nil {
		a.loggingCleanup()
		a.loggingCleanup = nil
	}
}

// Execute runs the root command and reports errors on stderr.
func Execute() error {
	a := &app{}
	defer a.close()
	return execute(newRootCmd(a), os.Stderr)
}

func execute(cmd *cobra.Command, stderr io.Writer) error {
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		slog.Error("command failed", slog.Any("error", lerrors.FormatForLog(err)))
		_, _ = fmt.Fprint(stderr, lerrors.FormatForCLI(err))
	}
	return err
}

// workDir is the directory commands run in: -C, or the current directory.
func (a *app) workDir() (string, error) {
	if a.dir != "" {
		return a.dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", lerrors.IOError("cannot determine the current directory", err)
	}
	return wd, nil
}

// config loads the effective configuration once. The project file is read
// from the repository root when there is one.
func (a *app) config(ctx context.Context) (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	dir, err := a.workDir()
	if err != nil {
		return nil, err
	}
	root := ""
	if repo, err := git.Discover(ctx, dir, a.gitOpts...); err == nil {
		root = repo.Root
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, err
	}
	a.cfg = cfg
	return cfg, nil
}

// workspaceOptions builds load options from the configuration.
func (a *app) workspaceOptions(ctx context.Context) (workspace.Options, error) {
	cfg, err := a.config(ctx)
	if err != nil {
		return workspace.Options{}, err
	}
	return workspace.Options{
		MaxDepth:     cfg.Scan.MaxDepth,
		CatalogExtra: cfg.Catalog.Extra,
		SkipDirs:     cfg.Scan.SkipDirs,
		GitOptions:   a.gitOpts,
	}, nil
}

// load loads the workspace for the working directory.
func (a *app) load(ctx context.Context) (*workspace.Workspace, error) {
	opts, err := a.workspaceOptions(ctx)
	if err != nil {
		return nil, err
	}
	dir, err := a.workDir()
	if err != nil {
		return nil, err
	}
	return workspace.Load(ctx, dir, opts)
}

// repo discovers the repository without loading the whole workspace.
func (a *app) repo(ctx context.Context) (*git.Repo, error) {
	dir, err := a.workDir()
	if err != nil {
		return nil, err
	}
	return git.Discover(ctx, dir, a.gitOpts...)
}

func (a *app) output(cmd *cobra.Command) *output.Writer {
	return output.NewWithColor(cmd.OutOrStdout(), a.useColor(cmd))
}

func (a *app) useColor(cmd *cobra.Command) bool {
	return ui.UseColor(cmd.OutOrStdout(), a.noColor)
}

func (a *app) styles(cmd *cobra.Command) ui.Styles {
	return ui.GetStyles(!a.useColor(cmd))
}

// confirm asks before a destructive change. assumeYes skips the prompt.
func (a *app) confirm(cmd *cobra.Command, prompt string, assumeYes bool) (bool, error) {
	if assumeYes {
		return true, nil
	}
	return ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt, false)
}

// pick runs the tree picker on the command's terminal.
func (a *app) pick(cmd *cobra.Command, title string, nodes []ui.Node, preselect []string) ([]string, bool, error) {
	selected, ok, err := ui.Pick(cmd.Context(), nodes, ui.PickerOptions{
		Title:     title,
		Preselect: preselect,
		In:        cmd.InOrStdin(),
		Out:       cmd.OutOrStdout(),
		NoColor:   !a.useColor(cmd),
	})
	if errors.Is(err, ui.ErrNotInteractive) {
		return nil, false, lerrors.ValidationError("interactive mode requires a terminal", err)
	}
	return selected, ok, err
}

func dryRunNotice(out *output.Writer) {
	out.Status("", "(dry run, no changes made)")
}
