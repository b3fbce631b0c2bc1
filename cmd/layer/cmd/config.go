package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/layer/configs"
	"github.com/Aman-CERP/layer/internal/config"
	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/output"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage layer configuration",
		Long: `Manage layer's configuration files.

Configuration precedence (lowest to highest):
  1. Hardcoded defaults
  2. User config (~/.config/layer/config.yaml)
  3. Project config (.layer.yaml at the repository root)
  4. Environment variables (LAYER_*)`,
		Example: `  # Create the user config from the template
  layer config init

  # Show the effective configuration
  layer config show`,
	}

	cmd.AddCommand(newConfigInitCmd(a), newConfigShowCmd(a), newConfigPathCmd())
	return cmd
}

func newConfigInitCmd(a *app) *cobra.Command {
	var force, project bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file",
		Long: `Create the user configuration file from a template, or .layer.yaml at
the repository root with --project.

With --force an existing user config is backed up and upgraded: options
added since it was written get their defaults and your settings stay.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if project {
				return a.runConfigInitProject(cmd, force)
			}
			return a.runConfigInit(cmd, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Upgrade an existing configuration")
	cmd.Flags().BoolVar(&project, "project", false, "Create .layer.yaml in the repository instead")

	return cmd
}

func (a *app) runConfigInit(cmd *cobra.Command, force bool) error {
	out := a.output(cmd)
	path := config.GetUserConfigPath()

	if config.UserConfigExists() {
		if !force {
			out.Warningf("User configuration already exists at %s", path)
			out.Hint("Use --force to upgrade it with new defaults (your settings are kept)")
			return exitWith(ExitNothing)
		}
		return a.runConfigUpgrade(cmd, out, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot create %s", filepath.Dir(path)), err)
	}
	if err := os.WriteFile(path, []byte(configs.UserConfigTemplate), 0o644); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot write %s", path), err)
	}

	out.Successf("Created user configuration at %s", path)
	out.Hint("Run 'layer config show' to check the effective settings")
	return nil
}

func (a *app) runConfigUpgrade(cmd *cobra.Command, out *output.Writer, path string) error {
	cfg, err := a.config(cmd.Context())
	if err != nil {
		return err
	}
	backupPath, err := config.BackupUserConfig(cfg.Backup.MaxConfigBackups)
	if err != nil {
		return err
	}

	existing, err := config.LoadUserConfig()
	if err != nil {
		return err
	}
	if existing == nil {
		return lerrors.ConfigError("user configuration disappeared during upgrade", nil)
	}
	added := existing.MergeNewDefaults()
	if err := existing.WriteYAML(path); err != nil {
		return err
	}

	out.Successf("Configuration upgraded at %s", path)
	out.Statusf("", "Backup: %s", backupPath)
	if len(added) == 0 {
		out.Status("", "Your configuration is already up to date.")
		return nil
	}
	out.List("  New options added with defaults:", added)
	return nil
}

func (a *app) runConfigInitProject(cmd *cobra.Command, force bool) error {
	repo, err := a.repo(cmd.Context())
	if err != nil {
		return err
	}
	out := a.output(cmd)

	if existing := config.ProjectConfigPath(repo.Root); existing != "" && !force {
		out.Warningf("Project configuration already exists at %s", existing)
		out.Hint("Use --force to overwrite it")
		return exitWith(ExitNothing)
	}

	path := filepath.Join(repo.Root, ".layer.yaml")
	if err := os.WriteFile(path, []byte(configs.ProjectConfigTemplate), 0o644); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot write %s", path), err)
	}
	out.Successf("Created project configuration at %s", path)
	out.Hint("Run 'layer add .layer.yaml' to keep it out of git")
	return nil
}

func newConfigShowCmd(a *app) *cobra.Command {
	var (
		jsonOutput bool
		source     string
	)

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, desc, err := a.configFromSource(cmd, source)
			if err != nil {
				return err
			}
			if cfg == nil {
				a.output(cmd).Warningf("No %s configuration file found", source)
				return exitWith(ExitNothing)
			}

			if jsonOutput {
				return encodeJSON(cmd, cfg)
			}
			data, err := yaml.Marshal(cfg)
			if err != nil {
				return lerrors.InternalError("failed to marshal config", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "# source: %s\n%s", desc, data)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().StringVar(&source, "source", "merged", "Config source: merged, user, project, defaults")

	return cmd
}

// configFromSource returns the configuration from one source. A nil config
// with no error means the source file does not exist.
func (a *app) configFromSource(cmd *cobra.Command, source string) (*config.Config, string, error) {
	switch source {
	case "merged":
		cfg, err := a.config(cmd.Context())
		return cfg, "merged (defaults + user + project + env)", err
	case "user":
		cfg, err := config.LoadUserConfig()
		return cfg, "user (" + config.GetUserConfigPath() + ")", err
	case "project":
		repo, err := a.repo(cmd.Context())
		if err != nil {
			return nil, "", err
		}
		path := config.ProjectConfigPath(repo.Root)
		if path == "" {
			return nil, "", nil
		}
		cfg := config.NewConfig()
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, "", lerrors.IOError(fmt.Sprintf("cannot read %s", path), err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", lerrors.ConfigError(fmt.Sprintf("cannot parse %s", path), err)
		}
		return cfg, "project (" + path + ")", nil
	case "defaults":
		return config.NewConfig(), "defaults", nil
	}
	return nil, "", lerrors.ValidationError(fmt.Sprintf("invalid source '%s'", source), nil).
		WithSuggestion("Use one of: merged, user, project, defaults")
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the user config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), config.GetUserConfigPath())
			return err
		},
	}
}
