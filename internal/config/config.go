// Package config loads layer's settings from defaults, the user config
// file, the project config file and LAYER_* environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

const (
	// CurrentVersion is the config schema version written by config init.
	CurrentVersion = 1

	// DefaultMaxDepth is how deep scans and status walk the tree.
	DefaultMaxDepth = 2

	// MaxDepthLimit bounds scan.max_depth.
	MaxDepthLimit = 16
)

// Config represents the complete layer configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	Scan    ScanConfig    `yaml:"scan" json:"scan"`
	Backup  BackupConfig  `yaml:"backup" json:"backup"`
	Editor  string        `yaml:"editor,omitempty" json:"editor,omitempty"`
	Log     LogConfig     `yaml:"log" json:"log"`
	UI      UIConfig      `yaml:"ui" json:"ui"`
}

// CatalogConfig extends the built-in list of known context paths.
type CatalogConfig struct {
	// Extra patterns are offered by status and scan alongside the built-ins.
	Extra []string `yaml:"extra" json:"extra"`
}

// ScanConfig configures the tree walk.
type ScanConfig struct {
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// SkipDirs are directory names never descended into.
	SkipDirs []string `yaml:"skip_dirs" json:"skip_dirs"`
}

// BackupConfig configures layer backup and config init.
type BackupConfig struct {
	// Dir holds one backup file per repository. A leading ~ is expanded.
	Dir string `yaml:"dir" json:"dir"`
	// MaxConfigBackups is how many .bak copies config init --force keeps.
	MaxConfigBackups int `yaml:"max_config_backups" json:"max_config_backups"`
}

// LogConfig configures the log file.
type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

// UIConfig configures terminal output.
type UIConfig struct {
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// defaultSkipDirs are never worth walking into.
var defaultSkipDirs = []string{"node_modules", "vendor", "__pycache__", ".venv"}

// NewConfig creates a new Config with sensible defaults.
func NewConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Catalog: CatalogConfig{Extra: []string{}},
		Scan: ScanConfig{
			MaxDepth: DefaultMaxDepth,
			SkipDirs: append([]string(nil), defaultSkipDirs...),
		},
		Backup: BackupConfig{
			Dir:              defaultBackupDir(),
			MaxConfigBackups: MaxBackups,
		},
		Log: LogConfig{Level: "info"},
	}
}

func defaultBackupDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".layer-backups")
	}
	return filepath.Join(home, ".layer-backups")
}

// GetUserConfigPath returns the path to the user configuration file:
//   - $XDG_CONFIG_HOME/layer/config.yaml (if XDG_CONFIG_HOME is set)
//   - ~/.config/layer/config.yaml (default)
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "layer", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "layer", "config.yaml")
	}
	return filepath.Join(home, ".config", "layer", "config.yaml")
}

// GetUserConfigDir returns the directory containing the user configuration.
func GetUserConfigDir() string {
	return filepath.Dir(GetUserConfigPath())
}

// UserConfigExists returns true if the user configuration file exists.
func UserConfigExists() bool {
	return fileExists(GetUserConfigPath())
}

// LoadUserConfig loads the user configuration file.
// Returns nil config and nil error if the file doesn't exist.
func LoadUserConfig() (*Config, error) {
	configPath := GetUserConfigPath()
	if !fileExists(configPath) {
		return nil, nil
	}

	var cfg Config
	if err := readYAML(configPath, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Load loads configuration for the repository at dir. Sources are applied
// in order of increasing precedence:
//  1. Hardcoded defaults
//  2. User config (~/.config/layer/config.yaml)
//  3. Project config (.layer.yaml in dir)
//  4. Environment variables (LAYER_*)
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	userCfg, err := LoadUserConfig()
	if err != nil {
		return nil, err
	}
	if userCfg != nil {
		cfg.mergeWith(userCfg)
	}

	if dir != "" {
		if err := cfg.loadFromFile(dir); err != nil {
			return nil, err
		}
	}

	cfg.applyEnvOverrides()
	cfg.Backup.Dir = ExpandHome(cfg.Backup.Dir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if there
// is none. .layer.yaml takes precedence over .layer.yml.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{".layer.yaml", ".layer.yml"} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	var parsed Config
	if err := readYAML(path, &parsed); err != nil {
		return err
	}
	c.mergeWith(&parsed)
	return nil
}

func readYAML(path string, into *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return lerrors.New(lerrors.ErrCodeConfigPermission,
			fmt.Sprintf("cannot read config file %s", path), err)
	}
	if err := yaml.Unmarshal(data, into); err != nil {
		return lerrors.ConfigError(fmt.Sprintf("cannot parse config file %s", path), err).
			WithDetail("path", path).
			WithSuggestion("Fix the YAML syntax or run 'layer config init --force'")
	}
	return nil
}

// mergeWith merges non-zero values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}
	if len(other.Catalog.Extra) > 0 {
		c.Catalog.Extra = append(c.Catalog.Extra, other.Catalog.Extra...)
	}
	if other.Scan.MaxDepth != 0 {
		c.Scan.MaxDepth = other.Scan.MaxDepth
	}
	if len(other.Scan.SkipDirs) > 0 {
		c.Scan.SkipDirs = other.Scan.SkipDirs
	}
	if other.Backup.Dir != "" {
		c.Backup.Dir = other.Backup.Dir
	}
	if other.Backup.MaxConfigBackups != 0 {
		c.Backup.MaxConfigBackups = other.Backup.MaxConfigBackups
	}
	if other.Editor != "" {
		c.Editor = other.Editor
	}
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.UI.NoColor {
		c.UI.NoColor = true
	}
}

// applyEnvOverrides applies LAYER_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LAYER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LAYER_NO_COLOR"); v != "" {
		c.UI.NoColor = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("LAYER_SCAN_DEPTH"); v != "" {
		if d, err := strconv.Atoi(v); err == nil && d > 0 {
			c.Scan.MaxDepth = d
		}
	}
	if v := os.Getenv("LAYER_BACKUP_DIR"); v != "" {
		c.Backup.Dir = v
	}
	if v := os.Getenv("LAYER_EDITOR"); v != "" {
		c.Editor = v
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Scan.MaxDepth < 1 || c.Scan.MaxDepth > MaxDepthLimit {
		return lerrors.ConfigError(
			fmt.Sprintf("scan.max_depth must be between 1 and %d, got %d", MaxDepthLimit, c.Scan.MaxDepth), nil)
	}
	if c.Backup.MaxConfigBackups < 0 {
		return lerrors.ConfigError(
			fmt.Sprintf("backup.max_config_backups must be non-negative, got %d", c.Backup.MaxConfigBackups), nil)
	}
	if strings.TrimSpace(c.Backup.Dir) == "" {
		return lerrors.ConfigError("backup.dir must not be empty", nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		return lerrors.ConfigError(
			fmt.Sprintf("log.level must be 'debug', 'info', 'warn', or 'error', got %s", c.Log.Level), nil)
	}

	for _, p := range c.Catalog.Extra {
		if strings.TrimSpace(p) == "" {
			return lerrors.ConfigError("catalog.extra must not contain empty patterns", nil)
		}
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return lerrors.InternalError("failed to marshal config", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot create %s", filepath.Dir(path)), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot write %s", path), err)
	}
	return nil
}

// MergeNewDefaults fills fields missing from an older config file with
// their defaults. Returns the names of the fields it added.
func (c *Config) MergeNewDefaults() []string {
	defaults := NewConfig()
	var added []string

	if c.Version == 0 {
		c.Version = defaults.Version
		added = append(added, "version")
	}
	if c.Scan.MaxDepth == 0 {
		c.Scan.MaxDepth = defaults.Scan.MaxDepth
		added = append(added, "scan.max_depth")
	}
	if c.Scan.SkipDirs == nil {
		c.Scan.SkipDirs = defaults.Scan.SkipDirs
		added = append(added, "scan.skip_dirs")
	}
	if c.Backup.Dir == "" {
		c.Backup.Dir = defaults.Backup.Dir
		added = append(added, "backup.dir")
	}
	if c.Backup.MaxConfigBackups == 0 {
		c.Backup.MaxConfigBackups = defaults.Backup.MaxConfigBackups
		added = append(added, "backup.max_config_backups")
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
		added = append(added, "log.level")
	}
	return added
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}

// fileExists checks if a file exists and is not a directory.
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
