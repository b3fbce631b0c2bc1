package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

const (
	// MaxBackups is the default number of config backups to keep.
	MaxBackups = 3

	// BackupSuffix is the file extension for backup files.
	BackupSuffix = ".bak"
)

// BackupUserConfig copies the user config file to a timestamped backup and
// prunes all but the newest keep backups. Returns the backup path, or ""
// when there is no user config.
func BackupUserConfig(keep int) (string, error) {
	configPath := GetUserConfigPath()
	if !UserConfigExists() {
		return "", nil
	}

	timestamp := time.Now().Format("20060102-150405.000")
	backupPath := fmt.Sprintf("%s%s.%s", configPath, BackupSuffix, timestamp)

	data, err := os.ReadFile(configPath)
	if err != nil {
		return "", lerrors.New(lerrors.ErrCodeConfigPermission, "cannot read config for backup", err)
	}
	if err := os.WriteFile(backupPath, data, 0o644); err != nil {
		return "", lerrors.IOError("cannot write config backup", err)
	}

	if err := cleanupOldBackups(keep); err != nil {
		slog.Debug("config backup cleanup failed", slog.String("error", err.Error()))
	}
	return backupPath, nil
}

// ListUserConfigBackups returns all backup files for the user config,
// newest first.
func ListUserConfigBackups() ([]string, error) {
	configPath := GetUserConfigPath()
	configDir := filepath.Dir(configPath)
	prefix := filepath.Base(configPath) + BackupSuffix + "."

	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list config directory: %w", err)
	}

	var backups []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasPrefix(entry.Name(), prefix) {
			backups = append(backups, filepath.Join(configDir, entry.Name()))
		}
	}

	// Timestamps sort lexically; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(backups)))
	return backups, nil
}

// cleanupOldBackups removes backups beyond keep, keeping the newest.
func cleanupOldBackups(keep int) error {
	if keep <= 0 {
		keep = MaxBackups
	}
	backups, err := ListUserConfigBackups()
	if err != nil {
		return err
	}
	if len(backups) <= keep {
		return nil
	}
	for _, backup := range backups[keep:] {
		if err := os.Remove(backup); err != nil {
			slog.Debug("cannot remove old config backup",
				slog.String("path", backup),
				slog.String("error", err.Error()))
		}
	}
	return nil
}

// RestoreUserConfig restores the user config from a backup file. The
// current config, if any, is backed up first.
func RestoreUserConfig(backupPath string, keep int) error {
	if _, err := os.Stat(backupPath); err != nil {
		return lerrors.New(lerrors.ErrCodeConfigNotFound, "config backup not found", err)
	}

	if UserConfigExists() {
		if _, err := BackupUserConfig(keep); err != nil {
			return err
		}
	}

	data, err := os.ReadFile(backupPath)
	if err != nil {
		return lerrors.New(lerrors.ErrCodeConfigPermission, "cannot read config backup", err)
	}
	if err := os.MkdirAll(GetUserConfigDir(), 0o755); err != nil {
		return lerrors.IOError("cannot create config directory", err)
	}
	if err := os.WriteFile(GetUserConfigPath(), data, 0o644); err != nil {
		return lerrors.IOError("cannot write restored config", err)
	}
	return nil
}
