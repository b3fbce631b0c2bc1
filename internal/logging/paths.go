package logging

import (
	"os"
	"path/filepath"
)

// LogDirEnv overrides the log directory.
const LogDirEnv = "LAYER_LOG_DIR"

// DefaultLogDir returns the log directory: $LAYER_LOG_DIR, else
// ~/.layer/logs. Falls back to the temp directory without a home.
func DefaultLogDir() string {
	if dir := os.Getenv(LogDirEnv); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".layer", "logs")
	}
	return filepath.Join(home, ".layer", "logs")
}

// DefaultLogPath returns the log file path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "layer.log")
}
