// Package logging provides structured, rotating file logging for saga,
// built on log/slog with a JSON handler.
package logging

import (
	"os"
	"path/filepath"
)

// BaseDirEnv is the environment variable overriding the base data
// directory.
const BaseDirEnv = "SAGA_HOME"

// DefaultBaseDir returns the base directory for all persisted state:
// data/, lancedb/ (or the configured store path), and uploads/.
func DefaultBaseDir() string {
	if v := os.Getenv(BaseDirEnv); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".saga")
	}
	return filepath.Join(home, ".saga")
}

// DefaultLogDir returns the default log directory under the base dir.
func DefaultLogDir() string {
	return filepath.Join(DefaultBaseDir(), "logs")
}

// DefaultLogPath returns the default engine log path.
func DefaultLogPath() string {
	return filepath.Join(DefaultLogDir(), "engine.log")
}

// EnsureLogDir creates the log directory if it doesn't exist.
func EnsureLogDir() error {
	return os.MkdirAll(DefaultLogDir(), 0o755)
}
