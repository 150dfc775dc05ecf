// utils/dirs.go
package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// EnsureDir creates dir and any missing parents. A directory that already
// exists is not an error; anything else (permissions, a file in the way) is.
// Directories are never removed by this package.
func EnsureDir(dir string) error {
	info, err := os.Stat(dir)
	switch {
	case err == nil && info.IsDir():
		slog.Debug("folder is already there", "dir", dir)
		return nil
	case err == nil:
		return fmt.Errorf("failed to create directory %s: %w", dir, fs.ErrExist)
	case !errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	slog.Info("folder was created", "dir", dir)
	return nil
}
