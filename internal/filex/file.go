// Package filex contains small filesystem helpers for client-local data.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir resolves and creates the per-user data directory for the
// given application name, e.g. ~/.local/share/campus on Linux. It returns
// the absolute path of the directory.
func EnsureDataDir(appName string) (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		// Fall back to the working directory when no home is available.
		base, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
	}

	dir := filepath.Join(base, appName)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
