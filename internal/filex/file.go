// Package filex holds small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir creates (if needed) and returns a per-user data directory
// named dirName under the user's home directory. When the home directory
// cannot be resolved it falls back to the current working directory, so a
// constrained environment still gets a usable path.
func EnsureDataDir(dirName string) (string, error) {
	base, err := os.UserHomeDir()
	if err != nil {
		base, err = os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving data dir base: %w", err)
		}
	}

	dir := filepath.Join(base, dirName)

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return dir, nil
}
