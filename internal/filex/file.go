// Package filex has small filesystem helpers.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir creates the directory that will hold path and returns the
// absolute form of path. Relative paths are resolved against the working dir.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}

const fileScheme = "file://"

// LocalPath reports whether ref points at a local file and returns its path.
// Both "file:///tmp/x" and absolute paths are treated as local.
func LocalPath(ref string) (string, bool) {
	if strings.HasPrefix(ref, fileScheme) {
		return strings.TrimPrefix(ref, fileScheme), true
	}
	if filepath.IsAbs(ref) {
		return ref, true
	}
	return "", false
}
