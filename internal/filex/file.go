// Package filex contains filesystem helpers for the client's local state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDataDir makes sure dir exists (creating parents, mode 0700) and
// returns its absolute path. Relative paths are resolved against the
// current working directory.
func EnsureDataDir(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", dir, err)
	}

	if err := os.MkdirAll(abs, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}

	return abs, nil
}

// SQLiteDSN returns a modernc sqlite DSN for file name inside dir with
// foreign keys and a busy timeout enabled.
func SQLiteDSN(dir, name string) string {
	return "file:" + filepath.Join(dir, name) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}
