// Package docutil manages temporary document files on local disk.
package docutil

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
)

// EnsureDir creates the directory and its parents when missing.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// TempDocPath returns a unique path for a downloaded document inside dir.
// ULIDs sort by creation time, which keeps leftover files easy to audit.
func TempDocPath(dir, ext string) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return filepath.Join(dir, fmt.Sprintf("doc-%s%s", id.String(), ext))
}

// Remove deletes a file, ignoring the case where it is already gone.
func Remove(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
