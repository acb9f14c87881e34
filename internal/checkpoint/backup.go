package checkpoint

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"samplegraph/internal/fileutil"
)

// Backup copies the three checkpoint artifacts into a timestamped
// subdirectory of destDir with hash verification, returning the created
// directory. Callers should hold the checkpoint lock so the copied artifacts
// form a consistent set.
func Backup(dir, destDir string) (string, error) {
	target := filepath.Join(destDir, time.Now().UTC().Format("20060102T150405Z"))
	if err := os.MkdirAll(target, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	for _, src := range ArtifactPaths(dir) {
		dst := filepath.Join(target, filepath.Base(src))
		if err := fileutil.CopyFileVerified(src, dst); err != nil {
			return "", fmt.Errorf("backup %s: %w", filepath.Base(src), err)
		}
	}
	return target, nil
}
