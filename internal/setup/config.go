package setup

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// RecordDirName is the directory, below the user's state directory, holding run records.
const RecordDirName = "swift-ci/runs"

var lookPath = exec.LookPath

// Verify checks that the container tool can be found on PATH.
func Verify(tool string) error {
	if tool == "" {
		return fmt.Errorf("no container tool configured")
	}
	path, err := lookPath(tool)
	if err != nil {
		return fmt.Errorf("container tool %s not found: %w", tool, err)
	}
	getLogger().Debug("found container tool", "tool", tool, "path", path)
	return nil
}

// DefaultRecordDir returns where run records are kept when no directory is configured.
// XDG_STATE_HOME is honored, falling back to the user cache directory.
func DefaultRecordDir() (string, error) {
	if state := os.Getenv("XDG_STATE_HOME"); state != "" {
		return filepath.Join(state, RecordDirName), nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve record directory: %w", err)
	}
	return filepath.Join(base, RecordDirName), nil
}
