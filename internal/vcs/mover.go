// Package vcs provides the rename collaborators used for file-level renames.
package vcs

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// GitMover renames tracked files via `git mv` so history follows the rename.
type GitMover struct {
	// Dir is the working directory for the git invocation (repo root).
	Dir string
}

// Move renames oldPath to newPath through git.
func (m GitMover) Move(ctx context.Context, oldPath, newPath string) error {
	cmd := exec.CommandContext(ctx, "git", "mv", oldPath, newPath)
	cmd.Dir = m.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			msg = err.Error()
		}
		return fmt.Errorf("git mv %s → %s: %s", oldPath, newPath, msg)
	}
	return nil
}

// OSMover renames directly on the filesystem, for trees not under version
// control (and for tests).
type OSMover struct{}

// Move renames oldPath to newPath.
func (OSMover) Move(_ context.Context, oldPath, newPath string) error {
	if err := os.Rename(oldPath, newPath); err != nil {
		return fmt.Errorf("rename %s → %s: %w", oldPath, newPath, err)
	}
	return nil
}
