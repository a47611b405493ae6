// Package scan discovers candidate files for a migration run.
package scan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Config selects source files during the walk.
type Config struct {
	// Extensions are matched against filepath.Ext, e.g. ".ts".
	Extensions []string
	// ExcludeDirs are path substrings; any path containing one is skipped.
	ExcludeDirs []string
}

func (c Config) wantsExt(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range c.Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

func (c Config) excluded(path string) bool {
	normalized := filepath.ToSlash(path)
	for _, sub := range c.ExcludeDirs {
		if strings.Contains(normalized, sub) {
			return true
		}
	}
	return false
}

// Files walks root and returns the matching file paths, sorted. Calling it
// again restarts the walk from scratch.
func Files(root string, cfg Config) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			// Hidden directories are never migration targets.
			if len(name) > 1 && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			if path != root && cfg.excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.excluded(path) {
			return nil
		}
		if cfg.wantsExt(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// Datasets expands a (possibly **-recursive) glob pattern relative to root
// and returns the matches, sorted.
func Datasets(root, pattern string) ([]string, error) {
	if pattern == "" {
		return nil, nil
	}
	matches, err := doublestar.FilepathGlob(filepath.Join(root, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, fmt.Errorf("dataset glob %q: %w", pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}
