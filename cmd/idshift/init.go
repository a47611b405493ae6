package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path|name]",
	Short: "Initialize a migration manifest",
	Long: `Create an idshift.toml manifest describing the migration: which files to
scan, which import specifiers to keep, where the datasets live, and which
identifiers to rename. If [path|name] is omitted, initializes the current
directory. If a non-existing name is provided, a directory will be created.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	// Resolve target directory
	var target string
	if len(args) == 0 || args[0] == "." {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		target = wd
	} else {
		arg := args[0]
		if !filepath.IsAbs(arg) {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			target = filepath.Join(wd, arg)
		} else {
			target = arg
		}
	}

	// Ensure directory exists
	if st, err := os.Stat(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("failed to create directory %q: %w", target, err)
			}
		} else {
			return err
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	// Determine project name from directory basename
	name := filepath.Base(target)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "idshift-project"
	}

	manifestPath := filepath.Join(target, "idshift.toml")
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists", manifestPath)
	}

	manifest := buildDefaultManifest(name)
	if err := os.WriteFile(manifestPath, []byte(manifest), os.FileMode(0o600)); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", manifestPath)
	return nil
}

func buildDefaultManifest(name string) string {
	return fmt.Sprintf(`[project]
name = %q

[source]
extensions = [".ts"]
exclude_dirs = ["node_modules", "rust_engine"]
test_markers = [".test."]

[imports]
# module specifiers never rewritten, checked verbatim
keep = ["child_process", "fs", "path", "os"]

[datasets]
glob = "evals/datasets/**/*.json"

# Without a [tools] section the built-in tool identifier table is used.
# PascalCase replacements are derived from the snake_case names; use
# [tools.names] for explicit overrides.
#
# [tools]
# rename = ["read_file", "write_file", "kill_bash"]
# [tools.names]
# get_codebase_map = "GetCodebaseMap"
`, name)
}
