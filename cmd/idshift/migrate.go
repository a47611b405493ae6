package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"idshift/internal/engine"
	"idshift/internal/journal"
	"idshift/internal/scan"
	"idshift/internal/vcs"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [path]",
	Short: "Rewrite old identifiers across the project",
	Long: `Run the migration: rename snake_case files to kebab-case, rewrite import
paths and tool-name references in source and test modules, and update tool
identifiers in evaluation datasets. Re-running over an already-migrated tree
is a no-op.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().Bool("dry-run", false, "report changes without writing or renaming anything")
	migrateCmd.Flags().Bool("no-rename", false, "skip the file rename pass")
	migrateCmd.Flags().Bool("cache", false, "skip files whose content matches the previous run (journal)")
	migrateCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	noRename, err := cmd.Flags().GetBool("no-rename")
	if err != nil {
		return err
	}
	useCache, err := cmd.Flags().GetBool("cache")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	if err := applyColorMode(colorFlag); err != nil {
		return err
	}

	startDir := ""
	if len(args) == 1 {
		startDir = args[0]
	}

	root, cfg, err := resolveProject(startDir)
	if err != nil {
		return err
	}

	table, err := cfg.table()
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	opts := engine.Options{
		Root:        root,
		Table:       table,
		Paths:       cfg.pathTransform(),
		Source:      cfg.scanConfig(),
		DatasetGlob: cfg.datasetGlob(),
		TestMarkers: cfg.testMarkers(),
		RenameFiles: !noRename,
		DryRun:      dryRun,
	}
	if !noRename && !dryRun {
		opts.Mover = pickMover(root)
	}
	if useCache {
		j, err := journal.Open("idshift")
		if err != nil {
			return fmt.Errorf("migrate: open journal: %w", err)
		}
		opts.Journal = j
	}

	var result *engine.Result
	var runErr error
	if !quiet && shouldUseTUI(mode) {
		result, runErr = runMigrateWithUI(cmd.Context(), root, opts)
	} else {
		result, runErr = engine.Run(cmd.Context(), opts)
	}

	return reportOutcome(os.Stdout, result, runErr, dryRun, quiet)
}

// resolveProject maps the optional path argument and manifest discovery onto
// a root directory and config. An explicit path works without a manifest;
// without either, the run refuses to guess.
func resolveProject(startDir string) (string, projectConfig, error) {
	manifest, ok, err := loadManifest(startDir)
	if err != nil {
		return "", projectConfig{}, err
	}
	if ok {
		return manifest.Root, manifest.Config, nil
	}
	if startDir == "" {
		return "", projectConfig{}, fmt.Errorf("%s", noManifestMessage)
	}
	info, err := os.Stat(startDir)
	if err != nil {
		return "", projectConfig{}, fmt.Errorf("migrate: %w", err)
	}
	if !info.IsDir() {
		return "", projectConfig{}, fmt.Errorf("migrate: %q is not a directory", startDir)
	}
	return startDir, defaultConfig(), nil
}

// pickMover prefers git so renames keep their history; outside a git
// checkout it falls back to plain filesystem renames.
func pickMover(root string) engine.Mover {
	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		return vcs.GitMover{Dir: root}
	}
	return vcs.OSMover{}
}

// discoverForUI pre-scans the tree so the progress model can list every
// candidate upfront. Discovery is restartable; the engine repeats it.
func discoverForUI(opts engine.Options) []string {
	files, err := scan.Files(opts.Root, opts.Source)
	if err != nil {
		return nil
	}
	datasets, err := scan.Datasets(opts.Root, opts.DatasetGlob)
	if err != nil {
		return files
	}
	return append(files, datasets...)
}
