package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"idshift/internal/mapping"
	"idshift/internal/scan"
)

const noManifestMessage = "no idshift.toml found\nrun `idshift init` in the project root, or pass the root explicitly:\n  idshift migrate path/to/project"

type projectManifest struct {
	Path   string
	Root   string
	Config projectConfig
}

type projectConfig struct {
	Project  projectSection  `toml:"project"`
	Source   sourceSection   `toml:"source"`
	Imports  importsSection  `toml:"imports"`
	Datasets datasetsSection `toml:"datasets"`
	Tools    toolsSection    `toml:"tools"`
}

type projectSection struct {
	Name string `toml:"name"`
}

type sourceSection struct {
	Extensions  []string `toml:"extensions"`
	ExcludeDirs []string `toml:"exclude_dirs"`
	TestMarkers []string `toml:"test_markers"`
}

type importsSection struct {
	Keep []string `toml:"keep"`
}

type datasetsSection struct {
	Glob string `toml:"glob"`
}

type toolsSection struct {
	Rename []string          `toml:"rename"`
	Names  map[string]string `toml:"names"`
}

func findManifest(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, "idshift.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadManifest(startDir string) (*projectManifest, bool, error) {
	manifestPath, ok, err := findManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := loadProjectConfig(manifestPath)
	if err != nil {
		return nil, true, err
	}
	return &projectManifest{
		Path:   manifestPath,
		Root:   filepath.Dir(manifestPath),
		Config: cfg,
	}, true, nil
}

func loadProjectConfig(path string) (projectConfig, error) {
	var cfg projectConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return projectConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("project") {
		return projectConfig{}, fmt.Errorf("%s: missing [project]", path)
	}
	if !meta.IsDefined("project", "name") || strings.TrimSpace(cfg.Project.Name) == "" {
		return projectConfig{}, fmt.Errorf("%s: missing [project].name", path)
	}
	if meta.IsDefined("tools") && len(cfg.Tools.Rename) == 0 && len(cfg.Tools.Names) == 0 {
		return projectConfig{}, fmt.Errorf("%s: [tools] defined but empty", path)
	}
	return cfg, nil
}

// defaultConfig is used when no manifest exists and a root was passed
// explicitly.
func defaultConfig() projectConfig {
	return projectConfig{}
}

func (cfg projectConfig) scanConfig() scan.Config {
	extensions := cfg.Source.Extensions
	if len(extensions) == 0 {
		extensions = []string{".ts"}
	}
	excludeDirs := cfg.Source.ExcludeDirs
	if len(excludeDirs) == 0 {
		excludeDirs = []string{"node_modules", "rust_engine"}
	}
	return scan.Config{Extensions: extensions, ExcludeDirs: excludeDirs}
}

func (cfg projectConfig) testMarkers() []string {
	if len(cfg.Source.TestMarkers) == 0 {
		return []string{".test."}
	}
	return cfg.Source.TestMarkers
}

func (cfg projectConfig) pathTransform() mapping.PathTransform {
	keep := cfg.Imports.Keep
	if len(keep) == 0 {
		keep = mapping.DefaultKeep
	}
	return mapping.NewPathTransform(keep)
}

func (cfg projectConfig) datasetGlob() string {
	if cfg.Datasets.Glob == "" {
		return "evals/datasets/**/*.json"
	}
	return cfg.Datasets.Glob
}

func (cfg projectConfig) table() (*mapping.Table, error) {
	if len(cfg.Tools.Rename) == 0 && len(cfg.Tools.Names) == 0 {
		return mapping.Default(), nil
	}
	return mapping.Derived(cfg.Tools.Rename, cfg.Tools.Names)
}
