package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "idshift.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoadProjectConfig(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[project]
name = "agent"

[source]
extensions = [".ts", ".tsx"]

[tools]
rename = ["read_file"]
[tools.names]
read_file = "FileReader"
`)
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("loadProjectConfig: %v", err)
	}
	if cfg.Project.Name != "agent" {
		t.Fatalf("name: %q", cfg.Project.Name)
	}
	tbl, err := cfg.table()
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	if got, _ := tbl.Lookup("read_file"); got != "FileReader" {
		t.Fatalf("override not applied: %q", got)
	}
	if got := cfg.scanConfig().Extensions; len(got) != 2 {
		t.Fatalf("extensions: %v", got)
	}
}

func TestLoadProjectConfigRejectsMissingName(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[project]\n")
	if _, err := loadProjectConfig(path); err == nil {
		t.Fatal("expected error for missing [project].name")
	}
}

func TestLoadProjectConfigRejectsEmptyTools(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[project]
name = "agent"

[tools]
`)
	if _, err := loadProjectConfig(path); err == nil {
		t.Fatal("expected error for empty [tools]")
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.scanConfig().Extensions; len(got) != 1 || got[0] != ".ts" {
		t.Fatalf("default extensions: %v", got)
	}
	if got := cfg.datasetGlob(); got != "evals/datasets/**/*.json" {
		t.Fatalf("default glob: %q", got)
	}
	tbl, err := cfg.table()
	if err != nil {
		t.Fatalf("default table: %v", err)
	}
	if got, _ := tbl.Lookup("todo_write"); got != "TodoWrite" {
		t.Fatalf("default table entry: %q", got)
	}
	if got := cfg.testMarkers(); len(got) != 1 || got[0] != ".test." {
		t.Fatalf("default markers: %v", got)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[project]\nname = \"agent\"\n")
	nested := filepath.Join(root, "src", "tools")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	path, ok, err := findManifest(nested)
	if err != nil {
		t.Fatalf("findManifest: %v", err)
	}
	if !ok {
		t.Fatal("manifest not found from nested dir")
	}
	if filepath.Dir(path) != root {
		t.Fatalf("unexpected manifest path: %s", path)
	}
}

func TestBuildDefaultManifestParses(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, buildDefaultManifest("demo"))
	cfg, err := loadProjectConfig(path)
	if err != nil {
		t.Fatalf("starter manifest invalid: %v", err)
	}
	if cfg.Project.Name != "demo" {
		t.Fatalf("name: %q", cfg.Project.Name)
	}
}
