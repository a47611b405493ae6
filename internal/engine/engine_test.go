package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"idshift/internal/mapping"
	"idshift/internal/scan"
	"idshift/internal/vcs"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
}

func testOptions(root string) Options {
	return Options{
		Root:        root,
		Table:       mapping.Default(),
		Paths:       mapping.NewPathTransform(mapping.DefaultKeep),
		Source:      scan.Config{Extensions: []string{".ts"}, ExcludeDirs: []string{"node_modules"}},
		DatasetGlob: "evals/datasets/**/*.json",
		TestMarkers: []string{".test."},
		RenameFiles: true,
		Mover:       vcs.OSMover{},
	}
}

const sourceModule = `import { base } from './base_tool';

export const readFile = base({
  name: 'read_file',
});
`

const testModule = `import { readFile } from '../src/read_file';

it('should have name: read_file', () => {
  expect(readFile.name).toBe('read_file');
});
`

const datasetDoc = `{"cases": [{"tool": "read_file", "expected": {"forbiddenTools": ["bash"]}}]}`

func TestRunEndToEnd(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/read_file.ts":                sourceModule,
		"src/base_tool.ts":                "export const base = (d) => d;\n",
		"tests/read_file.test.ts":         testModule,
		"evals/datasets/suite/cases.json": datasetDoc,
	})

	result, err := Run(context.Background(), testOptions(root))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(result.Renamed) != 3 {
		t.Fatalf("expected 3 renames, got %v", result.Renamed)
	}
	for _, r := range result.Renamed {
		if _, err := os.Stat(r.NewPath); err != nil {
			t.Fatalf("renamed target missing: %v", err)
		}
	}

	src, err := os.ReadFile(filepath.Join(root, "src/read-file.ts"))
	if err != nil {
		t.Fatalf("read renamed source: %v", err)
	}
	wantSrc := `import { base } from './base-tool';

export const readFile = base({
  name: 'ReadFile',
});
`
	if string(src) != wantSrc {
		t.Fatalf("source rewrite:\n%s", src)
	}

	tst, err := os.ReadFile(filepath.Join(root, "tests/read-file.test.ts"))
	if err != nil {
		t.Fatalf("read renamed test: %v", err)
	}
	wantTst := `import { readFile } from '../src/read-file';

it('should have name: ReadFile', () => {
  expect(readFile.name).toBe('ReadFile');
});
`
	if string(tst) != wantTst {
		t.Fatalf("test rewrite:\n%s", tst)
	}

	var doc map[string]any
	rawDoc, err := os.ReadFile(filepath.Join(root, "evals/datasets/suite/cases.json"))
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if err := json.Unmarshal(rawDoc, &doc); err != nil {
		t.Fatalf("dataset no longer valid JSON: %v", err)
	}
	c := doc["cases"].([]any)[0].(map[string]any)
	if c["tool"] != "ReadFile" {
		t.Fatalf("dataset tool: %v", c["tool"])
	}
	if forbidden := c["expected"].(map[string]any)["forbiddenTools"].([]any); forbidden[0] != "Bash" {
		t.Fatalf("dataset forbiddenTools: %v", forbidden)
	}

	if len(result.Skipped) != 0 {
		t.Fatalf("unexpected skips: %v", result.Skipped)
	}
	if result.Replacements == 0 || len(result.Changed) != 3 {
		t.Fatalf("unexpected report: %+v", result)
	}
}

func TestRunIdempotent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/read_file.ts":                sourceModule,
		"evals/datasets/suite/cases.json": datasetDoc,
	})

	if _, err := Run(context.Background(), testOptions(root)); err != nil {
		t.Fatalf("first run: %v", err)
	}

	before, err := os.ReadFile(filepath.Join(root, "src/read-file.ts"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	result, err := Run(context.Background(), testOptions(root))
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("second run: expected ErrNoChanges, got %v (%+v)", err, result)
	}

	after, err := os.ReadFile(filepath.Join(root, "src/read-file.ts"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(before) != string(after) {
		t.Fatal("second run modified settled content")
	}
}

func TestRunDryRunTouchesNothing(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/read_file.ts": sourceModule})

	opts := testOptions(root)
	opts.DryRun = true
	opts.Mover = nil

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Renamed) != 1 || len(result.Changed) != 1 {
		t.Fatalf("dry-run report incomplete: %+v", result)
	}

	// Old path still present, content untouched.
	raw, err := os.ReadFile(filepath.Join(root, "src/read_file.ts"))
	if err != nil {
		t.Fatalf("original file gone: %v", err)
	}
	if string(raw) != sourceModule {
		t.Fatal("dry run modified content")
	}
}

func TestRunNoMatchSkipsWrite(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/plain.ts": "export const n = 1;\n"})
	path := filepath.Join(root, "src/plain.ts")

	past := time.Now().Add(-time.Hour)
	if err := os.Chtimes(path, past, past); err != nil {
		t.Fatalf("chtimes: %v", err)
	}

	_, err := Run(context.Background(), testOptions(root))
	if !errors.Is(err, ErrNoChanges) {
		t.Fatalf("expected ErrNoChanges, got %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if !info.ModTime().Equal(past) {
		t.Fatal("no-op file was rewritten")
	}
}

func TestRunBadArtifactsAreRecordedNotFatal(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/ok_tool.ts":                  sourceModule,
		"evals/datasets/suite/bad.json":   "{not json",
		"evals/datasets/suite/cases.json": datasetDoc,
	})
	writeTree(t, root, map[string]string{"src/binary.ts": "\xff\xfe\x00broken"})

	result, err := Run(context.Background(), testOptions(root))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Skipped) != 2 {
		t.Fatalf("expected 2 skips, got %v", result.Skipped)
	}
	// The good artifacts still migrated.
	if len(result.Changed) != 2 {
		t.Fatalf("expected 2 changed files, got %v", result.Changed)
	}
}

type failingMover struct{}

func (failingMover) Move(context.Context, string, string) error {
	return fmt.Errorf("rename rejected")
}

func TestRunRenameFailureStillRewritesContent(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"src/read_file.ts": sourceModule})

	opts := testOptions(root)
	opts.Mover = failingMover{}

	result, err := Run(context.Background(), opts)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Renamed) != 0 || len(result.Skipped) != 1 {
		t.Fatalf("unexpected report: %+v", result)
	}

	raw, err := os.ReadFile(filepath.Join(root, "src/read_file.ts"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(raw) == sourceModule {
		t.Fatal("content rewrite skipped after rename failure")
	}
}
