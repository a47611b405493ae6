package vcs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestOSMoverRenames(t *testing.T) {
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "read_file.ts")
	newPath := filepath.Join(dir, "read-file.ts")
	if err := os.WriteFile(oldPath, []byte("content"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := (OSMover{}).Move(context.Background(), oldPath, newPath); err != nil {
		t.Fatalf("Move: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("old path still exists")
	}
	got, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatalf("read new path: %v", err)
	}
	if string(got) != "content" {
		t.Fatalf("content lost: %q", got)
	}
}

func TestOSMoverMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := (OSMover{}).Move(context.Background(), filepath.Join(dir, "absent.ts"), filepath.Join(dir, "x.ts"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}
