// Package engine orchestrates a migration run: discover candidate artifacts,
// rename snake_case files, rewrite source/test text and dataset documents,
// and aggregate a change report. Files are processed strictly one at a time;
// no state is shared across them beyond the read-only mapping table.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"idshift/internal/dataset"
	"idshift/internal/journal"
	"idshift/internal/mapping"
	"idshift/internal/rule"
	"idshift/internal/scan"
)

// ErrNoChanges is returned when the run completed but nothing needed
// migrating.
var ErrNoChanges = errors.New("no identifiers needed migration")

// Mover renames a tracked file. Failure is a per-file error, never fatal to
// the batch.
type Mover interface {
	Move(ctx context.Context, oldPath, newPath string) error
}

// Options configures a migration run.
type Options struct {
	Root        string
	Table       *mapping.Table
	Paths       mapping.PathTransform
	Source      scan.Config
	DatasetGlob string

	// TestMarkers are path substrings classifying a source file as a test
	// module (assertion rules apply there in addition to the source rules).
	TestMarkers []string

	// RenameFiles enables the file-level rename pass. It runs strictly
	// before content rewriting so import-path rewrites can assume the new
	// file names.
	RenameFiles bool
	Mover       Mover

	// DryRun reports every change without touching the tree.
	DryRun bool

	// Journal, when set, lets the run skip files whose content digest
	// matches the previous run's outcome.
	Journal *journal.Journal

	Progress ProgressSink
}

// Run executes one migration pass over the tree rooted at opts.Root.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Table == nil {
		return nil, fmt.Errorf("engine: mapping table is required")
	}
	if opts.RenameFiles && opts.Mover == nil && !opts.DryRun {
		return nil, fmt.Errorf("engine: rename pass needs a mover")
	}
	sink := opts.Progress
	if sink == nil {
		sink = NoopSink{}
	}

	files, err := scan.Files(opts.Root, opts.Source)
	if err != nil {
		return nil, err
	}
	datasets, err := scan.Datasets(opts.Root, opts.DatasetGlob)
	if err != nil {
		return nil, err
	}

	result := &Result{Scanned: len(files) + len(datasets)}

	if opts.RenameFiles {
		files = renamePass(ctx, files, opts, result, sink)
	}

	sourceSet := rule.NewSourceSet(opts.Table, opts.Paths)
	testSet := rule.NewTestSet(opts.Table, opts.Paths)

	for _, path := range files {
		set := sourceSet
		if isTestModule(path, opts.TestMarkers) {
			set = testSet
		}
		rewriteFile(path, set, opts, result, sink)
	}

	for _, path := range datasets {
		rewriteDataset(path, opts, result, sink)
	}

	if len(result.Renamed) == 0 && len(result.Changed) == 0 && len(result.Skipped) == 0 {
		return result, ErrNoChanges
	}
	return result, nil
}

// renamePass renames every discovered file whose basename contains a snake
// separator, and returns the file list with the post-rename paths. A failed
// rename keeps the old path so the content pass still reaches the file.
func renamePass(ctx context.Context, files []string, opts Options, result *Result, sink ProgressSink) []string {
	updated := make([]string, 0, len(files))
	for _, path := range files {
		base := filepath.Base(path)
		if !strings.Contains(base, "_") {
			updated = append(updated, path)
			continue
		}
		newPath := filepath.Join(filepath.Dir(path), mapping.Kebab(base))
		sink.OnEvent(Event{File: path, Stage: StageRename, Status: StatusWorking})
		if !opts.DryRun {
			if err := opts.Mover.Move(ctx, path, newPath); err != nil {
				result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: err.Error()})
				sink.OnEvent(Event{File: path, Stage: StageRename, Status: StatusError, Err: err})
				updated = append(updated, path)
				continue
			}
		}
		result.Renamed = append(result.Renamed, RenamedFile{OldPath: path, NewPath: newPath})
		sink.OnEvent(Event{File: path, Stage: StageRename, Status: StatusDone, NewPath: newPath})
		if opts.DryRun {
			updated = append(updated, path)
		} else {
			updated = append(updated, newPath)
		}
	}
	return updated
}

func rewriteFile(path string, set *rule.Set, opts Options, result *Result, sink ProgressSink) {
	sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusWorking})

	raw, err := os.ReadFile(path)
	if err != nil {
		recordSkip(path, StageRewrite, err, result, sink)
		return
	}
	if !utf8.Valid(raw) {
		recordSkip(path, StageRewrite, fmt.Errorf("not valid UTF-8 text"), result, sink)
		return
	}
	if opts.Journal.Settled(path, raw) {
		result.Settled++
		sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusDone})
		return
	}

	res := set.Rewrite(string(raw))
	if !res.Changed {
		// Bitwise-identical content is never written back.
		if !opts.DryRun {
			if err := opts.Journal.Put(path, raw, 0); err != nil {
				recordSkip(path, StageRewrite, err, result, sink)
				return
			}
		}
		sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusDone})
		return
	}

	if !opts.DryRun {
		if err := writeBack(path, []byte(res.Content)); err != nil {
			recordSkip(path, StageRewrite, err, result, sink)
			return
		}
		if err := opts.Journal.Put(path, []byte(res.Content), res.Replacements); err != nil {
			recordSkip(path, StageRewrite, err, result, sink)
			return
		}
	}
	result.Changed = append(result.Changed, FileChange{Path: path, Replacements: res.Replacements})
	result.Replacements += res.Replacements
	sink.OnEvent(Event{File: path, Stage: StageRewrite, Status: StatusDone, Replacements: res.Replacements})
}

func rewriteDataset(path string, opts Options, result *Result, sink ProgressSink) {
	sink.OnEvent(Event{File: path, Stage: StageDataset, Status: StatusWorking})

	raw, err := os.ReadFile(path)
	if err != nil {
		recordSkip(path, StageDataset, err, result, sink)
		return
	}
	if opts.Journal.Settled(path, raw) {
		result.Settled++
		sink.OnEvent(Event{File: path, Stage: StageDataset, Status: StatusDone})
		return
	}

	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		recordSkip(path, StageDataset, fmt.Errorf("parse JSON: %w", err), result, sink)
		return
	}

	rewritten, changes := dataset.Rewrite(tree, opts.Table)
	if changes == 0 {
		if !opts.DryRun {
			if err := opts.Journal.Put(path, raw, 0); err != nil {
				recordSkip(path, StageDataset, err, result, sink)
				return
			}
		}
		sink.OnEvent(Event{File: path, Stage: StageDataset, Status: StatusDone})
		return
	}

	if !opts.DryRun {
		out, err := json.MarshalIndent(rewritten, "", "  ")
		if err != nil {
			recordSkip(path, StageDataset, err, result, sink)
			return
		}
		out = append(out, '\n')
		if err := writeBack(path, out); err != nil {
			recordSkip(path, StageDataset, err, result, sink)
			return
		}
		if err := opts.Journal.Put(path, out, changes); err != nil {
			recordSkip(path, StageDataset, err, result, sink)
			return
		}
	}
	result.Changed = append(result.Changed, FileChange{Path: path, Replacements: changes})
	result.Replacements += changes
	sink.OnEvent(Event{File: path, Stage: StageDataset, Status: StatusDone, Replacements: changes})
}

// writeBack replaces a file's content, keeping its mode.
func writeBack(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode()
	}
	if err := os.WriteFile(path, content, mode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func recordSkip(path string, stage Stage, err error, result *Result, sink ProgressSink) {
	result.Skipped = append(result.Skipped, SkippedFile{Path: path, Reason: err.Error()})
	sink.OnEvent(Event{File: path, Stage: stage, Status: StatusError, Err: err})
}

func isTestModule(path string, markers []string) bool {
	normalized := filepath.ToSlash(path)
	for _, marker := range markers {
		if strings.Contains(normalized, marker) {
			return true
		}
	}
	return false
}
