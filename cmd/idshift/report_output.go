package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/fatih/color"

	"idshift/internal/engine"
)

var (
	renamedColor = color.New(color.FgYellow)
	updatedColor = color.New(color.FgGreen)
	errorColor   = color.New(color.FgRed, color.Bold)
	summaryColor = color.New(color.Bold)
)

// reportOutcome prints the run report. Per-file errors are part of a normal
// report; only a run-level failure becomes a command error.
func reportOutcome(out io.Writer, result *engine.Result, runErr error, dryRun, quiet bool) error {
	if result == nil {
		return runErr
	}
	noChanges := errors.Is(runErr, engine.ErrNoChanges)
	if runErr != nil && !noChanges {
		return runErr
	}

	if !quiet {
		printSections(out, result, dryRun)
	}

	switch {
	case noChanges:
		fmt.Fprintln(out, "nothing to migrate")
	case dryRun:
		summaryColor.Fprintf(out, "would rename %d file(s), update %d file(s), %d replacement(s)\n",
			len(result.Renamed), len(result.Changed), result.Replacements)
	default:
		summaryColor.Fprintf(out, "renamed %d file(s), updated %d file(s), %d replacement(s)\n",
			len(result.Renamed), len(result.Changed), result.Replacements)
	}
	if len(result.Skipped) > 0 {
		errorColor.Fprintf(out, "%d file(s) skipped with errors\n", len(result.Skipped))
	}
	return nil
}

func printSections(out io.Writer, result *engine.Result, dryRun bool) {
	if len(result.Renamed) > 0 {
		if dryRun {
			fmt.Fprintln(out, "Would rename:")
		} else {
			fmt.Fprintln(out, "Renamed files:")
		}
		for _, r := range result.Renamed {
			fmt.Fprintf(out, "  %s → %s\n", renamedColor.Sprint(r.OldPath), r.NewPath)
		}
	}

	if len(result.Changed) > 0 {
		if dryRun {
			fmt.Fprintln(out, "Would update:")
		} else {
			fmt.Fprintln(out, "Updated files:")
		}
		for _, change := range result.Changed {
			fmt.Fprintf(out, "  %s (%d replacements)\n", updatedColor.Sprint(change.Path), change.Replacements)
		}
	}

	if len(result.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped files:")
		for _, skip := range result.Skipped {
			fmt.Fprintf(out, "  %s: %s\n", errorColor.Sprint(skip.Path), skip.Reason)
		}
	}

	if result.Settled > 0 {
		fmt.Fprintf(out, "%d file(s) already settled (journal)\n", result.Settled)
	}
}
