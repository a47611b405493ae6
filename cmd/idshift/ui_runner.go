package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"idshift/internal/engine"
	"idshift/internal/ui"
)

// runMigrateWithUI runs the engine beside a Bubble Tea progress program. The
// engine stays strictly sequential; the second goroutine only renders.
func runMigrateWithUI(ctx context.Context, root string, opts engine.Options) (*engine.Result, error) {
	files := discoverForUI(opts)
	events := make(chan engine.Event, 256)

	var result *engine.Result
	noChanges := false

	var g errgroup.Group
	g.Go(func() error {
		defer close(events)
		optsCopy := opts
		optsCopy.Progress = engine.ChannelSink{Ch: events}
		res, err := engine.Run(ctx, optsCopy)
		result = res
		if errors.Is(err, engine.ErrNoChanges) {
			noChanges = true
			return nil
		}
		return err
	})

	model := ui.NewProgressModel("migrating "+root, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()

	if err := g.Wait(); err != nil {
		return result, err
	}
	if uiErr != nil {
		return result, uiErr
	}
	if noChanges {
		return result, engine.ErrNoChanges
	}
	return result, nil
}
