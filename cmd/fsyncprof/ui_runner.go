package main

import (
	"context"
	"io"

	tea "github.com/charmbracelet/bubbletea"

	"fsyncprof/internal/timeline"
	"fsyncprof/internal/ui"
)

// engineJob runs a conversion, reporting progress through the callback.
type engineJob func(ctx context.Context, progress func(timeline.Stats)) error

// runWithUI runs job while a progress view is drawn on out. Pressing ctrl+c
// in the view cancels the job. When stdinBusy is set the view does not read
// the keyboard, because standard input carries the log.
func runWithUI(ctx context.Context, out io.Writer, title string, total int64, stdinBusy bool, job engineJob) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates := make(chan timeline.Stats, 64)
	outcomeCh := make(chan error, 1)

	go func() {
		err := job(ctx, func(s timeline.Stats) {
			// Drop updates the view has not caught up with.
			select {
			case updates <- s:
			default:
			}
		})
		outcomeCh <- err
		close(updates)
	}()

	opts := []tea.ProgramOption{tea.WithOutput(out), tea.WithContext(ctx)}
	if stdinBusy {
		opts = append(opts, tea.WithInput(nil))
	}
	program := tea.NewProgram(ui.NewProgressModel(title, total, updates), opts...)
	final, uiErr := program.Run()
	if uiErr != nil || ui.Interrupted(final) {
		cancel()
	}
	err := <-outcomeCh
	if err != nil {
		return err
	}
	if uiErr != nil && ctx.Err() == nil {
		return uiErr
	}
	return nil
}
