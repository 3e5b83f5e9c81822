package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tuneport/tuneport/internal/shared"
	"github.com/tuneport/tuneport/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for playlist transfer.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/tuneport-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	sync, rep, err := r.synchronizer()
	if err != nil {
		return err
	}
	reader, err := r.reader()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, reader, sync)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	if rep.Len() > 0 {
		r.persistRun(rep)
	}
	return nil
}
