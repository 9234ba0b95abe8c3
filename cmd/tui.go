package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/promo/internal/shared"
	"github.com/desertthunder/promo/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive release dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(r.config.UI.LogPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	sess, err := r.sessions()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.client(ctx), sess, ui.Options{
		Start:       cmd.String("start"),
		Logger:      fileLogger,
		NoticeTTL:   r.config.UI.NoticeDuration(),
		Celebration: r.config.UI.CelebrationDuration(),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
