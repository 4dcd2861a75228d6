package main

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/desertthunder/bookx/internal/ui"
	"github.com/urfave/cli/v3"
)

// Read opens a book in the interactive terminal reader.
func (r *Runner) Read(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/bookx-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	session, err := r.openBook(ctx, bookID, cmd.Int("page-size"))
	if err != nil && !errors.Is(err, shared.ErrContentNotFound) {
		return err
	}

	if page := cmd.Int("page"); page > 0 && !session.Tracker.GoToPage(page-1) {
		r.logger.Warn("ignoring --page outside the book", "page", page, "pages", len(session.Pages))
	}

	model := ui.NewModel(ctx, session, r.logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		session.Close()
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
