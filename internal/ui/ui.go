// Package ui is the interactive terminal interface for browsing and editing notes.
package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dpshade/pocket-notes/internal/service"
)

// Run starts the TUI and blocks until the user quits or ctx is cancelled
func Run(ctx context.Context, svc *service.Service, opts Options) error {
	p := tea.NewProgram(NewModel(svc, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
