package feed

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/scrollfeed/app/feed"
)

// initialLoad claims the in-flight slot and fetches the first page.
func initialLoad(ctx context.Context, ctrl *feed.Controller) tea.Cmd {
	return func() tea.Msg {
		t, ok := ctrl.Begin()
		if !ok {
			return nil
		}
		return PageLoadedMsg{Outcome: ctrl.Run(ctx, t)}
	}
}

// runPage fetches the page claimed by t.
func runPage(ctx context.Context, ctrl *feed.Controller, t feed.Ticket) tea.Cmd {
	return func() tea.Msg {
		return PageLoadedMsg{Outcome: ctrl.Run(ctx, t)}
	}
}

// maybeFetch asks the controller for the next page when the viewport sits
// at the bottom. It is evaluated after every scroll or resize.
func (m *Model) maybeFetch() tea.Cmd {
	if !m.ready {
		return nil
	}
	t, ok := m.ctrl.MaybeFetchNextPage(m.metrics())
	if !ok {
		return nil
	}
	m.refresh()
	return runPage(m.ctx, m.ctrl, t)
}
