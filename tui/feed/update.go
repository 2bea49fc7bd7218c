package feed

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-headerHeight-footerHeight, 1)
		m.ready = true
		m.syncContent()
		return m, m.maybeFetch()

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		m.refresh()
		return m, cmd

	case PageLoadedMsg:
		m.refresh()
		return m, nil

	case tea.MouseMsg:
		if !isWheel(msg) {
			return m, nil
		}
		m.viewport, cmd = m.viewport.Update(msg)
		return m, tea.Batch(cmd, m.maybeFetch())

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.viewport.SetYOffset(m.viewport.YOffset - 1)
	case key.Matches(msg, m.keys.Down):
		m.viewport.SetYOffset(m.viewport.YOffset + 1)
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.SetYOffset(m.viewport.YOffset - m.viewport.Height)
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.SetYOffset(m.viewport.YOffset + m.viewport.Height)
	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
	default:
		return m, nil
	}
	return m, m.maybeFetch()
}

func isWheel(msg tea.MouseMsg) bool {
	switch msg.Button {
	case tea.MouseButtonWheelUp, tea.MouseButtonWheelDown:
		return true
	}
	return false
}

// refresh pulls a new snapshot when the controller state moved, and keeps
// the spinner line animated while loading.
func (m *Model) refresh() {
	if v := m.ctrl.Version(); v != m.state.Version {
		m.state = m.ctrl.Snapshot()
		m.syncContent()
		return
	}
	if m.state.Loading {
		m.syncContent()
	}
}

func (m *Model) syncContent() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(renderFeed(m.state.Posts, m.fetchState(), m.width, m.spinner.View()))
}
