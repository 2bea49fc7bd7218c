package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/scrollfeed/app/feed"
	"github.com/CrestNiraj12/scrollfeed/tui/common"
	feedview "github.com/CrestNiraj12/scrollfeed/tui/feed"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Ctx  context.Context // Program lifetime; nil means context.Background
	Feed *feed.Controller
}

// App is the root Bubble Tea model. It owns global keys and delegates the
// rest to the feed view.
type App struct {
	deps Deps
	feed feedview.Model
	keys common.KeyMap
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		deps: deps,
		feed: feedview.New(deps.Ctx, deps.Feed),
		keys: common.DefaultKeyMap(),
	}
}

// Init delegates to the feed view, which starts the initial load.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles global keys and routes everything else to the feed.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, a.keys.Quit) {
		return a, tea.Quit
	}

	updated, cmd := a.feed.Update(msg)
	a.feed = updated
	return a, cmd
}

// View renders the feed.
func (a App) View() string {
	return a.feed.View()
}
