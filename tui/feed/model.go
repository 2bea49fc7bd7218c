package feed

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/scrollfeed/app/feed"
	"github.com/CrestNiraj12/scrollfeed/tui/common"
)

// Lines reserved around the viewport: header (2) + band (1) and footer (1).
const (
	headerHeight = 3
	footerHeight = 1
)

// PageLoadedMsg is sent when a page fetch finished, successfully or not.
type PageLoadedMsg struct {
	Outcome feed.Outcome
}

// FetchState is the part of the controller state the renderer needs.
type FetchState struct {
	Loading  bool
	HasError bool
}

// Model is the feed view: a scrollable list of post cards driven by a
// feed.Controller.
type Model struct {
	ctx      context.Context // Bounds page requests; cancelled when the program exits
	ctrl     *feed.Controller
	keys     common.KeyMap
	spinner  spinner.Model
	viewport viewport.Model
	state    feed.State
	width    int
	height   int
	ready    bool // Set after the first WindowSizeMsg
}

// New creates a feed model for the given controller. Page requests run
// under ctx.
func New(ctx context.Context, ctrl *feed.Controller) Model {
	if ctx == nil {
		ctx = context.Background()
	}
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6600"))

	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		keys:     common.DefaultKeyMap(),
		spinner:  s,
		viewport: viewport.New(0, 0),
		state:    ctrl.Snapshot(),
	}
}

// Init starts the spinner and the initial page load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		initialLoad(m.ctx, m.ctrl),
	)
}

// Update handles messages for the feed view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m.update(msg)
}

// State returns the last state snapshot the view rendered.
func (m Model) State() feed.State {
	return m.state
}

func (m Model) fetchState() FetchState {
	return FetchState{Loading: m.state.Loading, HasError: m.state.HasError}
}

// metrics reports the viewport position in the controller's terms.
func (m Model) metrics() feed.Viewport {
	return feed.Viewport{
		Height:        m.viewport.Height,
		ScrollTop:     m.viewport.YOffset,
		ContentHeight: m.viewport.TotalLineCount(),
	}
}
