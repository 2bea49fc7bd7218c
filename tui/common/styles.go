package common

import "github.com/charmbracelet/lipgloss"

var (
	// AppTitleStyle styles the header label. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6600")).
			Padding(1, 0, 0, 1)

	// TaglineStyle styles the app's tagline.
	TaglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")). // Dimmed grey
			Italic(true).
			MarginLeft(1)

	// BackgroundStyle styles the decorative band under the header.
	BackgroundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3A3A4A")).
			Faint(true)

	// CardStyle frames a single post.
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1)

	// AvatarStyle styles the avatar placeholder.
	AvatarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1E1E2E")).
			Background(lipgloss.Color("#7DC4E4")).
			Padding(0, 1)

	// MissingAuthorStyle styles posts whose author could not be resolved.
	MissingAuthorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6E738D")).
				Italic(true)

	// RuleStyle styles the separator between card header and body.
	RuleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#45475A"))

	// TitleStyle styles post titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#F5A97F"))

	// ContentStyle styles post content text.
	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// LoadingStyle styles the loading line.
	LoadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Padding(1, 0, 0, 2)

	// NoticeStyle styles the terminal "no more posts" message.
	NoticeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true).
			Padding(1, 0, 0, 2)

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			PaddingLeft(1)
)
