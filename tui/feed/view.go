package feed

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/CrestNiraj12/scrollfeed/domain"
	"github.com/CrestNiraj12/scrollfeed/tui/common"
)

const (
	maxCardWidth = 88
	minCardWidth = 24
)

// View renders the header, the scrollable feed and the footer.
func (m Model) View() string {
	if !m.ready {
		return fmt.Sprintf("\n  %s Loading posts...\n", m.spinner.View())
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderHeader() string {
	title := common.AppTitleStyle.Render("scrollfeed")
	tagline := common.TaglineStyle.Render("<posts, one page at a time>")
	band := common.BackgroundStyle.Render(strings.Repeat("·:", max(m.width/2, 1)))
	return common.ClampLines(title+tagline+"\n"+band, m.width)
}

func (m Model) renderFooter() string {
	hints := make([]string, 0, 5)
	for _, b := range m.keys.ShortHelp() {
		hints = append(hints, b.Help().Key+" "+b.Help().Desc)
	}
	counters := fmt.Sprintf("posts %d · authors %d · next #%d",
		len(m.state.Posts), len(m.state.Authors), m.state.Cursor)
	line := counters + "  │  " + strings.Join(hints, "  ")
	return common.ClampLines(common.StatusBarStyle.Render(line), m.width)
}

// renderFeed lays out one card per post in list order, followed by the
// loading line or the terminal notice.
func renderFeed(posts []domain.Post, fs FetchState, width int, spinnerView string) string {
	cardWidth := min(max(width-2, minCardWidth), maxCardWidth)

	blocks := make([]string, 0, len(posts)+1)
	for _, p := range posts {
		blocks = append(blocks, renderCard(p, cardWidth))
	}
	if fs.Loading && !fs.HasError {
		blocks = append(blocks, common.LoadingStyle.Render(spinnerView+" Loading posts..."))
	}
	if fs.HasError {
		blocks = append(blocks, common.NoticeStyle.Render("No more posts"))
	}
	return strings.Join(blocks, "\n")
}

// renderCard draws a post: avatar and username, a rule, the title and the
// wrapped content. width is the outer card width including the border.
func renderCard(p domain.Post, width int) string {
	inner := max(width-4, 8) // Border and horizontal padding

	name := common.MissingAuthorStyle.Render("unknown")
	if p.HasAuthor() {
		name = authorStyleFor(p.AuthorUsername).Render("@" + p.AuthorUsername)
	}
	header := common.AvatarStyle.Render(avatarGlyph(p.AuthorUsername)) + " " + name

	rule := common.RuleStyle.Render(strings.Repeat("─", inner))
	title := common.TitleStyle.Width(inner).Render(strings.TrimSpace(p.Title))
	body := common.ContentStyle.Width(inner).Render(strings.TrimSpace(p.Content))

	content := lipgloss.JoinVertical(lipgloss.Left, header, rule, title, body)
	return common.CardStyle.Width(inner + 2).Render(content)
}
