package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	"github.com/larkwiot/bookexplorer/internal/theme"
)

const (
	TitleLines       = 2
	DescriptionLines = 3
	minCardWidth     = 24

	glyphBookmarked = "★"
	glyphOpen       = "☆"
)

// clipLines wraps s to width and keeps at most n lines, marking a cut with "…".
func clipLines(s string, width, n int) string {
	if width <= 0 || n <= 0 {
		return ""
	}
	lines := strings.Split(xansi.Wrap(s, width, " -"), "\n")
	if len(lines) <= n {
		return strings.Join(lines, "\n")
	}
	lines = lines[:n]
	last := strings.TrimRight(lines[n-1], " ")
	if xansi.StringWidth(last) >= width {
		last = xansi.Truncate(last, width-1, "")
	}
	lines[n-1] = last + "…"
	return strings.Join(lines, "\n")
}

// DrawCard renders one card at the given outer width.
func DrawCard(card Card, styles theme.Styles, width int, focused bool) string {
	style := styles.Card
	if focused {
		style = styles.CardFocused
	}
	if width < minCardWidth {
		width = minCardWidth
	}
	inner := width - style.GetHorizontalFrameSize()

	glyph := glyphOpen
	if card.Bookmarked {
		glyph = glyphBookmarked
	}
	titleWidth := inner - xansi.StringWidth(glyph) - 1

	title := lipgloss.JoinHorizontal(lipgloss.Top,
		styles.Title.Width(titleWidth).Render(clipLines(card.Title, titleWidth, TitleLines)),
		" ",
		styles.Accent.Render(glyph),
	)

	parts := []string{
		title,
		styles.Subtitle.Render(xansi.Truncate(card.Authors, inner, "…")),
		styles.Subtitle.Render(strings.Repeat("─", inner)),
		styles.Body.Render(clipLines(card.Description, inner, DescriptionLines)),
	}

	if len(card.Categories) > 0 {
		chips := make([]string, 0, len(card.Categories))
		for _, category := range card.Categories {
			chips = append(chips, styles.Chip.Render(category))
		}
		parts = append(parts, xansi.Truncate(strings.Join(chips, " "), inner, "…"))
	}
	if card.Meta != "" {
		parts = append(parts, styles.Muted.Render(xansi.Truncate(card.Meta, inner, "…")))
	}

	return style.Width(inner + style.GetHorizontalPadding()).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

// Draw renders a whole screen body. focused is the index of the highlighted
// card, or -1 for none.
func Draw(screen Screen, styles theme.Styles, width int, focused int) string {
	var b strings.Builder

	switch screen.Kind {
	case KindLoading:
		b.WriteString(styles.Accent.Render(screen.Message))
		b.WriteString("\n")

	case KindResults:
		b.WriteString(styles.Title.Render(screen.Heading))
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(strings.Repeat("─", max(width, minCardWidth))))
		b.WriteString("\n")
		for i, card := range screen.Cards {
			b.WriteString(DrawCard(card, styles, width, i == focused))
			b.WriteString("\n")
		}

	case KindNoResults:
		b.WriteString(fmt.Sprintf("%s  %s\n", screen.Icon, styles.Title.Render(screen.Message)))
		b.WriteString(styles.Subtitle.Render(screen.Hint))
		b.WriteString("\n")

	case KindWelcome:
		b.WriteString(fmt.Sprintf("%s  %s\n", screen.Icon, styles.Header.Render(screen.Message)))
		b.WriteString(styles.Body.Render(xansi.Wrap(screen.Hint, max(width, minCardWidth), " ")))
		b.WriteString("\n\n")
		b.WriteString(styles.Subtitle.Render(SuggestTitle))
		b.WriteString("\n")
		b.WriteString(DrawChips(screen.Suggestions, styles, ""))
		b.WriteString("\n")
	}

	if len(screen.Recent) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Subtitle.Render(RecentTitle))
		b.WriteString("\n")
		b.WriteString(DrawChips(screen.Recent, styles, "↺ "))
		b.WriteString("\n")
	}

	return b.String()
}

// DrawChips numbers the chips so they can be picked with alt+1..9.
func DrawChips(labels []string, styles theme.Styles, prefix string) string {
	chips := make([]string, 0, len(labels))
	for i, label := range labels {
		chips = append(chips, styles.Chip.Render(fmt.Sprintf("%d %s%s", i+1, prefix, label)))
	}
	return strings.Join(chips, " ")
}

// Plain renders cards without styling, for piped output.
func Plain(screen Screen) string {
	var b strings.Builder
	switch screen.Kind {
	case KindResults:
		fmt.Fprintln(&b, screen.Heading)
		for _, card := range screen.Cards {
			fmt.Fprintln(&b)
			fmt.Fprintln(&b, card.Title)
			fmt.Fprintln(&b, "  "+card.Authors)
			fmt.Fprintln(&b, "  "+card.Description)
			if card.Meta != "" {
				fmt.Fprintln(&b, "  "+card.Meta)
			}
		}
	case KindNoResults:
		fmt.Fprintln(&b, screen.Message)
		fmt.Fprintln(&b, screen.Hint)
	default:
		fmt.Fprintln(&b, screen.Message)
	}
	return b.String()
}
