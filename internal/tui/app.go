package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/larkwiot/bookexplorer/internal/ads"
	"github.com/larkwiot/bookexplorer/internal/notify"
	"github.com/larkwiot/bookexplorer/internal/providers"
	"github.com/larkwiot/bookexplorer/internal/render"
	"github.com/larkwiot/bookexplorer/internal/session"
	"github.com/larkwiot/bookexplorer/internal/theme"
)

type tab int

const (
	tabHome tab = iota
	tabExplore
)

const toastDuration = 3 * time.Second

// Options wires the collaborators of the explorer screen.
type Options struct {
	Session           *session.Session
	Theme             theme.Theme
	DescriptionClip   int
	Ads               *ads.Service
	InterstitialEvery uint
	Toasts            <-chan notify.Notification
}

type searchResultMsg struct {
	ticket  session.Ticket
	outcome providers.Outcome
}

type toastMsg notify.Notification

type clearToastMsg struct{ id int }

type model struct {
	ctx     context.Context
	opts    Options
	session *session.Session
	theme   theme.Theme
	styles  theme.Styles
	keys    keyMap

	input     textinput.Model
	spinner   spinner.Model
	bookmarks *render.Bookmarks

	tab          tab
	cursor       int
	width        int
	height       int
	toast        string
	toastID      int
	activeCmd    string
	completed    uint
	interstitial *ads.Interstitial
}

func newModel(ctx context.Context, opts Options) model {
	ti := textinput.New()
	ti.Placeholder = "Search Books"
	ti.Prompt = "🔍 "
	ti.CharLimit = 256
	ti.Width = 40
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	m := model{
		ctx:       ctx,
		opts:      opts,
		session:   opts.Session,
		theme:     opts.Theme,
		styles:    opts.Theme.Styles(),
		keys:      newKeyMap(),
		input:     ti,
		spinner:   sp,
		bookmarks: render.NewBookmarks(),
		tab:       tabHome,
	}
	m.spinner.Style = m.styles.Accent
	return m
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, waitForToast(m.opts.Toasts))
}

func waitForToast(ch <-chan notify.Notification) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return toastMsg(n)
	}
}

func (m model) lookupCmd(ticket session.Ticket) tea.Cmd {
	return func() tea.Msg {
		return searchResultMsg{ticket: ticket, outcome: m.session.Lookup(m.ctx, ticket)}
	}
}

// submit starts a search for raw. Blank input does nothing.
func (m *model) submit(raw string) tea.Cmd {
	m.session.SetQuery(raw)
	ticket, ok := m.session.Begin(raw)
	if !ok {
		return nil
	}
	m.tab = tabExplore
	m.input.SetValue(ticket.Query)
	m.input.CursorEnd()
	return tea.Batch(m.lookupCmd(ticket), m.spinner.Tick)
}

func (m model) screen() render.Screen {
	return render.Render(m.session.Snapshot(), m.bookmarks, m.opts.DescriptionClip)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, min(60, msg.Width-12))
		return m, nil

	case clearActiveCmdMsg:
		m.activeCmd = ""
		return m, nil

	case searchResultMsg:
		if !m.session.Resolve(m.ctx, msg.ticket, msg.outcome) {
			return m, nil
		}
		m.cursor = 0
		m.completed++
		if m.opts.Ads != nil {
			m.opts.Ads.Rotate()
			if m.opts.InterstitialEvery > 0 && m.completed%m.opts.InterstitialEvery == 0 {
				if ad, ok := m.opts.Ads.ShowInterstitial(); ok {
					m.interstitial = &ad
				}
			}
		}
		return m, nil

	case toastMsg:
		m.toastID++
		m.toast = fmt.Sprintf("%s %s", msg.Title, msg.Body)
		id := m.toastID
		return m, tea.Batch(
			waitForToast(m.opts.Toasts),
			tea.Tick(toastDuration, func(time.Time) tea.Msg { return clearToastMsg{id: id} }),
		)

	case clearToastMsg:
		if msg.id == m.toastID {
			m.toast = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.session.Snapshot().Loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}

	if m.interstitial != nil {
		m.interstitial = nil
		if m.opts.Ads != nil {
			m.opts.Ads.DismissInterstitial()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.SwitchTab):
		if m.tab == tabHome {
			m.tab = tabExplore
		} else {
			m.tab = tabHome
		}
		return m, nil

	case key.Matches(msg, m.keys.Theme):
		m.theme = m.theme.Toggle()
		m.styles = m.theme.Styles()
		m.spinner.Style = m.styles.Accent
		m.activeCmd = m.keys.Theme.Help().Key
		return m, highlightCmd()
	}

	if m.tab == tabHome {
		if key.Matches(msg, m.keys.Submit) {
			m.tab = tabExplore
		}
		return m, nil
	}

	screen := m.screen()

	switch {
	case key.Matches(msg, m.keys.Submit):
		m.activeCmd = m.keys.Submit.Help().Key
		return m, tea.Batch(m.submit(m.input.Value()), highlightCmd())

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(screen.Cards)-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.Bookmark):
		if m.cursor < len(screen.Cards) {
			m.bookmarks.Toggle(screen.Generation, screen.Cards[m.cursor].ID)
			m.activeCmd = m.keys.Bookmark.Help().Key
			return m, highlightCmd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.input.SetValue("")
		m.session.SetQuery("")
		return m, nil

	case key.Matches(msg, m.keys.Pick):
		idx, ok := pickIndex(msg.String())
		if !ok {
			return m, nil
		}
		chips := screen.Recent
		if screen.Kind == render.KindWelcome {
			chips = screen.Suggestions
		}
		if idx >= len(chips) {
			return m, nil
		}
		return m, m.submit(chips[idx])
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.session.SetQuery(m.input.Value())
	return m, cmd
}

func (m model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	if m.interstitial != nil {
		box := m.styles.Overlay.Render(m.interstitial.Text + "\n\n" + m.styles.Subtitle.Render("press any key to continue"))
		if m.height > 0 {
			return lipgloss.Place(width, m.height, lipgloss.Center, lipgloss.Center, box)
		}
		return box
	}

	themeGlyph := "☾"
	if m.theme.IsDark() {
		themeGlyph = "☀"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		m.styles.Header.Render("Book Explorer"),
		m.styles.Subtitle.Render(" "+themeGlyph),
	)

	tabs := []string{"Home", "Explore"}
	for i, name := range tabs {
		if tab(i) == m.tab {
			tabs[i] = m.styles.TabActive.Render(name)
		} else {
			tabs[i] = m.styles.TabInactive.Render(name)
		}
	}

	var body string
	if m.tab == tabHome {
		body = m.homeView(width)
	} else {
		body = m.exploreView(width)
	}

	footerHeight := 3 + ads.BannerHeight
	if m.height > 0 {
		bodyHeight := max(3, m.height-footerHeight-3)
		body = lipgloss.NewStyle().MaxHeight(bodyHeight).Height(bodyHeight).Render(body)
	}

	banner := ads.Placeholder()
	if m.opts.Ads != nil {
		banner = m.opts.Ads.Banner()
	}

	bindings := []key.Binding{m.keys.Submit, m.keys.SwitchTab, m.keys.Theme, m.keys.Quit}
	if m.tab == tabExplore {
		bindings = []key.Binding{m.keys.Submit, m.keys.Up, m.keys.Down, m.keys.Bookmark, m.keys.Pick, m.keys.Clear, m.keys.SwitchTab, m.keys.Theme, m.keys.Quit}
	}

	parts := []string{
		header,
		strings.Join(tabs, ""),
		"",
		body,
		m.styles.Toast.Render(m.toast),
		m.styles.Banner.Width(width).Height(ads.BannerHeight).MaxHeight(ads.BannerHeight).Render(banner),
		renderFooterBar(bindings, m.activeCmd, m.styles),
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m model) homeView(width int) string {
	features := []struct{ title, description string }{
		{"Search Books", "Find books by title, author or keywords"},
		{"Save Favorites", "Bookmark books to read later"},
		{"Huge Library", "Access millions of books in our database"},
	}

	var b strings.Builder
	b.WriteString(render.IconLibrary + "  " + m.styles.Title.Render("Book Explorer") + "\n")
	b.WriteString(m.styles.Subtitle.Render("Discover your next favorite book with our easy-to-use search tool.") + "\n\n")
	for _, f := range features {
		b.WriteString(m.styles.Card.Width(min(width-2, 60)).Render(
			m.styles.Title.Render(f.title) + "\n" + m.styles.Subtitle.Render(f.description),
		))
		b.WriteString("\n")
	}
	b.WriteString("\n" + m.styles.Button.Render("Start Exploring →") + m.styles.Subtitle.Render("  enter"))
	return b.String()
}

func (m model) exploreView(width int) string {
	state := m.session.Snapshot()
	screen := render.Render(state, m.bookmarks, m.opts.DescriptionClip)

	label := "Search"
	button := m.styles.Button
	if state.Loading {
		label = m.spinner.View() + " Searching..."
	}
	if state.Loading || strings.TrimSpace(m.input.Value()) == "" {
		button = m.styles.ButtonOff
	}

	var b strings.Builder
	b.WriteString(m.input.View())
	b.WriteString("  ")
	b.WriteString(button.Render(label))
	b.WriteString("\n\n")

	// scroll so that the focused card is first
	focused := -1
	if screen.Kind == render.KindResults && len(screen.Cards) > 0 {
		cursor := min(m.cursor, len(screen.Cards)-1)
		screen.Cards = screen.Cards[cursor:]
		focused = 0
	}
	b.WriteString(render.Draw(screen, m.styles, max(24, width-2), focused))
	return b.String()
}

// Run starts the explorer and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	if opts.Session == nil {
		return fmt.Errorf("tui: no session")
	}

	p := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil {
		return fmt.Errorf("running explorer: %w", err)
	}
	return nil
}
