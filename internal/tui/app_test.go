package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/larkwiot/bookexplorer/internal/ads"
	"github.com/larkwiot/bookexplorer/internal/book"
	"github.com/larkwiot/bookexplorer/internal/notify"
	"github.com/larkwiot/bookexplorer/internal/providers"
	"github.com/larkwiot/bookexplorer/internal/render"
	"github.com/larkwiot/bookexplorer/internal/session"
	"github.com/larkwiot/bookexplorer/internal/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	lock    sync.Mutex
	queries []string
	fail    bool
}

func (p *stubProvider) Name() string   { return "stub" }
func (p *stubProvider) Disabled() bool { return false }
func (p *stubProvider) Lookup(_ context.Context, query string) providers.Outcome {
	p.lock.Lock()
	p.queries = append(p.queries, query)
	p.lock.Unlock()
	if p.fail {
		return providers.Failed(errors.New("offline"))
	}
	return providers.Found([]book.Summary{
		{VolumeID: query + "-1", Title: query + " one"},
		{VolumeID: query + "-2", Title: query + " two"},
	})
}

func newTestModel(t *testing.T, p providers.Provider, opts Options) model {
	t.Helper()
	opts.Session = session.New(p, nil)
	opts.Theme = theme.Light()
	opts.DescriptionClip = 150
	m := newModel(context.Background(), opts)
	m.width = 80
	return m
}

func press(t *testing.T, m model, msg tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(model), cmd
}

func typeText(t *testing.T, m model, text string) model {
	t.Helper()
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return m
}

// searchResults runs every command reachable from cmd and returns the search
// results among the produced messages. Ticks are abandoned after a short wait.
func searchResults(t *testing.T, cmd tea.Cmd) []searchResultMsg {
	t.Helper()
	if cmd == nil {
		return nil
	}

	msgs := make(chan tea.Msg, 16)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		go func() {
			msg := c()
			if batch, ok := msg.(tea.BatchMsg); ok {
				for _, sub := range batch {
					run(sub)
				}
				return
			}
			msgs <- msg
		}()
	}
	run(cmd)

	var results []searchResultMsg
	deadline := time.After(200 * time.Millisecond)
	for {
		select {
		case msg := <-msgs:
			if r, ok := msg.(searchResultMsg); ok {
				results = append(results, r)
			}
		case <-deadline:
			return results
		}
	}
}

func apply(t *testing.T, m model, msgs ...searchResultMsg) model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestTabSwitchesToExplore(t *testing.T) {
	m := newTestModel(t, &stubProvider{}, Options{})
	assert.Equal(t, tabHome, m.tab)
	assert.Contains(t, m.View(), "Start Exploring")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, tabExplore, m.tab)
	assert.Contains(t, m.View(), render.WelcomeTitle)
	assert.Contains(t, m.View(), "Harry Potter")
}

func TestSubmitSearchesAndShowsCards(t *testing.T) {
	p := &stubProvider{}
	m := newTestModel(t, p, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "  dune ")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.session.Snapshot().Loading)
	assert.Contains(t, m.View(), "Searching")

	results := searchResults(t, cmd)
	require.Len(t, results, 1)
	m = apply(t, m, results...)

	assert.Equal(t, []string{"dune"}, p.queries)
	state := m.session.Snapshot()
	assert.False(t, state.Loading)
	assert.Equal(t, []string{"dune"}, state.Recent)

	view := m.View()
	assert.Contains(t, view, `2 results for "dune"`)
	assert.Contains(t, view, "dune one")
	assert.Contains(t, view, book.UnknownAuthor)
}

func TestBlankSubmitDoesNothing(t *testing.T) {
	p := &stubProvider{}
	m := newTestModel(t, p, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "   ")

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, searchResults(t, cmd))
	assert.False(t, m.session.Snapshot().Loading)
	assert.Empty(t, p.queries)
}

func TestLatestSearchWins(t *testing.T) {
	m := newTestModel(t, &stubProvider{}, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m = typeText(t, m, "first")
	m, firstCmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = typeText(t, m, "second")
	m, secondCmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	first := searchResults(t, firstCmd)
	second := searchResults(t, secondCmd)
	require.Len(t, first, 1)
	require.Len(t, second, 1)

	m = apply(t, m, second[0], first[0])
	state := m.session.Snapshot()
	assert.Equal(t, "second", state.Query)
	assert.Equal(t, "second one", state.Results[0].Title)
	assert.Equal(t, []string{"second"}, state.Recent)
}

func TestFailedSearchShowsNoResults(t *testing.T) {
	m := newTestModel(t, &stubProvider{fail: true}, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "dune")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = apply(t, m, searchResults(t, cmd)...)

	assert.Contains(t, m.View(), render.NoResultsTitle)
	assert.Equal(t, []string{"dune"}, m.session.Snapshot().Recent)
}

func TestPickSuggestionSubmitsIt(t *testing.T) {
	p := &stubProvider{}
	m := newTestModel(t, p, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}, Alt: true})
	m = apply(t, m, searchResults(t, cmd)...)

	assert.Equal(t, []string{"Stephen King"}, p.queries)
	assert.Equal(t, "Stephen King", m.input.Value())
}

func TestBookmarkToggleFollowsCursor(t *testing.T) {
	m := newTestModel(t, &stubProvider{}, Options{})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "dune")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = apply(t, m, searchResults(t, cmd)...)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, m.cursor)
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlB})

	gen := m.session.Snapshot().Generation
	assert.False(t, m.bookmarks.IsMarked(gen, "dune-1"))
	assert.True(t, m.bookmarks.IsMarked(gen, "dune-2"))

	m, cmd = press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = apply(t, m, searchResults(t, cmd)...)
	next := m.session.Snapshot().Generation
	assert.NotEqual(t, gen, next)
	assert.False(t, m.bookmarks.IsMarked(next, "dune-2"))
	assert.Equal(t, 0, m.cursor)
}

func TestThemeToggle(t *testing.T) {
	m := newTestModel(t, &stubProvider{}, Options{})
	assert.False(t, m.theme.IsDark())
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.True(t, m.theme.IsDark())
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyCtrlT})
	assert.False(t, m.theme.IsDark())
}

func TestInterstitialAfterSearchesIsDismissedByAnyKey(t *testing.T) {
	service := ads.NewService(ads.Static([]string{"banner"}, []string{"full screen ad"}))
	service.Initialize(context.Background())

	m := newTestModel(t, &stubProvider{}, Options{Ads: service, InterstitialEvery: 1})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyTab})
	m = typeText(t, m, "dune")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = apply(t, m, searchResults(t, cmd)...)

	require.NotNil(t, m.interstitial)
	assert.True(t, service.Showing())
	assert.Contains(t, m.View(), "full screen ad")

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	assert.Nil(t, m.interstitial)
	assert.False(t, service.Showing())
	assert.Equal(t, 0, m.cursor)
}

func TestToastShowsNotification(t *testing.T) {
	sink := notify.NewChanSink(1)
	m := newTestModel(t, &stubProvider{}, Options{Toasts: sink.C})

	next, _ := m.Update(toastMsg{Title: "Search complete!", Body: `Found 2 books related to "dune"`})
	m = next.(model)
	assert.True(t, strings.Contains(m.View(), "Search complete!"))

	next, _ = m.Update(clearToastMsg{id: m.toastID})
	m = next.(model)
	assert.Empty(t, m.toast)
}

func TestPickIndex(t *testing.T) {
	idx, ok := pickIndex("alt+3")
	assert.True(t, ok)
	assert.Equal(t, 2, idx)

	_, ok = pickIndex("alt+9")
	assert.False(t, ok)
	_, ok = pickIndex("ctrl+1")
	assert.False(t, ok)
}
