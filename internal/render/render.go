package render

import (
	"fmt"
	"strings"

	"github.com/larkwiot/bookexplorer/internal/book"
	"github.com/larkwiot/bookexplorer/internal/session"
	"github.com/samber/lo"
)

type Kind int

const (
	KindWelcome Kind = iota
	KindLoading
	KindNoResults
	KindResults
)

func (k Kind) String() string {
	switch k {
	case KindWelcome:
		return "welcome"
	case KindLoading:
		return "loading"
	case KindNoResults:
		return "no-results"
	case KindResults:
		return "results"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const (
	IconLibrary = "📚"
	IconBook    = "📖"

	WelcomeTitle   = "Welcome to Book Explorer"
	WelcomeHint    = "Search for books by title, author, or keywords to explore the world of literature."
	SuggestTitle   = "Try searching for:"
	NoResultsTitle = "No books found"
	NoResultsHint  = "Try another search term or check your spelling"
	LoadingText    = "Searching for books..."
	RecentTitle    = "Recent Searches"
)

// Suggestions are offered on the welcome screen; picking one is the same as
// typing it and submitting.
var Suggestions = []string{"Harry Potter", "Stephen King", "Science Fiction", "Cooking"}

type Card struct {
	ID          string
	Title       string
	Authors     string
	Description string
	Meta        string
	Categories  []string
	Bookmarked  bool
}

type Screen struct {
	Kind        Kind
	Icon        string
	Heading     string
	Message     string
	Hint        string
	Cards       []Card
	Recent      []string
	Suggestions []string
	// Generation of the result list the cards were built from.
	Generation uint64
}

// Render projects the session state onto a screen. It has no side effects;
// bookmarks only contribute the flag of each card.
func Render(state session.State, bookmarks *Bookmarks, clip int) Screen {
	screen := Screen{Generation: state.Generation}

	if len(state.Recent) > 0 && len(state.Results) == 0 {
		screen.Recent = state.Recent
	}

	switch {
	case state.Loading:
		screen.Kind = KindLoading
		screen.Message = LoadingText
	case len(state.Results) > 0:
		screen.Kind = KindResults
		screen.Heading = fmt.Sprintf("%d results for %q", len(state.Results), state.Query)
		ids := CardIDs(state.Results)
		screen.Cards = lo.Map(state.Results, func(s book.Summary, i int) Card {
			card := NewCard(s, clip, bookmarks.IsMarked(state.Generation, ids[i]))
			card.ID = ids[i]
			return card
		})
	case strings.TrimSpace(state.Query) != "":
		screen.Kind = KindNoResults
		screen.Icon = IconBook
		screen.Message = NoResultsTitle
		screen.Hint = NoResultsHint
	default:
		screen.Kind = KindWelcome
		screen.Icon = IconLibrary
		screen.Message = WelcomeTitle
		screen.Hint = WelcomeHint
		screen.Suggestions = Suggestions
	}

	return screen
}

// CardIDs returns one key per summary, unique within the list. A repeated
// book id gets an occurrence suffix ("id#2", "id#3") so that every card keeps
// its own bookmark flag.
func CardIDs(results []book.Summary) []string {
	ids := make([]string, len(results))
	seen := make(map[string]int, len(results))
	for i, s := range results {
		id := s.ID()
		seen[id]++
		if n := seen[id]; n > 1 {
			id = fmt.Sprintf("%s#%d", id, n)
		}
		ids[i] = id
	}
	return ids
}

func NewCard(s book.Summary, clip int, bookmarked bool) Card {
	return Card{
		ID:          s.ID(),
		Title:       s.Title,
		Authors:     s.AuthorsLine(),
		Description: s.DescriptionLine(clip),
		Meta:        s.MetaLine(),
		Categories:  s.TopCategories(),
		Bookmarked:  bookmarked,
	}
}
