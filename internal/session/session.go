package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/larkwiot/bookexplorer/internal/book"
	"github.com/larkwiot/bookexplorer/internal/logger"
	"github.com/larkwiot/bookexplorer/internal/metrics"
	"github.com/larkwiot/bookexplorer/internal/providers"
)

const MaxRecentSearches = 5

// Notifier receives the completion notice of a search. Implementations must
// not block; delivery problems are theirs to log.
type Notifier interface {
	Notify(title, body string)
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) {}

// State is a copy of the session taken under lock, safe to hand to renderers.
type State struct {
	Query       string
	Results     []book.Summary
	Recent      []string
	Loading     bool
	Searched    bool
	LastFailure error
	// Generation changes every time Results is replaced.
	Generation uint64
}

// Ticket identifies one issued search.
type Ticket struct {
	Seq   uint64
	Query string
}

// Session is the search controller: it owns the query, the results, the
// recent-search history and the loading flag for one run of the program.
type Session struct {
	provider providers.Provider
	notifier Notifier

	lock        sync.Mutex
	query       string
	results     []book.Summary
	recent      []string
	loading     bool
	searched    bool
	lastFailure error
	seq         uint64
	generation  uint64
}

func New(provider providers.Provider, notifier Notifier) *Session {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &Session{
		provider: provider,
		notifier: notifier,
		results:  []book.Summary{},
		recent:   []string{},
	}
}

func (s *Session) SetQuery(query string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.query = query
}

func (s *Session) Snapshot() State {
	s.lock.Lock()
	defer s.lock.Unlock()
	return State{
		Query:       s.query,
		Results:     slices.Clone(s.results),
		Recent:      slices.Clone(s.recent),
		Loading:     s.loading,
		Searched:    s.searched,
		LastFailure: s.lastFailure,
		Generation:  s.generation,
	}
}

// Begin accepts a raw query and issues a ticket for it. It returns false and
// leaves the session untouched when the trimmed query is empty.
func (s *Session) Begin(raw string) (Ticket, bool) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return Ticket{}, false
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.seq++
	s.query = query
	s.loading = true
	return Ticket{Seq: s.seq, Query: query}, true
}

// Resolve applies the outcome of a ticket. Outcomes of tickets older than the
// latest issued one are dropped and Resolve reports false.
func (s *Session) Resolve(ctx context.Context, ticket Ticket, outcome providers.Outcome) bool {
	ctx = logger.ContextWithSearchID(ctx, ticket.Seq)

	s.lock.Lock()
	if ticket.Seq != s.seq {
		s.lock.Unlock()
		metrics.StaleResultsTotal.Inc()
		logger.For(ctx).Debugf("discarding stale results for %q", ticket.Query)
		return false
	}

	s.loading = false
	s.searched = true
	s.generation++

	results, err := outcome.Get()
	if err != nil {
		results = []book.Summary{}
	}
	s.results = slices.Clone(results)
	s.lastFailure = err
	s.recent = pushRecent(s.recent, ticket.Query)
	s.lock.Unlock()

	switch {
	case err != nil:
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeFailed).Inc()
		logger.For(ctx).Errorf("search error for %q: %v", ticket.Query, err)
	case len(results) == 0:
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeEmpty).Inc()
	default:
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeFound).Inc()
	}

	s.notifier.Notify("Search complete!", fmt.Sprintf("Found %d books related to %q", len(results), ticket.Query))
	return true
}

// Search runs one lookup for raw and applies it. It never returns an error:
// failures are logged and shown as an empty result list.
func (s *Session) Search(ctx context.Context, raw string) {
	ticket, ok := s.Begin(raw)
	if !ok {
		metrics.SearchesTotal.WithLabelValues(metrics.OutcomeIgnored).Inc()
		return
	}

	ctx = logger.ContextWithSearchID(ctx, ticket.Seq)
	done := logger.Track(ctx, fmt.Sprintf("search %q", ticket.Query))
	defer done()

	s.Resolve(ctx, ticket, s.Lookup(ctx, ticket))
}

// Lookup performs the provider call for a ticket. It is split out so that an
// event loop can run it off its own goroutine and hand the outcome to Resolve.
func (s *Session) Lookup(ctx context.Context, ticket Ticket) providers.Outcome {
	return s.provider.Lookup(ctx, ticket.Query)
}

func (s *Session) SelectRecentSearch(ctx context.Context, term string) {
	s.SetQuery(term)
	s.Search(ctx, term)
}

// pushRecent prepends query unless it is already present; existing entries
// keep their position.
func pushRecent(recent []string, query string) []string {
	if slices.Contains(recent, query) {
		return recent
	}
	next := append([]string{query}, recent...)
	if len(next) > MaxRecentSearches {
		next = next[:MaxRecentSearches]
	}
	return next
}
