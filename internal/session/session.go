// Package session owns the search state shared by the presentation layers.
//
// A Session is the single writer of its State. Every search gets a token from
// a monotonic counter; a completing search writes state only while its token
// is the latest one issued, so an older, slower request can never overwrite
// the outcome of a newer one. Starting a search also cancels the context of
// the search it supersedes.
//
// Presentation code reads snapshots through State and learns about
// transitions through Subscribe.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/billmal071/bookfinder/internal/catalog"
)

// UnknownError is the message stored when a failure carries no text.
const UnknownError = "Unknown error"

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for transition and failure logs.
func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

type observer struct {
	id int
	fn func(State)
}

// Session holds the query, the latest results and the selection.
type Session struct {
	searcher catalog.Searcher
	log      *logrus.Entry

	mu        sync.Mutex
	state     State
	seq       uint64
	cancel    context.CancelFunc
	observers []observer
	nextObsID int

	// notifyMu orders delivery; delivered is the last seq handed to observers.
	notifyMu  sync.Mutex
	delivered uint64
}

// New creates an idle session backed by searcher.
func New(searcher catalog.Searcher, opts ...Option) *Session {
	s := &Session{
		searcher: searcher,
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("component", "session")
	return s
}

// SetQuery replaces the query text. It does not start a search.
func (s *Session) SetQuery(query string) {
	s.mu.Lock()
	s.state.Query = query
	s.mu.Unlock()
}

// Query returns the current query text.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Query
}

// State returns a snapshot of the session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// PerformSearch starts a search for the current query.
//
// With an empty query it does nothing and returns (nil, false). Otherwise the
// session enters PhaseLoading and the search runs on its own goroutine; the
// returned channel is closed once the outcome has been applied, or dropped
// because a newer search started meanwhile.
func (s *Session) PerformSearch(ctx context.Context) (<-chan struct{}, bool) {
	s.mu.Lock()
	query := s.state.Query
	if query == "" {
		s.mu.Unlock()
		return nil, false
	}

	if s.cancel != nil {
		s.cancel()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.state.Token++
	token := s.state.Token
	s.state.Phase = PhaseLoading
	s.state.Err = ""
	snap, seq := s.transitionLocked()
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{"query": query, "token": token}).Debug("search started")
	s.notify(snap, seq)

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		result, err := s.searcher.Search(searchCtx, query)
		s.complete(token, result, err)
	}()
	return done, true
}

func (s *Session) complete(token uint64, result *catalog.SearchResult, err error) {
	s.mu.Lock()
	if token != s.state.Token {
		latest := s.state.Token
		s.mu.Unlock()
		s.log.WithFields(logrus.Fields{"token": token, "latest": latest}).Debug("dropping stale search result")
		return
	}
	s.cancel = nil

	entry := s.log.WithFields(logrus.Fields{"query": s.state.Query, "token": token})
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = UnknownError
		}
		s.state.Phase = PhaseFailed
		s.state.Err = msg
		entry = entry.WithField("error_kind", catalog.ErrorKind(err))
	} else {
		books := []catalog.Book{}
		if result != nil && result.Books != nil {
			books = cloneBooks(result.Books)
		}
		s.state.Books = books
		s.state.Phase = PhaseLoaded
		entry = entry.WithField("books", len(books))
	}
	snap, seq := s.transitionLocked()
	s.mu.Unlock()

	if err != nil {
		entry.Warnf("search failed: %s", snap.Err)
	} else {
		entry.Debug("search loaded")
	}
	s.notify(snap, seq)
}

// GetBookByID returns the first book in the current results with the given ID.
func (s *Session) GetBookByID(id string) (catalog.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return findBook(s.state.Books, id)
}

// Select records id as the selected book.
func (s *Session) Select(id string) {
	s.mu.Lock()
	s.state.SelectedID = id
	snap, seq := s.transitionLocked()
	s.mu.Unlock()
	s.notify(snap, seq)
}

// ClearSelection forgets the selected book.
func (s *Session) ClearSelection() {
	s.Select("")
}

// Selected resolves the selected ID against the current results.
func (s *Session) Selected() (catalog.Book, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.SelectedID == "" {
		return catalog.Book{}, false
	}
	return findBook(s.state.Books, s.state.SelectedID)
}

// Subscribe registers fn to be called with a snapshot after every transition.
// Observers run on the goroutine that caused the transition, never under the
// session lock, in registration order. Snapshots arrive in transition order;
// one overtaken by a newer transition is skipped. fn may read State but must
// not call methods that cause a transition.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observer{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, o := range s.observers {
			if o.id == id {
				s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

func (s *Session) notify(snap State, seq uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if seq <= s.delivered {
		return
	}
	s.delivered = seq

	s.mu.Lock()
	observers := make([]observer, len(s.observers))
	copy(observers, s.observers)
	s.mu.Unlock()

	for _, o := range observers {
		o.fn(snap)
	}
}

// transitionLocked numbers a state change and snapshots it.
func (s *Session) transitionLocked() (State, uint64) {
	s.seq++
	return s.snapshotLocked(), s.seq
}

func (s *Session) snapshotLocked() State {
	snap := s.state
	snap.Books = cloneBooks(s.state.Books)
	return snap
}

func findBook(books []catalog.Book, id string) (catalog.Book, bool) {
	for _, b := range books {
		if b.ID == id {
			return b, true
		}
	}
	return catalog.Book{}, false
}
