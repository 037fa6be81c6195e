package session

import (
	"github.com/billmal071/bookfinder/internal/catalog"
)

// Phase is the active search state shown to the user.
type Phase int

const (
	// PhaseIdle means no search has been started.
	PhaseIdle Phase = iota
	// PhaseLoading means a search is in flight.
	PhaseLoading
	// PhaseLoaded means the latest search returned books (possibly none).
	PhaseLoaded
	// PhaseFailed means the latest search failed; Err holds the message.
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is an immutable snapshot of a Session.
//
// Books holds the most recent successful result. It is kept when a later
// search fails, so Phase decides whether it is current.
type State struct {
	Query      string
	Phase      Phase
	Books      []catalog.Book
	Err        string
	SelectedID string
	Token      uint64
}

// Loading reports whether a search is in flight.
func (s State) Loading() bool {
	return s.Phase == PhaseLoading
}

// Error returns the failure message, empty unless Phase is PhaseFailed.
func (s State) Error() string {
	if s.Phase != PhaseFailed {
		return ""
	}
	return s.Err
}

func cloneBooks(books []catalog.Book) []catalog.Book {
	if books == nil {
		return nil
	}
	dup := make([]catalog.Book, len(books))
	for i, b := range books {
		if b.Authors != nil {
			b.Authors = append([]string(nil), b.Authors...)
		}
		dup[i] = b
	}
	return dup
}
