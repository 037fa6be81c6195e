package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/bookfinder/internal/catalog"
	"github.com/billmal071/bookfinder/internal/session"
)

type searchFunc func(ctx context.Context, query string) (*catalog.SearchResult, error)

func (f searchFunc) Search(ctx context.Context, query string) (*catalog.SearchResult, error) {
	return f(ctx, query)
}

func staticSearcher(books ...catalog.Book) searchFunc {
	return func(_ context.Context, q string) (*catalog.SearchResult, error) {
		return &catalog.SearchResult{Query: q, Books: books}, nil
	}
}

// collect runs cmd and expands batches, returning the produced messages.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, c := range batch {
			msgs = append(msgs, collect(c)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

// settle feeds search completions produced by cmd back into the model.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range collect(cmd) {
		if _, ok := msg.(searchDoneMsg); ok {
			next, _ := m.Update(msg)
			m = next.(Model)
		}
	}
	return m
}

func typeText(m Model, text string) Model {
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return next.(Model)
}

func press(m Model, key tea.KeyType) (Model, tea.Cmd) {
	next, cmd := m.Update(tea.KeyMsg{Type: key})
	return next.(Model), cmd
}

func TestModel_SearchShowsResults(t *testing.T) {
	sess := session.New(staticSearcher(
		catalog.Book{ID: "abc", Title: "Dune", Authors: []string{"Frank Herbert"}},
	))
	m := NewModel(context.Background(), sess, "")

	m = typeText(m, "dune")
	m, cmd := press(m, tea.KeyEnter)
	require.NotNil(t, cmd)
	m = settle(t, m, cmd)

	assert.Equal(t, session.PhaseLoaded, m.State().Phase)
	assert.Equal(t, focusList, m.focus)
	view := m.View()
	assert.Contains(t, view, "Dune")
	assert.Contains(t, view, "Frank Herbert")
	assert.Contains(t, view, "No Image")
}

func TestModel_EmptyQueryDoesNothing(t *testing.T) {
	sess := session.New(searchFunc(func(context.Context, string) (*catalog.SearchResult, error) {
		t.Fatal("no search expected")
		return nil, nil
	}))
	m := NewModel(context.Background(), sess, "")

	m, cmd := press(m, tea.KeyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, session.PhaseIdle, m.State().Phase)
}

func TestModel_ShowsError(t *testing.T) {
	sess := session.New(searchFunc(func(context.Context, string) (*catalog.SearchResult, error) {
		return nil, errors.New("boom")
	}))
	m := NewModel(context.Background(), sess, "")

	m = typeText(m, "dune")
	m, cmd := press(m, tea.KeyEnter)
	m = settle(t, m, cmd)

	assert.Contains(t, m.View(), "Error: boom")
	assert.Equal(t, focusInput, m.focus)
}

func TestModel_LoadingView(t *testing.T) {
	release := make(chan struct{})
	sess := session.New(searchFunc(func(_ context.Context, q string) (*catalog.SearchResult, error) {
		<-release
		return &catalog.SearchResult{Query: q}, nil
	}))
	defer close(release)

	m := NewModel(context.Background(), sess, "")
	m = typeText(m, "dune")
	m, _ = press(m, tea.KeyEnter)

	assert.True(t, m.State().Loading())
	assert.Contains(t, m.View(), "Searching...")
}

func TestModel_DetailsView(t *testing.T) {
	sess := session.New(staticSearcher(
		catalog.Book{ID: "abc", Title: "Dune", Thumbnail: "http://books.google.com/cover.jpg"},
		catalog.Book{ID: "def", Title: "Dune Messiah"},
	))
	m := NewModel(context.Background(), sess, "dune")

	next, cmd := m.Update(submitMsg{})
	m = settle(t, next.(Model), cmd)
	require.Equal(t, focusList, m.focus)

	m, _ = press(m, tea.KeyEnter)
	assert.True(t, m.showDetails)
	assert.Equal(t, "abc", sess.State().SelectedID)

	view := m.View()
	assert.Contains(t, view, "Title: Dune")
	assert.Contains(t, view, "Authors: Unknown Author")
	assert.Contains(t, view, "Book ID: abc")
	assert.Contains(t, view, "https://books.google.com/cover.jpg")

	m, _ = press(m, tea.KeyEsc)
	assert.False(t, m.showDetails)
}

func TestModel_InitialQuerySearchesOnStart(t *testing.T) {
	sess := session.New(staticSearcher(catalog.Book{ID: "abc", Title: "Dune"}))
	m := NewModel(context.Background(), sess, "dune")

	found := false
	for _, msg := range collect(m.Init()) {
		if _, ok := msg.(submitMsg); ok {
			found = true
		}
	}
	assert.True(t, found, "Init should submit the initial query")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}

func TestModel_FailedSearchHidesPreviousResults(t *testing.T) {
	fail := false
	sess := session.New(searchFunc(func(_ context.Context, q string) (*catalog.SearchResult, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return &catalog.SearchResult{Query: q, Books: []catalog.Book{{ID: "abc", Title: "Dune"}}}, nil
	}))
	m := NewModel(context.Background(), sess, "")

	m = typeText(m, "dune")
	m, cmd := press(m, tea.KeyEnter)
	m = settle(t, m, cmd)
	require.Equal(t, focusList, m.focus)

	fail = true
	m, _ = press(m, tea.KeyTab)
	m, cmd = press(m, tea.KeyEnter)
	m = settle(t, m, cmd)
	require.Equal(t, session.PhaseFailed, m.State().Phase)
	assert.Equal(t, focusInput, m.focus)

	m, _ = press(m, tea.KeyTab)
	assert.Equal(t, focusInput, m.focus)

	m.setFocus(focusList)
	m, _ = press(m, tea.KeyEnter)
	assert.False(t, m.showDetails)
	assert.Equal(t, focusInput, m.focus)
	assert.Empty(t, sess.State().SelectedID)
}
