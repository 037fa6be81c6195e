package shell

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/bookfinder/internal/catalog"
	"github.com/billmal071/bookfinder/internal/session"
)

type searchFunc func(ctx context.Context, query string) (*catalog.SearchResult, error)

func (f searchFunc) Search(ctx context.Context, query string) (*catalog.SearchResult, error) {
	return f(ctx, query)
}

func newShell(fn searchFunc) (*Shell, *session.Session, *bytes.Buffer) {
	var out bytes.Buffer
	sess := session.New(fn)
	return New(sess, &out), sess, &out
}

var books = []catalog.Book{
	{ID: "abc", Title: "Dune", Authors: []string{"Frank Herbert"}},
	{ID: "def", Title: "Dune Messiah", Thumbnail: "http://books.google.com/cover.jpg"},
}

func TestExecute_SearchPrintsResults(t *testing.T) {
	var gotQuery string
	sh, _, out := newShell(func(_ context.Context, q string) (*catalog.SearchResult, error) {
		gotQuery = q
		return &catalog.SearchResult{Query: q, Books: books}, nil
	})

	quit, err := sh.Execute(context.Background(), "  dune  ")
	require.NoError(t, err)
	assert.False(t, quit)
	assert.Equal(t, "dune", gotQuery)

	text := out.String()
	assert.Contains(t, text, "Found 2 result(s)")
	assert.Contains(t, text, "1. Dune\n   Author: Frank Herbert\n   Cover: No Image\n   ID: abc")
	assert.Contains(t, text, "Cover: https://books.google.com/cover.jpg")
}

func TestExecute_SearchError(t *testing.T) {
	sh, _, out := newShell(func(context.Context, string) (*catalog.SearchResult, error) {
		return nil, errors.New("connection refused")
	})

	_, err := sh.Execute(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, "Error: connection refused\n", out.String())
}

func TestExecute_NoResults(t *testing.T) {
	sh, _, out := newShell(func(_ context.Context, q string) (*catalog.SearchResult, error) {
		return &catalog.SearchResult{Query: q, Books: []catalog.Book{}}, nil
	})

	_, err := sh.Execute(context.Background(), "zzzznotfound")
	require.NoError(t, err)
	assert.Equal(t, "No books found.\n", out.String())
}

func TestExecute_ShowByIndexAndID(t *testing.T) {
	sh, sess, out := newShell(func(_ context.Context, q string) (*catalog.SearchResult, error) {
		return &catalog.SearchResult{Query: q, Books: books}, nil
	})
	_, err := sh.Execute(context.Background(), "dune")
	require.NoError(t, err)

	out.Reset()
	_, err = sh.Execute(context.Background(), ":show 2")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Title: Dune Messiah")
	assert.Contains(t, out.String(), "Cover: https://books.google.com/cover.jpg")
	assert.Equal(t, "def", sess.State().SelectedID)

	out.Reset()
	_, err = sh.Execute(context.Background(), ":show abc")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Authors: Frank Herbert")
	assert.Equal(t, "abc", sess.State().SelectedID)

	_, err = sh.Execute(context.Background(), ":show 9")
	assert.Error(t, err)
	_, err = sh.Execute(context.Background(), ":show nope")
	assert.Error(t, err)
	_, err = sh.Execute(context.Background(), ":show")
	assert.Error(t, err)
}

func TestExecute_ShowAfterFailedSearch(t *testing.T) {
	fail := false
	sh, _, out := newShell(func(_ context.Context, q string) (*catalog.SearchResult, error) {
		if fail {
			return nil, errors.New("timeout")
		}
		return &catalog.SearchResult{Query: q, Books: books}, nil
	})
	_, err := sh.Execute(context.Background(), "dune")
	require.NoError(t, err)

	fail = true
	_, err = sh.Execute(context.Background(), "dune again")
	require.NoError(t, err)

	out.Reset()
	_, err = sh.Execute(context.Background(), ":show 1")
	assert.Error(t, err)
	_, err = sh.Execute(context.Background(), ":show abc")
	assert.Error(t, err)
	assert.Empty(t, out.String())
}

func TestExecute_Commands(t *testing.T) {
	sh, _, out := newShell(func(context.Context, string) (*catalog.SearchResult, error) {
		t.Fatal("no search expected")
		return nil, nil
	})

	quit, err := sh.Execute(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, quit)

	_, err = sh.Execute(context.Background(), ":help")
	require.NoError(t, err)
	assert.Contains(t, out.String(), ":show <n|id>")

	_, err = sh.Execute(context.Background(), ":bogus")
	assert.Error(t, err)

	quit, err = sh.Execute(context.Background(), ":quit")
	require.NoError(t, err)
	assert.True(t, quit)
}
