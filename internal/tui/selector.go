package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/bookfinder/internal/catalog"
)

// BookItem wraps a Book for the list component
type BookItem struct {
	Book catalog.Book
}

func (b BookItem) Title() string { return b.Book.Title }

func (b BookItem) Description() string { return b.Book.AuthorLine() }

func (b BookItem) FilterValue() string { return b.Book.Title }

// coverLine renders the cover URL, or the no-image placeholder
func coverLine(book catalog.Book) string {
	if url, ok := book.CoverURL(); ok {
		return LinkStyle.Render(url)
	}
	return NoImageStyle.Render("No Image")
}

// BookDelegate handles rendering of book items
type BookDelegate struct{}

func (d BookDelegate) Height() int                             { return 3 }
func (d BookDelegate) Spacing() int                            { return 1 }
func (d BookDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d BookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	book, ok := item.(BookItem)
	if !ok {
		return
	}

	title := truncate(book.Book.Title, 60)

	var str string
	if index == m.Index() {
		str = SelectedStyle.Render(fmt.Sprintf("  ➤ %d. %s", index+1, title))
	} else {
		str = NormalStyle.Render(fmt.Sprintf("    %d. %s", index+1, title))
	}
	str += "\n" + DimStyle.Render(fmt.Sprintf("      %s", truncate(book.Description(), 60)))
	str += "\n      " + coverLine(book.Book)

	fmt.Fprint(w, str)
}

// newBookList creates the result list component
func newBookList() list.Model {
	l := list.New(nil, BookDelegate{}, 80, 20)
	l.Title = "Results"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.KeyMap.Quit.SetEnabled(false)
	l.Styles.Title = TitleStyle
	return l
}

// bookItems converts books to list items
func bookItems(books []catalog.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, book := range books {
		items[i] = BookItem{Book: book}
	}
	return items
}

// truncate shortens s to max runes, appending an ellipsis
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
