package shell

import (
	"fmt"
	"io"

	"github.com/billmal071/bookfinder/internal/catalog"
)

// PrintBooks writes books as a numbered plain-text list.
func PrintBooks(w io.Writer, books []catalog.Book) {
	for i, book := range books {
		fmt.Fprintf(w, "%d. %s\n", i+1, book.Title)
		fmt.Fprintf(w, "   Author: %s\n", book.AuthorLine())
		if url, ok := book.CoverURL(); ok {
			fmt.Fprintf(w, "   Cover: %s\n", url)
		} else {
			fmt.Fprintln(w, "   Cover: No Image")
		}
		fmt.Fprintf(w, "   ID: %s\n", book.ID)
		fmt.Fprintln(w)
	}
}

// PrintDetails writes the details of a single book.
func PrintDetails(w io.Writer, book catalog.Book) {
	fmt.Fprintf(w, "Title: %s\n", book.Title)
	fmt.Fprintf(w, "Authors: %s\n", book.AuthorLine())
	fmt.Fprintf(w, "Book ID: %s\n", book.ID)
	if url, ok := book.CoverURL(); ok {
		fmt.Fprintf(w, "Cover: %s\n", url)
	} else {
		fmt.Fprintln(w, "Cover: No Image")
	}
}
