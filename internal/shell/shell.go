// Package shell is a line-oriented front end to a search session.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/peterh/liner"

	"github.com/billmal071/bookfinder/internal/session"
)

const helpText = `Type a query and press enter to search.

  :show <n|id>   show details for result n or the book with that ID
  :help          show this help
  :quit          exit (also ctrl+d)
`

// Shell executes REPL lines against a session.
type Shell struct {
	sess *session.Session
	out  io.Writer
}

// New creates a shell writing to out.
func New(sess *session.Session, out io.Writer) *Shell {
	return &Shell{sess: sess, out: out}
}

// Execute runs one input line. It reports whether the shell should exit.
func (sh *Shell) Execute(ctx context.Context, line string) (bool, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}

	if !strings.HasPrefix(line, ":") {
		return false, sh.search(ctx, line)
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case ":q", ":quit", ":exit":
		return true, nil
	case ":h", ":help":
		fmt.Fprint(sh.out, helpText)
		return false, nil
	case ":s", ":show":
		return false, sh.show(arg)
	default:
		return false, fmt.Errorf("unknown command %s (try :help)", cmd)
	}
}

func (sh *Shell) search(ctx context.Context, query string) error {
	sh.sess.SetQuery(query)
	done, ok := sh.sess.PerformSearch(ctx)
	if !ok {
		return nil
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	st := sh.sess.State()
	switch {
	case st.Error() != "":
		fmt.Fprintf(sh.out, "Error: %s\n", st.Error())
	case len(st.Books) == 0:
		fmt.Fprintln(sh.out, "No books found.")
	default:
		fmt.Fprintf(sh.out, "Found %d result(s)\n\n", len(st.Books))
		PrintBooks(sh.out, st.Books)
	}
	return nil
}

func (sh *Shell) show(arg string) error {
	if arg == "" {
		return fmt.Errorf("usage: :show <n|id>")
	}

	st := sh.sess.State()
	if st.Phase != session.PhaseLoaded {
		return fmt.Errorf("no current results to show")
	}

	id := arg
	if n, err := strconv.Atoi(arg); err == nil {
		books := st.Books
		if n < 1 || n > len(books) {
			return fmt.Errorf("no result #%d", n)
		}
		id = books[n-1].ID
	}

	book, ok := sh.sess.GetBookByID(id)
	if !ok {
		return fmt.Errorf("book not found: %s", id)
	}
	sh.sess.Select(book.ID)
	PrintDetails(sh.out, book)
	return nil
}

// Run reads lines from the terminal until the user quits.
func Run(ctx context.Context, sess *session.Session, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	sh := New(sess, out)
	fmt.Fprintln(out, "bookfinder shell. Type :help for commands.")

	for {
		input, err := line.Prompt("bookfinder> ")
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}

		quit, err := sh.Execute(ctx, input)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}
