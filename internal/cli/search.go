package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/billmal071/bookfinder/internal/catalog"
	"github.com/billmal071/bookfinder/internal/session"
	"github.com/billmal071/bookfinder/internal/shell"
	"github.com/billmal071/bookfinder/internal/tui"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search for books",
	Long: `Search the Google Books catalog for volumes matching the query.

By default, opens the interactive search screen with the query already
submitted. Use --no-interactive to print the results and exit.

Examples:
  bookfinder search dune
  bookfinder search "clean code"
  bookfinder search --no-interactive "design patterns"
  bookfinder search -o json golang`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Bool("no-interactive", false, "disable interactive mode, just print results")
	searchCmd.Flags().StringP("output", "o", "text", "output format for --no-interactive (text, json, yaml)")
}

// bookOutput is the machine-readable form of a result
type bookOutput struct {
	ID       string   `json:"id" yaml:"id"`
	Title    string   `json:"title" yaml:"title"`
	Authors  []string `json:"authors" yaml:"authors"`
	CoverURL string   `json:"cover_url,omitempty" yaml:"cover_url,omitempty"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	noInteractive, _ := cmd.Flags().GetBool("no-interactive")
	output, _ := cmd.Flags().GetString("output")

	if cmd.Flags().Changed("output") {
		noInteractive = true
	}

	switch output {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("invalid output format: %s (use text, json, or yaml)", output)
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	if !noInteractive {
		return tui.Run(cmd.Context(), sess, query)
	}

	if query == "" {
		return errors.New("a query is required with --no-interactive")
	}

	Printf("Searching for: %s\n", query)

	sess.SetQuery(query)
	done, _ := sess.PerformSearch(cmd.Context())

	if output == "text" {
		waitWithSpinner(cmd.ErrOrStderr(), done, cmd.Context().Done())
	} else {
		select {
		case <-done:
		case <-cmd.Context().Done():
		}
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}

	st := sess.State()
	if msg := st.Error(); msg != "" {
		return fmt.Errorf("search failed: %s", msg)
	}

	return printResults(cmd.OutOrStdout(), output, st)
}

// waitWithSpinner animates a spinner on w until done or cancel closes
func waitWithSpinner(w io.Writer, done <-chan struct{}, cancel <-chan struct{}) {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("Searching"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			_ = bar.Finish()
			return
		case <-cancel:
			_ = bar.Finish()
			return
		case <-ticker.C:
			_ = bar.Add(1)
		}
	}
}

func printResults(w io.Writer, format string, st session.State) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toOutput(st.Books))
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(toOutput(st.Books))
	}

	if len(st.Books) == 0 {
		fmt.Fprintln(w, "No books found.")
		return nil
	}
	fmt.Fprintf(w, "Found %d result(s)\n\n", len(st.Books))
	shell.PrintBooks(w, st.Books)
	return nil
}

func toOutput(books []catalog.Book) []bookOutput {
	out := make([]bookOutput, 0, len(books))
	for _, b := range books {
		authors := b.Authors
		if authors == nil {
			authors = []string{}
		}
		cover, _ := b.CoverURL()
		out = append(out, bookOutput{
			ID:       b.ID,
			Title:    b.Title,
			Authors:  authors,
			CoverURL: cover,
		})
	}
	return out
}
