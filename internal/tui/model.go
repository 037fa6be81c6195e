package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/bookfinder/internal/session"
)

// submitMsg asks the model to search for the current input
type submitMsg struct{}

// searchDoneMsg is sent when a search finished or was superseded
type searchDoneMsg struct{}

type focusArea int

const (
	focusInput focusArea = iota
	focusList
)

// Model is the Bubble Tea model for searching and browsing books
type Model struct {
	ctx     context.Context
	sess    *session.Session
	input   textinput.Model
	spinner spinner.Model
	list    list.Model

	state       session.State
	focus       focusArea
	showDetails bool
	autoSearch  bool
	quitting    bool
}

// NewModel creates the search screen. A non-empty initialQuery is searched
// as soon as the program starts.
func NewModel(ctx context.Context, sess *session.Session, initialQuery string) Model {
	ti := textinput.New()
	ti.Placeholder = "Search for books..."
	ti.Prompt = "🔍 "
	ti.CharLimit = 256
	ti.Width = 50
	ti.SetValue(initialQuery)
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = SelectedStyle

	return Model{
		ctx:        ctx,
		sess:       sess,
		input:      ti,
		spinner:    sp,
		list:       newBookList(),
		state:      sess.State(),
		autoSearch: initialQuery != "",
	}
}

func (m Model) Init() tea.Cmd {
	if m.autoSearch {
		return tea.Batch(textinput.Blink, func() tea.Msg { return submitMsg{} })
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, max(msg.Height-6, 5))
		return m, nil

	case submitMsg:
		return m.submit()

	case searchDoneMsg:
		m.refresh()
		if m.resultsShown() {
			m.setFocus(focusList)
		} else {
			m.setFocus(focusInput)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.state.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Quit
		}
		if m.showDetails {
			return m.updateDetails(msg)
		}
		if m.focus == focusInput {
			return m.updateInput(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	if m.focus == focusInput {
		m.input, cmd = m.input.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		return m.submit()
	case "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "down":
		if m.resultsShown() {
			m.setFocus(focusList)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "tab", "esc", "/":
		m.setFocus(focusInput)
		return m, textinput.Blink
	case "enter":
		if !m.resultsShown() {
			m.setFocus(focusInput)
			return m, nil
		}
		if item, ok := m.list.SelectedItem().(BookItem); ok {
			m.sess.Select(item.Book.ID)
			m.refresh()
			m.showDetails = true
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateDetails(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace", "left", "h":
		m.showDetails = false
	case "q":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

// submit hands the input to the session and waits for the search to finish
func (m Model) submit() (tea.Model, tea.Cmd) {
	m.sess.SetQuery(m.input.Value())
	done, ok := m.sess.PerformSearch(m.ctx)
	if !ok {
		return m, nil
	}
	m.refresh()
	return m, tea.Batch(m.spinner.Tick, waitForSearch(done))
}

// waitForSearch returns a command that blocks until done is closed
func waitForSearch(done <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-done
		return searchDoneMsg{}
	}
}

// refresh copies the session snapshot into the view
func (m *Model) refresh() {
	prev := m.state.Token
	m.state = m.sess.State()
	if m.state.Phase == session.PhaseLoaded && (m.state.Token != prev || len(m.list.Items()) != len(m.state.Books)) {
		m.list.SetItems(bookItems(m.state.Books))
		m.list.Select(0)
	}
}

// resultsShown reports whether the list holds the current results
func (m Model) resultsShown() bool {
	return m.state.Phase == session.PhaseLoaded && len(m.list.Items()) > 0
}

func (m *Model) setFocus(f focusArea) {
	m.focus = f
	if f == focusInput {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showDetails {
		return m.detailsView()
	}

	var view strings.Builder
	view.WriteString("\n  ")
	view.WriteString(m.input.View())
	view.WriteString("\n\n")

	switch {
	case m.state.Loading():
		view.WriteString(fmt.Sprintf("  %s %s", m.spinner.View(), WarningStyle.Render("Searching...")))
	case m.state.Error() != "":
		view.WriteString(ErrorStyle.Render(fmt.Sprintf("  Error: %s", m.state.Error())))
	case m.state.Phase == session.PhaseLoaded && len(m.state.Books) == 0:
		view.WriteString(DimStyle.Render("  No books found."))
	case m.state.Phase == session.PhaseLoaded:
		view.WriteString(m.list.View())
	}

	view.WriteString("\n")
	view.WriteString(HelpStyle.Render("  " + m.helpText()))
	return view.String()
}

func (m Model) helpText() string {
	if m.focus == focusList {
		return strings.Join([]string{"↑/↓: navigate", "enter: details", "tab: edit query", "q: quit"}, " • ")
	}
	return strings.Join([]string{"enter: search", "tab: results", "esc: quit"}, " • ")
}

func (m Model) detailsView() string {
	book, ok := m.sess.Selected()
	if !ok {
		return "\n" + ErrorStyle.Render("  Book not found") + "\n" +
			HelpStyle.Render("  esc: back")
	}

	var body strings.Builder
	body.WriteString(TitleStyle.Render("Title: " + book.Title))
	body.WriteString("\n")
	body.WriteString("Authors: " + book.AuthorLine())
	body.WriteString("\n\n")
	body.WriteString(DimStyle.Render("Book ID: " + book.ID))
	body.WriteString("\n\n")
	body.WriteString(coverLine(book))

	return "\n" + BoxStyle.Render(body.String()) + "\n" +
		HelpStyle.Render("  esc: back • q: quit")
}

// State returns the snapshot the model last rendered
func (m Model) State() session.State {
	return m.state
}

// Run displays the TUI until the user quits
func Run(ctx context.Context, sess *session.Session, initialQuery string) error {
	p := tea.NewProgram(NewModel(ctx, sess, initialQuery), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
