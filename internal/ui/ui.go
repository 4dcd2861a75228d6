package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/formatter"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/reader"
	"github.com/desertthunder/bookx/internal/services"
	"github.com/desertthunder/bookx/internal/shared"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	PageView ViewState = iota
	BookmarkView
	SelectView
)

const (
	defaultWidth = 80
	minWrapWidth = 20
)

// Model represents the TUI application state.
type Model struct {
	ctx     context.Context
	session *reader.Session
	logger  *log.Logger

	view          ViewState
	width         int
	height        int
	prefs         models.ReaderPreferences
	palette       *Palette
	bookmarkList  list.Model
	bookmarked    bool
	input         textinput.Model
	showAssistant bool
	inFlight      int // assistant commands dispatched but not yet reported
	status        string
	help          help.Model
	keys          keyMap
}

// NewModel creates a reader model over an open session.
//
// A session opened without an assistant service gets the offline canned assistant.
func NewModel(ctx context.Context, session *reader.Session, logger *log.Logger) *Model {
	if session.Assistant == nil {
		session.Assistant = reader.NewAssistant(&services.CannedAssistant{}, logger)
	}

	input := textinput.New()
	input.Placeholder = "type or paste the passage"
	input.CharLimit = 2000

	prefs := session.Preferences.Load()
	m := &Model{
		ctx:     ctx,
		session: session,
		logger:  logger,
		view:    PageView,
		prefs:   prefs,
		palette: NewPalette(prefs.Theme),
		input:   input,
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.refreshBookmarked()
	return m
}

// Init has nothing to fetch; the session is already open.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		if m.view == BookmarkView {
			m.bookmarkList.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case PageView:
			return m.handlePageKeys(msg)
		case BookmarkView:
			return m.handleBookmarkKeys(msg)
		case SelectView:
			return m.handleSelectKeys(msg)
		}

	case Msg:
		return m.handleMsg(msg)
	}

	return m, nil
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgAssistantResult:
		data := msg.data.(assistantResult)
		if m.inFlight > 0 {
			m.inFlight--
		}
		if data.err != nil {
			m.status = data.err.Error()
		} else if data.entry.Failed {
			m.status = "assistant request failed"
		} else {
			m.status = ""
		}
		m.showAssistant = true

	case MsgBookmarksLoaded:
		data := msg.data.(bookmarksLoaded)
		if data.err != nil {
			m.status = fmt.Sprintf("could not load bookmarks: %v", data.err)
			return m, nil
		}
		items := make([]list.Item, len(data.pages))
		for i, index := range data.pages {
			items[i] = newBookmarkItem(index, m.session.Page(index))
		}
		m.bookmarkList = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.bookmarkList.Title = fmt.Sprintf("Bookmarks in '%s'", m.session.Title())
		m.bookmarkList.SetSize(m.contentWidth(), max(m.height-8, 10))
		m.view = BookmarkView
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case BookmarkView:
		return m.renderBookmarks()
	case SelectView:
		return m.renderSelect()
	default:
		return m.renderPage()
	}
}

func (m *Model) handlePageKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tracker := m.session.Tracker

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.theme):
		theme, err := m.session.Preferences.CycleTheme()
		m.applyPreference(err)
		m.prefs.Theme = theme
		m.palette = NewPalette(theme)
		return m, nil
	case key.Matches(msg, m.keys.bigger):
		size, err := m.session.Preferences.AdjustFontSize(1)
		m.applyPreference(err)
		m.prefs.FontSizePx = size
		return m, nil
	case key.Matches(msg, m.keys.smaller):
		size, err := m.session.Preferences.AdjustFontSize(-1)
		m.applyPreference(err)
		m.prefs.FontSizePx = size
		return m, nil
	case key.Matches(msg, m.keys.assistant):
		m.showAssistant = !m.showAssistant
		return m, nil
	case key.Matches(msg, m.keys.selection):
		m.view = SelectView
		m.input.Reset()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.explain):
		return m, m.invoke(models.ActionExplain)
	case key.Matches(msg, m.keys.translate):
		return m, m.invoke(models.ActionTranslate)
	case key.Matches(msg, m.keys.summarize):
		return m, m.invoke(models.ActionSummary)
	}

	if m.session.Empty() {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.next):
		if tracker.Next() {
			m.status = ""
			m.refreshBookmarked()
		}
	case key.Matches(msg, m.keys.prev):
		if tracker.Prev() {
			m.status = ""
			m.refreshBookmarked()
		}
	case key.Matches(msg, m.keys.bookmark):
		added, err := m.session.ToggleBookmark()
		switch {
		case err != nil:
			m.status = fmt.Sprintf("could not save bookmark: %v", err)
		case added:
			m.status = fmt.Sprintf("bookmarked page %d", tracker.Current()+1)
		default:
			m.status = fmt.Sprintf("removed bookmark on page %d", tracker.Current()+1)
		}
		m.refreshBookmarked()
	case key.Matches(msg, m.keys.bookmarks):
		return m, m.loadBookmarks()
	}
	return m, nil
}

func (m *Model) handleBookmarkKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.bookmarkList.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, m.quit()
		case key.Matches(msg, m.keys.back):
			m.view = PageView
			return m, nil
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.bookmarkList.SelectedItem().(bookmarkItem); ok {
				if !m.session.Tracker.GoToPage(item.index) {
					m.status = fmt.Sprintf("page %d is no longer in this book", item.index+1)
				}
				m.refreshBookmarked()
			}
			m.view = PageView
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.bookmarkList, cmd = m.bookmarkList.Update(msg)
	return m, cmd
}

func (m *Model) handleSelectKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, m.quit()
	case tea.KeyEsc:
		m.input.Blur()
		m.view = PageView
		return m, nil
	case tea.KeyEnter:
		text := m.input.Value()
		m.session.Assistant.Select(text, m.selectionRect(text), 0)
		m.input.Blur()
		m.view = PageView
		if strings.TrimSpace(text) != "" {
			m.showAssistant = true
			m.status = "selection ready: e explain, r translate, u summarize"
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectionRect locates text on the current page in character cells, or the page origin when absent.
func (m *Model) selectionRect(text string) reader.Rect {
	page := m.session.CurrentPage()
	idx := strings.Index(page, text)
	if idx < 0 {
		return reader.Rect{Width: float64(len([]rune(text))), Height: 1}
	}
	before := page[:idx]
	line := strings.Count(before, "\n")
	col := len([]rune(before[strings.LastIndex(before, "\n")+1:]))
	return reader.Rect{Left: float64(col), Top: float64(line), Width: float64(len([]rune(text))), Height: 1}
}

func (m *Model) invoke(action models.Action) tea.Cmd {
	if _, ok := m.session.Assistant.Selection(); !ok {
		m.status = "select text first (s)"
		return nil
	}

	m.showAssistant = true
	m.inFlight++
	m.status = fmt.Sprintf("%s...", action)
	assistant, ctx := m.session.Assistant, m.ctx
	return func() tea.Msg {
		entry, err := assistant.Invoke(ctx, action)
		return assistantResultMsg(entry, err)
	}
}

func (m *Model) loadBookmarks() tea.Cmd {
	store, bookID := m.session.Bookmarks, m.session.BookID
	return func() tea.Msg {
		pages, err := store.List(bookID)
		return bookmarksLoadedMsg(reader.Sorted(pages), err)
	}
}

// quit waits for in-flight progress writes before exiting.
func (m *Model) quit() tea.Cmd {
	session := m.session
	return func() tea.Msg {
		session.Close()
		return tea.Quit()
	}
}

func (m *Model) applyPreference(err error) {
	if err != nil {
		m.logger.Warn("failed to save preference", "error", err)
		m.status = "preference not saved"
	}
}

func (m *Model) refreshBookmarked() {
	if m.session.Empty() {
		m.bookmarked = false
		return
	}
	has, err := m.session.Bookmarks.Has(m.session.BookID, m.session.Tracker.Current())
	if err != nil {
		m.logger.Warn("failed to read bookmarks", "error", err)
	}
	m.bookmarked = has
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return defaultWidth
	}
	return m.width - 4
}

// WrapWidth maps the font size preference onto a text column width.
//
// The default size fills the available width; larger sizes narrow the column proportionally.
func WrapWidth(available, fontSizePx int) int {
	if fontSizePx <= 0 {
		fontSizePx = models.DefaultFontSize
	}
	width := available * models.DefaultFontSize / fontSizePx
	return shared.Clamp(width, minWrapWidth, max(available, minWrapWidth))
}

func (m *Model) renderPage() string {
	var b strings.Builder

	title := m.session.Title()
	if m.bookmarked {
		title += " ★"
	}
	b.WriteString(m.palette.title.Render(title))
	b.WriteString("\n")

	if m.session.Empty() {
		b.WriteString(m.palette.warn.Render("This book has no stored text."))
		b.WriteString("\n")
		if id := m.session.RecordID(); id != "" {
			b.WriteString(m.palette.help.Render(fmt.Sprintf("Upload one with: bookx upload %s <file>", id)))
		} else {
			b.WriteString(m.palette.help.Render("Add it to your shelf, then upload a text with bookx upload."))
		}
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.quit}))
		return b.String()
	}

	width := WrapWidth(m.contentWidth(), m.prefs.FontSizePx)
	b.WriteString(m.palette.page.Width(width).Render(m.session.CurrentPage()))
	b.WriteString("\n")

	progress := formatter.FormatProgress(m.session.Tracker.Position())
	if m.session.RecordID() == "" {
		progress += " · not saved"
	}
	b.WriteString(m.palette.help.Render(progress))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(m.palette.warn.Render(m.status))
		b.WriteString("\n")
	}

	if m.showAssistant {
		b.WriteString(m.renderAssistant(width))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderAssistant(width int) string {
	assistant := m.session.Assistant
	var lines []string

	state := assistant.State()
	if m.inFlight > 0 {
		state = reader.StateActionPending
	}

	lines = append(lines, fmt.Sprintf("Assistant (%s)", state))
	if sel, ok := assistant.Selection(); ok {
		lines = append(lines, m.palette.help.Render(fmt.Sprintf("Selected: %q", formatter.Excerpt(sel.Text))))
	}

	switch entry, ok := assistant.LastResult(); {
	case state == reader.StateActionPending:
		lines = append(lines, "Working...")
	case !ok:
		lines = append(lines, m.palette.help.Render("Press s to select a passage."))
	case entry.Failed:
		lines = append(lines, m.palette.err.Render(entry.Response))
	default:
		lines = append(lines, m.palette.ok.Render(string(entry.Action)), entry.Response)
	}

	return m.palette.panel.Width(width).Render(strings.Join(lines, "\n"))
}

func (m *Model) renderBookmarks() string {
	if len(m.bookmarkList.Items()) == 0 {
		return fmt.Sprintf("%s\n\n%s", m.palette.help.Render("No bookmarks yet. Press b on a page to add one."),
			m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit}))
	}
	jump := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "go to page"))
	helpView := m.help.ShortHelpView([]key.Binding{jump, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.bookmarkList.View(), helpView)
}

func (m *Model) renderSelect() string {
	title := m.palette.title.Render("Select a passage")
	helpView := m.help.ShortHelpView([]key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "confirm")),
		m.keys.back,
	})
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.input.View(), helpView)
}
