package ui

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/reader"
	"github.com/desertthunder/bookx/internal/repositories"
	"github.com/desertthunder/bookx/internal/shared"
	tu "github.com/desertthunder/bookx/internal/testing"
)

var testLogger = shared.NewLogger(io.Discard)

func openSession(t *testing.T, lib *tu.FakeLibrary, assistant *tu.FakeAssistant) (*reader.Session, *repositories.MemoryKV) {
	t.Helper()
	kv := repositories.NewMemoryKV()
	deps := reader.Deps{
		Library:    lib,
		Storage:    kv,
		Logger:     testLogger,
		PageSize:   10,
		RetryDelay: time.Millisecond,
	}
	if assistant != nil {
		deps.Assistant = assistant
	}

	session, err := reader.Open(context.Background(), "3", deps)
	if err != nil && !errors.Is(err, shared.ErrContentNotFound) {
		t.Fatalf("failed to open session: %v", err)
	}
	t.Cleanup(session.Close)
	return session, kv
}

func shelvedBook(content string) *tu.FakeLibrary {
	return &tu.FakeLibrary{
		Detail:  &models.BookDetail{Book: models.Book{ID: 3, Title: "Dune"}, UserBook: &models.UserBook{ID: 40}},
		Content: content,
	}
}

func press(t *testing.T, m *Model, keys ...tea.KeyMsg) tea.Cmd {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(k)
	}
	return cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var (
	right = tea.KeyMsg{Type: tea.KeyRight}
	left  = tea.KeyMsg{Type: tea.KeyLeft}
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestNavigation(t *testing.T) {
	lib := shelvedBook(strings.Repeat("x", 30))
	session, _ := openSession(t, lib, nil)
	m := NewModel(context.Background(), session, testLogger)

	press(t, m, right, runes("l"))
	if got := session.Tracker.Current(); got != 2 {
		t.Fatalf("expected page 2, got %d", got)
	}

	press(t, m, right)
	if got := session.Tracker.Current(); got != 2 {
		t.Errorf("next on last page should be a no-op, got %d", got)
	}

	press(t, m, left, runes("h"), runes("h"))
	if got := session.Tracker.Current(); got != 0 {
		t.Errorf("expected page 0, got %d", got)
	}

	if !strings.Contains(m.View(), "page 1 / 3 (33%)") {
		t.Errorf("view should show progress, got:\n%s", m.View())
	}

	session.Tracker.Wait()
	if n := len(lib.Updates()); n != 4 {
		t.Errorf("expected 4 progress writes, got %d", n)
	}
}

func TestBookmarks(t *testing.T) {
	session, kv := openSession(t, shelvedBook(strings.Repeat("x", 30)), nil)
	m := NewModel(context.Background(), session, testLogger)

	press(t, m, runes("b"))
	if !m.bookmarked {
		t.Fatal("current page should be bookmarked")
	}
	if raw, _, _ := kv.Get(reader.BookmarkKey("3")); raw != "[0]" {
		t.Errorf("expected stored bookmarks [0], got %q", raw)
	}
	if !strings.Contains(m.View(), "Dune ★") {
		t.Error("title should carry the bookmark marker")
	}

	press(t, m, right, right)
	if m.bookmarked {
		t.Error("page 2 should not be bookmarked")
	}

	cmd := press(t, m, runes("m"))
	if cmd == nil {
		t.Fatal("expected a command to load bookmarks")
	}
	m.Update(cmd())
	if m.view != BookmarkView {
		t.Fatalf("expected bookmark view, got %v", m.view)
	}
	if len(m.bookmarkList.Items()) != 1 {
		t.Fatalf("expected 1 bookmark, got %d", len(m.bookmarkList.Items()))
	}

	press(t, m, enter)
	if m.view != PageView || session.Tracker.Current() != 0 {
		t.Errorf("enter should jump to the bookmarked page, view=%v page=%d", m.view, session.Tracker.Current())
	}

	press(t, m, runes("b"))
	if m.bookmarked {
		t.Error("second toggle should remove the bookmark")
	}
}

func TestBookmarkViewBack(t *testing.T) {
	session, _ := openSession(t, shelvedBook(strings.Repeat("x", 30)), nil)
	m := NewModel(context.Background(), session, testLogger)

	m.Update(press(t, m, runes("m"))())
	if !strings.Contains(m.View(), "No bookmarks yet") {
		t.Errorf("expected empty bookmark view, got:\n%s", m.View())
	}
	press(t, m, esc)
	if m.view != PageView {
		t.Error("esc should return to the page")
	}
}

func TestPreferences(t *testing.T) {
	session, kv := openSession(t, shelvedBook(strings.Repeat("x", 30)), nil)
	m := NewModel(context.Background(), session, testLogger)

	press(t, m, runes("+"))
	if m.prefs.FontSizePx != models.DefaultFontSize+models.FontSizeStep {
		t.Errorf("expected font size %d, got %d", models.DefaultFontSize+models.FontSizeStep, m.prefs.FontSizePx)
	}

	press(t, m, runes("-"), runes("-"))
	if raw, _, _ := kv.Get(reader.FontSizeKey); raw != "16" {
		t.Errorf("expected stored font size 16, got %q", raw)
	}

	press(t, m, runes("t"))
	if m.prefs.Theme != models.ThemeSepia {
		t.Errorf("expected sepia, got %s", m.prefs.Theme)
	}
	if raw, _, _ := kv.Get(reader.ThemeKey); raw != "sepia" {
		t.Errorf("expected stored theme sepia, got %q", raw)
	}

	reopened := NewModel(context.Background(), session, testLogger)
	if reopened.prefs.Theme != models.ThemeSepia || reopened.prefs.FontSizePx != 16 {
		t.Errorf("preferences should load from storage, got %+v", reopened.prefs)
	}
}

func TestAssistant(t *testing.T) {
	t.Run("requires a selection", func(t *testing.T) {
		session, _ := openSession(t, shelvedBook(strings.Repeat("x", 30)), &tu.FakeAssistant{Response: "ok"})
		m := NewModel(context.Background(), session, testLogger)

		if cmd := press(t, m, runes("e")); cmd != nil {
			t.Error("no command expected without a selection")
		}
		if m.status != "select text first (s)" {
			t.Errorf("unexpected status %q", m.status)
		}
	})

	t.Run("selection then action", func(t *testing.T) {
		fake := &tu.FakeAssistant{Response: "It means x."}
		session, _ := openSession(t, shelvedBook(strings.Repeat("x", 30)), fake)
		m := NewModel(context.Background(), session, testLogger)

		press(t, m, runes("s"))
		if m.view != SelectView {
			t.Fatalf("expected select view, got %v", m.view)
		}
		press(t, m, runes("xxx"), enter)
		if m.view != PageView {
			t.Fatal("enter should return to the page")
		}
		if sel, ok := session.Assistant.Selection(); !ok || sel.Text != "xxx" {
			t.Fatalf("expected selection xxx, got %+v", sel)
		}

		cmd := press(t, m, runes("r"))
		if cmd == nil {
			t.Fatal("expected an assistant command")
		}
		m.Update(cmd())

		entry, ok := session.Assistant.LastResult()
		if !ok || entry.Action != models.ActionTranslate || entry.Response != "It means x." {
			t.Errorf("unexpected entry %+v", entry)
		}
		if !strings.Contains(m.View(), "It means x.") {
			t.Errorf("assistant panel should show the response, got:\n%s", m.View())
		}

		press(t, m, runes("a"))
		if strings.Contains(m.View(), "It means x.") {
			t.Error("a should hide the assistant panel")
		}
	})

	t.Run("shows working until the result arrives", func(t *testing.T) {
		fake := &tu.FakeAssistant{Response: "done"}
		session, _ := openSession(t, shelvedBook(strings.Repeat("x", 30)), fake)
		m := NewModel(context.Background(), session, testLogger)

		press(t, m, runes("s"), runes("xx"), enter)
		cmd := press(t, m, runes("e"))
		if cmd == nil {
			t.Fatal("expected an assistant command")
		}
		if !strings.Contains(m.View(), "Working...") {
			t.Errorf("expected working indicator before the command runs, got:\n%s", m.View())
		}

		m.Update(cmd())
		if strings.Contains(m.View(), "Working...") {
			t.Errorf("working indicator should clear after the result, got:\n%s", m.View())
		}
		if !strings.Contains(m.View(), "done") {
			t.Errorf("expected the response, got:\n%s", m.View())
		}
	})

	t.Run("failure is shown inline", func(t *testing.T) {
		fake := &tu.FakeAssistant{Err: errors.New("boom")}
		session, _ := openSession(t, shelvedBook(strings.Repeat("x", 30)), fake)
		m := NewModel(context.Background(), session, testLogger)

		press(t, m, runes("s"), runes("xx"), enter)
		m.Update(press(t, m, runes("u"))())

		if !strings.Contains(m.View(), "Assistant service error: boom") {
			t.Errorf("expected inline error, got:\n%s", m.View())
		}
	})

	t.Run("escape cancels selection", func(t *testing.T) {
		session, _ := openSession(t, shelvedBook(strings.Repeat("x", 30)), nil)
		m := NewModel(context.Background(), session, testLogger)

		press(t, m, runes("s"), runes("xx"), esc)
		if _, ok := session.Assistant.Selection(); ok {
			t.Error("esc should not capture a selection")
		}
	})
}

func TestEmptyBook(t *testing.T) {
	lib := shelvedBook("")
	lib.ContentErr = shared.ErrContentNotFound
	session, _ := openSession(t, lib, nil)
	m := NewModel(context.Background(), session, testLogger)

	view := m.View()
	if !strings.Contains(view, "no stored text") || !strings.Contains(view, "bookx upload 40 <file>") {
		t.Errorf("expected upload prompt, got:\n%s", view)
	}

	press(t, m, right, runes("b"))
	if session.Tracker.Current() != 0 || m.bookmarked {
		t.Error("navigation and bookmarks should be disabled without pages")
	}
}

func TestQuit(t *testing.T) {
	lib := shelvedBook(strings.Repeat("x", 30))
	lib.Release = make(chan struct{})
	session, _ := openSession(t, lib, nil)
	m := NewModel(context.Background(), session, testLogger)

	press(t, m, right)
	cmd := press(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}

	done := make(chan tea.Msg)
	go func() { done <- cmd() }()

	select {
	case <-done:
		t.Fatal("quit should wait for the pending progress write")
	case <-time.After(20 * time.Millisecond):
	}

	close(lib.Release)
	select {
	case msg := <-done:
		if _, ok := msg.(tea.QuitMsg); !ok {
			t.Errorf("expected tea.QuitMsg, got %T", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("quit did not finish after the write completed")
	}
}

func TestWrapWidth(t *testing.T) {
	tests := []struct {
		available, font, want int
	}{
		{80, models.DefaultFontSize, 80},
		{80, 36, 40},
		{80, models.MinFontSize, 80},
		{10, models.DefaultFontSize, 20},
		{80, 0, 80},
	}

	for _, tt := range tests {
		if got := WrapWidth(tt.available, tt.font); got != tt.want {
			t.Errorf("WrapWidth(%d, %d) = %d, want %d", tt.available, tt.font, got, tt.want)
		}
	}
}

func TestNewPalette(t *testing.T) {
	for _, theme := range append(models.Themes, "neon") {
		if p := NewPalette(theme); p == nil {
			t.Errorf("NewPalette(%q) returned nil", theme)
		}
	}
}
