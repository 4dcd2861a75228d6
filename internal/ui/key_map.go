package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	next      key.Binding
	prev      key.Binding
	bookmark  key.Binding
	bookmarks key.Binding
	bigger    key.Binding
	smaller   key.Binding
	theme     key.Binding
	selection key.Binding
	explain   key.Binding
	translate key.Binding
	summarize key.Binding
	assistant key.Binding
	enter     key.Binding
	back      key.Binding
	help      key.Binding
	quit      key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		next:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		prev:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		bookmark:  key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bookmark")),
		bookmarks: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "bookmarks")),
		bigger:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "larger text")),
		smaller:   key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "smaller text")),
		theme:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		selection: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "select text")),
		explain:   key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "explain")),
		translate: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "translate")),
		summarize: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "summarize")),
		assistant: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "assistant")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.prev, k.next, k.bookmark, k.selection, k.help, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.prev, k.next, k.bookmark, k.bookmarks},
		{k.bigger, k.smaller, k.theme},
		{k.selection, k.explain, k.translate, k.summarize, k.assistant},
		{k.help, k.quit},
	}
}
