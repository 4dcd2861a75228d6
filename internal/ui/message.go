package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/bookx/internal/models"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgAssistantResult MsgKind = iota
	MsgBookmarksLoaded
)

type assistantResult struct {
	entry models.AssistantEntry
	err   error
}

type bookmarksLoaded struct {
	pages []int
	err   error
}

// assistantResultMsg is the constructor for [MsgAssistantResult]
func assistantResultMsg(entry models.AssistantEntry, err error) Msg {
	return Msg{kind: MsgAssistantResult, data: assistantResult{entry, err}}
}

// bookmarksLoadedMsg is the constructor for [MsgBookmarksLoaded]
func bookmarksLoadedMsg(pages []int, err error) Msg {
	return Msg{kind: MsgBookmarksLoaded, data: bookmarksLoaded{pages, err}}
}
