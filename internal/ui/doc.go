// Package ui implements the terminal book reader using bubbletea's Elm architecture.
//
// The reader has three views over one [reader.Session]:
//  1. [PageView] : the current page, a progress line and the optional assistant panel
//  2. [BookmarkView] : this book's bookmarks, enter jumps to the page
//  3. [SelectView] : a text input that captures a passage for the assistant
//
// Page turns update the position immediately; progress is saved in the background by the session's tracker.
// Assistant actions run as [tea.Cmd]s and report back through the Msg union type.
//
// Key bindings (←/→ h/l, b, m, +/-, t, s, e/r/u, a, q) are listed by charmbracelet/bubbles/help.
package ui
