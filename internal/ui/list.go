package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/bookx/internal/formatter"
)

var (
	_ list.Item = bookmarkItem{}
)

// bookmarkItem wraps a bookmarked page index to implement [list.Item].
type bookmarkItem struct {
	index   int
	excerpt string
}

func newBookmarkItem(index int, page string) bookmarkItem {
	return bookmarkItem{index: index, excerpt: formatter.Excerpt(page)}
}

func (i bookmarkItem) FilterValue() string { return i.excerpt }
func (i bookmarkItem) Title() string       { return fmt.Sprintf("Page %d", i.index+1) }
func (i bookmarkItem) Description() string {
	if i.excerpt == "" {
		return "(no text)"
	}
	return i.excerpt
}
