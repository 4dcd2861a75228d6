package reader

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
)

const bookmarkKeyPrefix = "bookmarks-"

// BookmarkKey returns the storage key of a book's bookmark set.
func BookmarkKey(bookID string) string {
	return bookmarkKeyPrefix + bookID
}

// BookmarkStore keeps bookmarked page indices per book in local device storage.
//
// Every call reads storage afresh so changes made by other processes are seen; concurrent writers
// overwrite each other.
type BookmarkStore struct {
	kv     models.KV
	logger *log.Logger
}

// NewBookmarkStore creates a store over kv.
func NewBookmarkStore(kv models.KV, logger *log.Logger) *BookmarkStore {
	return &BookmarkStore{kv: kv, logger: logger}
}

// List returns the bookmarked page indices of bookID in stored order.
//
// A missing or unreadable entry is an empty set.
func (b *BookmarkStore) List(bookID string) ([]int, error) {
	raw, ok, err := b.kv.Get(BookmarkKey(bookID))
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks for %s: %w", bookID, err)
	}
	if !ok || raw == "" {
		return []int{}, nil
	}

	var pages []int
	if err := json.Unmarshal([]byte(raw), &pages); err != nil {
		b.logger.Warn("ignoring unreadable bookmarks", "book", bookID, "error", err)
		return []int{}, nil
	}
	return pages, nil
}

// Has reports whether page is bookmarked.
func (b *BookmarkStore) Has(bookID string, page int) (bool, error) {
	pages, err := b.List(bookID)
	if err != nil {
		return false, err
	}
	return slices.Contains(pages, page), nil
}

// Toggle removes page from the set if present and adds it otherwise, then writes the whole set back.
//
// added reports the new membership of page.
func (b *BookmarkStore) Toggle(bookID string, page int) (added bool, err error) {
	pages, err := b.List(bookID)
	if err != nil {
		return false, err
	}

	if slices.Contains(pages, page) {
		pages = slices.DeleteFunc(pages, func(p int) bool { return p == page })
	} else {
		pages = append(pages, page)
		added = true
	}

	data, err := json.Marshal(pages)
	if err != nil {
		return false, fmt.Errorf("failed to encode bookmarks: %w", err)
	}
	if err := b.kv.Set(BookmarkKey(bookID), string(data)); err != nil {
		return false, fmt.Errorf("failed to save bookmarks for %s: %w", bookID, err)
	}

	b.logger.Debug("bookmark toggled", "book", bookID, "page", page, "added", added)
	return added, nil
}

// Sorted returns an ascending copy of pages without duplicates.
func Sorted(pages []int) []int {
	out := slices.Clone(pages)
	slices.Sort(out)
	return slices.Compact(out)
}
