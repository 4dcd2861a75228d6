package main

import (
	"context"
	"strconv"
	"strings"

	"github.com/desertthunder/bookx/internal/reader"
	"github.com/urfave/cli/v3"
)

// BookmarksList prints a book's bookmarked pages from local storage.
func (r *Runner) BookmarksList(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}
	kv, err := r.storage()
	if err != nil {
		return err
	}

	pages, err := reader.NewBookmarkStore(kv, r.logger).List(bookID)
	if err != nil {
		return err
	}
	pages = reader.Sorted(pages)

	numbers := make([]int, len(pages))
	for i, p := range pages {
		numbers[i] = p + 1
	}

	if cmd.Bool("json") {
		return r.writeJSON(numbers, false)
	}

	if len(numbers) == 0 {
		return r.writePlain("No bookmarks for book %s\n", bookID)
	}
	labels := make([]string, len(numbers))
	for i, n := range numbers {
		labels[i] = strconv.Itoa(n)
	}
	return r.writePlain("Bookmarked pages: %s\n", strings.Join(labels, ", "))
}

// BookmarksToggle adds or removes a bookmark on a 1-based page.
func (r *Runner) BookmarksToggle(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}
	index, err := pageArg(cmd, "page")
	if err != nil {
		return err
	}
	kv, err := r.storage()
	if err != nil {
		return err
	}

	added, err := reader.NewBookmarkStore(kv, r.logger).Toggle(bookID, index)
	if err != nil {
		return err
	}
	if added {
		return r.writePlain("✓ Bookmarked page %d\n", index+1)
	}
	return r.writePlain("✓ Removed bookmark on page %d\n", index+1)
}
