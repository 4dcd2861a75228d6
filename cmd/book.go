package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/bookx/internal/formatter"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// BookShow prints a book's catalog entry and shelf record.
func (r *Runner) BookShow(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}
	shelf, err := r.requireLogin()
	if err != nil {
		return err
	}

	detail, err := shelf.GetBookDetail(ctx, bookID)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}

	book := detail.Book
	r.writePlainHeader(book.Title)
	r.writePlain("Author: %s\n", book.Author)
	if book.ISBN != "" {
		r.writePlain("ISBN: %s\n", book.ISBN)
	}
	if book.PublishedAt != nil {
		r.writePlain("Published: %s\n", book.PublishedAt.Format("2006-01-02"))
	}
	if book.PageCount > 0 {
		r.writePlain("Printed pages: %d\n", book.PageCount)
	}
	if book.Annotation != "" {
		r.writePlain("\n%s\n", book.Annotation)
	}

	switch detail.Kind() {
	case models.Shelved:
		ub := detail.UserBook
		r.writePlainln("On your shelf (record %s)", ub.RecordID())
		r.writePlain("Status: %s\n", ub.Status)
		r.writePlain("Page: %d (%d%%)\n", ub.CurrentPage, ub.Progress)
	default:
		r.writePlainln("Not on your shelf. 'bookx read %s' adds it.", bookID)
	}
	return nil
}

// BookContent paginates a book's text and reports the page count and saved position.
func (r *Runner) BookContent(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}

	session, err := r.openBook(ctx, bookID, cmd.Int("page-size"))
	if errors.Is(err, shared.ErrContentNotFound) {
		return r.writeUploadHint(session.Title(), session.RecordID())
	}
	if err != nil {
		return err
	}
	defer session.Close()

	chars := 0
	for _, page := range session.Pages {
		chars += len([]rune(page))
	}

	r.writePlain("%s\n", session.Title())
	r.writePlain("Pages: %d (%d characters)\n", len(session.Pages), chars)
	r.writePlain("Position: %s\n", formatter.FormatProgress(session.Tracker.Position()))
	if !session.Tracker.Synced() {
		r.writePlain("Progress is not saved for this book.\n")
	}
	return nil
}

// ReadPage prints one page and records it as the reading position.
func (r *Runner) ReadPage(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}
	index, err := pageArg(cmd, "page")
	if err != nil {
		return err
	}

	session, err := r.openBook(ctx, bookID, cmd.Int("page-size"))
	if errors.Is(err, shared.ErrContentNotFound) {
		return r.writeUploadHint(session.Title(), session.RecordID())
	}
	if err != nil {
		return err
	}
	defer session.Close()

	if !session.Tracker.GoToPage(index) {
		return fmt.Errorf("%w: page %d is outside 1-%d", shared.ErrInvalidArgument, index+1, len(session.Pages))
	}

	r.writePlain("%s · %s\n\n", session.Title(), formatter.FormatProgress(session.Tracker.Position()))
	r.writePlain("%s\n", strings.TrimRight(session.CurrentPage(), "\n"))
	return nil
}

// ShelfList prints one page of the caller's shelf.
func (r *Runner) ShelfList(ctx context.Context, cmd *cli.Command) error {
	shelf, err := r.requireLogin()
	if err != nil {
		return err
	}

	result, err := shelf.GetShelf(ctx, cmd.Int("page"), cmd.Int("size"))
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, cmd.Bool("pretty"))
	}

	r.writePlain("Found %d books:\n\n", result.TotalElements)
	for i, ub := range result.Content {
		title, author := "(unknown)", ""
		if ub.Book != nil {
			title, author = ub.Book.Title, ub.Book.Author
		}
		r.writePlain("%d. %s\n", i+1, title)
		if author != "" {
			r.writePlain("   Author: %s\n", author)
		}
		r.writePlain("   Record: %s\n", ub.RecordID())
		r.writePlain("   Status: %s\n", ub.Status)
		r.writePlain("   Progress: page %d (%d%%)\n", ub.CurrentPage, ub.Progress)
		r.writePlain("\n")
	}
	if result.TotalPages > 1 {
		r.writePlain("Page %d of %d. Use --page to see more.\n", result.Number+1, result.TotalPages)
	}
	return nil
}

func (r *Runner) writeUploadHint(title, recordID string) error {
	if title != "" {
		r.writePlain("%s\n", title)
	}
	r.writePlain("This book has no stored text.\n")
	if recordID != "" {
		r.writePlain("Upload one with: bookx upload %s <file>\n", recordID)
	}
	return nil
}
