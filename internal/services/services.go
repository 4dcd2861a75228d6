// Package services defines interfaces for the remote collaborators of the reader
package services

import (
	"context"

	"github.com/desertthunder/bookx/internal/models"
)

// ContentFetcher fetches the full text of a book.
type ContentFetcher interface {
	// GetBookContent returns [shared.ErrContentNotFound] when the book has no stored text.
	GetBookContent(ctx context.Context, bookID string) (*models.BookContent, error)
}

// ProgressPersister writes a reading position to the caller's shelf record.
type ProgressPersister interface {
	UpdateReadingPosition(ctx context.Context, recordID string, update models.ProgressUpdate) error
}

// Library is the part of the bookshelf API a reader session needs.
type Library interface {
	ContentFetcher
	ProgressPersister

	// GetBookDetail returns the catalog book and, when shelved, the caller's record.
	GetBookDetail(ctx context.Context, bookID string) (*models.BookDetail, error)

	// AddToShelf creates a shelf record for bookID with the given status.
	AddToShelf(ctx context.Context, bookID string, status models.Status) (*models.UserBook, error)
}

// AssistantService answers explain/translate/summary requests on selected text.
//
// The answer is opaque to the reader; implementations may be slow.
type AssistantService interface {
	PerformAction(ctx context.Context, action models.Action, text string) (string, error)
	Name() string
}
