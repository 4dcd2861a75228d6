package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/services"
	"github.com/desertthunder/bookx/internal/shared"
)

// shelfPageSize is the number of records requested per shelf page.
const shelfPageSize = 50

// ShelfSource lists the caller's shelf and serves the books on it.
type ShelfSource interface {
	services.Library
	GetShelf(ctx context.Context, page, size int) (*models.ShelfPage, error)
}

// ShelfEngine runs operations across every book on the caller's shelf.
type ShelfEngine struct {
	shelf    ShelfSource
	storage  models.KV
	logger   *log.Logger
	pageSize int
}

// NewShelfEngine creates an engine over shelf. storage holds the local bookmarks read during exports
// and pageSize is the pagination size; 0 means the paginator default.
func NewShelfEngine(shelf ShelfSource, storage models.KV, logger *log.Logger, pageSize int) *ShelfEngine {
	return &ShelfEngine{
		shelf:    shelf,
		storage:  storage,
		logger:   logger,
		pageSize: pageSize,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ShelfEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// ListShelf fetches every page of the caller's shelf.
func (e *ShelfEngine) ListShelf(ctx context.Context, progress chan<- ProgressUpdate) ([]models.UserBook, error) {
	if e.shelf == nil {
		return nil, fmt.Errorf("%w: shelf not initialized", shared.ErrServiceUnavailable)
	}

	var records []models.UserBook
	total := 1
	for page := 0; page < total; page++ {
		e.sendProgress(progress, fetchShelfUpdate(page+1, total))

		result, err := e.shelf.GetShelf(ctx, page, shelfPageSize)
		if err != nil {
			return nil, fmt.Errorf("failed to list shelf page %d: %w", page, err)
		}
		records = append(records, result.Content...)

		if len(result.Content) == 0 {
			break
		}
		total = max(result.TotalPages, 1)
	}

	e.logger.Debug("listed shelf", "records", len(records), "pages", total)
	e.sendProgress(progress, foundShelfUpdate(len(records)))
	return records, nil
}
