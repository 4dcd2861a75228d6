package reader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/pages"
	"github.com/desertthunder/bookx/internal/services"
	"github.com/desertthunder/bookx/internal/shared"
)

// Deps are the collaborators and settings a reading session is opened with.
type Deps struct {
	Library   services.Library
	Storage   models.KV
	Assistant services.AssistantService
	Logger    *log.Logger

	PageSize        int           // characters per page; 0 means pages.DefaultPageSize
	Attempts        uint          // fetch attempts on transient errors; 0 means 3
	RetryDelay      time.Duration // base delay between attempts; 0 means 500ms
	ProgressTimeout time.Duration // per progress write; 0 means 10s
}

func (d Deps) attempts() uint {
	if d.Attempts == 0 {
		return 3
	}
	return d.Attempts
}

func (d Deps) retryDelay() time.Duration {
	if d.RetryDelay <= 0 {
		return 500 * time.Millisecond
	}
	return d.RetryDelay
}

// Session is one open book: its pages and the reader state around them.
type Session struct {
	BookID string
	Detail *models.BookDetail
	Pages  []string

	Tracker     *Tracker
	Bookmarks   *BookmarkStore
	Preferences *PreferenceStore
	Assistant   *Assistant

	logger *log.Logger
}

// Open fetches bookID, paginates its text and resumes at the shelf record's page.
//
// A catalog-only book is first added to the shelf as READING; if that fails the session reads
// without saving progress. Transient fetch failures are retried.
//
// When the book has no text Open returns [shared.ErrContentNotFound] together with a session that
// has the book detail and no pages, so callers can offer an upload.
func Open(ctx context.Context, bookID string, deps Deps) (*Session, error) {
	logger := shared.WithLogger(deps.Logger, "book", bookID)

	var detail *models.BookDetail
	err := withRetry(ctx, deps, logger, "book detail", func() error {
		var err error
		detail, err = deps.Library.GetBookDetail(ctx, bookID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if detail.Kind() == models.CatalogOnly {
		userBook, err := deps.Library.AddToShelf(ctx, bookID, models.StatusReading)
		if err != nil {
			logger.Warn("could not add book to shelf, progress will not be saved", "error", err)
		} else {
			logger.Info("added book to shelf", "record", userBook.ID)
			detail.UserBook = userBook
		}
	}

	session := &Session{
		BookID:      bookID,
		Detail:      detail,
		Bookmarks:   NewBookmarkStore(deps.Storage, logger),
		Preferences: NewPreferenceStore(deps.Storage, logger),
		logger:      logger,
	}
	if deps.Assistant != nil {
		session.Assistant = NewAssistant(deps.Assistant, logger)
	}

	var content *models.BookContent
	err = withRetry(ctx, deps, logger, "book content", func() error {
		var err error
		content, err = deps.Library.GetBookContent(ctx, bookID)
		return err
	})
	if errors.Is(err, shared.ErrContentNotFound) {
		session.Tracker = NewTracker(nil, "", 0, logger)
		return session, err
	}
	if err != nil {
		return nil, err
	}

	session.Pages = pages.Paginate(content.Content, deps.PageSize)

	recordID, remotePage := "", 0
	if detail.UserBook != nil {
		recordID = detail.UserBook.RecordID()
		remotePage = detail.UserBook.CurrentPage
	}

	session.Tracker = NewTracker(deps.Library, recordID, len(session.Pages), logger).WithTimeout(deps.ProgressTimeout)
	resumed := session.Tracker.Resume(remotePage)

	logger.Info("opened book", "pages", len(session.Pages), "page", resumed+1, "synced", session.Tracker.Synced())
	return session, nil
}

// withRetry runs fn until it succeeds, fails with a non-transient error, or runs out of attempts.
func withRetry(ctx context.Context, deps Deps, logger *log.Logger, what string, fn func() error) error {
	return retry.Do(
		fn,
		retry.Context(ctx),
		retry.Attempts(deps.attempts()),
		retry.Delay(deps.retryDelay()),
		retry.LastErrorOnly(true),
		retry.RetryIf(services.IsTransient),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("retrying "+what, "attempt", n+1, "error", err)
		}),
	)
}

// Title returns the book title.
func (s *Session) Title() string {
	if s.Detail == nil {
		return ""
	}
	return s.Detail.Book.Title
}

// RecordID returns the shelf record progress is saved to, or "".
func (s *Session) RecordID() string {
	if s.Detail == nil || s.Detail.UserBook == nil {
		return ""
	}
	return s.Detail.UserBook.RecordID()
}

// Empty reports whether the book has no pages.
func (s *Session) Empty() bool {
	return len(s.Pages) == 0
}

// Page returns page i, or "" when out of range.
func (s *Session) Page(i int) string {
	if i < 0 || i >= len(s.Pages) {
		return ""
	}
	return s.Pages[i]
}

// CurrentPage returns the text of the current page.
func (s *Session) CurrentPage() string {
	return s.Page(s.Tracker.Current())
}

// ToggleBookmark toggles the current page in this book's bookmarks.
func (s *Session) ToggleBookmark() (bool, error) {
	return s.Bookmarks.Toggle(s.BookID, s.Tracker.Current())
}

// Close waits for pending progress writes.
func (s *Session) Close() {
	if s.Tracker != nil {
		s.Tracker.Wait()
	}
}

// String describes the session for logs.
func (s *Session) String() string {
	pos := s.Tracker.Position()
	return fmt.Sprintf("%s p.%d/%d", s.Title(), pos.CurrentPageIndex+1, pos.PageCount)
}
