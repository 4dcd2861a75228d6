package reader

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/services"
)

const defaultProgressTimeout = 10 * time.Second

// Tracker holds the current page of a paginated book and mirrors it to the shelf record.
//
// Navigation updates the index before any request is sent. Each accepted navigation starts one
// background write; writes are neither retried nor cancelled and may land in any order.
type Tracker struct {
	persister services.ProgressPersister
	recordID  string
	pageCount int
	logger    *log.Logger
	timeout   time.Duration

	mu      sync.Mutex
	current int
	seq     uint64 // last dispatched write
	acked   uint64 // newest write the server confirmed
	wg      sync.WaitGroup
}

// NewTracker creates a tracker at page 0. An empty recordID (or nil persister) disables remote writes.
func NewTracker(persister services.ProgressPersister, recordID string, pageCount int, logger *log.Logger) *Tracker {
	return &Tracker{
		persister: persister,
		recordID:  recordID,
		pageCount: max(pageCount, 0),
		logger:    logger,
		timeout:   defaultProgressTimeout,
	}
}

// WithTimeout bounds each background write.
func (t *Tracker) WithTimeout(d time.Duration) *Tracker {
	if d > 0 {
		t.timeout = d
	}
	return t
}

// ProgressPercent returns round((index+1)/pageCount*100), or 0 for an empty book.
func ProgressPercent(index, pageCount int) int {
	if pageCount <= 0 {
		return 0
	}
	return int(math.Round(float64(index+1) / float64(pageCount) * 100))
}

// Resume positions the tracker from a remote 1-based page number without writing it back.
//
// The result is clamped to the last page, so a record made with a larger page count still lands inside
// the book. Non-positive remotePage starts at the first page.
func (t *Tracker) Resume(remotePage int) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	index := 0
	if remotePage > 0 && t.pageCount > 0 {
		index = min(remotePage-1, t.pageCount-1)
	}
	t.current = max(index, 0)
	return t.current
}

// GoToPage moves to index and starts a background progress write.
//
// Indices outside [0, pageCount) are ignored and report false.
func (t *Tracker) GoToPage(index int) bool {
	t.mu.Lock()
	if index < 0 || index >= t.pageCount {
		t.mu.Unlock()
		return false
	}

	t.current = index
	if t.persister == nil || t.recordID == "" {
		t.mu.Unlock()
		return true
	}

	t.seq++
	seq := t.seq
	update := models.ProgressUpdate{
		CurrentPage: index + 1,
		TotalPages:  t.pageCount,
		Progress:    ProgressPercent(index, t.pageCount),
	}
	t.wg.Add(1)
	t.mu.Unlock()

	go t.persist(seq, update)
	return true
}

// Next moves forward one page. It reports false on the last page.
func (t *Tracker) Next() bool {
	return t.GoToPage(t.Current() + 1)
}

// Prev moves back one page. It reports false on the first page.
func (t *Tracker) Prev() bool {
	return t.GoToPage(t.Current() - 1)
}

// Current returns the 0-based page index.
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// PageCount returns the number of pages tracked.
func (t *Tracker) PageCount() int {
	return t.pageCount
}

// Synced reports whether progress writes are sent anywhere.
func (t *Tracker) Synced() bool {
	return t.persister != nil && t.recordID != ""
}

// Position returns the current reading position.
func (t *Tracker) Position() models.ReadingPosition {
	current := t.Current()
	return models.ReadingPosition{
		CurrentPageIndex: current,
		PageCount:        t.pageCount,
		ProgressPercent:  ProgressPercent(current, t.pageCount),
	}
}

// Wait blocks until every write started so far has finished.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

func (t *Tracker) persist(seq uint64, update models.ProgressUpdate) {
	defer t.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	if err := t.persister.UpdateReadingPosition(ctx, t.recordID, update); err != nil {
		t.logger.Warn("failed to save reading position", "record", t.recordID, "page", update.CurrentPage, "error", err)
		return
	}

	t.mu.Lock()
	stale := seq < t.acked
	if !stale {
		t.acked = seq
	}
	latest := t.acked
	t.mu.Unlock()

	if stale {
		t.logger.Debug("ignoring stale progress ack", "seq", seq, "latest", latest)
		return
	}
	t.logger.Debug("reading position saved", "record", t.recordID, "page", update.CurrentPage, "progress", update.Progress)
}
