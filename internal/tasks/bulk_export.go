package tasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/desertthunder/bookx/internal/formatter"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/reader"
	"github.com/desertthunder/bookx/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk shelf exports.
type BulkExportOpts struct {
	Format     string       // Export format: text, markdown or csv
	OutputDir  string       // Base output directory (default: shelf_export_{epoch})
	NumWorkers int          // Concurrent writers (default: 3, at most 10)
	RateLimit  float64      // Books opened per second (default: 5)
	HTTPClient *http.Client // Cover downloads for markdown
}

// BookExportJob is an opened book waiting to be written.
type BookExportJob struct {
	Record  models.UserBook
	Session *reader.Session
}

// BookExportResult is the outcome of exporting one shelf record.
type BookExportResult struct {
	BookID  string
	Title   string
	Success bool
	Skipped bool // the book has no stored text
	Files   []string
	Error   error
}

// BulkExportResult contains the outcome of a bulk export.
type BulkExportResult struct {
	TotalBooks        int
	SuccessfulExports int
	FailedExports     int
	SkippedBooks      int
	OutputDirectory   string
	ManifestPath      string
	Results           []BookExportResult
}

// BulkExport opens every record in records and writes it in opts.Format under opts.OutputDir.
//
// Books are opened one at a time under a rate limit and written by a pool of workers. A book
// without stored text is skipped and any other failure is recorded on its result; neither stops
// the run. A manifest of all results is written last.
func (e *ShelfEngine) BulkExport(
	ctx context.Context,
	prog chan<- ProgressUpdate,
	records []models.UserBook,
	opts BulkExportOpts,
) (*BulkExportResult, error) {
	if e.shelf == nil {
		return nil, fmt.Errorf("%w: shelf not initialized", shared.ErrServiceUnavailable)
	}

	switch opts.Format {
	case "text", "markdown", "csv":
	case "":
		opts.Format = "text"
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, opts.Format)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("shelf_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 3
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalBooks:      len(records),
		OutputDirectory: opts.OutputDir,
		Results:         make([]BookExportResult, 0, len(records)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)

	jobs := make(chan BookExportJob, len(records))
	results := make(chan BookExportResult, len(records))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, record := range records {
			if ctx.Err() != nil {
				return
			}
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			bookID, title := recordBook(record)
			e.sendProgress(prog, openingBookUpdate(i+1, len(records), title))

			if bookID == "" {
				results <- BookExportResult{
					Title: title,
					Error: fmt.Errorf("%w: record %s has no book", shared.ErrInvalidInput, record.RecordID()),
				}
				continue
			}

			session, err := reader.Open(ctx, bookID, reader.Deps{
				Library:  e.shelf,
				Storage:  e.storage,
				Logger:   e.logger,
				PageSize: e.pageSize,
			})
			if errors.Is(err, shared.ErrContentNotFound) {
				results <- BookExportResult{BookID: bookID, Title: title, Skipped: true}
				continue
			}
			if err != nil {
				results <- BookExportResult{
					BookID: bookID,
					Title:  title,
					Error:  fmt.Errorf("failed to open book: %w", err),
				}
				continue
			}

			jobs <- BookExportJob{Record: record, Session: session}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		switch {
		case res.Success:
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(records), res.Title, len(res.Files)))
		case res.Skipped:
			result.SkippedBooks++
			e.sendProgress(prog, exportSkippedUpdate(completed, len(records), res.Title))
		default:
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(records), res.Title, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifestOf(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes books from the jobs channel until it closes.
func (e *ShelfEngine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan BookExportJob,
	results chan<- BookExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			job.Session.Close()
			continue
		}
		results <- e.exportBook(ctx, job, opts)
	}
}

// exportBook writes one opened book in the requested format.
func (e *ShelfEngine) exportBook(ctx context.Context, j BookExportJob, opts BulkExportOpts) BookExportResult {
	defer j.Session.Close()

	bookID, title := recordBook(j.Record)
	result := BookExportResult{
		BookID: bookID,
		Title:  title,
		Files:  []string{},
	}

	bookmarks, err := j.Session.Bookmarks.List(bookID)
	if err != nil {
		e.logger.Warn("exporting without bookmarks", "book", bookID, "error", err)
	}

	book := j.Session.Detail.Book
	export := &formatter.BookExport{
		Book:      &book,
		Pages:     j.Session.Pages,
		Bookmarks: bookmarks,
		Position:  j.Session.Tracker.Position(),
	}
	base := filepath.Join(opts.OutputDir, export.BaseName())

	switch opts.Format {
	case "csv":
		csvRes, err := formatter.WriteCSVExport(export, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{csvRes.BookmarksFile, csvRes.MetadataFile}

	case "markdown":
		mdRes, err := formatter.WriteMarkdownExport(ctx, opts.HTTPClient, export, base)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		if mdRes.CoverError != nil {
			e.logger.Warn("failed to download cover image", "book", bookID, "error", mdRes.CoverError)
		}
		result.Files = mdRes.Files

	default:
		path, err := formatter.WriteTextExport(export, base+".txt")
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

// recordBook returns the catalog ID and title of a shelf record's book.
func recordBook(record models.UserBook) (bookID, title string) {
	if record.Book == nil || record.Book.ID == 0 {
		return "", fmt.Sprintf("Unknown (record %s)", record.RecordID())
	}
	title = record.Book.Title
	if title == "" {
		title = "Untitled"
	}
	return strconv.FormatInt(record.Book.ID, 10), title
}

func manifestOf(result *BulkExportResult, format string) *formatter.Manifest {
	manifest := &formatter.Manifest{
		Format:            format,
		ExportedAt:        time.Now().UTC(),
		TotalBooks:        result.TotalBooks,
		SuccessfulExports: result.SuccessfulExports,
		FailedExports:     result.FailedExports,
		SkippedBooks:      result.SkippedBooks,
		Books:             make([]formatter.ManifestEntry, 0, len(result.Results)),
	}
	for _, res := range result.Results {
		entry := formatter.ManifestEntry{
			BookID: res.BookID,
			Title:  res.Title,
			Files:  res.Files,
		}
		switch {
		case res.Success:
			entry.Status = "success"
		case res.Skipped:
			entry.Status = "skipped"
		default:
			entry.Status = "failed"
			if res.Error != nil {
				entry.Error = res.Error.Error()
			}
		}
		manifest.Books = append(manifest.Books, entry)
	}
	return manifest
}
