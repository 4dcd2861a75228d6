package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/bookx/internal/formatter"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/desertthunder/bookx/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Export writes a paginated book with its bookmarks as text, Markdown or a bookmarks CSV.
func (r *Runner) Export(ctx context.Context, cmd *cli.Command) error {
	bookID, err := bookArg(cmd)
	if err != nil {
		return err
	}
	format := strings.ToLower(cmd.String("format"))
	output := cmd.String("output")

	switch format {
	case "text", "txt", "markdown", "md", "csv":
	default:
		return fmt.Errorf("%w: unknown format %q (text, markdown, csv)", shared.ErrInvalidArgument, format)
	}

	session, err := r.openBook(ctx, bookID, cmd.Int("page-size"))
	if errors.Is(err, shared.ErrContentNotFound) {
		return fmt.Errorf("%w: nothing to export", err)
	}
	if err != nil {
		return err
	}
	defer session.Close()

	bookmarks, err := session.Bookmarks.List(bookID)
	if err != nil {
		r.logger.Warn("exporting without bookmarks", "error", err)
	}

	book := session.Detail.Book
	export := &formatter.BookExport{
		Book:      &book,
		Pages:     session.Pages,
		Bookmarks: bookmarks,
		Position:  session.Tracker.Position(),
	}

	switch format {
	case "markdown", "md":
		result, err := formatter.WriteMarkdownExport(ctx, r.httpClient, export, output)
		if err != nil {
			return err
		}
		if result.CoverError != nil {
			r.logger.Warn("failed to download cover image", "error", result.CoverError)
		}
		r.writePlain("✓ Exported %d pages to %s\n", len(export.Pages), result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
	case "csv":
		result, err := formatter.WriteCSVExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d bookmarks to %s\n", len(bookmarks), result.BookmarksFile)
		r.writePlain("  metadata: %s\n", result.MetadataFile)
	default:
		path, err := formatter.WriteTextExport(export, output)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %d pages to %s\n", len(export.Pages), path)
	}
	return nil
}

// ShelfExport exports every book on the shelf into one directory with a manifest.
func (r *Runner) ShelfExport(ctx context.Context, cmd *cli.Command) error {
	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "txt":
		format = "text"
	case "md":
		format = "markdown"
	}

	shelf, err := r.requireLogin()
	if err != nil {
		return err
	}
	kv, err := r.storage()
	if err != nil {
		return err
	}

	pageSize := cmd.Int("page-size")
	if pageSize <= 0 {
		pageSize = r.config.Reader.PageSize
	}
	engine := tasks.NewShelfEngine(shelf, kv, r.logger, pageSize)

	progress := make(chan tasks.ProgressUpdate, 100)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Info(update.Message, "phase", update.Phase)
		}
	}()

	records, err := engine.ListShelf(ctx, progress)
	if err != nil {
		close(progress)
		<-done
		return err
	}

	result, err := engine.BulkExport(ctx, progress, records, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		RateLimit:  r.config.API.RateLimit,
		HTTPClient: r.httpClient,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlain("✓ Exported %d of %d books to %s\n", result.SuccessfulExports, result.TotalBooks, result.OutputDirectory)
	if result.SkippedBooks > 0 {
		r.writePlain("  %d without stored text\n", result.SkippedBooks)
	}
	if result.FailedExports > 0 {
		r.writePlain("  %d failed:\n", result.FailedExports)
		for _, res := range result.Results {
			if !res.Success && !res.Skipped {
				r.writePlain("    %s: %v\n", res.Title, res.Error)
			}
		}
	}
	r.writePlain("  manifest: %s\n", result.ManifestPath)
	return nil
}
