package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/desertthunder/bookx/internal/extract"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Upload extracts text from a local file and attaches it to a shelf record.
func (r *Runner) Upload(ctx context.Context, cmd *cli.Command) error {
	recordID := cmd.StringArg("record")
	path := cmd.StringArg("file")
	if recordID == "" || path == "" {
		return fmt.Errorf("%w: usage: bookx upload <record> <file>", shared.ErrMissingArgument)
	}

	shelf, err := r.requireLogin()
	if err != nil {
		return err
	}

	format := "text"
	if f := extract.Lookup(path); f != nil {
		format = f.Name()
	}
	r.logger.Info("extracting text", "file", path, "format", format)

	text, err := extract.ExtractText(path)
	if err != nil {
		return fmt.Errorf("failed to extract text from %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: %s contains no text", shared.ErrInvalidInput, path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".txt"
	userBook, err := shelf.UploadContent(ctx, recordID, name, strings.NewReader(text))
	if err != nil {
		return err
	}

	r.writePlain("✓ Uploaded %d characters to record %s\n", utf8.RuneCountInString(text), recordID)
	if userBook.Book != nil {
		r.writePlain("Read it with: bookx read %d\n", userBook.Book.ID)
	}
	return nil
}
