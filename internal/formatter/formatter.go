// package formatter renders paginated books, bookmarks and reading progress to CSV, Markdown and plain text
package formatter

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/bookx/internal/models"
)

// excerptLength is the rune limit for bookmark excerpts.
const excerptLength = 80

// BookExport is a paginated book together with the reader's local state.
type BookExport struct {
	Book      *models.Book
	Pages     []string
	Bookmarks []int // 0-based page indices
	Position  models.ReadingPosition
}

func (e *BookExport) title() string {
	if e.Book == nil || e.Book.Title == "" {
		return "Untitled"
	}
	return e.Book.Title
}

// BaseName returns the default file name stem for an export, "book_{id}".
func (e *BookExport) BaseName() string {
	if e.Book == nil || e.Book.ID == 0 {
		return "book"
	}
	return "book_" + strconv.FormatInt(e.Book.ID, 10)
}

func (e *BookExport) bookmarked(i int) bool {
	return slices.Contains(e.Bookmarks, i)
}

// FormatProgress renders a position as "page X / N (P%)" with a 1-based page number.
func FormatProgress(pos models.ReadingPosition) string {
	if pos.PageCount == 0 {
		return "page 0 / 0 (0%)"
	}
	return fmt.Sprintf("page %d / %d (%d%%)", pos.CurrentPageIndex+1, pos.PageCount, pos.ProgressPercent)
}

// Excerpt returns the first non-blank line of page, truncated to a short preview.
func Excerpt(page string) string {
	for line := range strings.SplitSeq(page, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		runes := []rune(line)
		if len(runes) > excerptLength {
			return string(runes[:excerptLength-3]) + "..."
		}
		return line
	}
	return ""
}

// BookmarksToCSV converts bookmarks to CSV with columns: Page, Excerpt.
//
// Pages are 1-based and sorted; bookmarks past the last page get an empty excerpt.
func BookmarksToCSV(export *BookExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write([]string{"Page", "Excerpt"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	pages := slices.Clone(export.Bookmarks)
	slices.Sort(pages)
	for _, index := range slices.Compact(pages) {
		excerpt := ""
		if index >= 0 && index < len(export.Pages) {
			excerpt = Excerpt(export.Pages[index])
		}
		if err := writer.Write([]string{strconv.Itoa(index + 1), excerpt}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PagesToMarkdown converts a book export to Markdown with one heading per page and an optional cover image.
func PagesToMarkdown(export *BookExport, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", export.title())

	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}

	if export.Book != nil && export.Book.Author != "" {
		fmt.Fprintf(&buf, "**Author**: %s\n", export.Book.Author)
	}
	fmt.Fprintf(&buf, "**Pages**: %d\n", len(export.Pages))
	fmt.Fprintf(&buf, "**Progress**: %s\n\n", FormatProgress(export.Position))

	for i, page := range export.Pages {
		marker := ""
		if export.bookmarked(i) {
			marker = " (bookmarked)"
		}
		fmt.Fprintf(&buf, "## Page %d%s\n\n%s\n\n", i+1, marker, strings.TrimRight(page, "\n"))
	}

	return buf.Bytes(), nil
}

// PagesToText converts a book export to plain text with a separator line before each page.
func PagesToText(export *BookExport) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Title: %s\n", export.title())
	if export.Book != nil && export.Book.Author != "" {
		fmt.Fprintf(&buf, "Author: %s\n", export.Book.Author)
	}
	fmt.Fprintf(&buf, "Pages: %d\n\n", len(export.Pages))

	for i, page := range export.Pages {
		fmt.Fprintf(&buf, "--- Page %d ---\n%s\n\n", i+1, strings.TrimRight(page, "\n"))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes.
func DownloadImage(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	BookmarksFile string
	MetadataFile  string
}

// WriteCSVExport writes the bookmarks CSV with an accompanying book metadata JSON file.
//
// Defaults to [BookExport.BaseName] & creates {base}_bookmarks.csv and {base}_metadata.json
func WriteCSVExport(export *BookExport, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = export.BaseName()
	}

	csvData, err := BookmarksToCSV(export)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	bookmarksFile := baseFilepath + "_bookmarks.csv"
	if err := os.WriteFile(bookmarksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := json.MarshalIndent(export.Book, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		BookmarksFile: bookmarksFile,
		MetadataFile:  metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	CoverError error
}

// WriteMarkdownExport exports a book to Markdown in a dedicated directory.
//
// The directory defaults to [BookExport.BaseName]. When the book has a cover URL the image is
// downloaded next to README.md; a failed download is reported in CoverError and does not stop the export.
func WriteMarkdownExport(ctx context.Context, client *http.Client, export *BookExport, outputDir string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = export.BaseName()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if export.Book != nil && export.Book.CoverURL != "" {
		if imageData, err := DownloadImage(ctx, client, export.Book.CoverURL); err != nil {
			result.CoverError = err
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				result.CoverError = err
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := PagesToMarkdown(export, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a book to plain text.
//
// Defaults to {base}.txt as the filename.
func WriteTextExport(export *BookExport, path string) (string, error) {
	if path == "" {
		path = export.BaseName() + ".txt"
	}

	textData, err := PagesToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(path, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return path, nil
}

// ManifestEntry is one book in a bulk export manifest.
type ManifestEntry struct {
	BookID string   `json:"book_id"`
	Title  string   `json:"title"`
	Status string   `json:"status"` // success, failed or skipped
	Files  []string `json:"files,omitempty"`
	Error  string   `json:"error,omitempty"`
}

// Manifest summarizes a bulk export.
type Manifest struct {
	Format            string          `json:"format"`
	ExportedAt        time.Time       `json:"exported_at"`
	TotalBooks        int             `json:"total_books"`
	SuccessfulExports int             `json:"successful_exports"`
	FailedExports     int             `json:"failed_exports"`
	SkippedBooks      int             `json:"skipped_books"`
	Books             []ManifestEntry `json:"books"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m *Manifest, path string) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to generate manifest JSON: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
