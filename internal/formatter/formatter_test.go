package formatter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/bookx/internal/models"
	th "github.com/desertthunder/bookx/internal/testing"
)

func testExport() *BookExport {
	return &BookExport{
		Book: &models.Book{
			ID:     42,
			Title:  "The Test Book",
			Author: "A. Writer",
		},
		Pages: []string{
			"Chapter One\nIt was a dark night.\n",
			"\n  Second page opens here.",
			"Third page.",
		},
		Bookmarks: []int{2, 0},
		Position:  models.ReadingPosition{CurrentPageIndex: 1, PageCount: 3, ProgressPercent: 67},
	}
}

func TestFormatProgress(t *testing.T) {
	tests := []struct {
		name string
		pos  models.ReadingPosition
		want string
	}{
		{"middle", models.ReadingPosition{CurrentPageIndex: 1, PageCount: 3, ProgressPercent: 67}, "page 2 / 3 (67%)"},
		{"last", models.ReadingPosition{CurrentPageIndex: 4, PageCount: 5, ProgressPercent: 100}, "page 5 / 5 (100%)"},
		{"empty", models.ReadingPosition{}, "page 0 / 0 (0%)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatProgress(tt.pos); got != tt.want {
				t.Errorf("FormatProgress() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExcerpt(t *testing.T) {
	long := strings.Repeat("word ", 30)
	tests := []struct {
		name string
		page string
		want string
	}{
		{"first line", "Hello\nworld", "Hello"},
		{"skips blank lines", "\n   \nBody text", "Body text"},
		{"empty", "", ""},
		{"truncates", long, string([]rune(strings.TrimSpace(long))[:excerptLength-3]) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Excerpt(tt.page); got != tt.want {
				t.Errorf("Excerpt() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExporters(t *testing.T) {
	t.Run("BookmarksToCSV", func(t *testing.T) {
		export := testExport()
		export.Bookmarks = []int{2, 0, 2, 9}

		data, err := BookmarksToCSV(export)
		if err != nil {
			t.Fatalf("BookmarksToCSV failed: %v", err)
		}

		want := "Page,Excerpt\n1,Chapter One\n3,Third page.\n10,\n"
		if string(data) != want {
			t.Errorf("BookmarksToCSV() = %q, want %q", string(data), want)
		}
	})

	t.Run("BookmarksToCSV does not reorder the export", func(t *testing.T) {
		export := testExport()
		if _, err := BookmarksToCSV(export); err != nil {
			t.Fatalf("BookmarksToCSV failed: %v", err)
		}
		if export.Bookmarks[0] != 2 || export.Bookmarks[1] != 0 {
			t.Errorf("bookmarks were modified: %v", export.Bookmarks)
		}
	})

	t.Run("PagesToMarkdown", func(t *testing.T) {
		data, err := PagesToMarkdown(testExport(), "cover.jpg")
		if err != nil {
			t.Fatalf("PagesToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# The Test Book\n",
			"![Cover](cover.jpg)",
			"**Author**: A. Writer",
			"**Pages**: 3",
			"**Progress**: page 2 / 3 (67%)",
			"## Page 1 (bookmarked)\n\nChapter One\nIt was a dark night.\n\n",
			"## Page 2\n\n",
			"## Page 3 (bookmarked)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("PagesToMarkdown without cover", func(t *testing.T) {
		data, err := PagesToMarkdown(&BookExport{}, "")
		if err != nil {
			t.Fatalf("PagesToMarkdown failed: %v", err)
		}
		output := string(data)
		if strings.Contains(output, "![Cover]") {
			t.Error("Markdown should not include a cover image")
		}
		if !strings.HasPrefix(output, "# Untitled") {
			t.Errorf("expected Untitled heading, got %q", output)
		}
	})

	t.Run("PagesToText", func(t *testing.T) {
		data, err := PagesToText(testExport())
		if err != nil {
			t.Fatalf("PagesToText failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Title: The Test Book\nAuthor: A. Writer\nPages: 3\n\n") {
			t.Errorf("unexpected header: %q", output)
		}
		if !strings.Contains(output, "--- Page 3 ---\nThird page.\n") {
			t.Errorf("text missing page 3, got:\n%s", output)
		}
	})
}

func TestDownloadImage(t *testing.T) {
	t.Run("EmptyURL", func(t *testing.T) {
		if _, err := DownloadImage(context.Background(), nil, ""); err == nil {
			t.Error("DownloadImage with empty URL should return error")
		}
	})

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("jpeg-bytes"))
		}))
		defer server.Close()

		data, err := DownloadImage(context.Background(), server.Client(), server.URL)
		if err != nil {
			t.Fatalf("DownloadImage failed: %v", err)
		}
		if string(data) != "jpeg-bytes" {
			t.Errorf("DownloadImage() = %q", data)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		defer server.Close()

		if _, err := DownloadImage(context.Background(), server.Client(), server.URL); err == nil {
			t.Error("expected error for 404")
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteCSVExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			t.Chdir(t.TempDir())

			result, err := WriteCSVExport(testExport(), "")
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}

			if result.BookmarksFile != "book_42_bookmarks.csv" {
				t.Errorf("Expected bookmarks file 'book_42_bookmarks.csv', got '%s'", result.BookmarksFile)
			}
			if result.MetadataFile != "book_42_metadata.json" {
				t.Errorf("Expected metadata file 'book_42_metadata.json', got '%s'", result.MetadataFile)
			}

			th.AssertFileExists(t, result.BookmarksFile)
			metadata := th.MustReadFile(t, result.MetadataFile)
			if !strings.Contains(string(metadata), `"title": "The Test Book"`) {
				t.Errorf("metadata missing title: %s", metadata)
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			base := filepath.Join(t.TempDir(), "custom")
			result, err := WriteCSVExport(testExport(), base)
			if err != nil {
				t.Fatalf("WriteCSVExport failed: %v", err)
			}
			if result.BookmarksFile != base+"_bookmarks.csv" {
				t.Errorf("unexpected bookmarks file %s", result.BookmarksFile)
			}
		})
	})

	t.Run("WriteMarkdownExport", func(t *testing.T) {
		t.Run("WithCover", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("jpeg-bytes"))
			}))
			defer server.Close()

			export := testExport()
			export.Book.CoverURL = server.URL + "/cover.jpg"
			dir := filepath.Join(t.TempDir(), "out")

			result, err := WriteMarkdownExport(context.Background(), server.Client(), export, dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}

			if len(result.Files) != 2 {
				t.Fatalf("expected 2 files, got %v", result.Files)
			}
			if result.CoverImage != filepath.Join(dir, "cover.jpg") {
				t.Errorf("unexpected cover path %q", result.CoverImage)
			}
			readme := th.MustReadFile(t, filepath.Join(dir, "README.md"))
			if !strings.Contains(string(readme), "![Cover](cover.jpg)") {
				t.Error("README should reference the cover image")
			}
		})

		t.Run("CoverFailureIsNotFatal", func(t *testing.T) {
			server := httptest.NewServer(http.NotFoundHandler())
			defer server.Close()

			export := testExport()
			export.Book.CoverURL = server.URL
			dir := t.TempDir()

			result, err := WriteMarkdownExport(context.Background(), server.Client(), export, dir)
			if err != nil {
				t.Fatalf("WriteMarkdownExport failed: %v", err)
			}
			if result.CoverError == nil {
				t.Error("expected CoverError to be set")
			}
			if result.CoverImage != "" {
				t.Error("no cover image should be recorded")
			}
			if _, err := os.Stat(filepath.Join(dir, "README.md")); err != nil {
				t.Errorf("README.md should exist: %v", err)
			}
		})
	})

	t.Run("WriteTextExport", func(t *testing.T) {
		t.Chdir(t.TempDir())

		path, err := WriteTextExport(testExport(), "")
		if err != nil {
			t.Fatalf("WriteTextExport failed: %v", err)
		}
		if path != "book_42.txt" {
			t.Errorf("expected book_42.txt, got %s", path)
		}
		th.AssertFileExists(t, path)
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "export_manifest.json")
		manifest := &Manifest{
			Format:            "markdown",
			TotalBooks:        3,
			SuccessfulExports: 1,
			FailedExports:     1,
			SkippedBooks:      1,
			Books: []ManifestEntry{
				{BookID: "1", Title: "Dune", Status: "success", Files: []string{"book_1/README.md"}},
				{BookID: "2", Title: "Emma", Status: "failed", Error: "boom"},
				{BookID: "3", Title: "Blank", Status: "skipped"},
			},
		}

		if err := WriteManifest(manifest, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}

		content := th.MustReadFile(t, path)
		for _, want := range []string{`"format": "markdown"`, `"failed_exports": 1`, `"status": "skipped"`, `"error": "boom"`} {
			if !strings.Contains(content, want) {
				t.Errorf("manifest missing %s:\n%s", want, content)
			}
		}
	})
}
