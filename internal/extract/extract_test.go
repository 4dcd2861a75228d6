package extract

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

// writeEPUB builds a minimal EPUB with one spine item per chapter.
func writeEPUB(t *testing.T, chapters ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.epub")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create epub: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	add := func(name, body string) {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	add("mimetype", "application/epub+zip")
	add("META-INF/container.xml", `<?xml version="1.0"?>
<container version="1.0" xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)

	var manifest, spine strings.Builder
	for i, body := range chapters {
		id := "ch" + string(rune('a'+i))
		manifest.WriteString(`<item id="` + id + `" href="` + id + `.xhtml" media-type="application/xhtml+xml"/>`)
		spine.WriteString(`<itemref idref="` + id + `"/>`)
		add("OEBPS/"+id+".xhtml", `<?xml version="1.0" encoding="utf-8"?>
<html xmlns="http://www.w3.org/1999/xhtml"><head><title>ignored</title><style>p{}</style></head>
<body>`+body+`</body></html>`)
	}

	add("OEBPS/content.opf", `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/"><dc:title>Test</dc:title></metadata>
  <manifest>`+manifest.String()+`</manifest>
  <spine>`+spine.String()+`</spine>
</package>`)

	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close epub: %v", err)
	}
	return path
}

func TestExtractText(t *testing.T) {
	t.Run("plain text fallback normalizes line endings", func(t *testing.T) {
		path := writeFile(t, "book.txt", "First line.  \r\nSecond line.\r\n\r\n\r\n\r\nNext paragraph.\n")

		got, err := ExtractText(path)
		if err != nil {
			t.Fatalf("ExtractText() error = %v", err)
		}
		want := "First line.\nSecond line.\n\nNext paragraph."
		if got != want {
			t.Errorf("ExtractText() = %q, want %q", got, want)
		}
	})

	t.Run("unknown extension is read as text", func(t *testing.T) {
		path := writeFile(t, "notes.log", "just text")
		got, err := ExtractText(path)
		if err != nil {
			t.Fatalf("ExtractText() error = %v", err)
		}
		if got != "just text" {
			t.Errorf("ExtractText() = %q", got)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ExtractText(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestLookup(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"book.epub", "EPUB"},
		{"BOOK.EPUB", "EPUB"},
		{"notes.md", "Markdown"},
		{"notes.markdown", "Markdown"},
		{"book.txt", ""},
		{"noext", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			f := Lookup(tt.filename)
			got := ""
			if f != nil {
				got = f.Name()
			}
			if got != tt.want {
				t.Errorf("Lookup(%q) = %q, want %q", tt.filename, got, tt.want)
			}
		})
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	joined := strings.Join(formats, "; ")
	for _, want := range []string{"EPUB (.epub)", "Markdown (.md, .markdown)"} {
		if !strings.Contains(joined, want) {
			t.Errorf("SupportedFormats() = %v, missing %q", formats, want)
		}
	}
}

func TestMarkdownFormat(t *testing.T) {
	src := "# Chapter One\n\nIt was a **dark** and _stormy_ night.\n\n" +
		"- see [the map](http://example.com)\n> quoted line\n\n```\n# not a header\n```\n"
	path := writeFile(t, "story.md", src)

	got, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	want := "Chapter One\n\nIt was a dark and stormy night.\n\nsee the map\nquoted line\n\n# not a header"
	if got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
}

func TestEPUBFormat(t *testing.T) {
	path := writeEPUB(t,
		`<h1>Chapter 1</h1><p>It was a   bright cold day.</p><p>The clocks were striking <em>thirteen</em>.</p><script>var x;</script>`,
		`<h1>Chapter 2</h1><p>Second chapter.</p>`,
	)

	got, err := ExtractText(path)
	if err != nil {
		t.Fatalf("ExtractText() error = %v", err)
	}

	want := "Chapter 1\nIt was a bright cold day.\nThe clocks were striking thirteen.\n\nChapter 2\nSecond chapter."
	if got != want {
		t.Errorf("ExtractText() = %q, want %q", got, want)
	}
	if strings.Contains(got, "ignored") || strings.Contains(got, "var x") {
		t.Errorf("head and script content should be skipped: %q", got)
	}
}

func TestEPUBFormatInvalid(t *testing.T) {
	path := writeFile(t, "broken.epub", "not a zip")
	if _, err := ExtractText(path); err == nil {
		t.Error("expected error for invalid epub")
	}
}

func TestExtractTextFromHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "<p>One</p><p>Two</p>", "One\nTwo"},
		{"line break", "<p>One<br/>Two</p>", "One\nTwo"},
		{"inline stays joined", "<p>a <b>bold</b> word</p>", "a bold word"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTextFromHTML(tt.in); got != tt.want {
				t.Errorf("extractTextFromHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
