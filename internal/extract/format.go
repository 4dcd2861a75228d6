// Package extract turns book files into plain text suitable for upload and pagination.
//
// Paragraph breaks are kept as newlines so the paginator can cut on them.
package extract

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Format defines a file format reader for extracting text.
type Format interface {
	Name() string
	Extensions() []string
	Extract(filename string) (string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// Lookup returns the format registered for filename's extension, or nil.
func Lookup(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// ExtractText extracts text from a file, using a registered format or plain text fallback.
func ExtractText(filename string) (string, error) {
	if f := Lookup(filename); f != nil {
		text, err := f.Extract(filename)
		if err != nil {
			return "", err
		}
		return Normalize(text), nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	return Normalize(string(data)), nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

var (
	trailingSpace = regexp.MustCompile(`[ \t]+\n`)
	blankRun      = regexp.MustCompile(`\n{3,}`)
)

// Normalize converts line endings to \n, drops trailing blanks on each line and collapses runs of blank lines to one.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = trailingSpace.ReplaceAllString(text, "\n")
	text = blankRun.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}
