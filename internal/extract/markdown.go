package extract

import (
	"bufio"
	"os"
	"regexp"
	"strings"
)

// MarkdownFormat implements Format for Markdown files.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

var (
	// headerRegex matches markdown headers (# to ######)
	headerRegex = regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`)
	imageRegex  = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	linkRegex   = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	emphasis    = regexp.MustCompile(`(\*\*|__|\*|_|~~|` + "`" + `)([^*_~` + "`" + `]+)(\*\*|__|\*|_|~~|` + "`" + `)`)
	listMarker  = regexp.MustCompile(`^\s*([-*+]|\d+\.)\s+`)
	quoteMarker = regexp.MustCompile(`^\s*>\s?`)
)

// Extract returns the document's text with Markdown syntax removed. Fenced code is kept verbatim.
func (f *MarkdownFormat) Extract(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer file.Close()

	var out strings.Builder
	inFence := false

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
			continue
		}
		if !inFence {
			line = stripMarkdown(line)
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	return out.String(), scanner.Err()
}

func stripMarkdown(line string) string {
	if match := headerRegex.FindStringSubmatch(line); match != nil {
		line = match[2]
	}
	line = quoteMarker.ReplaceAllString(line, "")
	line = listMarker.ReplaceAllString(line, "")
	line = imageRegex.ReplaceAllString(line, "$1")
	line = linkRegex.ReplaceAllString(line, "$1")
	line = emphasis.ReplaceAllString(line, "$2")
	return line
}
