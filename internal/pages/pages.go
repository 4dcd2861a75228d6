// Package pages splits book text into boundary-aware pages.
package pages

// DefaultPageSize is the page size in characters used when none is configured.
const DefaultPageSize = 2000

// windowRatio is the share of a page searched backward for a boundary.
const windowRatio = 0.2

var terminators = [][2]rune{{'.', ' '}, {'!', ' '}, {'?', ' '}}

// Paginate splits text into consecutive pages of at most maxChars characters.
//
// Each cut prefers, within the trailing fifth of the page: a newline, then the latest
// sentence terminator followed by a space, then a space. With no boundary in the window the
// page is cut at maxChars, mid-word if need be. Pages concatenate back to text exactly.
// Empty text yields no pages; a non-positive maxChars means [DefaultPageSize].
func Paginate(text string, maxChars int) []string {
	if maxChars <= 0 {
		maxChars = DefaultPageSize
	}
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	window := int(float64(maxChars) * windowRatio)
	pages := make([]string, 0, len(runes)/maxChars+1)

	for start := 0; start < len(runes); {
		end := min(start+maxChars, len(runes))
		if end < len(runes) {
			end = cutPoint(runes, start, end, window)
		}
		pages = append(pages, string(runes[start:end]))
		start = end
	}

	return pages
}

// cutPoint returns the offset just past the best boundary in runes[max(start, end-window):end],
// or end when the window holds none. The result is always greater than start.
func cutPoint(runes []rune, start, end, window int) int {
	lo := max(start, end-window)

	for i := end - 1; i >= lo; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}

	// A terminator pair must lie wholly inside the window.
	for i := end - 2; i >= lo; i-- {
		for _, t := range terminators {
			if runes[i] == t[0] && runes[i+1] == t[1] {
				return i + 2
			}
		}
	}

	for i := end - 1; i >= lo; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}

	return end
}
