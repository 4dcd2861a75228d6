package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchShelf Phase = iota
	OpenBook
	ExportBook
)

func (p Phase) String() string {
	switch p {
	case FetchShelf:
		return "fetch_shelf"
	case OpenBook:
		return "open_book"
	case ExportBook:
		return "export_book"
	default:
		return ""
	}
}

func fetchShelfUpdate(page, total int) ProgressUpdate {
	msg := "Fetching shelf..."
	if total > 1 {
		msg = fmt.Sprintf("Fetching shelf (page %d of %d)...", page, total)
	}
	return ProgressUpdate{
		Phase:   FetchShelf,
		Step:    page,
		Total:   total,
		Message: msg,
	}
}

func foundShelfUpdate(count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchShelf,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d books on the shelf", count),
		Data:    count,
	}
}

func openingBookUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   OpenBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Opening: %s...", step, total, title),
	}
}

func exportCompletedUpdate(step, total int, title string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, title, filesCount),
	}
}

func exportSkippedUpdate(step, total int, title string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] - %s (no stored text)", step, total, title),
	}
}

func exportFailedUpdate(step, total int, title string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportBook,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, title, err),
	}
}
