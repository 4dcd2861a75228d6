package reader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/services"
	"github.com/desertthunder/bookx/internal/shared"
)

// AnchorOffset lifts the action menu above the selection.
const AnchorOffset = 50

// AssistantState is the selection assistant's lifecycle stage.
type AssistantState int

const (
	StateIdle AssistantState = iota
	StateSelecting
	StateActionPending
	StateIdleWithResult
)

func (s AssistantState) String() string {
	switch s {
	case StateSelecting:
		return "selecting"
	case StateActionPending:
		return "pending"
	case StateIdleWithResult:
		return "result"
	default:
		return "idle"
	}
}

// Rect is a selection's bounding box in viewport coordinates.
type Rect struct {
	Left, Top, Width, Height float64
}

// Assistant captures text selections and runs assistant actions on them.
//
// A selection made while an action is pending is kept for the next action; it does not touch the
// request in flight.
type Assistant struct {
	service services.AssistantService
	logger  *log.Logger
	now     func() time.Time

	mu        sync.Mutex
	state     AssistantState
	selection *models.SelectionContext
	history   []models.AssistantEntry
	pending   int
}

// NewAssistant creates an idle assistant over service.
func NewAssistant(service services.AssistantService, logger *log.Logger) *Assistant {
	return &Assistant{service: service, logger: logger, now: time.Now}
}

// Select captures text and its anchor: horizontally centered on rect, [AnchorOffset] above its top,
// shifted by scrollY. Blank text clears the selection.
func (a *Assistant) Select(text string, rect Rect, scrollY float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if strings.TrimSpace(text) == "" {
		a.selection = nil
		if a.state == StateSelecting {
			a.state = StateIdle
			if len(a.history) > 0 {
				a.state = StateIdleWithResult
			}
		}
		return
	}

	a.selection = &models.SelectionContext{
		Text:    text,
		AnchorX: rect.Left + rect.Width/2,
		AnchorY: rect.Top + scrollY - AnchorOffset,
	}
	if a.state != StateActionPending {
		a.state = StateSelecting
	}
}

// Clear drops the current selection.
func (a *Assistant) Clear() {
	a.Select("", Rect{}, 0)
}

// Invoke consumes the current selection and performs action on it.
//
// It fails only with [shared.ErrNoSelection]. A service failure is recorded as a failed entry whose
// Response holds the error message.
func (a *Assistant) Invoke(ctx context.Context, action models.Action) (models.AssistantEntry, error) {
	a.mu.Lock()
	selection := a.selection
	if selection == nil {
		a.mu.Unlock()
		return models.AssistantEntry{}, shared.ErrNoSelection
	}
	a.selection = nil
	a.state = StateActionPending
	a.pending++
	a.mu.Unlock()

	entry := models.AssistantEntry{
		ID:     shared.GenerateID(),
		Action: action,
		Query:  selection.Text,
	}

	response, err := a.service.PerformAction(ctx, action, selection.Text)
	if err != nil {
		a.logger.Warn("assistant request failed", "action", action, "provider", a.service.Name(), "error", err)
		entry.Failed = true
		entry.Response = fmt.Sprintf("Assistant service error: %v", err)
	} else {
		entry.Response = response
	}
	entry.Timestamp = a.now()

	a.mu.Lock()
	a.history = append(a.history, entry)
	a.pending--
	if a.pending == 0 {
		a.state = StateIdleWithResult
		if a.selection != nil {
			a.state = StateSelecting
		}
	}
	a.mu.Unlock()

	return entry, nil
}

// State returns the current lifecycle stage.
func (a *Assistant) State() AssistantState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Selection returns the current selection, if any.
func (a *Assistant) Selection() (models.SelectionContext, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.selection == nil {
		return models.SelectionContext{}, false
	}
	return *a.selection, true
}

// History returns completed entries, oldest first.
func (a *Assistant) History() []models.AssistantEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.AssistantEntry(nil), a.history...)
}

// LastResult returns the most recent entry.
func (a *Assistant) LastResult() (models.AssistantEntry, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.history) == 0 {
		return models.AssistantEntry{}, false
	}
	return a.history[len(a.history)-1], true
}
