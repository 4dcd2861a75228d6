package models

import (
	"fmt"
	"strings"
	"time"
)

// Theme is the reader color scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeSepia Theme = "sepia"
	ThemeDark  Theme = "dark"
)

// Themes lists the themes in cycling order.
var Themes = []Theme{ThemeLight, ThemeSepia, ThemeDark}

// ParseTheme validates a theme name.
func ParseTheme(s string) (Theme, error) {
	t := Theme(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Themes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Next returns the theme after t, wrapping around.
func (t Theme) Next() Theme {
	for i, known := range Themes {
		if known == t {
			return Themes[(i+1)%len(Themes)]
		}
	}
	return ThemeLight
}

const (
	MinFontSize     = 14
	MaxFontSize     = 32
	DefaultFontSize = 18
	FontSizeStep    = 2
)

// ReaderPreferences are device-wide reader settings.
type ReaderPreferences struct {
	FontSizePx int
	Theme      Theme
}

// DefaultPreferences returns 18px on the light theme.
func DefaultPreferences() ReaderPreferences {
	return ReaderPreferences{FontSizePx: DefaultFontSize, Theme: ThemeLight}
}

// SelectionContext is a text selection inside the reading pane and the point its menu anchors to.
type SelectionContext struct {
	Text    string
	AnchorX float64
	AnchorY float64
}

// Action is an assistant operation on selected text.
type Action string

const (
	ActionExplain   Action = "explain"
	ActionTranslate Action = "translate"
	ActionSummary   Action = "summary"
)

// ParseAction validates an action name. "summarize" is accepted for [ActionSummary].
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "explain":
		return ActionExplain, nil
	case "translate":
		return ActionTranslate, nil
	case "summary", "summarize":
		return ActionSummary, nil
	}
	return "", fmt.Errorf("unknown assistant action %q", s)
}

// AssistantEntry records one assistant request and its outcome.
type AssistantEntry struct {
	ID        string
	Action    Action
	Query     string
	Response  string // the answer, or the error message when Failed
	Failed    bool
	Timestamp time.Time
}
