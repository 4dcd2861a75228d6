package reader

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/shared"
)

// Storage keys for device-wide reader preferences.
const (
	FontSizeKey = "reader-font-size"
	ThemeKey    = "reader-theme"
)

// PreferenceStore reads and writes [models.ReaderPreferences] in local device storage.
type PreferenceStore struct {
	kv     models.KV
	logger *log.Logger
}

// NewPreferenceStore creates a store over kv.
func NewPreferenceStore(kv models.KV, logger *log.Logger) *PreferenceStore {
	return &PreferenceStore{kv: kv, logger: logger}
}

// Load returns the stored preferences. Missing, unreadable or out-of-range values fall back to defaults.
func (p *PreferenceStore) Load() models.ReaderPreferences {
	prefs := models.DefaultPreferences()

	if raw, ok, err := p.kv.Get(FontSizeKey); err != nil {
		p.logger.Warn("failed to read font size", "error", err)
	} else if ok {
		if size, err := strconv.Atoi(raw); err == nil {
			prefs.FontSizePx = shared.Clamp(size, models.MinFontSize, models.MaxFontSize)
		} else {
			p.logger.Warn("ignoring stored font size", "value", raw)
		}
	}

	if raw, ok, err := p.kv.Get(ThemeKey); err != nil {
		p.logger.Warn("failed to read theme", "error", err)
	} else if ok {
		if theme, err := models.ParseTheme(raw); err == nil {
			prefs.Theme = theme
		} else {
			p.logger.Warn("ignoring stored theme", "value", raw)
		}
	}

	return prefs
}

// SetFontSize stores px clamped to the supported range and returns the stored value.
func (p *PreferenceStore) SetFontSize(px int) (int, error) {
	px = shared.Clamp(px, models.MinFontSize, models.MaxFontSize)
	if err := p.kv.Set(FontSizeKey, strconv.Itoa(px)); err != nil {
		return px, fmt.Errorf("failed to save font size: %w", err)
	}
	return px, nil
}

// AdjustFontSize changes the stored size by steps increments of [models.FontSizeStep].
func (p *PreferenceStore) AdjustFontSize(steps int) (int, error) {
	return p.SetFontSize(p.Load().FontSizePx + steps*models.FontSizeStep)
}

// SetTheme stores theme after validating it.
func (p *PreferenceStore) SetTheme(theme models.Theme) error {
	if _, err := models.ParseTheme(string(theme)); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrUnknownTheme, err)
	}
	if err := p.kv.Set(ThemeKey, string(theme)); err != nil {
		return fmt.Errorf("failed to save theme: %w", err)
	}
	return nil
}

// CycleTheme stores and returns the theme after the current one.
func (p *PreferenceStore) CycleTheme() (models.Theme, error) {
	next := p.Load().Theme.Next()
	return next, p.SetTheme(next)
}
