package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/reader"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// PrefsShow prints the stored reader preferences.
func (r *Runner) PrefsShow(ctx context.Context, cmd *cli.Command) error {
	kv, err := r.storage()
	if err != nil {
		return err
	}
	prefs := reader.NewPreferenceStore(kv, r.logger).Load()
	r.writePlain("Font size: %dpx\n", prefs.FontSizePx)
	r.writePlain("Theme: %s\n", prefs.Theme)
	return nil
}

// PrefsSet updates the font size and/or theme.
func (r *Runner) PrefsSet(ctx context.Context, cmd *cli.Command) error {
	if !cmd.IsSet("font-size") && !cmd.IsSet("theme") {
		return fmt.Errorf("%w: --font-size or --theme", shared.ErrMissingArgument)
	}

	kv, err := r.storage()
	if err != nil {
		return err
	}
	store := reader.NewPreferenceStore(kv, r.logger)

	if cmd.IsSet("theme") {
		theme, err := models.ParseTheme(cmd.String("theme"))
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrUnknownTheme, err)
		}
		if err := store.SetTheme(theme); err != nil {
			return err
		}
		r.writePlain("✓ Theme: %s\n", theme)
	}

	if cmd.IsSet("font-size") {
		requested := cmd.Int("font-size")
		size, err := store.SetFontSize(requested)
		if err != nil {
			return err
		}
		if size != requested {
			r.writePlain("✓ Font size: %dpx (limited to %d-%d)\n", size, models.MinFontSize, models.MaxFontSize)
		} else {
			r.writePlain("✓ Font size: %dpx\n", size)
		}
	}
	return nil
}
