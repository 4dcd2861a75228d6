package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/bookx/internal/models"
	"github.com/desertthunder/bookx/internal/reader"
	"github.com/desertthunder/bookx/internal/shared"
	"github.com/urfave/cli/v3"
)

// Assist runs one assistant action on text given on the command line.
func (r *Runner) Assist(ctx context.Context, cmd *cli.Command) error {
	args := cmd.Args()
	if args.Len() < 2 {
		return fmt.Errorf("%w: usage: bookx assist <explain|translate|summary> <text...>", shared.ErrMissingArgument)
	}

	action, err := models.ParseAction(args.First())
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
	}
	text := strings.Join(args.Tail(), " ")

	assistant := reader.NewAssistant(r.assistant, r.logger)
	assistant.Select(text, reader.Rect{}, 0)

	r.logger.Debug("running assistant", "action", action, "provider", r.assistant.Name())
	entry, err := assistant.Invoke(ctx, action)
	if err != nil {
		return err
	}
	if entry.Failed {
		return fmt.Errorf("%w: %s", shared.ErrAssistantFailed, entry.Response)
	}

	return r.writePlain("%s\n", entry.Response)
}
