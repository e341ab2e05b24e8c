package cli

import (
	"context"
	"strings"

	"timesheet/internal/domain"
)

// StartCommand handles the start command
type StartCommand struct {
	app *App
}

// NewStartCommand creates a new start command handler
func NewStartCommand(app *App) *StartCommand {
	return &StartCommand{app: app}
}

// Execute starts the timer and, when arguments are given, labels it with them
func (c *StartCommand) Execute(ctx context.Context, args []string) error {
	label := c.app.validator.CleanLabel(strings.Join(args, " "))
	if err := c.app.validator.ValidateLabel(label); err != nil {
		return err
	}

	if err := c.app.tracker.Start(ctx); err != nil {
		return err
	}
	if label != "" {
		if err := c.app.tracker.EditLabel(label); err != nil {
			return err
		}
	}

	if r, ok := c.app.tracker.State().(domain.Running); ok {
		c.app.printf("Started timer at %s: %s\n", c.app.formatStamp(r.StartedAt), displayLabel(r.Label))
	}
	return nil
}
