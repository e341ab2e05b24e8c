package cli

import (
	"context"

	"timesheet/internal/errors"
)

// StopCommand handles the stop command
type StopCommand struct {
	app *App
}

// NewStopCommand creates a new stop command handler
func NewStopCommand(app *App) *StopCommand {
	return &StopCommand{app: app}
}

// Execute ends the running timer and records its log entry
func (c *StopCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "stop", "usage: ts stop")
	}

	entry, err := c.app.tracker.End(ctx)
	if err != nil {
		return err
	}

	c.app.printf("Logged %s: %s (%s)\n",
		formatClock(entry.Duration()),
		displayLabel(entry.Label),
		c.app.formatMoney(entry.Earnings(c.app.tracker.DefaultRate())))
	return nil
}
