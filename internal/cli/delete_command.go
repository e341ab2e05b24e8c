package cli

import (
	"context"

	"timesheet/internal/errors"
)

// DeleteCommand handles the delete command
type DeleteCommand struct {
	app *App
}

// NewDeleteCommand creates a new delete command handler
func NewDeleteCommand(app *App) *DeleteCommand {
	return &DeleteCommand{app: app}
}

// Execute deletes the log entry named by its listing number or key
func (c *DeleteCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "delete", "usage: ts delete <number|key>")
	}

	entry, err := c.app.resolveLog(args[0])
	if err != nil {
		return err
	}
	if err := c.app.tracker.DeleteLog(ctx, entry.Key); err != nil {
		return err
	}

	c.app.printf("Deleted %s: %s\n", formatClock(entry.Duration()), displayLabel(entry.Label))
	return nil
}
