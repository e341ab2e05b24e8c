package cli

import (
	"context"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// StatusCommand handles the status command
type StatusCommand struct {
	app *App
}

// NewStatusCommand creates a new status command handler
func NewStatusCommand(app *App) *StatusCommand {
	return &StatusCommand{app: app}
}

// Execute prints the timer state
func (c *StatusCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "status", "usage: ts status")
	}

	switch s := c.app.tracker.State().(type) {
	case domain.Running:
		c.app.printf("%s %s since %s: %s (%s so far)\n",
			c.app.config.Display.RunningStatus,
			formatClock(c.app.tracker.Elapsed()),
			c.app.formatStamp(s.StartedAt),
			displayLabel(s.Label),
			c.app.formatMoney(c.app.tracker.Elapsed().Hours()*c.app.tracker.DefaultRate()))
	case domain.Idle:
		c.app.printf("idle\n")
	}

	if c.app.tracker.Stale().ActiveTimer {
		c.app.printf("warning: the timer could not be loaded from the store\n")
	}
	return nil
}
