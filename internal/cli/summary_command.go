package cli

import (
	"context"

	"timesheet/internal/errors"
)

// SummaryCommand handles the summary command
type SummaryCommand struct {
	app *App
}

// NewSummaryCommand creates a new summary command handler
func NewSummaryCommand(app *App) *SummaryCommand {
	return &SummaryCommand{app: app}
}

// Execute prints total time, earnings and progress towards the goal
func (c *SummaryCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return errors.NewInvalidInputError("command", "summary", "usage: ts summary")
	}

	s := c.app.tracker.Summary()
	c.app.printf("Entries:  %d\n", s.Entries)
	c.app.printf("Time:     %s\n", formatClock(s.Duration))
	c.app.printf("Earnings: %s\n", c.app.formatMoney(s.Earnings))
	if s.Goal > 0 {
		c.app.printf("Goal:     %s (%.1f%%)\n", c.app.formatMoney(s.Goal), s.Progress())
	}
	return nil
}
