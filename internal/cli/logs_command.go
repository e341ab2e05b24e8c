package cli

import (
	"context"
	"fmt"
	"strconv"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// LogsCommand handles the logs command
type LogsCommand struct {
	app *App
}

// NewLogsCommand creates a new logs command handler
func NewLogsCommand(app *App) *LogsCommand {
	return &LogsCommand{app: app}
}

// Execute lists log entries newest first, optionally limited to the first n,
// followed by a totals row over every entry.
func (c *LogsCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 1 {
		return errors.NewInvalidInputError("command", "logs", "usage: ts logs [count]")
	}

	logs := c.app.tracker.Logs()
	limit := len(logs)
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return errors.NewInvalidInputError("count", args[0], "must be a positive number")
		}
		limit = min(n, len(logs))
	}

	if len(logs) == 0 {
		c.app.printf("No log entries\n")
		return nil
	}

	rate := c.app.tracker.DefaultRate()
	for i, e := range logs[:limit] {
		c.app.printf("%3d. %s  %s  %-32s %10s/h %12s%s\n",
			i+1,
			c.app.formatStamp(e.StartedAt),
			formatClock(e.Duration()),
			displayLabel(e.Label),
			c.app.formatMoney(e.EffectiveRate(rate)),
			c.app.formatMoney(e.Earnings(rate)),
			pendingMarker(e))
	}

	s := c.app.tracker.Summary()
	c.app.printf("Total %s  %s  %s\n", formatClock(s.Duration), c.app.formatMoney(s.Earnings), c.progress(s))
	if c.app.tracker.Stale().Logs {
		c.app.printf("warning: log entries may be out of date\n")
	}
	return nil
}

func (c *LogsCommand) progress(s domain.Summary) string {
	if s.Goal <= 0 {
		return ""
	}
	return fmt.Sprintf("%.1f%% of %s", s.Progress(), c.app.formatMoney(s.Goal))
}

func pendingMarker(e domain.LogEntry) string {
	if e.Pending {
		return " (saving)"
	}
	return ""
}
