package cli

import (
	"context"
	"strconv"
	"strings"

	"timesheet/internal/domain"
	"timesheet/internal/errors"
)

// EditCommand handles the edit command
type EditCommand struct {
	app *App
}

// NewEditCommand creates a new edit command handler
func NewEditCommand(app *App) *EditCommand {
	return &EditCommand{app: app}
}

// Execute applies label=<text> and rate=<amount> assignments to a log entry.
// An empty rate, or rate=default, returns the entry to the default rate.
func (c *EditCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.NewInvalidInputError("command", "edit", "usage: ts edit <number|key> label=<text> rate=<amount>")
	}

	entry, err := c.app.resolveLog(args[0])
	if err != nil {
		return err
	}
	edit, err := parseEdit(args[1:])
	if err != nil {
		return err
	}

	updated, err := c.app.tracker.SaveLogEdit(ctx, entry.Key, edit)
	if err != nil {
		return err
	}

	c.app.printf("Updated %s: %s at %s/h\n",
		formatClock(updated.Duration()),
		displayLabel(updated.Label),
		c.app.formatMoney(updated.EffectiveRate(c.app.tracker.DefaultRate())))
	return nil
}

func parseEdit(assignments []string) (domain.LogEdit, error) {
	var edit domain.LogEdit
	for _, a := range assignments {
		field, value, ok := strings.Cut(a, "=")
		if !ok {
			return edit, errors.NewInvalidInputError("assignment", a, "expected field=value")
		}
		switch field {
		case domain.FieldLabel:
			label := strings.TrimSpace(value)
			edit.Label = &label
		case domain.FieldRate:
			if value == "" || value == "default" {
				edit.ClearRate = true
				edit.Rate = nil
				continue
			}
			rate, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return edit, errors.NewInvalidInputError("rate", value, "must be a number")
			}
			edit.Rate = &rate
			edit.ClearRate = false
		default:
			return edit, errors.NewInvalidInputError("field", field, "only label and rate can be edited")
		}
	}
	return edit, nil
}
