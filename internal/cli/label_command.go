package cli

import (
	"context"
	"strings"
)

// LabelCommand handles the label command
type LabelCommand struct {
	app *App
}

// NewLabelCommand creates a new label command handler
func NewLabelCommand(app *App) *LabelCommand {
	return &LabelCommand{app: app}
}

// Execute relabels the running timer. No arguments clears the label.
// The write reaches the store when the application shuts down.
func (c *LabelCommand) Execute(ctx context.Context, args []string) error {
	label := c.app.validator.CleanLabel(strings.Join(args, " "))
	if err := c.app.tracker.EditLabel(label); err != nil {
		return err
	}
	c.app.printf("Label: %s\n", displayLabel(label))
	return nil
}
