package cli

import (
	"context"

	"github.com/spf13/cobra"

	"timesheet/internal/errors"
)

// Command is one subcommand bound to an App.
type Command interface {
	Execute(ctx context.Context, args []string) error
}

// commandSpec describes how a command appears on the command line.
type commandSpec struct {
	name  string
	use   string
	short string
	long  string
	args  cobra.PositionalArgs
	// verb completes "failed to ..." in error messages.
	verb string
}

type registration struct {
	spec commandSpec
	new  func(*App) Command
}

// CommandRegistry maps command names to their specs and constructors.
// Commands are built per invocation because the App only exists once the
// store has been opened.
type CommandRegistry struct {
	order   []string
	entries map[string]registration
}

// NewCommandRegistry returns a registry holding every tracker command.
func NewCommandRegistry() *CommandRegistry {
	r := &CommandRegistry{entries: make(map[string]registration)}

	r.Register(commandSpec{
		name:  "start",
		use:   "start [label]",
		short: "Start the timer",
		long:  "Start the timer now. Any arguments become its label. Fails if a timer is already running.",
		args:  cobra.ArbitraryArgs,
		verb:  "start timer",
	}, func(a *App) Command { return NewStartCommand(a) })

	r.Register(commandSpec{
		name:  "stop",
		use:   "stop",
		short: "Stop the timer and log the interval",
		args:  cobra.NoArgs,
		verb:  "stop timer",
	}, func(a *App) Command { return NewStopCommand(a) })

	r.Register(commandSpec{
		name:  "label",
		use:   "label [text]",
		short: "Relabel the running timer",
		long:  "Set the running timer's label. With no arguments the label is cleared.",
		args:  cobra.ArbitraryArgs,
		verb:  "set label",
	}, func(a *App) Command { return NewLabelCommand(a) })

	r.Register(commandSpec{
		name:  "status",
		use:   "status",
		short: "Show the running timer",
		args:  cobra.NoArgs,
		verb:  "show status",
	}, func(a *App) Command { return NewStatusCommand(a) })

	r.Register(commandSpec{
		name:  "logs",
		use:   "logs [count]",
		short: "List logged intervals, newest first",
		args:  cobra.MaximumNArgs(1),
		verb:  "list logs",
	}, func(a *App) Command { return NewLogsCommand(a) })

	r.Register(commandSpec{
		name:  "edit",
		use:   "edit <number|key> [label=<text>] [rate=<amount>]",
		short: "Change a logged interval's label or rate",
		long: `Change the label or hourly rate of a logged interval, named by its number
in 'ts logs' or by its key. rate= or rate=default returns it to the default rate.

Examples:
  ts edit 1 label="design review"
  ts edit 2 rate=120
  ts edit 2 rate=default`,
		args: cobra.MinimumNArgs(2),
		verb: "edit log entry",
	}, func(a *App) Command { return NewEditCommand(a) })

	r.Register(commandSpec{
		name:  "delete",
		use:   "delete <number|key>",
		short: "Delete a logged interval",
		args:  cobra.ExactArgs(1),
		verb:  "delete log entry",
	}, func(a *App) Command { return NewDeleteCommand(a) })

	r.Register(commandSpec{
		name:  "summary",
		use:   "summary",
		short: "Show total time, earnings and goal progress",
		args:  cobra.NoArgs,
		verb:  "summarize",
	}, func(a *App) Command { return NewSummaryCommand(a) })

	r.Register(commandSpec{
		name:  "output",
		use:   "output format=csv|yaml",
		short: "Export logged intervals",
		args:  cobra.ExactArgs(1),
		verb:  "export",
	}, func(a *App) Command { return NewOutputCommand(a) })

	return r
}

// Register adds a command. A later registration under the same name
// replaces the earlier one but keeps its position.
func (r *CommandRegistry) Register(spec commandSpec, factory func(*App) Command) {
	if _, ok := r.entries[spec.name]; !ok {
		r.order = append(r.order, spec.name)
	}
	r.entries[spec.name] = registration{spec: spec, new: factory}
}

// Specs returns the registered specs in registration order.
func (r *CommandRegistry) Specs() []commandSpec {
	specs := make([]commandSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.entries[name].spec)
	}
	return specs
}

// Execute builds the named command for app and runs it.
func (r *CommandRegistry) Execute(ctx context.Context, app *App, name string, args []string) error {
	entry, ok := r.entries[name]
	if !ok {
		return errors.NewInvalidInputError("command", name, "unknown command")
	}
	return entry.new(app).Execute(ctx, args)
}
