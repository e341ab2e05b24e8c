package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"timesheet/internal/config"
	"timesheet/internal/logging"
	"timesheet/internal/store"
	"timesheet/internal/tracker"
	"timesheet/internal/tui"
)

// StoreOpener opens the document store for a loaded configuration.
type StoreOpener func(cfg *config.Config) (store.Closer, error)

// RootOption configures a RootCommand.
type RootOption func(*RootCommand)

// WithClock sets the clock the tracker reads. Defaults to the real clock.
func WithClock(clock clockwork.Clock) RootOption {
	return func(r *RootCommand) { r.clock = clock }
}

// WithStoreOpener replaces the environment-selected store.
func WithStoreOpener(open StoreOpener) RootOption {
	return func(r *RootCommand) { r.open = open }
}

// RootCommand represents the base command when called without any subcommands
type RootCommand struct {
	cmd      *cobra.Command
	config   *config.Config
	clock    clockwork.Clock
	open     StoreOpener
	errors   *ErrorHandler
	commands *CommandRegistry

	store store.Closer
	app   *App
}

// NewRootCommand creates the root cobra command with global flags
func NewRootCommand(cfg *config.Config, opts ...RootOption) *RootCommand {
	root := &RootCommand{
		config:   cfg,
		clock:    clockwork.NewRealClock(),
		errors:   NewErrorHandler(),
		commands: NewCommandRegistry(),
		open: func(cfg *config.Config) (store.Closer, error) {
			return config.NewStoreFactory(config.GetEnvironment(), cfg).CreateStore()
		},
	}
	for _, opt := range opts {
		opt(root)
	}

	root.cmd = &cobra.Command{
		Use:   "ts",
		Short: "A billable-work timer",
		Long: `Timesheet (ts) tracks billable work: one running timer, a list of logged
intervals, hourly rates and progress towards an earnings goal.

Every change is shown at once and saved in the background. If saving fails
the change is undone and the reason is printed.

EXAMPLES:
  ts start "client call"                   # Start the timer with a label
  ts label "client call, follow-up"        # Relabel the running timer
  ts status                                # Show the running timer
  ts stop                                  # Stop the timer and log the interval
  ts logs 10                               # Show the ten newest log entries
  ts edit 2 label="design review" rate=120 # Change a logged entry
  ts delete 3                              # Delete a logged entry
  ts summary                               # Totals and goal progress
  ts output format=csv > hours.csv         # Export logged entries
  ts watch                                 # Live view

CONFIGURATION:
  Priority order: command-line flags > environment variables > config file > defaults.
  The config file is $TS_CONFIG or ~/.ts/config.yaml.

  TS_ENV                                   testing, development or production (default)
  TS_STORE_DRIVER                          sqlite or memory (default: sqlite)
  TS_STORE_DIR                             Store directory (default: ~/.ts)
  TS_STORE_FILENAME                        Store filename (default: ts.db)
  TS_SYNC_LABEL_QUIET                      Quiet interval for label edits (default: 1s)
  TS_SYNC_REFRESH_INTERVAL                 Live view refresh (default: 250ms)
  TS_BILLING_DEFAULT_RATE                  Hourly rate (default: 150)
  TS_BILLING_GOAL                          Earnings goal (default: 50000)
  TS_APP_TIMEOUT                           Command timeout (default: 60s)
  TS_APP_VERBOSE                           Debug output on stderr (default: false)`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return root.setup(cmd)
		},
	}

	root.addGlobalFlags()
	root.addSubcommands()

	return root
}

// Execute runs the root command and then flushes and closes the store,
// whether or not the command succeeded.
func (r *RootCommand) Execute() error {
	err := r.cmd.Execute()
	if closeErr := r.shutdown(); closeErr != nil {
		if err == nil {
			return r.errors.Handle("save changes", closeErr)
		}
		logging.Debugf("cli: shutdown after failed command: %v\n", closeErr)
	}
	return err
}

// SetArgs sets the arguments used instead of os.Args.
func (r *RootCommand) SetArgs(args []string) {
	r.cmd.SetArgs(args)
}

// SetOutput redirects command output and errors.
func (r *RootCommand) SetOutput(w io.Writer) {
	r.cmd.SetOut(w)
	r.cmd.SetErr(w)
}

func (r *RootCommand) addGlobalFlags() {
	flags := r.cmd.PersistentFlags()

	flags.String("driver", "", "Store driver, sqlite or memory (overrides TS_STORE_DRIVER)")
	flags.String("store-dir", "", "Store directory (overrides TS_STORE_DIR)")
	flags.String("store-filename", "", "Store filename (overrides TS_STORE_FILENAME)")
	flags.Duration("label-quiet", 0, "Quiet interval for label edits (overrides TS_SYNC_LABEL_QUIET)")
	flags.Float64("rate", 0, "Default hourly rate (overrides TS_BILLING_DEFAULT_RATE)")
	flags.Float64("goal", 0, "Earnings goal (overrides TS_BILLING_GOAL)")
	flags.Duration("app-timeout", 0, "Command timeout (overrides TS_APP_TIMEOUT)")
	flags.Bool("verbose", false, "Enable debug output (overrides TS_APP_VERBOSE)")
}

// overridesFromFlags collects the flags the user actually set.
func (r *RootCommand) overridesFromFlags(cmd *cobra.Command) *config.ConfigOverrides {
	flags := cmd.Flags()
	o := &config.ConfigOverrides{}

	if flags.Changed("driver") {
		v, _ := flags.GetString("driver")
		o.Driver = &v
	}
	if flags.Changed("store-dir") {
		v, _ := flags.GetString("store-dir")
		o.StoreDir = &v
	}
	if flags.Changed("store-filename") {
		v, _ := flags.GetString("store-filename")
		o.StoreFilename = &v
	}
	if flags.Changed("label-quiet") {
		v, _ := flags.GetDuration("label-quiet")
		o.LabelQuietInterval = &v
	}
	if flags.Changed("rate") {
		v, _ := flags.GetFloat64("rate")
		o.DefaultRate = &v
	}
	if flags.Changed("goal") {
		v, _ := flags.GetFloat64("goal")
		o.Goal = &v
	}
	if flags.Changed("app-timeout") {
		v, _ := flags.GetDuration("app-timeout")
		o.Timeout = &v
	}
	if flags.Changed("verbose") {
		v, _ := flags.GetBool("verbose")
		o.Verbose = &v
	}
	return o
}

// setup applies flag overrides, opens the store and loads the tracker.
func (r *RootCommand) setup(cmd *cobra.Command) error {
	if r.config == nil {
		return fmt.Errorf("configuration not initialized")
	}
	r.overridesFromFlags(cmd).Apply(r.config)
	if err := r.config.Validate(); err != nil {
		return err
	}
	if r.config.Application.Verbose {
		logging.SetVerbose(true)
	}

	s, err := r.open(r.config)
	if err != nil {
		return r.errors.Handle("open store", err)
	}
	r.store = s

	tr := tracker.New(s, r.clock,
		tracker.WithQuietInterval(r.config.Sync.LabelQuietInterval),
		tracker.WithRemoteTimeout(r.config.Sync.RemoteTimeout),
		tracker.WithBilling(r.config.Billing.DefaultRate, r.config.Billing.Goal),
		tracker.WithValidator(newValidator(r.config)),
	)
	r.app = NewApp(tr, r.config, cmd.OutOrStdout())

	ctx, cancel := context.WithTimeout(cmd.Context(), r.config.Store.QueryTimeout)
	defer cancel()
	if err := tr.Init(ctx); err != nil {
		return r.errors.Handle("load timesheet", err)
	}
	return nil
}

func (r *RootCommand) shutdown() error {
	if r.store == nil {
		return nil
	}
	var errs []error
	if r.app != nil {
		ctx, cancel := context.WithTimeout(context.Background(), r.config.Sync.RemoteTimeout)
		errs = append(errs, r.app.tracker.Close(ctx))
		cancel()
	}
	errs = append(errs, r.store.Close())
	r.store, r.app = nil, nil
	return stderrors.Join(errs...)
}

func (r *RootCommand) addSubcommands() {
	for _, spec := range r.commands.Specs() {
		spec := spec // per-iteration copy; go.mod targets go 1.21 loop semantics
		r.cmd.AddCommand(&cobra.Command{
			Use:   spec.use,
			Short: spec.short,
			Long:  spec.long,
			Args:  spec.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx, cancel := context.WithTimeout(cmd.Context(), r.getAppTimeout())
				defer cancel()
				return r.errors.Handle(spec.verb, r.commands.Execute(ctx, r.app, spec.name, args))
			},
		})
	}

	r.cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Live view of the timer and log",
		Long: `Open a live view. Type to label the running timer; the label is saved after
a pause in typing. Enter starts or stops the timer.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.errors.Handle("run live view", tui.Run(cmd.Context(), r.app.tracker, r.config))
		},
	})
}

func (r *RootCommand) getAppTimeout() time.Duration {
	if r.config != nil && r.config.Application.Timeout > 0 {
		return r.config.Application.Timeout
	}
	return 60 * time.Second
}
