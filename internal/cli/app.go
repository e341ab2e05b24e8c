package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"timesheet/internal/config"
	"timesheet/internal/domain"
	"timesheet/internal/elapsed"
	"timesheet/internal/errors"
	"timesheet/internal/tracker"
	"timesheet/internal/validation"
)

// App holds what every command needs: the tracker, the configuration and
// the writer for command output.
type App struct {
	tracker   *tracker.Tracker
	config    *config.Config
	validator *validation.Validator
	out       io.Writer
}

// NewApp creates a new CLI application around an initialised tracker
func NewApp(tr *tracker.Tracker, cfg *config.Config, out io.Writer) *App {
	return &App{
		tracker:   tr,
		config:    cfg,
		validator: newValidator(cfg),
		out:       out,
	}
}

func newValidator(cfg *config.Config) *validation.Validator {
	return validation.NewValidator(validation.Limits{
		LabelMaxLength: cfg.Validation.LabelMaxLength,
		MaxRate:        cfg.Validation.MaxRate,
	})
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// resolveLog finds a cached log entry by its 1-based position in the
// newest-first listing or by key.
func (a *App) resolveLog(ref string) (domain.LogEntry, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		logs := a.tracker.Logs()
		if n < 1 || n > len(logs) {
			return domain.LogEntry{}, errors.NewInvalidInputError("entry", ref, fmt.Sprintf("choose a number between 1 and %d", len(logs)))
		}
		return logs[n-1], nil
	}
	if e, ok := a.tracker.Log(ref); ok {
		return e, nil
	}
	return domain.LogEntry{}, errors.NewNotFoundError("log entry", ref)
}

func (a *App) formatMoney(amount float64) string {
	return fmt.Sprintf("%s%.2f", a.config.Billing.Currency, amount)
}

func (a *App) formatStamp(t time.Time) string {
	return t.Local().Format(a.config.Display.DateFormat + " " + a.config.Display.TimeFormat)
}

// formatClock renders d as HH:MM:SS, clamping negatives to zero.
func formatClock(d time.Duration) string {
	return elapsed.FromDuration(d).Clock()
}

func displayLabel(label string) string {
	if strings.TrimSpace(label) == "" {
		return "(no label)"
	}
	return label
}
