package config

import (
	"os"
	"strconv"
	"time"

	"timesheet/internal/logging"
)

// binding ties one TS_* variable to the field it sets.
type binding struct {
	key string
	set func(string) error
}

func (c *Config) bindings() []binding {
	return []binding{
		{"TS_STORE_DRIVER", text(&c.Store.Driver)},
		{"TS_STORE_DIR", text(&c.Store.Dir)},
		{"TS_STORE_FILENAME", text(&c.Store.Filename)},
		{"TS_STORE_QUERY_TIMEOUT", parsed(&c.Store.QueryTimeout, time.ParseDuration)},
		{"TS_STORE_WRITE_TIMEOUT", parsed(&c.Store.WriteTimeout, time.ParseDuration)},
		{"TS_STORE_DIR_PERMISSIONS", parsed(&c.Store.DirPermissions, parseMode)},

		{"TS_SYNC_LABEL_QUIET", parsed(&c.Sync.LabelQuietInterval, time.ParseDuration)},
		{"TS_SYNC_REFRESH_INTERVAL", parsed(&c.Sync.RefreshInterval, time.ParseDuration)},
		{"TS_SYNC_REMOTE_TIMEOUT", parsed(&c.Sync.RemoteTimeout, time.ParseDuration)},

		{"TS_BILLING_DEFAULT_RATE", parsed(&c.Billing.DefaultRate, parseFloat)},
		{"TS_BILLING_CURRENCY", text(&c.Billing.Currency)},
		{"TS_BILLING_GOAL", parsed(&c.Billing.Goal, parseFloat)},

		{"TS_DISPLAY_DATE_FORMAT", text(&c.Display.DateFormat)},
		{"TS_DISPLAY_TIME_FORMAT", text(&c.Display.TimeFormat)},
		{"TS_DISPLAY_RUNNING_STATUS", text(&c.Display.RunningStatus)},

		{"TS_VALIDATION_LABEL_MAX", parsed(&c.Validation.LabelMaxLength, strconv.Atoi)},
		{"TS_VALIDATION_MAX_RATE", parsed(&c.Validation.MaxRate, parseFloat)},

		{"TS_APP_TIMEOUT", parsed(&c.Application.Timeout, time.ParseDuration)},
		{"TS_APP_VERBOSE", parsed(&c.Application.Verbose, strconv.ParseBool)},
	}
}

// LoadFromEnvironment overrides fields from TS_* variables. Empty variables
// are ignored and a value that does not parse leaves the field as it was.
func (c *Config) LoadFromEnvironment() error {
	for _, b := range c.bindings() {
		v := os.Getenv(b.key)
		if v == "" {
			continue
		}
		if err := b.set(v); err != nil {
			logging.Debugf("config: ignoring %s=%q: %v\n", b.key, v, err)
		}
	}
	return nil
}

func text(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func parsed[T any](dst *T, parse func(string) (T, error)) func(string) error {
	return func(v string) error {
		x, err := parse(v)
		if err != nil {
			return err
		}
		*dst = x
		return nil
	}
}

func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(s, 64)
}

// parseMode reads an octal permission such as 750.
func parseMode(s string) (uint32, error) {
	u, err := strconv.ParseUint(s, 8, 32)
	return uint32(u), err
}
