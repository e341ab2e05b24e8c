package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration options for the timesheet application
type Config struct {
	Store       StoreConfig       `yaml:"store"`
	Sync        SyncConfig        `yaml:"sync"`
	Billing     BillingConfig     `yaml:"billing"`
	Display     DisplayConfig     `yaml:"display"`
	Validation  ValidationConfig  `yaml:"validation"`
	Application ApplicationConfig `yaml:"application"`
}

// StoreConfig holds document store configuration
type StoreConfig struct {
	Driver         string        `yaml:"driver" env:"TS_STORE_DRIVER"`
	Dir            string        `yaml:"dir" env:"TS_STORE_DIR"`
	Filename       string        `yaml:"filename" env:"TS_STORE_FILENAME"`
	QueryTimeout   time.Duration `yaml:"query_timeout" env:"TS_STORE_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"TS_STORE_WRITE_TIMEOUT"`
	DirPermissions uint32        `yaml:"dir_permissions" env:"TS_STORE_DIR_PERMISSIONS"`
}

// SyncConfig holds timing for remote synchronization
type SyncConfig struct {
	LabelQuietInterval time.Duration `yaml:"label_quiet_interval" env:"TS_SYNC_LABEL_QUIET"`
	RefreshInterval    time.Duration `yaml:"refresh_interval" env:"TS_SYNC_REFRESH_INTERVAL"`
	RemoteTimeout      time.Duration `yaml:"remote_timeout" env:"TS_SYNC_REMOTE_TIMEOUT"`
}

// BillingConfig holds rate and goal settings
type BillingConfig struct {
	DefaultRate float64 `yaml:"default_rate" env:"TS_BILLING_DEFAULT_RATE"`
	Currency    string  `yaml:"currency" env:"TS_BILLING_CURRENCY"`
	Goal        float64 `yaml:"goal" env:"TS_BILLING_GOAL"`
}

// DisplayConfig holds display formatting configuration
type DisplayConfig struct {
	DateFormat    string `yaml:"date_format" env:"TS_DISPLAY_DATE_FORMAT"`
	TimeFormat    string `yaml:"time_format" env:"TS_DISPLAY_TIME_FORMAT"`
	RunningStatus string `yaml:"running_status" env:"TS_DISPLAY_RUNNING_STATUS"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	LabelMaxLength int     `yaml:"label_max_length" env:"TS_VALIDATION_LABEL_MAX"`
	MaxRate        float64 `yaml:"max_rate" env:"TS_VALIDATION_MAX_RATE"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `yaml:"timeout" env:"TS_APP_TIMEOUT"`
	Verbose bool          `yaml:"verbose" env:"TS_APP_VERBOSE"`
}

// Store drivers
const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// DefaultDir returns ~/.ts, or .ts when the home directory is unknown.
func DefaultDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".ts"
	}
	return filepath.Join(homeDir, ".ts")
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver:         DriverSQLite,
			Dir:            DefaultDir(),
			Filename:       "ts.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Sync: SyncConfig{
			LabelQuietInterval: time.Second,
			RefreshInterval:    250 * time.Millisecond,
			RemoteTimeout:      10 * time.Second,
		},
		Billing: BillingConfig{
			DefaultRate: 150,
			Currency:    "$",
			Goal:        50000,
		},
		Display: DisplayConfig{
			DateFormat:    "2006-01-02",
			TimeFormat:    "15:04:05",
			RunningStatus: "running",
		},
		Validation: ValidationConfig{
			LabelMaxLength: 255,
			MaxRate:        100000,
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
		},
	}
}

// GetStorePath returns the full path to the database file
func (c *Config) GetStorePath() string {
	return filepath.Join(c.Store.Dir, c.Store.Filename)
}

// Validate validates the configuration and returns the first problem found
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return &ConfigError{Field: "store.driver", Message: "driver must be sqlite or memory"}
	}
	if c.Store.Dir == "" {
		return &ConfigError{Field: "store.dir", Message: "store directory cannot be empty"}
	}
	if c.Store.Filename == "" {
		return &ConfigError{Field: "store.filename", Message: "store filename cannot be empty"}
	}
	if c.Store.QueryTimeout <= 0 {
		return &ConfigError{Field: "store.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Store.WriteTimeout <= 0 {
		return &ConfigError{Field: "store.write_timeout", Message: "write timeout must be positive"}
	}

	if c.Sync.LabelQuietInterval <= 0 {
		return &ConfigError{Field: "sync.label_quiet_interval", Message: "quiet interval must be positive"}
	}
	if c.Sync.RefreshInterval <= 0 {
		return &ConfigError{Field: "sync.refresh_interval", Message: "refresh interval must be positive"}
	}
	if c.Sync.RemoteTimeout <= 0 {
		return &ConfigError{Field: "sync.remote_timeout", Message: "remote timeout must be positive"}
	}

	if c.Billing.DefaultRate < 0 {
		return &ConfigError{Field: "billing.default_rate", Message: "default rate cannot be negative"}
	}
	if c.Billing.Goal < 0 {
		return &ConfigError{Field: "billing.goal", Message: "goal cannot be negative"}
	}

	if c.Display.DateFormat == "" {
		return &ConfigError{Field: "display.date_format", Message: "date format cannot be empty"}
	}
	if c.Display.TimeFormat == "" {
		return &ConfigError{Field: "display.time_format", Message: "time format cannot be empty"}
	}
	if c.Display.RunningStatus == "" {
		return &ConfigError{Field: "display.running_status", Message: "running status text cannot be empty"}
	}

	if c.Validation.LabelMaxLength < 1 {
		return &ConfigError{Field: "validation.label_max_length", Message: "label maximum length must be at least 1"}
	}
	if c.Validation.MaxRate < c.Billing.DefaultRate {
		return &ConfigError{Field: "validation.max_rate", Message: "maximum rate must not be below the default rate"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
