package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Loader handles loading configuration from multiple sources
type Loader struct {
	config *Config
	path   string
	// explicit is set when the file was named by the user and must exist.
	explicit bool
}

// NewLoader creates a loader that reads $TS_CONFIG, or ~/.ts/config.yaml when present.
func NewLoader() *Loader {
	if path := os.Getenv("TS_CONFIG"); path != "" {
		return NewLoaderWithFile(path)
	}
	return &Loader{
		config: NewConfig(),
		path:   filepath.Join(DefaultDir(), "config.yaml"),
	}
}

// NewLoaderWithFile creates a loader that requires the YAML file at path.
func NewLoaderWithFile(path string) *Loader {
	return &Loader{config: NewConfig(), path: path, explicit: true}
}

// Load loads configuration using the cascading strategy:
// 1. Start with defaults
// 2. Override with the YAML config file
// 3. Override with environment variables
// 4. Override with command line flags (LoadWithOverrides)
func (l *Loader) Load() (*Config, error) {
	if err := l.loadFile(); err != nil {
		return nil, err
	}
	if err := l.config.LoadFromEnvironment(); err != nil {
		return nil, err
	}
	if err := l.config.Validate(); err != nil {
		return nil, err
	}
	return l.config, nil
}

func (l *Loader) loadFile() error {
	if l.path == "" {
		return nil
	}
	data, err := os.ReadFile(l.path)
	if err != nil {
		if !l.explicit && stderrors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, l.config); err != nil {
		return &ConfigError{Field: l.path, Message: err.Error()}
	}
	return nil
}

// LoadWithOverrides loads configuration and applies command line overrides
func (l *Loader) LoadWithOverrides(overrides *ConfigOverrides) (*Config, error) {
	config, err := l.Load()
	if err != nil {
		return nil, err
	}

	if overrides != nil {
		overrides.Apply(config)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ConfigOverrides holds command line flag overrides. Nil fields are not set.
type ConfigOverrides struct {
	Driver             *string
	StoreDir           *string
	StoreFilename      *string
	LabelQuietInterval *time.Duration
	DefaultRate        *float64
	Goal               *float64
	Timeout            *time.Duration
	Verbose            *bool
}

// Apply copies every set override into config.
func (o *ConfigOverrides) Apply(config *Config) {
	if o.Driver != nil {
		config.Store.Driver = *o.Driver
	}
	if o.StoreDir != nil {
		config.Store.Dir = *o.StoreDir
	}
	if o.StoreFilename != nil {
		config.Store.Filename = *o.StoreFilename
	}
	if o.LabelQuietInterval != nil {
		config.Sync.LabelQuietInterval = *o.LabelQuietInterval
	}
	if o.DefaultRate != nil {
		config.Billing.DefaultRate = *o.DefaultRate
	}
	if o.Goal != nil {
		config.Billing.Goal = *o.Goal
	}
	if o.Timeout != nil {
		config.Application.Timeout = *o.Timeout
	}
	if o.Verbose != nil {
		config.Application.Verbose = *o.Verbose
	}
}
