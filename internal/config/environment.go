package config

import (
	"fmt"
	"os"

	"timesheet/internal/store"
	"timesheet/internal/store/memory"
	"timesheet/internal/store/sqlite"
)

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment reads TS_ENV, defaulting to production.
func GetEnvironment() Environment {
	switch Environment(os.Getenv("TS_ENV")) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// StoreFactory creates document stores based on environment and configuration
type StoreFactory struct {
	env    Environment
	config *Config
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(env Environment, config *Config) *StoreFactory {
	return &StoreFactory{env: env, config: config}
}

// CreateStore opens the store for the factory's environment. Testing and the
// memory driver get an in-memory store; development uses ./ts.db; production
// uses the configured path, creating its directory if needed.
func (f *StoreFactory) CreateStore() (store.Closer, error) {
	if f.env == Testing || f.config.Store.Driver == DriverMemory {
		return memory.New(), nil
	}

	opts := []sqlite.Option{
		sqlite.WithTimeouts(f.config.Store.QueryTimeout, f.config.Store.WriteTimeout),
	}

	if f.env == Development {
		s, err := sqlite.New("ts.db", opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize development store: %w", err)
		}
		return s, nil
	}

	if err := os.MkdirAll(f.config.Store.Dir, os.FileMode(f.config.Store.DirPermissions)); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	s, err := sqlite.New(f.config.GetStorePath(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return s, nil
}
