package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timesheet/internal/store"
	"timesheet/internal/store/memory"
	"timesheet/internal/store/sqlite"
)

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg := NewConfig()

	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "/home/tester/.ts", cfg.Store.Dir)
	assert.Equal(t, "/home/tester/.ts/ts.db", cfg.GetStorePath())
	assert.Equal(t, time.Second, cfg.Sync.LabelQuietInterval)
	assert.Equal(t, 250*time.Millisecond, cfg.Sync.RefreshInterval)
	assert.Equal(t, 150.0, cfg.Billing.DefaultRate)
	assert.Equal(t, 50000.0, cfg.Billing.Goal)
	assert.Equal(t, 255, cfg.Validation.LabelMaxLength)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("TS_STORE_DRIVER", "memory")
	t.Setenv("TS_STORE_DIR", "/tmp/ts")
	t.Setenv("TS_STORE_DIR_PERMISSIONS", "700")
	t.Setenv("TS_SYNC_LABEL_QUIET", "500ms")
	t.Setenv("TS_SYNC_REMOTE_TIMEOUT", "not-a-duration")
	t.Setenv("TS_BILLING_DEFAULT_RATE", "95.5")
	t.Setenv("TS_BILLING_CURRENCY", "€")
	t.Setenv("TS_VALIDATION_LABEL_MAX", "40")
	t.Setenv("TS_APP_VERBOSE", "true")

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "/tmp/ts", cfg.Store.Dir)
	assert.Equal(t, uint32(0700), cfg.Store.DirPermissions)
	assert.Equal(t, 500*time.Millisecond, cfg.Sync.LabelQuietInterval)
	assert.Equal(t, 10*time.Second, cfg.Sync.RemoteTimeout, "unparseable values keep the default")
	assert.Equal(t, 95.5, cfg.Billing.DefaultRate)
	assert.Equal(t, "€", cfg.Billing.Currency)
	assert.Equal(t, 40, cfg.Validation.LabelMaxLength)
	assert.True(t, cfg.Application.Verbose)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"empty dir", func(c *Config) { c.Store.Dir = "" }, "store.dir"},
		{"zero quiet interval", func(c *Config) { c.Sync.LabelQuietInterval = 0 }, "sync.label_quiet_interval"},
		{"negative rate", func(c *Config) { c.Billing.DefaultRate = -1 }, "billing.default_rate"},
		{"empty running status", func(c *Config) { c.Display.RunningStatus = "" }, "display.running_status"},
		{"label max below one", func(c *Config) { c.Validation.LabelMaxLength = 0 }, "validation.label_max_length"},
		{"max rate below default", func(c *Config) { c.Validation.MaxRate = 100 }, "validation.max_rate"},
		{"zero timeout", func(c *Config) { c.Application.Timeout = 0 }, "application.timeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoaderCascade(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlText := `
store:
  driver: memory
sync:
  label_quiet_interval: 2s
billing:
  default_rate: 120
  goal: 1000
`
	require.NoError(t, os.WriteFile(path, []byte(yamlText), 0600))
	t.Setenv("TS_BILLING_GOAL", "2000")

	rate := 130.0
	cfg, err := NewLoaderWithFile(path).LoadWithOverrides(&ConfigOverrides{DefaultRate: &rate})
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 2*time.Second, cfg.Sync.LabelQuietInterval)
	assert.Equal(t, 2000.0, cfg.Billing.Goal, "environment beats the file")
	assert.Equal(t, 130.0, cfg.Billing.DefaultRate, "flags beat everything")
	assert.Equal(t, "ts.db", cfg.Store.Filename, "unset keys keep defaults")
}

func TestLoaderFileErrors(t *testing.T) {
	t.Run("explicit file must exist", func(t *testing.T) {
		_, err := NewLoaderWithFile(filepath.Join(t.TempDir(), "missing.yaml")).Load()
		assert.Error(t, err)
	})

	t.Run("default file is optional", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("TS_CONFIG", "")
		cfg, err := NewLoader().Load()
		require.NoError(t, err)
		assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("sync: [unclosed"), 0600))
		_, err := NewLoaderWithFile(path).Load()
		var cfgErr *ConfigError
		assert.ErrorAs(t, err, &cfgErr)
	})

	t.Run("overrides are validated", func(t *testing.T) {
		t.Setenv("HOME", t.TempDir())
		t.Setenv("TS_CONFIG", "")
		driver := "mysql"
		_, err := NewLoader().LoadWithOverrides(&ConfigOverrides{Driver: &driver})
		assert.Error(t, err)
	})
}

func TestEnvironmentParseErrorsKeepValue(t *testing.T) {
	for key, value := range map[string]string{
		"TS_STORE_DIR_PERMISSIONS": "9",
		"TS_VALIDATION_LABEL_MAX":  "seven",
		"TS_BILLING_GOAL":          "lots",
		"TS_APP_VERBOSE":           "maybe",
		"TS_APP_TIMEOUT":           "3",
	} {
		t.Setenv(key, value)
	}

	cfg := NewConfig()
	require.NoError(t, cfg.LoadFromEnvironment())
	assert.Equal(t, NewConfig(), cfg)
}

func TestParseMode(t *testing.T) {
	mode, err := parseMode("750")
	require.NoError(t, err)
	assert.Equal(t, uint32(0750), mode)

	_, err = parseMode("9")
	assert.Error(t, err)
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("TS_ENV", "testing")
	assert.Equal(t, Testing, GetEnvironment())
	t.Setenv("TS_ENV", "development")
	assert.Equal(t, Development, GetEnvironment())
	t.Setenv("TS_ENV", "")
	assert.Equal(t, Production, GetEnvironment())
}

func TestStoreFactory(t *testing.T) {
	t.Run("testing uses memory", func(t *testing.T) {
		s, err := NewStoreFactory(Testing, NewConfig()).CreateStore()
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &memory.Store{}, s)
	})

	t.Run("production creates the store directory", func(t *testing.T) {
		cfg := NewConfig()
		cfg.Store.Dir = filepath.Join(t.TempDir(), "nested", "ts")

		s, err := NewStoreFactory(Production, cfg).CreateStore()
		require.NoError(t, err)
		defer s.Close()
		assert.IsType(t, &sqlite.Store{}, s)

		_, err = s.Create(context.Background(), store.Logs, store.Payload{"label": "desk"})
		require.NoError(t, err)
		assert.FileExists(t, cfg.GetStorePath())
	})
}
