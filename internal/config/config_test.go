package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, ":8080", cfg.RESTAddr())
	assert.Equal(t, ":9090", cfg.GRPCAddr())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("TASKBOARD_REST_PORT", "8181")
	t.Setenv("TASKBOARD_STORE_DRIVER", "sqlite")
	t.Setenv("TASKBOARD_STORE_DSN", "file:test.db")
	t.Setenv("TASKBOARD_LOG_DEVELOPMENT", "true")

	cfg, err := Load(newViper())
	require.NoError(t, err)
	assert.Equal(t, 8181, cfg.REST.Port)
	assert.Equal(t, 9090, cfg.GRPC.Port)
	assert.Equal(t, DriverSQLite, cfg.Store.Driver)
	assert.Equal(t, "file:test.db", cfg.Store.DSN)
	assert.True(t, cfg.Log.Development)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taskboard.yaml")
	require.NoError(t, os.WriteFile(path, []byte("grpc:\n  port: 7070\nlog:\n  level: debug\n"), 0o600))

	v := newViper()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.GRPC.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 8080, cfg.REST.Port)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, true},
		{"sqlite without dsn", func(c *Config) { c.Store.Driver = DriverSQLite; c.Store.DSN = "" }, true},
		{"memory ignores dsn", func(c *Config) { c.Store.DSN = "" }, false},
		{"zero port", func(c *Config) { c.REST.Port = 0 }, true},
		{"port too large", func(c *Config) { c.GRPC.Port = 70000 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
