// Package config loads taskboard settings from defaults, an optional file
// and TASKBOARD_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Store drivers
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "TASKBOARD"

// Config is the full service configuration
type Config struct {
	REST  ServerConfig `mapstructure:"rest"`
	GRPC  ServerConfig `mapstructure:"grpc"`
	Store StoreConfig  `mapstructure:"store"`
	Log   LogConfig    `mapstructure:"log"`
}

// ServerConfig holds a listener port
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// StoreConfig selects and locates the backing store
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	return &Config{
		REST:  ServerConfig{Port: 8080},
		GRPC:  ServerConfig{Port: 9090},
		Store: StoreConfig{Driver: DriverMemory, DSN: "file:taskboard.db"},
		Log:   LogConfig{Level: "info"},
	}
}

// SetDefaults registers every default on v and enables environment overrides
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("rest.port", d.REST.Port)
	v.SetDefault("grpc.port", d.GRPC.Port)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.dsn", d.Store.DSN)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)

	v.SetEnvPrefix(EnvPrefix)
	// TASKBOARD_STORE_DSN for store.dsn
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects unusable settings
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMemory:
	case DriverSQLite:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store.dsn is required for the %s driver", DriverSQLite)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	for name, port := range map[string]int{"rest.port": c.REST.Port, "grpc.port": c.GRPC.Port} {
		if port <= 0 || port > 65535 {
			return fmt.Errorf("%s out of range: %d", name, port)
		}
	}
	return nil
}

// RESTAddr is the listen address of the HTTP server
func (c *Config) RESTAddr() string { return fmt.Sprintf(":%d", c.REST.Port) }

// GRPCAddr is the listen address of the gRPC server
func (c *Config) GRPCAddr() string { return fmt.Sprintf(":%d", c.GRPC.Port) }
