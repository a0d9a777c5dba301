package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file, environment and overrides.
	// Priority: defaults → config file → environment variables → overrides
	Load() (*Config, error)
}

type loader struct {
	configFile string
	overrides  map[string]any
}

// NewLoader creates a loader. An empty configFile searches for .qictl.yaml
// in the working directory, then the home directory. Overrides are keyed
// by dotted config keys (e.g., "database.dsn") and typically come from
// command line flags.
func NewLoader(configFile string, overrides map[string]any) Loader {
	return &loader{configFile: configFile, overrides: overrides}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Overrides
// 2. Environment variables (QICTL_*)
// 3. Config file
// 4. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(".qictl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	// Replace . with _ in env var names (e.g., QICTL_DATABASE_DSN)
	v.SetEnvPrefix("QICTL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is acceptable unless one was named explicitly.
		var notFound viper.ConfigFileNotFoundError
		if l.configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	for k, val := range l.overrides {
		v.Set(k, val)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// keys lists every config key, for environment binding.
var keys = []string{
	"database.driver",
	"database.dsn",
	"database.schema",
	"log.level",
	"log.format",
	"log.statements",
	"exec.parallelism",
	"exec.slow_threshold",
	"exec.stats",
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("database.driver", defaults.Database.Driver)
	v.SetDefault("database.dsn", defaults.Database.DSN)
	v.SetDefault("database.schema", defaults.Database.Schema)

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.format", defaults.Log.Format)
	v.SetDefault("log.statements", defaults.Log.Statements)

	v.SetDefault("exec.parallelism", defaults.Exec.Parallelism)
	v.SetDefault("exec.slow_threshold", defaults.Exec.SlowThreshold)
	v.SetDefault("exec.stats", defaults.Exec.Stats)
}
