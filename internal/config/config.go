package config

import "time"

// Config represents the complete qictl configuration.
// It can be loaded from .qictl.yaml with environment variable overrides.
type Config struct {
	Database DatabaseConfig `yaml:"database" mapstructure:"database"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Exec     ExecConfig     `yaml:"exec" mapstructure:"exec"`
}

// DatabaseConfig selects the database to manage.
type DatabaseConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // database/sql driver name: postgres, pgx, mysql or sqlite
	DSN    string `yaml:"dsn" mapstructure:"dsn"`       // data source name passed to the driver
	Schema string `yaml:"schema" mapstructure:"schema"` // optional schema qualifying tables and routines
}

// LogConfig configures the slog logger.
type LogConfig struct {
	Level      string `yaml:"level" mapstructure:"level"`           // debug, info, warn or error
	Format     string `yaml:"format" mapstructure:"format"`         // text or json
	Statements bool   `yaml:"statements" mapstructure:"statements"` // log every statement sent
}

// ExecConfig tunes statement execution.
type ExecConfig struct {
	Parallelism   int           `yaml:"parallelism" mapstructure:"parallelism"`       // concurrent catalog queries
	SlowThreshold time.Duration `yaml:"slow_threshold" mapstructure:"slow_threshold"` // statements slower than this are logged
	Stats         bool          `yaml:"stats" mapstructure:"stats"`                   // log statement statistics on exit
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Exec: ExecConfig{
			Parallelism:   4,
			SlowThreshold: time.Second,
		},
	}
}
