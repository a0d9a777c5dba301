package config

import (
	"errors"
	"fmt"

	"github.com/syssam/qi/dialect"
)

var (
	// ErrInvalidDriver indicates a driver whose dialect is not supported
	ErrInvalidDriver = errors.New("invalid database driver")

	// ErrEmptyDSN indicates a missing data source name
	ErrEmptyDSN = errors.New("empty database dsn")

	// ErrInvalidLog indicates an unknown log level or format
	ErrInvalidLog = errors.New("invalid log settings")

	// ErrInvalidExec indicates invalid execution settings
	ErrInvalidExec = errors.New("invalid exec settings")
)

// Validate checks that the configuration is valid and complete.
// All problems are reported together.
func Validate(cfg *Config) error {
	var errs []error

	if _, err := dialect.For(cfg.Database.Driver); err != nil {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidDriver, cfg.Database.Driver))
	}
	if cfg.Database.DSN == "" {
		errs = append(errs, ErrEmptyDSN)
	}

	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("%w: level %q", ErrInvalidLog, cfg.Log.Level))
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("%w: format %q", ErrInvalidLog, cfg.Log.Format))
	}

	if cfg.Exec.Parallelism < 1 {
		errs = append(errs, fmt.Errorf("%w: parallelism must be positive, got %d", ErrInvalidExec, cfg.Exec.Parallelism))
	}
	if cfg.Exec.SlowThreshold < 0 {
		errs = append(errs, fmt.Errorf("%w: slow_threshold must not be negative", ErrInvalidExec))
	}

	return errors.Join(errs...)
}
