package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "qictl.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, 4, cfg.Exec.Parallelism)
	assert.Equal(t, time.Second, cfg.Exec.SlowThreshold)
	// The DSN has no sensible default.
	assert.ErrorIs(t, Validate(cfg), ErrEmptyDSN)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: mysql
  dsn: root:pass@tcp(localhost:3306)/test
  schema: test
log:
  level: debug
  format: json
  statements: true
exec:
  parallelism: 8
  slow_threshold: 250ms
  stats: true
`)
	cfg, err := NewLoader(path, nil).Load()
	require.NoError(t, err)

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "root:pass@tcp(localhost:3306)/test", cfg.Database.DSN)
	assert.Equal(t, "test", cfg.Database.Schema)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.True(t, cfg.Log.Statements)
	assert.Equal(t, 8, cfg.Exec.Parallelism)
	assert.Equal(t, 250*time.Millisecond, cfg.Exec.SlowThreshold)
	assert.True(t, cfg.Exec.Stats)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  dsn: postgres://localhost/test
`)
	cfg, err := NewLoader(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 4, cfg.Exec.Parallelism)
}

func TestLoadPriority(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://file/test
log:
  level: warn
`)
	t.Setenv("QICTL_DATABASE_DSN", "postgres://env/test")
	t.Setenv("QICTL_LOG_LEVEL", "error")

	cfg, err := NewLoader(path, nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/test", cfg.Database.DSN)
	assert.Equal(t, "error", cfg.Log.Level)

	cfg, err = NewLoader(path, map[string]any{
		"database.dsn":    "postgres://flag/test",
		"database.driver": "pgx",
	}).Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://flag/test", cfg.Database.DSN)
	assert.Equal(t, "pgx", cfg.Database.Driver)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())
	t.Setenv("QICTL_DATABASE_DRIVER", "sqlite")
	t.Setenv("QICTL_DATABASE_DSN", "file:test.db")

	cfg, err := NewLoader("", nil).Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.DSN)
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing explicit file", func(t *testing.T) {
		_, err := NewLoader(filepath.Join(t.TempDir(), "none.yaml"), nil).Load()
		assert.ErrorContains(t, err, "failed to read config file")
	})
	t.Run("malformed file", func(t *testing.T) {
		path := writeConfig(t, "database: [unterminated")
		_, err := NewLoader(path, nil).Load()
		assert.Error(t, err)
	})
	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, `
database:
  driver: oracle
log:
  level: loud
  format: xml
exec:
  parallelism: 0
`)
		_, err := NewLoader(path, nil).Load()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidDriver)
		assert.ErrorIs(t, err, ErrEmptyDSN)
		assert.ErrorIs(t, err, ErrInvalidLog)
		assert.ErrorIs(t, err, ErrInvalidExec)
	})
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := Default()
		cfg.Database.DSN = "postgres://localhost/test"
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{name: "valid"},
		{name: "mariadb driver", mutate: func(c *Config) { c.Database.Driver = "mariadb" }},
		{name: "unknown driver", mutate: func(c *Config) { c.Database.Driver = "oracle" }, want: ErrInvalidDriver},
		{name: "empty dsn", mutate: func(c *Config) { c.Database.DSN = "" }, want: ErrEmptyDSN},
		{name: "bad level", mutate: func(c *Config) { c.Log.Level = "trace" }, want: ErrInvalidLog},
		{name: "bad format", mutate: func(c *Config) { c.Log.Format = "xml" }, want: ErrInvalidLog},
		{name: "zero parallelism", mutate: func(c *Config) { c.Exec.Parallelism = 0 }, want: ErrInvalidExec},
		{name: "negative threshold", mutate: func(c *Config) { c.Exec.SlowThreshold = -time.Second }, want: ErrInvalidExec},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			if tt.mutate != nil {
				tt.mutate(cfg)
			}
			err := Validate(cfg)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
