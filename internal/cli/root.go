package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/syssam/qi"
	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/dialect/sql"
	"github.com/syssam/qi/dialect/sql/schema"
	"github.com/syssam/qi/internal/config"
)

// globals holds the persistent flags shared by every command.
type globals struct {
	cfgFile string
	verbose bool
	driver  string
	dsn     string
	schema  string
	dryRun  bool
}

// session is an open connection with its query interface.
type session struct {
	cfg    *config.Config
	logger *slog.Logger
	drv    *sql.Driver
	stats  *sql.StatsDriver
	qi     *schema.QueryInterface
}

// NewRootCmd returns the qictl command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}
	root := &cobra.Command{
		Use:   "qictl",
		Short: "qictl - manage stored routines and indexes across SQL databases",
		Long: `qictl creates, drops and renames stored routines, and adds, removes
and lists indexes on PostgreSQL, MySQL and SQLite through a single
dialect-neutral interface.

Connection settings are read from .qictl.yaml (in the working directory or
$HOME), QICTL_* environment variables and command line flags, in increasing
order of priority.

Examples:
  # List the indexes of a table
  qictl --driver pgx --dsn postgres://localhost/app index show users

  # Print the statements creating a routine without running them
  qictl function create -f slugify.yaml --dry-run
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&g.cfgFile, "config", "", "config file (default is .qictl.yaml)")
	flags.BoolVarP(&g.verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&g.driver, "driver", "", "database driver: postgres, pgx, mysql or sqlite")
	flags.StringVar(&g.dsn, "dsn", "", "data source name")
	flags.StringVar(&g.schema, "schema", "", "schema qualifying tables and routines")
	flags.BoolVar(&g.dryRun, "dry-run", false, "print statements instead of executing them")

	root.AddCommand(
		newFunctionCmd(g),
		newIndexCmd(g),
		newVersionCmd(),
	)
	return root
}

// Execute runs the root command and exits on failure.
// This is called by main.main().
func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(ExitCode(err))
	}
}

// ExitCode maps an error to the process exit status: 2 for descriptors
// rejected before reaching the database, 1 otherwise.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case qi.IsValidationError(err), qi.IsUnsupported(err):
		return 2
	default:
		return 1
	}
}

// overrides collects the flags set on the command line, keyed as config keys.
func (g *globals) overrides(cmd *cobra.Command) map[string]any {
	o := make(map[string]any)
	set := func(flag, key string, v any) {
		if cmd.Flags().Changed(flag) {
			o[key] = v
		}
	}
	set("driver", "database.driver", g.driver)
	set("dsn", "database.dsn", g.dsn)
	set("schema", "database.schema", g.schema)
	if g.verbose {
		o["log.level"] = "debug"
	}
	return o
}

// open loads the configuration and connects to the database.
// Callers must close the returned session.
func (g *globals) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.NewLoader(g.cfgFile, g.overrides(cmd)).Load()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

	drv, err := sql.Open(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	var wrapped dialect.Driver = drv
	if cfg.Log.Statements {
		wrapped = sql.NewDebugDriver(wrapped, logger)
	}
	stats := sql.NewStatsDriver(wrapped,
		sql.WithSlowThreshold(cfg.Exec.SlowThreshold),
		sql.WithSlowLog(logger),
	)

	q, err := schema.New(stats,
		schema.WithLogger(logger),
		schema.WithSchema(cfg.Database.Schema),
		schema.WithParallelism(cfg.Exec.Parallelism),
	)
	if err != nil {
		return nil, errors.Join(err, drv.Close())
	}
	logger.Debug("connected", "driver", cfg.Database.Driver, "dialect", q.Dialect().Name())
	return &session{cfg: cfg, logger: logger, drv: drv, stats: stats, qi: q}, nil
}

// Close logs statement statistics when enabled and closes the database.
func (s *session) Close() error {
	if s.cfg.Exec.Stats {
		snap := s.stats.QueryStats().Stats()
		s.logger.Info("statement stats",
			"queries", snap.TotalQueries,
			"execs", snap.TotalExecs,
			"slow", snap.SlowStatements,
			"errors", snap.Errors,
			"avg", snap.Avg(),
		)
	}
	return s.drv.Close()
}

// run opens a session, calls fn and closes the session.
func (g *globals) run(cmd *cobra.Command, fn func(context.Context, *session) error) (err error) {
	s, err := g.open(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(cmd.Context(), s)
}

// exec runs the plan, or prints its statements on --dry-run.
func (g *globals) exec(ctx context.Context, cmd *cobra.Command, s *session, p *schema.Plan) error {
	if g.dryRun {
		for _, stmt := range p.Statements() {
			fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt)
		}
		return nil
	}
	if err := s.qi.Exec(ctx, p); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s: ok\n", p.Op(), p.Object())
	return nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
