package dialect

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/qi"
	"github.com/syssam/qi/schema/function"
)

// Dialect names.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// ExecQuerier wraps the two database operations used by the query interface.
type ExecQuerier interface {
	// Exec executes a statement. v is nil or a *sql.Result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query that returns rows into v (a *sql.Rows wrapper).
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is an ExecQuerier bound to a dialect.
type Driver interface {
	ExecQuerier
	// Dialect returns the dialect name of the driver.
	Dialect() string
	// Close closes the underlying connection.
	Close() error
}

// Feature is an optional capability of a dialect.
type Feature string

// Optional dialect features.
const (
	FeatureFunctions       Feature = "stored functions"
	FeatureFunctionRename  Feature = "function rename"
	FeatureOrReplace       Feature = "CREATE OR REPLACE FUNCTION"
	FeatureParameterModes  Feature = "OUT and INOUT parameters"
	FeatureIndexMethod     Feature = "index access method"
	FeatureConcurrentIndex Feature = "concurrent index build"
	FeaturePartialIndex    Feature = "partial index"
)

// Dialect captures the SQL syntax and catalog conventions of a database.
// The statement builders in dialect/sql are parameterized over it.
type Dialect interface {
	// Name returns the dialect name.
	Name() string
	// QuoteIdentifier quotes a single identifier, escaping embedded quotes.
	QuoteIdentifier(name string) string
	// Placeholder returns the n-th (1-based) bind parameter.
	Placeholder(n int) string
	// MaxIdentifierLength returns the identifier length limit in bytes, or 0.
	MaxIdentifierLength() int
	// Supports reports whether the dialect supports the feature.
	Supports(f Feature) bool
	// SupportsLanguage reports whether routines can be written in lang.
	SupportsLanguage(lang string) bool
	// RenderFunctionSignature renders a routine name with its parameter list.
	// With declare set, parameters are rendered as declarations ("name" type),
	// otherwise as the type-only signature identifying the routine.
	RenderFunctionSignature(qname string, params []function.Param, declare bool) string
	// WrapBody renders the routine body clause so that the body text cannot
	// collide with the statement's own quoting.
	WrapBody(language, body string) string
	// IndexExpr renders a function index part as the dialect requires.
	IndexExpr(x string) string
	// IndexUsingAfterColumns reports whether USING follows the column list.
	IndexUsingAfterColumns() bool
	// DropIndexTarget renders the object of a DROP INDEX statement.
	DropIndexTarget(qtable, qname string) string
	// IntrospectionQuery returns the catalog query listing one row per
	// (index, column) pair of table, ordered by index name then ordinal.
	// Rows are (name, unique, primary, seq, column).
	IntrospectionQuery(table, schema string) (string, []any)
	// ClassifyError maps a driver error to a failure kind.
	ClassifyError(err error) qi.Kind
}

// For returns the dialect for the given dialect or driver name.
func For(name string) (Dialect, error) {
	n := strings.ToLower(name)
	switch {
	case strings.HasPrefix(n, "postgres"), strings.HasPrefix(n, "pgx"):
		return postgres{}, nil
	case strings.HasPrefix(n, "mysql"), strings.HasPrefix(n, "mariadb"):
		return mysql{}, nil
	case strings.HasPrefix(n, "sqlite"):
		return sqlite{}, nil
	}
	return nil, fmt.Errorf("dialect: unknown dialect %q", name)
}

// Check returns an UnsupportedError if d lacks any of the features.
func Check(d Dialect, features ...Feature) error {
	for _, f := range features {
		if !d.Supports(f) {
			return qi.NewUnsupportedError(d.Name(), string(f))
		}
	}
	return nil
}
