// Package dialect provides the database dialect abstraction for qi.
//
// A Dialect captures everything that differs between databases when
// managing routines and indexes: identifier quoting, bind placeholders,
// identifier length limits, optional features, body quoting, the catalog
// query used for index introspection and the mapping of driver errors to
// failure kinds.
//
// # Supported Dialects
//
// The following dialects are supported:
//
//   - Postgres: PostgreSQL (lib/pq or pgx drivers)
//   - MySQL: MySQL/MariaDB
//   - SQLite: SQLite (indexes only)
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.Postgres = "postgres"
//	dialect.MySQL    = "mysql"
//	dialect.SQLite   = "sqlite"
//
// For resolves a dialect from a dialect or driver name:
//
//	d, err := dialect.For("pgx") // PostgreSQL
//
// # Features
//
// Optional capabilities are checked with Supports or Check. Check returns
// a *qi.UnsupportedError naming the first missing feature:
//
//	if err := dialect.Check(d, dialect.FeatureFunctionRename); err != nil {
//	    return err
//	}
//
// # Error Classification
//
// ClassifyError inspects *pq.Error and *pgconn.PgError SQLSTATE codes,
// *mysql.MySQLError numbers and, as a fallback, the error message:
//
//	switch d.ClassifyError(err) {
//	case qi.KindNotFound:
//	case qi.KindAlreadyExists:
//	}
//
// # Sub-packages
//
//   - dialect/sql: driver wrappers and statement builders
//   - dialect/sql/schema: the query interface and index introspection
package dialect
