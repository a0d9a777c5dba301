// Package sql adapts database/sql to dialect.Driver and renders the DDL
// statements of the query interface.
//
// # Drivers
//
// Open and OpenDB wrap a *sql.DB. The driver name selects the dialect:
//
//	drv, err := sql.Open("pgx", "postgres://localhost/app")
//	drv.Dialect() // "postgres"
//
// StatsDriver and DebugDriver decorate any dialect.Driver with statement
// statistics, slow statement logging and statement logging.
//
// # Statements
//
// The Build functions are pure: they render statements for a dialect
// without touching the database.
//
//	d, _ := dialect.For(dialect.Postgres)
//	sql.BuildCreateIndex(d, index.Fields("email").On("users").Unique().Descriptor())
//	// CREATE UNIQUE INDEX "users_email" ON "users" ("email")
//
// Identifiers are always quoted. Expressions, bodies and predicates are
// rendered verbatim.
package sql
