// Package qi is a dialect-neutral query interface for database DDL:
// creating, dropping and renaming stored routines, and adding, removing
// and listing indexes on PostgreSQL, MySQL and SQLite.
//
// The operations live in package dialect/sql/schema. This package holds
// the error taxonomy they share:
//
//   - ValidationError: a descriptor was rejected before any I/O.
//   - UnsupportedError: the dialect cannot perform the operation.
//   - ExecutionError: the database rejected a statement. Its Kind tells
//     not-found and already-exists failures apart from generic ones.
//   - IntrospectionError: catalog rows describing an index disagree.
//
// Database errors that cannot be classified are returned unchanged.
package qi
