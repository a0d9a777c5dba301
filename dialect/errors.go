package dialect

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"github.com/syssam/qi"
)

// sqlStateError is implemented by drivers that expose SQLSTATE codes.
type sqlStateError interface {
	SQLState() string
}

// sqlState extracts a SQLSTATE code from the error chain.
// Supports lib/pq, pgx and any error implementing SQLState.
func sqlState(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	if e, ok := asError[sqlStateError](err); ok {
		return e.SQLState(), true
	}
	return "", false
}

// PostgreSQL SQLSTATE codes.
const (
	pgUndefinedFunction     = "42883"
	pgUndefinedObject       = "42704"
	pgUndefinedTable        = "42P01"
	pgUndefinedColumn       = "42703"
	pgInvalidSchemaName     = "3F000"
	pgDuplicateFunction     = "42723"
	pgDuplicateTable        = "42P07"
	pgDuplicateObject       = "42710"
	pgDuplicateSchema       = "42P06"
	pgSyntaxError           = "42601"
	pgInvalidFunctionDef    = "42P13"
	pgInvalidObjectDef      = "42P17"
	pgDatatypeMismatch      = "42804"
	pgFeatureNotSupported   = "0A000"
	pgInsufficientPrivilege = "42501"
	pgConstraintClass       = "23"
)

func classifySQLState(code string) qi.Kind {
	switch code {
	case pgUndefinedFunction, pgUndefinedObject, pgUndefinedTable, pgUndefinedColumn, pgInvalidSchemaName:
		return qi.KindNotFound
	case pgDuplicateFunction, pgDuplicateTable, pgDuplicateObject, pgDuplicateSchema:
		return qi.KindAlreadyExists
	case pgSyntaxError, pgInvalidFunctionDef, pgInvalidObjectDef, pgDatatypeMismatch, pgFeatureNotSupported:
		return qi.KindSyntax
	case pgInsufficientPrivilege:
		return qi.KindPermission
	}
	if strings.HasPrefix(code, pgConstraintClass) {
		return qi.KindConstraint
	}
	return qi.KindUnknown
}

// classifyMessage is the fallback for drivers without error codes.
func classifyMessage(msg string) qi.Kind {
	switch {
	case containsAny(msg, "does not exist", "no such index", "no such table", "no such function", "Unknown table"):
		return qi.KindNotFound
	case containsAny(msg, "already exists", "Duplicate key name"):
		return qi.KindAlreadyExists
	case containsAny(msg, "syntax error", "You have an error in your SQL syntax"):
		return qi.KindSyntax
	case containsAny(msg, "permission denied", "access denied", "Access denied", "not authorized", "readonly database"):
		return qi.KindPermission
	case containsAny(msg, "violates", "constraint failed", "Duplicate entry"):
		return qi.KindConstraint
	}
	return qi.KindUnknown
}

// asError attempts to extract an error implementing interface T from the error chain.
func asError[T any](err error) (T, bool) {
	var target T
	for err != nil {
		if e, ok := err.(T); ok {
			return e, true
		}
		err = errors.Unwrap(err)
	}
	return target, false
}

// containsAny returns true if s contains any of the substrings.
func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
