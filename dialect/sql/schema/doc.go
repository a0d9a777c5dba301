// Package schema implements the query interface: creating, dropping and
// renaming stored routines, and adding, removing and listing indexes.
//
// Every call runs as a fresh operation moving through the states
// idle, validating, generating, executing, then succeeded or failed.
// Validation and dialect capability checks complete before any statement
// is sent, so a rejected descriptor never reaches the database.
//
//	drv, err := sql.Open("pgx", dsn)
//	if err != nil {
//	    return err
//	}
//	q, err := schema.New(drv, schema.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	err = q.AddIndex(ctx, index.Fields("username").On("Group").Descriptor())
//	switch {
//	case qi.IsAlreadyExists(err):
//	case err != nil:
//	    return err
//	}
//
// The Prepare methods split an operation in two: they validate and
// generate synchronously, returning a Plan whose statements can be
// inspected before Exec sends them.
package schema
