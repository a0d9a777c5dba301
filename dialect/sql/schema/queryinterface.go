package schema

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/qi"
	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/dialect/sql"
	"github.com/syssam/qi/schema/function"
	"github.com/syssam/qi/schema/index"
)

var errNilDriver = errors.New("qi: nil driver")

// DefaultParallelism bounds the concurrent catalog queries of ShowIndexes.
const DefaultParallelism = 4

// QueryInterface manages routines and indexes of one database.
// It holds no per-operation state and is safe for concurrent use.
type QueryInterface struct {
	drv      dialect.ExecQuerier
	dialect  dialect.Dialect
	logger   *slog.Logger
	schema   string
	parallel int
	hook     StateHook
}

// Option configures a QueryInterface.
type Option func(*QueryInterface)

// WithLogger sets the logger. Statements are logged at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(q *QueryInterface) {
		q.logger = l
	}
}

// WithSchema qualifies tables and routines with the given schema.
func WithSchema(name string) Option {
	return func(q *QueryInterface) {
		q.schema = name
	}
}

// WithParallelism bounds the concurrent catalog queries of ShowIndexes.
func WithParallelism(n int) Option {
	return func(q *QueryInterface) {
		q.parallel = n
	}
}

// WithStateHook sets a hook observing operation state transitions.
func WithStateHook(h StateHook) Option {
	return func(q *QueryInterface) {
		q.hook = h
	}
}

// WithDialect overrides the dialect resolved from the driver.
func WithDialect(d dialect.Dialect) Option {
	return func(q *QueryInterface) {
		q.dialect = d
	}
}

// New returns a QueryInterface over the driver, using the dialect named
// by drv.Dialect().
func New(drv dialect.Driver, opts ...Option) (*QueryInterface, error) {
	if drv == nil {
		return nil, errNilDriver
	}
	q := &QueryInterface{
		drv:      drv,
		logger:   slog.Default(),
		parallel: DefaultParallelism,
	}
	for _, opt := range opts {
		opt(q)
	}
	if q.dialect == nil {
		d, err := dialect.For(drv.Dialect())
		if err != nil {
			return nil, err
		}
		q.dialect = d
	}
	if q.parallel < 1 {
		q.parallel = 1
	}
	return q, nil
}

// Dialect returns the dialect statements are generated for.
func (q *QueryInterface) Dialect() dialect.Dialect {
	return q.dialect
}

func (q *QueryInterface) buildOpts() []sql.BuildOption {
	if q.schema == "" {
		return nil
	}
	return []sql.BuildOption{sql.InSchema(q.schema)}
}

// Plan is a validated operation with its generated statements, ready to
// be executed once by Exec.
type Plan struct {
	op     *operation
	object string
	stmts  []string
	done   atomic.Bool
}

// Op returns the operation name (e.g., "createFunction").
func (p *Plan) Op() string { return p.op.name }

// Object returns the name of the routine or index the plan acts on.
func (p *Plan) Object() string { return p.object }

// Statements returns a copy of the statements the plan executes, in order.
func (p *Plan) Statements() []string {
	return append([]string(nil), p.stmts...)
}

// State returns the current state of the plan's operation.
func (p *Plan) State() State { return p.op.state }

// prepare runs the validating and generating phases of an operation.
func (q *QueryInterface) prepare(ctx context.Context, op string, check func() error, generate func() (string, []string)) (*Plan, error) {
	o := newOperation(op, q.hook)
	o.to(ctx, StateValidating)
	if err := check(); err != nil {
		o.to(ctx, StateFailed)
		q.logger.DebugContext(ctx, "operation rejected", "op", op, "error", err)
		return nil, err
	}
	o.to(ctx, StateGenerating)
	object, stmts := generate()
	return &Plan{op: o, object: object, stmts: stmts}, nil
}

// Exec executes the statements of a plan in order, stopping at the first
// failure. A plan executes at most once; later calls return qi.ErrPlanDone.
func (q *QueryInterface) Exec(ctx context.Context, p *Plan) error {
	if p.done.Swap(true) {
		return qi.ErrPlanDone
	}
	p.op.to(ctx, StateExecuting)
	for _, stmt := range p.stmts {
		q.logger.DebugContext(ctx, "executing statement", "op", p.Op(), "object", p.object, "statement", stmt)
		if err := q.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			p.op.to(ctx, StateFailed)
			return q.failed(ctx, p.Op(), p.object, err)
		}
	}
	p.op.to(ctx, StateSucceeded)
	return nil
}

// failed classifies a driver error. Unrecognized errors are returned as is.
func (q *QueryInterface) failed(ctx context.Context, op, object string, err error) error {
	kind := q.dialect.ClassifyError(err)
	q.logger.DebugContext(ctx, "operation failed", "op", op, "object", object, "kind", kind, "error", err)
	if kind == qi.KindUnknown {
		return err
	}
	return qi.NewExecutionError(op, object, kind, err)
}

// PrepareCreateFunction validates the descriptor and generates the
// statements creating the routine.
func (q *QueryInterface) PrepareCreateFunction(ctx context.Context, desc function.Descriptor) (*Plan, error) {
	return q.prepare(ctx, function.OpCreate,
		func() error { return q.checkCreateFunction(desc) },
		func() (string, []string) {
			return desc.Name, sql.BuildCreateFunction(q.dialect, desc, q.buildOpts()...)
		},
	)
}

// CreateFunction creates a routine, replacing an existing one with the
// same signature unless the "replace" option is false.
func (q *QueryInterface) CreateFunction(ctx context.Context, desc function.Descriptor) error {
	p, err := q.PrepareCreateFunction(ctx, desc)
	if err != nil {
		return err
	}
	return q.Exec(ctx, p)
}

// PrepareDropFunction validates the descriptor and generates the
// statement dropping the routine.
func (q *QueryInterface) PrepareDropFunction(ctx context.Context, desc function.DropDescriptor) (*Plan, error) {
	return q.prepare(ctx, function.OpDrop,
		func() error { return q.checkDropFunction(desc) },
		func() (string, []string) {
			return desc.Name, []string{sql.BuildDropFunction(q.dialect, desc, q.buildOpts()...)}
		},
	)
}

// DropFunction drops a routine. Dropping a missing routine fails with a
// not-found ExecutionError.
func (q *QueryInterface) DropFunction(ctx context.Context, desc function.DropDescriptor) error {
	p, err := q.PrepareDropFunction(ctx, desc)
	if err != nil {
		return err
	}
	return q.Exec(ctx, p)
}

// PrepareRenameFunction validates the descriptor and generates the
// statement renaming the routine.
func (q *QueryInterface) PrepareRenameFunction(ctx context.Context, desc function.RenameDescriptor) (*Plan, error) {
	return q.prepare(ctx, function.OpRename,
		func() error { return q.checkRenameFunction(desc) },
		func() (string, []string) {
			return desc.OldName, []string{sql.BuildRenameFunction(q.dialect, desc, q.buildOpts()...)}
		},
	)
}

// RenameFunction renames a routine, keeping its signature.
func (q *QueryInterface) RenameFunction(ctx context.Context, desc function.RenameDescriptor) error {
	p, err := q.PrepareRenameFunction(ctx, desc)
	if err != nil {
		return err
	}
	return q.Exec(ctx, p)
}

// PrepareAddIndex validates the descriptor and generates the statement
// creating the index.
func (q *QueryInterface) PrepareAddIndex(ctx context.Context, desc index.Descriptor) (*Plan, error) {
	return q.prepare(ctx, index.OpAdd,
		func() error { return q.checkAddIndex(desc) },
		func() (string, []string) {
			return sql.IndexName(q.dialect, desc), []string{sql.BuildCreateIndex(q.dialect, desc, q.buildOpts()...)}
		},
	)
}

// AddIndex creates an index.
func (q *QueryInterface) AddIndex(ctx context.Context, desc index.Descriptor) error {
	p, err := q.PrepareAddIndex(ctx, desc)
	if err != nil {
		return err
	}
	return q.Exec(ctx, p)
}

// PrepareRemoveIndex generates the statement dropping the named index.
func (q *QueryInterface) PrepareRemoveIndex(ctx context.Context, table, name string) (*Plan, error) {
	return q.prepare(ctx, index.OpRemove,
		func() error { return index.ValidateRemove(table, name) },
		func() (string, []string) {
			return name, []string{sql.BuildDropIndex(q.dialect, table, name, q.buildOpts()...)}
		},
	)
}

// RemoveIndex drops the named index of table. Dropping a missing index
// fails with a not-found ExecutionError.
func (q *QueryInterface) RemoveIndex(ctx context.Context, table, name string) error {
	p, err := q.PrepareRemoveIndex(ctx, table, name)
	if err != nil {
		return err
	}
	return q.Exec(ctx, p)
}

// PrepareRemoveIndexByFields generates the statement dropping the index
// that AddIndex creates for the same table and fields without a name.
func (q *QueryInterface) PrepareRemoveIndexByFields(ctx context.Context, table string, fields ...index.Field) (*Plan, error) {
	return q.prepare(ctx, index.OpRemove,
		func() error { return index.ValidateFields(table, fields) },
		func() (string, []string) {
			name := sql.FieldsIndexName(q.dialect, table, fields)
			return name, []string{sql.BuildDropIndex(q.dialect, table, name, q.buildOpts()...)}
		},
	)
}

// RemoveIndexByFields drops the index over fields, identified by its
// derived name.
func (q *QueryInterface) RemoveIndexByFields(ctx context.Context, table string, fields ...index.Field) error {
	p, err := q.PrepareRemoveIndexByFields(ctx, table, fields...)
	if err != nil {
		return err
	}
	return q.Exec(ctx, p)
}

// ShowIndex lists the indexes of table, including its primary key.
func (q *QueryInterface) ShowIndex(ctx context.Context, table string) ([]*index.Metadata, error) {
	o := newOperation(index.OpShow, q.hook)
	o.to(ctx, StateValidating)
	if err := index.ValidateShow(table); err != nil {
		o.to(ctx, StateFailed)
		return nil, err
	}
	o.to(ctx, StateGenerating)
	query, args := sql.BuildShowIndexQuery(q.dialect, table, q.buildOpts()...)
	o.to(ctx, StateExecuting)
	q.logger.DebugContext(ctx, "executing query", "op", index.OpShow, "object", table, "statement", query)
	md, err := Introspect(ctx, q.drv, table, query, args)
	if err != nil {
		o.to(ctx, StateFailed)
		if qi.IsIntrospectionError(err) {
			return nil, err
		}
		return nil, q.failed(ctx, index.OpShow, table, err)
	}
	o.to(ctx, StateSucceeded)
	return md, nil
}

// ShowIndexes lists the indexes of several tables concurrently, bounded
// by WithParallelism. The first failure cancels the remaining queries.
func (q *QueryInterface) ShowIndexes(ctx context.Context, tables ...string) (map[string][]*index.Metadata, error) {
	results := make([][]*index.Metadata, len(tables))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(q.parallel)
	for i, table := range tables {
		g.Go(func() error {
			md, err := q.ShowIndex(ctx, table)
			if err != nil {
				return err
			}
			results[i] = md
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out := make(map[string][]*index.Metadata, len(tables))
	for i, table := range tables {
		out[table] = results[i]
	}
	return out, nil
}

// IgnoreNotFound returns nil if err reports a missing object. It suits
// cleanup paths that drop objects which may not exist.
func IgnoreNotFound(err error) error {
	if qi.IsNotFound(err) {
		return nil
	}
	return err
}
