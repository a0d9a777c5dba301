package sql

import (
	"fmt"
	"sort"
	"strings"

	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/schema/function"
	"github.com/syssam/qi/schema/index"
)

// BuildOption configures statement building.
type BuildOption func(*builder)

// InSchema qualifies tables and routines with the given schema.
func InSchema(name string) BuildOption {
	return func(b *builder) {
		b.schema = name
	}
}

type builder struct {
	dialect.Dialect
	schema string
}

func newBuilder(d dialect.Dialect, opts []BuildOption) *builder {
	b := &builder{Dialect: d}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// qualify quotes name, prefixed by the quoted schema if set.
func (b *builder) qualify(name string) string {
	if b.schema == "" {
		return b.QuoteIdentifier(name)
	}
	return b.QuoteIdentifier(b.schema) + "." + b.QuoteIdentifier(name)
}

// SQLite qualifies the index rather than its table.
func (b *builder) indexNames(table, name string) (qtable, qname string) {
	if b.Name() == dialect.SQLite {
		return b.QuoteIdentifier(table), b.qualify(name)
	}
	return b.qualify(table), b.QuoteIdentifier(name)
}

// BuildCreateFunction returns the statements creating the routine.
// Replace semantics use CREATE OR REPLACE where available, and a leading
// DROP FUNCTION IF EXISTS otherwise. The two statements are not atomic:
// if the CREATE fails, the previous routine is already gone.
//
//	CREATE OR REPLACE FUNCTION "create_job"("test" varchar) RETURNS varchar LANGUAGE plpgsql AS $func$ BEGIN RETURN test; END; $func$
func BuildCreateFunction(d dialect.Dialect, desc function.Descriptor, opts ...BuildOption) []string {
	b := newBuilder(d, opts)
	name := b.qualify(desc.Name)
	var (
		stmts []string
		sb    strings.Builder
	)
	sb.WriteString("CREATE ")
	if desc.Replace() {
		if b.Supports(dialect.FeatureOrReplace) {
			sb.WriteString("OR REPLACE ")
		} else {
			stmts = append(stmts, "DROP FUNCTION IF EXISTS "+b.RenderFunctionSignature(name, desc.Parameters, false))
		}
	}
	sb.WriteString("FUNCTION ")
	sb.WriteString(b.RenderFunctionSignature(name, desc.Parameters, true))
	sb.WriteString(" RETURNS ")
	sb.WriteString(desc.ReturnType)
	sb.WriteString(" LANGUAGE ")
	sb.WriteString(desc.Language)
	if o := RenderOptions(desc.Options); o != "" {
		sb.WriteByte(' ')
		sb.WriteString(o)
	}
	sb.WriteByte(' ')
	sb.WriteString(b.WrapBody(desc.Language, desc.Body))
	return append(stmts, sb.String())
}

// BuildDropFunction returns the statement dropping the routine.
func BuildDropFunction(d dialect.Dialect, desc function.DropDescriptor, opts ...BuildOption) string {
	b := newBuilder(d, opts)
	return "DROP FUNCTION " + b.RenderFunctionSignature(b.qualify(desc.Name), desc.Parameters, false)
}

// BuildRenameFunction returns the statement renaming the routine.
func BuildRenameFunction(d dialect.Dialect, desc function.RenameDescriptor, opts ...BuildOption) string {
	b := newBuilder(d, opts)
	return "ALTER FUNCTION " + b.RenderFunctionSignature(b.qualify(desc.OldName), desc.Parameters, false) +
		" RENAME TO " + b.QuoteIdentifier(desc.NewName)
}

// RenderOptions renders routine characteristics in key order. The replace
// option is not a characteristic and is skipped.
//
//	{"immutable": true, "parallel": "safe", "cost": 10} // COST 10 IMMUTABLE PARALLEL safe
func RenderOptions(opts map[string]any) string {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		if k != function.OptionReplace {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		kw := strings.ToUpper(strings.ReplaceAll(k, "_", " "))
		switch v := opts[k].(type) {
		case bool:
			if v {
				parts = append(parts, kw)
			}
		default:
			parts = append(parts, fmt.Sprintf("%s %v", kw, v))
		}
	}
	return strings.Join(parts, " ")
}

// IndexName returns the name the index is created under: the explicit
// name, or the derived name truncated to the dialect's identifier limit.
func IndexName(d dialect.Dialect, desc index.Descriptor) string {
	return index.Name(desc, d.MaxIdentifierLength())
}

// FieldsIndexName returns the derived name of an index over fields.
func FieldsIndexName(d dialect.Dialect, table string, fields []index.Field) string {
	return index.Truncate(index.DeriveName(table, fields), d.MaxIdentifierLength())
}

// BuildCreateIndex returns the statement creating the index.
//
//	CREATE UNIQUE INDEX "users_email" ON "users" ("email")
//	CREATE INDEX `group_lower_username` ON `Group` ((lower(`username`))) USING BTREE
func BuildCreateIndex(d dialect.Dialect, desc index.Descriptor, opts ...BuildOption) string {
	b := newBuilder(d, opts)
	qtable, qname := b.indexNames(desc.Table, IndexName(d, desc))
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if desc.Unique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX ")
	if desc.Concurrently {
		sb.WriteString("CONCURRENTLY ")
	}
	sb.WriteString(qname)
	sb.WriteString(" ON ")
	sb.WriteString(qtable)
	using := ""
	if desc.Using != "" {
		using = " USING " + desc.Using
	}
	if !b.IndexUsingAfterColumns() {
		sb.WriteString(using)
	}
	parts := make([]string, len(desc.Fields))
	for i, f := range desc.Fields {
		parts[i] = b.indexPart(f)
	}
	sb.WriteString(" (")
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteByte(')')
	if b.IndexUsingAfterColumns() {
		sb.WriteString(using)
	}
	if desc.Where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(desc.Where)
	}
	return sb.String()
}

func (b *builder) indexPart(f index.Field) string {
	var s string
	switch {
	case f.Column != "":
		s = b.QuoteIdentifier(f.Column)
	case f.Expr != "":
		s = "(" + f.Expr + ")"
	default:
		args := make([]string, len(f.Args))
		for i, a := range f.Args {
			args[i] = b.QuoteIdentifier(a)
		}
		s = b.IndexExpr(f.Func + "(" + strings.Join(args, ", ") + ")")
	}
	if f.Desc {
		s += " DESC"
	}
	return s
}

// BuildDropIndex returns the statement dropping the named index of table.
func BuildDropIndex(d dialect.Dialect, table, name string, opts ...BuildOption) string {
	b := newBuilder(d, opts)
	var qtable, qname string
	if b.Name() == dialect.MySQL {
		qtable, qname = b.qualify(table), b.QuoteIdentifier(name)
	} else {
		qtable, qname = b.QuoteIdentifier(table), b.qualify(name)
	}
	return "DROP INDEX " + b.DropIndexTarget(qtable, qname)
}

// BuildShowIndexQuery returns the catalog query listing the indexes of table.
func BuildShowIndexQuery(d dialect.Dialect, table string, opts ...BuildOption) (string, []any) {
	b := newBuilder(d, opts)
	return b.IntrospectionQuery(table, b.schema)
}
