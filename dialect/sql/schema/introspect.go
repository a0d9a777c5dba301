package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/syssam/qi"
	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/dialect/sql"
	"github.com/syssam/qi/schema/index"
)

// Introspect runs a catalog query built by sql.BuildShowIndexQuery and
// groups its (name, unique, primary, seq, column) rows into one Metadata
// per index, in the order the catalog returns them. A table without
// indexes yields an empty, non-nil slice.
func Introspect(ctx context.Context, drv dialect.ExecQuerier, table, query string, args []any) ([]*index.Metadata, error) {
	rows := &sql.Rows{}
	if err := drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var (
		out    = make([]*index.Metadata, 0)
		byName = make(map[string]*index.Metadata)
	)
	for rows.Next() {
		var (
			name, column    string
			unique, primary bool
			seq             int64
		)
		if err := rows.Scan(&name, &unique, &primary, &seq, &column); err != nil {
			return nil, fmt.Errorf("scanning index rows of %q: %w", table, err)
		}
		md, ok := byName[name]
		switch {
		case !ok:
			md = &index.Metadata{Name: name, Unique: unique, Primary: primary}
			byName[name] = md
			out = append(out, md)
		case md.Unique != unique:
			return nil, &qi.IntrospectionError{Table: table, Index: name, Field: "unique"}
		case md.Primary != primary:
			return nil, &qi.IntrospectionError{Table: table, Index: name, Field: "primary"}
		}
		md.Fields = append(md.Fields, unquote(column))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// unquote strips the double quotes PostgreSQL puts around column names
// that need them. Expressions are returned unchanged.
func unquote(s string) string {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return s
	}
	inner := s[1 : len(s)-1]
	if strings.Contains(strings.ReplaceAll(inner, `""`, ""), `"`) {
		return s
	}
	return strings.ReplaceAll(inner, `""`, `"`)
}
