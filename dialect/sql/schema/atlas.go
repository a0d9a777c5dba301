package schema

import (
	"strings"

	"ariga.io/atlas/sql/schema"

	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/schema/index"
)

// AtlasTable converts introspected indexes into an Atlas table, so they can
// be fed to Atlas diffing and migration tooling. Columns are created on
// demand and carry no type information. Expression parts become raw
// expressions.
func AtlasTable(name string, md []*index.Metadata) *schema.Table {
	t := &schema.Table{Name: name}
	columns := make(map[string]*schema.Column)
	column := func(name string) *schema.Column {
		c, ok := columns[name]
		if !ok {
			c = &schema.Column{Name: name}
			columns[name] = c
			t.Columns = append(t.Columns, c)
		}
		return c
	}
	for _, m := range md {
		idx := &schema.Index{Name: m.Name, Unique: m.Unique || m.Primary, Table: t}
		for i, f := range m.Fields {
			part := &schema.IndexPart{SeqNo: i}
			if isExpression(f) {
				part.X = &schema.RawExpr{X: f}
			} else {
				part.C = column(f)
			}
			idx.Parts = append(idx.Parts, part)
		}
		if m.Primary {
			t.PrimaryKey = idx
			continue
		}
		t.Indexes = append(t.Indexes, idx)
	}
	return t
}

func isExpression(f string) bool {
	return f == dialect.ExpressionColumn || strings.ContainsAny(f, "()' ")
}
