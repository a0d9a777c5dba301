package dialect

import (
	"strings"

	"github.com/syssam/qi"
	"github.com/syssam/qi/schema/function"
)

// ExpressionColumn is reported by SQLite for expression index parts.
const ExpressionColumn = "<expression>"

type sqlite struct{}

func (sqlite) Name() string { return SQLite }

func (sqlite) QuoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (sqlite) Placeholder(int) string { return "?" }

func (sqlite) MaxIdentifierLength() int { return 0 }

func (sqlite) Supports(f Feature) bool { return f == FeaturePartialIndex }

func (sqlite) SupportsLanguage(string) bool { return false }

func (sqlite) RenderFunctionSignature(qname string, _ []function.Param, _ bool) string { return qname }

func (sqlite) WrapBody(_, body string) string { return body }

func (sqlite) IndexExpr(x string) string { return x }

func (sqlite) IndexUsingAfterColumns() bool { return false }

func (sqlite) DropIndexTarget(_, qname string) string { return qname }

func (d sqlite) IntrospectionQuery(table, schema string) (string, []any) {
	if schema != "" {
		return `SELECT il.name, il."unique", il.origin = 'pk', ii.seqno, COALESCE(ii.name, '` + ExpressionColumn + `')
FROM pragma_index_list(` + d.Placeholder(1) + `, ` + d.Placeholder(2) + `) AS il, pragma_index_info(il.name, ` + d.Placeholder(3) + `) AS ii
ORDER BY il.name, ii.seqno`, []any{table, schema, schema}
	}
	return `SELECT il.name, il."unique", il.origin = 'pk', ii.seqno, COALESCE(ii.name, '` + ExpressionColumn + `')
FROM pragma_index_list(` + d.Placeholder(1) + `) AS il, pragma_index_info(il.name) AS ii
ORDER BY il.name, ii.seqno`, []any{table}
}

func (sqlite) ClassifyError(err error) qi.Kind {
	if err == nil {
		return qi.KindUnknown
	}
	return classifyMessage(err.Error())
}
