package dialect

import (
	"strconv"
	"strings"

	"github.com/lib/pq"

	"github.com/syssam/qi"
	"github.com/syssam/qi/schema/function"
)

type postgres struct{}

func (postgres) Name() string { return Postgres }

func (postgres) QuoteIdentifier(name string) string { return pq.QuoteIdentifier(name) }

func (postgres) Placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgres) MaxIdentifierLength() int { return 63 }

func (postgres) Supports(Feature) bool { return true }

func (postgres) SupportsLanguage(string) bool { return true }

func (d postgres) RenderFunctionSignature(qname string, params []function.Param, declare bool) string {
	if !declare {
		params = function.Signature(params)
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		var b strings.Builder
		if declare {
			if p.Direction != "" && !strings.EqualFold(p.Direction, function.In) {
				b.WriteString(strings.ToUpper(p.Direction))
				b.WriteByte(' ')
			}
			if p.Name != "" {
				b.WriteString(d.QuoteIdentifier(p.Name))
				b.WriteByte(' ')
			}
		}
		b.WriteString(p.Type)
		parts = append(parts, b.String())
	}
	return qname + "(" + strings.Join(parts, ", ") + ")"
}

// WrapBody dollar-quotes the body with a tag that does not occur in it.
// PL/pgSQL bodies are wrapped in a block unless they already start one.
func (postgres) WrapBody(language, body string) string {
	body = strings.TrimSpace(body)
	if strings.EqualFold(language, "plpgsql") && !startsBlock(body) {
		body = "BEGIN " + body + " END;"
	}
	tag := "func"
	for i := 1; strings.Contains(body, "$"+tag+"$"); i++ {
		tag = "func" + strconv.Itoa(i)
	}
	return "AS $" + tag + "$ " + body + " $" + tag + "$"
}

func startsBlock(body string) bool {
	u := strings.ToUpper(body)
	return strings.HasPrefix(u, "BEGIN") || strings.HasPrefix(u, "DECLARE") || strings.HasPrefix(u, "<<")
}

func (postgres) IndexExpr(x string) string { return x }

func (postgres) IndexUsingAfterColumns() bool { return false }

func (postgres) DropIndexTarget(_, qname string) string { return qname }

func (d postgres) IntrospectionQuery(table, schema string) (string, []any) {
	return `SELECT i.relname, ix.indisunique, ix.indisprimary, k.ord, pg_get_indexdef(ix.indexrelid, k.ord::int, true)
FROM pg_index ix
JOIN pg_class t ON t.oid = ix.indrelid
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN pg_namespace n ON n.oid = t.relnamespace
CROSS JOIN LATERAL generate_series(1, ix.indnatts) AS k(ord)
WHERE t.relname = ` + d.Placeholder(1) + ` AND n.nspname = COALESCE(NULLIF(` + d.Placeholder(2) + `, ''), current_schema())
ORDER BY i.relname, k.ord`, []any{table, schema}
}

func (postgres) ClassifyError(err error) qi.Kind {
	if err == nil {
		return qi.KindUnknown
	}
	if code, ok := sqlState(err); ok {
		if k := classifySQLState(code); k != qi.KindUnknown {
			return k
		}
	}
	return classifyMessage(err.Error())
}
