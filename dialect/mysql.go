package dialect

import (
	"errors"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"

	"github.com/syssam/qi"
	"github.com/syssam/qi/schema/function"
)

// MySQL server error numbers.
const (
	myNoSuchRoutine    = 1305
	myCantDropKey      = 1091
	myNoSuchTable      = 1146
	myUnknownTable     = 1051
	myRoutineExists    = 1304
	myDupKeyName       = 1061
	myTableExists      = 1050
	mySyntaxError      = 1064
	myParseError       = 1149
	myDBAccessDenied   = 1044
	myAccessDenied     = 1045
	myTableAccess      = 1142
	myProcAccess       = 1370
	myDupEntry         = 1062
	myNoReferencedRow  = 1452
	myRowIsReferenced  = 1451
	myCheckConstraint  = 3819
	myUnsupportedIndex = 1221
)

type mysql struct{}

func (mysql) Name() string { return MySQL }

func (mysql) QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

func (mysql) Placeholder(int) string { return "?" }

func (mysql) MaxIdentifierLength() int { return 64 }

func (mysql) Supports(f Feature) bool {
	switch f {
	case FeatureFunctions, FeatureIndexMethod:
		return true
	}
	return false
}

func (mysql) SupportsLanguage(lang string) bool { return strings.EqualFold(lang, "sql") }

// RenderFunctionSignature renders the parameter list only in declarations.
// Stored functions are not overloaded, so the name alone identifies one.
func (d mysql) RenderFunctionSignature(qname string, params []function.Param, declare bool) string {
	if !declare {
		return qname
	}
	parts := make([]string, 0, len(params))
	for _, p := range params {
		if p.Name != "" {
			parts = append(parts, d.QuoteIdentifier(p.Name)+" "+p.Type)
			continue
		}
		parts = append(parts, p.Type)
	}
	return qname + "(" + strings.Join(parts, ", ") + ")"
}

func (mysql) WrapBody(_, body string) string {
	body = strings.TrimSpace(body)
	if strings.HasPrefix(strings.ToUpper(body), "BEGIN") {
		return body
	}
	return "BEGIN " + body + " END"
}

func (mysql) IndexExpr(x string) string {
	if strings.HasPrefix(x, "(") {
		return x
	}
	return "(" + x + ")"
}

func (mysql) IndexUsingAfterColumns() bool { return true }

func (mysql) DropIndexTarget(qtable, qname string) string { return qname + " ON " + qtable }

func (d mysql) IntrospectionQuery(table, schema string) (string, []any) {
	return "SELECT `INDEX_NAME`, `NON_UNIQUE` = 0, `INDEX_NAME` = 'PRIMARY', `SEQ_IN_INDEX`, COALESCE(`COLUMN_NAME`, `EXPRESSION`, '')\n" +
		"FROM `INFORMATION_SCHEMA`.`STATISTICS`\n" +
		"WHERE `TABLE_SCHEMA` = COALESCE(NULLIF(" + d.Placeholder(1) + ", ''), DATABASE()) AND `TABLE_NAME` = " + d.Placeholder(2) + "\n" +
		"ORDER BY `INDEX_NAME`, `SEQ_IN_INDEX`", []any{schema, table}
}

func (mysql) ClassifyError(err error) qi.Kind {
	if err == nil {
		return qi.KindUnknown
	}
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case myNoSuchRoutine, myCantDropKey, myNoSuchTable, myUnknownTable:
			return qi.KindNotFound
		case myRoutineExists, myDupKeyName, myTableExists:
			return qi.KindAlreadyExists
		case mySyntaxError, myParseError, myUnsupportedIndex:
			return qi.KindSyntax
		case myDBAccessDenied, myAccessDenied, myTableAccess, myProcAccess:
			return qi.KindPermission
		case myDupEntry, myNoReferencedRow, myRowIsReferenced, myCheckConstraint:
			return qi.KindConstraint
		}
	}
	return classifyMessage(err.Error())
}
