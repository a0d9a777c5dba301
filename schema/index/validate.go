package index

import (
	"regexp"
	"strings"

	"github.com/syssam/qi"
)

// Operation names reported in errors.
const (
	OpAdd    = "addIndex"
	OpRemove = "removeIndex"
	OpShow   = "showIndex"
)

var (
	funcRe   = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)
	methodRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// Validate validates an index descriptor.
func Validate(d Descriptor) error {
	if err := validateTarget(OpAdd, d.Table, d.Fields); err != nil {
		return err
	}
	if d.Using != "" && !methodRe.MatchString(d.Using) {
		return qi.Validationf(OpAdd, "invalid access method %q", d.Using)
	}
	if d.Where != "" && !safeExpr(d.Where) {
		return qi.Validationf(OpAdd, "invalid where predicate %q", d.Where)
	}
	return nil
}

// ValidateFields validates a table and field list used to identify an
// index by its derived name.
func ValidateFields(table string, fields []Field) error {
	return validateTarget(OpRemove, table, fields)
}

// ValidateRemove validates the target of an index removal by name.
func ValidateRemove(table, name string) error {
	switch {
	case strings.TrimSpace(table) == "":
		return qi.NewValidationError(OpRemove, "requires table")
	case strings.TrimSpace(name) == "":
		return qi.NewValidationError(OpRemove, "requires index name")
	}
	return nil
}

// ValidateShow validates the table whose indexes are listed.
func ValidateShow(table string) error {
	if strings.TrimSpace(table) == "" {
		return qi.NewValidationError(OpShow, "requires table")
	}
	return nil
}

func validateTarget(op, table string, fields []Field) error {
	if strings.TrimSpace(table) == "" {
		return qi.NewValidationError(op, "requires table")
	}
	if len(fields) == 0 {
		return qi.NewValidationError(op, "requires fields")
	}
	for i, f := range fields {
		if err := validateField(op, i+1, f); err != nil {
			return err
		}
	}
	return nil
}

func validateField(op string, pos int, f Field) error {
	if f.forms() != 1 {
		return qi.Validationf(op, "field %d must be exactly one of column, function or expression", pos)
	}
	switch {
	case f.Column != "":
		if strings.TrimSpace(f.Column) == "" || strings.ContainsRune(f.Column, 0) {
			return qi.Validationf(op, "invalid column %q for field %d", f.Column, pos)
		}
	case f.Expr != "":
		if !safeExpr(f.Expr) {
			return qi.Validationf(op, "invalid expression %q for field %d", f.Expr, pos)
		}
	default:
		if !funcRe.MatchString(f.Func) {
			return qi.Validationf(op, "invalid function %q for field %d", f.Func, pos)
		}
		if len(f.Args) == 0 {
			return qi.Validationf(op, "function %q for field %d requires a column", f.Func, pos)
		}
		for _, a := range f.Args {
			if strings.TrimSpace(a) == "" || strings.ContainsRune(a, 0) {
				return qi.Validationf(op, "invalid column %q for field %d", a, pos)
			}
		}
	}
	return nil
}

// safeExpr rejects expressions that could terminate the statement or
// comment out the rest of it.
func safeExpr(x string) bool {
	if strings.TrimSpace(x) == "" {
		return false
	}
	return !strings.ContainsAny(x, ";\x00") && !strings.Contains(x, "--") && !strings.Contains(x, "/*")
}
