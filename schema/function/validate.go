package function

import (
	"regexp"
	"sort"
	"strings"

	"github.com/syssam/qi"
)

// Operation names reported in errors.
const (
	OpCreate = "createFunction"
	OpDrop   = "dropFunction"
	OpRename = "renameFunction"
)

var (
	// typeRe limits the characters of type names such as "varchar",
	// "character varying(255)", "numeric(10,2)", "integer[]", "SETOF record"
	// or "TABLE(id int)". validType checks their structure.
	typeRe     = regexp.MustCompile(`^[A-Za-z_"][A-Za-z0-9_ .,()\[\]"%]*$`)
	languageRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	optionRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	wordRe     = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
)

// ValidateCreate validates a routine descriptor. The first failing rule is
// reported, in the order: name, parameters array, parameter types,
// returnType, language, body, then syntax checks.
func ValidateCreate(d Descriptor) error {
	if blank(d.Name) {
		return qi.NewValidationError(OpCreate, "requires functionName")
	}
	if err := validateParams(OpCreate, d.Parameters); err != nil {
		return err
	}
	switch {
	case blank(d.ReturnType):
		return qi.NewValidationError(OpCreate, "requires returnType")
	case blank(d.Language):
		return qi.NewValidationError(OpCreate, "requires language")
	case blank(d.Body):
		return qi.NewValidationError(OpCreate, "requires body")
	}
	if err := validateTypes(OpCreate, d.Parameters); err != nil {
		return err
	}
	if !validType(d.ReturnType) {
		return qi.Validationf(OpCreate, "invalid returnType %q", d.ReturnType)
	}
	if !languageRe.MatchString(d.Language) {
		return qi.Validationf(OpCreate, "invalid language %q", d.Language)
	}
	return ValidateOptions(OpCreate, d.Options)
}

// ValidateDrop validates a drop descriptor.
func ValidateDrop(d DropDescriptor) error {
	if blank(d.Name) {
		return qi.NewValidationError(OpDrop, "requires functionName")
	}
	if err := validateParams(OpDrop, d.Parameters); err != nil {
		return err
	}
	return validateTypes(OpDrop, d.Parameters)
}

// ValidateRename validates a rename descriptor.
func ValidateRename(d RenameDescriptor) error {
	if err := validateParams(OpRename, d.Parameters); err != nil {
		return err
	}
	switch {
	case blank(d.OldName):
		return qi.NewValidationError(OpRename, "requires old function name")
	case blank(d.NewName):
		return qi.NewValidationError(OpRename, "requires new function name")
	}
	return validateTypes(OpRename, d.Parameters)
}

// ValidateOptions checks that every option can be rendered as a routine
// characteristic without quoting.
func ValidateOptions(op string, opts map[string]any) error {
	keys := make([]string, 0, len(opts))
	for k := range opts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !optionRe.MatchString(k) {
			return qi.Validationf(op, "invalid option %q", k)
		}
		switch v := opts[k].(type) {
		case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		case string:
			if !wordRe.MatchString(v) {
				return qi.Validationf(op, "invalid value for option %q: %q", k, v)
			}
		case nil:
			return qi.Validationf(op, "invalid value for option %q: nil", k)
		default:
			return qi.Validationf(op, "invalid value for option %q: unsupported type %T", k, v)
		}
	}
	if v, ok := opts[OptionReplace]; ok {
		if _, ok := v.(bool); !ok {
			return qi.Validationf(op, "option %q must be a bool", OptionReplace)
		}
	}
	return nil
}

// validateParams checks presence of the parameters array and of every
// parameter type.
func validateParams(op string, params []Param) error {
	if params == nil {
		return qi.NewValidationError(op, "function parameters array required")
	}
	for i, p := range params {
		if blank(p.Type) {
			return qi.Validationf(op, "parameter missing type at position %d", i+1)
		}
	}
	return nil
}

func validateTypes(op string, params []Param) error {
	for i, p := range params {
		if !validType(p.Type) {
			return qi.Validationf(op, "invalid type %q for parameter %d", p.Type, i+1)
		}
		switch strings.ToUpper(p.Direction) {
		case "", In, Out, InOut:
		default:
			return qi.Validationf(op, "invalid direction %q for parameter %d", p.Direction, i+1)
		}
	}
	return nil
}

// validType reports whether s is a single type name. Commas may only
// appear inside parentheses, parentheses must balance, and double quotes
// must enclose complete identifiers.
func validType(s string) bool {
	if !typeRe.MatchString(s) {
		return false
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth--; depth < 0 {
				return false
			}
		case ',':
			if depth == 0 {
				return false
			}
		case '"':
			// Skip to the closing quote; "" is an escaped quote.
			for i++; ; i++ {
				if i >= len(s) {
					return false
				}
				if s[i] == '"' {
					if i+1 < len(s) && s[i+1] == '"' {
						i++
						continue
					}
					break
				}
			}
		}
	}
	return depth == 0
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
