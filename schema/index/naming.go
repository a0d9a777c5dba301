package index

import (
	"crypto/md5"
	"encoding/hex"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
	runRe     = regexp.MustCompile(`_{2,}`)
	lower     = cases.Lower(language.Und)
)

// DeriveName returns the default name of an index over the given table and
// fields. It depends only on its arguments, so repeated calls agree.
// Letters and digits of any script are kept. A name left empty after
// sanitizing becomes "idx_" followed by the md5 of the raw parts.
//
//	DeriveName("Group", []Field{Column("username")})           // group_username
//	DeriveName("Group", []Field{Fn("lower", "username")})      // group_lower_username
//	DeriveName("users", []Field{Column("isAdmin"), Column("from")}) // users_is_admin_from
func DeriveName(table string, fields []Field) string {
	parts := []string{inflect.Underscore(table)}
	for _, f := range fields {
		switch {
		case f.Column != "":
			parts = append(parts, inflect.Underscore(f.Column))
		case f.Expr != "":
			parts = append(parts, f.Expr)
		default:
			parts = append(parts, f.Func)
			for _, a := range f.Args {
				parts = append(parts, inflect.Underscore(a))
			}
		}
	}
	raw := strings.Join(parts, "_")
	if name := sanitize(raw); name != "" {
		return name
	}
	return "idx_" + md5Hex(raw)
}

// Name returns the explicit index name of d, or its derived name truncated
// to max bytes. A max of zero disables truncation.
func Name(d Descriptor, max int) string {
	if d.Name != "" {
		return d.Name
	}
	return Truncate(DeriveName(d.Table, d.Fields), max)
}

// Truncate shortens name to max bytes, replacing its tail with the md5 of
// the full name so that distinct long names stay distinct. The cut never
// splits a multi-byte character.
func Truncate(name string, max int) string {
	if max <= 0 || len(name) <= max {
		return name
	}
	h := md5Hex(name)
	keep := max - len(h) - 1
	if keep <= 0 {
		return h[:max]
	}
	for keep > 0 && !utf8.RuneStart(name[keep]) {
		keep--
	}
	return strings.TrimRight(name[:keep], "_") + "_" + h
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func sanitize(s string) string {
	s = nonWordRe.ReplaceAllString(lower.String(s), "_")
	s = runRe.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
