package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	atlasschema "ariga.io/atlas/sql/schema"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/qi/dialect/sql/schema"
	"github.com/syssam/qi/schema/index"
)

func newIndexCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "index",
		Aliases: []string{"idx"},
		Short:   "Add, remove and list indexes",
	}
	cmd.AddCommand(
		newIndexAddCmd(g),
		newIndexRemoveCmd(g),
		newIndexShowCmd(g),
	)
	return cmd
}

type addFlags struct {
	file         string
	name         string
	unique       bool
	using        string
	where        string
	concurrently bool
	exprs        []string
}

func newIndexAddCmd(g *globals) *cobra.Command {
	f := &addFlags{}
	cmd := &cobra.Command{
		Use:   "add <table> [column...]",
		Short: "Add an index to a table",
		Long: `Add an index from a YAML descriptor or from arguments.

Columns suffixed with " desc" are ordered descending. Expressions given
with --expr are appended after the columns and rendered verbatim.
The index name is derived from the table and fields unless --name is set.

Examples:
  qictl index add users email --unique
  qictl index add users --expr 'lower(username)' --name users_lower_username
  qictl index add -f users_email.yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := f.descriptor(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, s *session) error {
				p, err := s.qi.PrepareAddIndex(ctx, desc)
				if err != nil {
					return err
				}
				return g.exec(ctx, cmd, s, p)
			})
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML descriptor file")
	cmd.Flags().StringVar(&f.name, "name", "", "index name")
	cmd.Flags().BoolVar(&f.unique, "unique", false, "create a unique index")
	cmd.Flags().StringVar(&f.using, "using", "", "index access method (e.g., btree, gin)")
	cmd.Flags().StringVar(&f.where, "where", "", "partial index predicate")
	cmd.Flags().BoolVar(&f.concurrently, "concurrently", false, "build without locking writes")
	cmd.Flags().StringArrayVar(&f.exprs, "expr", nil, "expression part (repeatable)")
	return cmd
}

func (f *addFlags) descriptor(stdin io.Reader, args []string) (index.Descriptor, error) {
	var desc index.Descriptor
	if f.file != "" {
		if err := decodeFile(f.file, stdin, &desc); err != nil {
			return desc, err
		}
	}
	if len(args) > 0 {
		desc.Table = args[0]
		for _, c := range args[1:] {
			desc.Fields = append(desc.Fields, columnField(c))
		}
	}
	for _, x := range f.exprs {
		desc.Fields = append(desc.Fields, index.Expr(x))
	}
	if f.name != "" {
		desc.Name = f.name
	}
	desc.Unique = desc.Unique || f.unique
	desc.Concurrently = desc.Concurrently || f.concurrently
	if f.using != "" {
		desc.Using = f.using
	}
	if f.where != "" {
		desc.Where = f.where
	}
	return desc, nil
}

func columnField(s string) index.Field {
	s = strings.TrimSpace(s)
	if c, dir, ok := strings.Cut(s, " "); ok && strings.EqualFold(strings.TrimSpace(dir), "desc") {
		return index.Column(c).Descending()
	}
	return index.Column(s)
}

func newIndexRemoveCmd(g *globals) *cobra.Command {
	var fields []string
	cmd := &cobra.Command{
		Use:   "remove <table> [name]",
		Short: "Remove an index from a table",
		Long: `Remove an index by name, or by the columns it was created over.

Examples:
  qictl index remove users users_email
  qictl index remove users --fields first,last
`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 2 && len(fields) > 0 {
				return fmt.Errorf("remove takes an index name or --fields, not both")
			}
			table := args[0]
			return g.run(cmd, func(ctx context.Context, s *session) error {
				var (
					p   *schema.Plan
					err error
				)
				if len(args) == 2 {
					p, err = s.qi.PrepareRemoveIndex(ctx, table, args[1])
				} else {
					parts := make([]index.Field, len(fields))
					for i, c := range fields {
						parts[i] = index.Column(c)
					}
					p, err = s.qi.PrepareRemoveIndexByFields(ctx, table, parts...)
				}
				if err != nil {
					return err
				}
				return g.exec(ctx, cmd, s, p)
			})
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "columns of the index, when removing by fields")
	return cmd
}

func newIndexShowCmd(g *globals) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "show <table>...",
		Short: "List the indexes of one or more tables",
		Long: `List the indexes currently defined on each table as YAML.
Tables are read concurrently. With --format atlas, each table is printed
as the Atlas table built from its indexes.

Examples:
  qictl index show users
  qictl index show users groups
  qictl index show users --format atlas
`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "yaml" && format != "atlas" {
				return fmt.Errorf("invalid format %q: expected yaml or atlas", format)
			}
			return g.run(cmd, func(ctx context.Context, s *session) error {
				all := make(map[string][]*index.Metadata, len(args))
				if len(args) == 1 {
					md, err := s.qi.ShowIndex(ctx, args[0])
					if err != nil {
						return err
					}
					all[args[0]] = md
				} else {
					var err error
					if all, err = s.qi.ShowIndexes(ctx, args...); err != nil {
						return err
					}
				}
				var out any
				switch {
				case format == "atlas":
					tables := make([]atlasTable, len(args))
					for i, name := range args {
						tables[i] = newAtlasTable(schema.AtlasTable(name, all[name]))
					}
					out = tables
				case len(args) == 1:
					out = all[args[0]]
				default:
					out = all
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				if err := enc.Encode(out); err != nil {
					return err
				}
				return enc.Close()
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or atlas")
	return cmd
}

// atlasTable is the printable form of an Atlas table. Atlas tables and
// indexes reference each other, so they cannot be encoded directly.
type atlasTable struct {
	Name       string       `yaml:"name"`
	Columns    []string     `yaml:"columns"`
	PrimaryKey *atlasIndex  `yaml:"primaryKey,omitempty"`
	Indexes    []atlasIndex `yaml:"indexes"`
}

type atlasIndex struct {
	Name   string      `yaml:"name"`
	Unique bool        `yaml:"unique,omitempty"`
	Parts  []atlasPart `yaml:"parts"`
}

type atlasPart struct {
	Column string `yaml:"column,omitempty"`
	Expr   string `yaml:"expr,omitempty"`
}

func newAtlasTable(t *atlasschema.Table) atlasTable {
	out := atlasTable{Name: t.Name, Columns: []string{}, Indexes: []atlasIndex{}}
	for _, c := range t.Columns {
		out.Columns = append(out.Columns, c.Name)
	}
	if t.PrimaryKey != nil {
		pk := newAtlasIndex(t.PrimaryKey)
		out.PrimaryKey = &pk
	}
	for _, idx := range t.Indexes {
		out.Indexes = append(out.Indexes, newAtlasIndex(idx))
	}
	return out
}

func newAtlasIndex(idx *atlasschema.Index) atlasIndex {
	out := atlasIndex{Name: idx.Name, Unique: idx.Unique}
	for _, p := range idx.Parts {
		switch {
		case p.C != nil:
			out.Parts = append(out.Parts, atlasPart{Column: p.C.Name})
		case p.X != nil:
			if x, ok := p.X.(*atlasschema.RawExpr); ok {
				out.Parts = append(out.Parts, atlasPart{Expr: x.X})
			}
		}
	}
	return out
}
