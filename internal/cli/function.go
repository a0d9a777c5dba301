package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/syssam/qi/schema/function"
)

func newFunctionCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "function",
		Aliases: []string{"fn"},
		Short:   "Create, drop and rename stored routines",
	}
	cmd.AddCommand(
		newFunctionCreateCmd(g),
		newFunctionDropCmd(g),
		newFunctionRenameCmd(g),
	)
	return cmd
}

type createFlags struct {
	file      string
	returns   string
	language  string
	body      string
	params    []string
	options   []string
	noReplace bool
}

func newFunctionCreateCmd(g *globals) *cobra.Command {
	f := &createFlags{}
	cmd := &cobra.Command{
		Use:   "create [name]",
		Short: "Create or replace a stored routine",
		Long: `Create a stored routine from a YAML descriptor or from flags.

Parameters are given as "[IN|OUT|INOUT ]name:type", or just "type" for an
unnamed parameter. Options are key=value pairs; true and false are booleans.
Existing routines are replaced unless --no-replace is set.

Examples:
  # From a descriptor file ("-" reads stdin)
  qictl function create -f slugify.yaml

  # From flags
  qictl function create add --param a:integer --param b:integer \
      --returns integer --language sql --body 'SELECT a + b' --option immutable=true
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := f.descriptor(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			return g.run(cmd, func(ctx context.Context, s *session) error {
				p, err := s.qi.PrepareCreateFunction(ctx, desc)
				if err != nil {
					return err
				}
				return g.exec(ctx, cmd, s, p)
			})
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML descriptor file")
	cmd.Flags().StringVar(&f.returns, "returns", "", "return type")
	cmd.Flags().StringVar(&f.language, "language", "", "routine language (e.g., sql, plpgsql)")
	cmd.Flags().StringVar(&f.body, "body", "", "routine body")
	cmd.Flags().StringArrayVar(&f.params, "param", nil, "parameter as [DIRECTION ]name:type (repeatable)")
	cmd.Flags().StringArrayVar(&f.options, "option", nil, "routine option as key=value (repeatable)")
	cmd.Flags().BoolVar(&f.noReplace, "no-replace", false, "fail if the routine already exists")
	return cmd
}

func (f *createFlags) descriptor(stdin io.Reader, args []string) (function.Descriptor, error) {
	var desc function.Descriptor
	if f.file != "" {
		if err := decodeFile(f.file, stdin, &desc); err != nil {
			return desc, err
		}
	} else {
		desc.Parameters = []function.Param{}
	}
	if len(args) > 0 {
		desc.Name = args[0]
	}
	if f.returns != "" {
		desc.ReturnType = f.returns
	}
	if f.language != "" {
		desc.Language = f.language
	}
	if f.body != "" {
		desc.Body = f.body
	}
	for _, s := range f.params {
		desc.Parameters = append(desc.Parameters, parseParam(s))
	}
	for _, s := range f.options {
		k, v, ok := strings.Cut(s, "=")
		if !ok || k == "" {
			return desc, fmt.Errorf("invalid option %q: expected key=value", s)
		}
		if desc.Options == nil {
			desc.Options = make(map[string]any)
		}
		desc.Options[k] = optionValue(v)
	}
	if f.noReplace {
		if desc.Options == nil {
			desc.Options = make(map[string]any)
		}
		desc.Options[function.OptionReplace] = false
	}
	return desc, nil
}

type dropFlags struct {
	file string
}

func newFunctionDropCmd(g *globals) *cobra.Command {
	f := &dropFlags{}
	cmd := &cobra.Command{
		Use:   "drop <name> [type...]",
		Short: "Drop a stored routine",
		Long: `Drop the stored routine with the given name and parameter types.

Examples:
  qictl function drop add integer integer
  qictl function drop -f add.yaml
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var desc function.DropDescriptor
			switch {
			case f.file != "":
				if err := decodeFile(f.file, cmd.InOrStdin(), &desc); err != nil {
					return err
				}
			case len(args) == 0:
				return fmt.Errorf("drop requires a routine name or --file")
			default:
				desc = function.DropDescriptor{Name: args[0], Parameters: paramTypes(args[1:])}
			}
			return g.run(cmd, func(ctx context.Context, s *session) error {
				p, err := s.qi.PrepareDropFunction(ctx, desc)
				if err != nil {
					return err
				}
				return g.exec(ctx, cmd, s, p)
			})
		},
	}
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "YAML descriptor file")
	return cmd
}

func newFunctionRenameCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new> [type...]",
		Short: "Rename a stored routine",
		Long: `Rename the stored routine identified by its name and parameter types.

Examples:
  qictl function rename add sum integer integer
`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc := function.RenameDescriptor{
				OldName:    args[0],
				NewName:    args[1],
				Parameters: paramTypes(args[2:]),
			}
			return g.run(cmd, func(ctx context.Context, s *session) error {
				p, err := s.qi.PrepareRenameFunction(ctx, desc)
				if err != nil {
					return err
				}
				return g.exec(ctx, cmd, s, p)
			})
		},
	}
}

// parseParam parses "[DIRECTION ]name:type" or "type".
func parseParam(s string) function.Param {
	var p function.Param
	s = strings.TrimSpace(s)
	if dir, rest, ok := strings.Cut(s, " "); ok {
		switch d := strings.ToUpper(dir); d {
		case function.In, function.Out, function.InOut:
			p.Direction = d
			s = strings.TrimSpace(rest)
		}
	}
	if name, typ, ok := strings.Cut(s, ":"); ok {
		p.Name, p.Type = strings.TrimSpace(name), strings.TrimSpace(typ)
	} else {
		p.Type = s
	}
	return p
}

// paramTypes returns unnamed parameters of the given types. The slice is
// never nil, so no types means a routine without parameters.
func paramTypes(types []string) []function.Param {
	params := make([]function.Param, len(types))
	for i, t := range types {
		params[i] = function.T(t)
	}
	return params
}

func optionValue(v string) any {
	switch strings.ToLower(v) {
	case "true":
		return true
	case "false":
		return false
	}
	return v
}

// decodeFile decodes a YAML file into v. A path of "-" reads stdin.
func decodeFile(path string, stdin io.Reader, v any) error {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open descriptor: %w", err)
		}
		defer f.Close()
		r = f
	}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}
