package index

// Field is one part of an index. Exactly one of Column, Func or Expr is set.
type Field struct {
	// Column is a plain column name. It is always quoted when rendered.
	Column string `yaml:"column,omitempty" json:"column,omitempty"`
	// Func and Args describe a function applied over columns, e.g. lower("username").
	// Args are column names and are quoted when rendered.
	Func string   `yaml:"func,omitempty" json:"func,omitempty"`
	Args []string `yaml:"args,omitempty" json:"args,omitempty"`
	// Expr is an expression rendered verbatim.
	Expr string `yaml:"expr,omitempty" json:"expr,omitempty"`
	// Desc orders the index part descending.
	Desc bool `yaml:"desc,omitempty" json:"desc,omitempty"`
}

// Column returns a plain column field.
func Column(name string) Field {
	return Field{Column: name}
}

// Fn returns a field applying the named function to the given columns.
func Fn(name string, columns ...string) Field {
	return Field{Func: name, Args: columns}
}

// Expr returns a field rendered verbatim.
func Expr(x string) Field {
	return Field{Expr: x}
}

// Descending returns a copy of the field ordered descending.
func (f Field) Descending() Field {
	f.Desc = true
	return f
}

// IsColumn reports whether the field is a plain column.
func (f Field) IsColumn() bool {
	return f.Column != "" && f.Func == "" && f.Expr == ""
}

func (f Field) forms() int {
	n := 0
	if f.Column != "" {
		n++
	}
	if f.Func != "" || len(f.Args) > 0 {
		n++
	}
	if f.Expr != "" {
		n++
	}
	return n
}

// Descriptor describes an index to create.
type Descriptor struct {
	Table  string  `yaml:"table" json:"table"`
	Fields []Field `yaml:"fields" json:"fields"`
	// Name is optional. When empty it is derived from Table and Fields.
	Name   string `yaml:"name,omitempty" json:"name,omitempty"`
	Unique bool   `yaml:"unique,omitempty" json:"unique,omitempty"`
	// Using is the access method (e.g., "btree", "gin").
	Using string `yaml:"using,omitempty" json:"using,omitempty"`
	// Where is a partial index predicate, rendered verbatim.
	Where string `yaml:"where,omitempty" json:"where,omitempty"`
	// Concurrently builds the index without locking writes (PostgreSQL).
	Concurrently bool `yaml:"concurrently,omitempty" json:"concurrently,omitempty"`
}

// Builder for indexes.
//
//	index.Fields("first", "last").On("users").Unique().Descriptor()
//	index.Parts(index.Fn("lower", "username")).On("Group").StorageKey("group_username_lower").Descriptor()
type Builder struct {
	desc Descriptor
}

// Fields creates an index over the given columns.
func Fields(columns ...string) *Builder {
	fields := make([]Field, len(columns))
	for i, c := range columns {
		fields[i] = Column(c)
	}
	return &Builder{desc: Descriptor{Fields: fields}}
}

// Parts creates an index over the given fields.
func Parts(fields ...Field) *Builder {
	return &Builder{desc: Descriptor{Fields: fields}}
}

// On sets the indexed table.
func (b *Builder) On(table string) *Builder {
	b.desc.Table = table
	return b
}

// Unique sets the index to be unique.
func (b *Builder) Unique() *Builder {
	b.desc.Unique = true
	return b
}

// StorageKey sets the index name.
func (b *Builder) StorageKey(name string) *Builder {
	b.desc.Name = name
	return b
}

// Using sets the index access method.
func (b *Builder) Using(method string) *Builder {
	b.desc.Using = method
	return b
}

// Where sets the partial index predicate.
func (b *Builder) Where(predicate string) *Builder {
	b.desc.Where = predicate
	return b
}

// Concurrently builds the index concurrently.
func (b *Builder) Concurrently() *Builder {
	b.desc.Concurrently = true
	return b
}

// Descriptor returns the index descriptor.
func (b *Builder) Descriptor() Descriptor {
	d := b.desc
	d.Fields = append([]Field(nil), b.desc.Fields...)
	return d
}

// Metadata describes an index currently on a table, as read from the catalog.
type Metadata struct {
	Name    string   `yaml:"name" json:"name"`
	Unique  bool     `yaml:"unique" json:"unique"`
	Primary bool     `yaml:"primary" json:"primary"`
	Fields  []string `yaml:"fields" json:"fields"`
}

// Names returns the names of the given indexes, in order.
func Names(md []*Metadata) []string {
	names := make([]string, len(md))
	for i, m := range md {
		names[i] = m.Name
	}
	return names
}
