// Package index describes database indexes for the query interface.
//
// An index part is either a plain column, a function applied over columns,
// or a verbatim expression. Functional indexes are regular descriptors:
//
//	index.Fields("email").On("users").Unique().Descriptor()
//	index.Parts(index.Fn("lower", "username")).On("Group").StorageKey("group_username_lower").Descriptor()
//	index.Parts(index.Expr("(data->>'kind')")).On("events").Using("btree").Descriptor()
//
// When no name is given, DeriveName computes one from the table and fields
// only, so adding the same index twice yields the same name.
//
// Metadata is the shape returned by catalog introspection.
package index
