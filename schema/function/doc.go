// Package function describes stored routines for the query interface and
// validates those descriptions before any SQL is generated.
//
// A routine is created from a Descriptor:
//
//	function.Descriptor{
//	    Name:       "create_job",
//	    Parameters: []function.Param{function.P("test", "varchar")},
//	    ReturnType: "varchar",
//	    Language:   "plpgsql",
//	    Body:       "return test;",
//	}
//
// and identified for drop and rename by its name and parameter types, since
// dialects such as PostgreSQL overload routines by signature:
//
//	function.DropDescriptor{Name: "create_job", Parameters: []function.Param{function.T("varchar")}}
//
// A nil Parameters slice is rejected with "function parameters array required";
// use an empty slice for a routine without parameters.
package function
