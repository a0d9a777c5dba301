package cli

// Test Plan for qictl commands:
// - version prints build information
// - index add/show/remove round-trips against a SQLite database file
// - index show --format atlas prints the Atlas table built from the indexes
// - --dry-run prints statements without executing them
// - function commands reject SQLite with an unsupported error (exit code 2)
// - function create --dry-run renders PostgreSQL statements without connecting
// - descriptors are read from YAML files and stdin
// - parameter and option flags parse as documented

import (
	"bytes"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/syssam/qi/schema/function"
	"github.com/syssam/qi/schema/index"
)

// isolate keeps stray .qictl.yaml files and QICTL_* variables out of tests.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, "QICTL_") {
			t.Setenv(k, "")
			require.NoError(t, os.Unsetenv(k))
		}
	}
	return dir
}

// setupSQLite creates a database file with a users table.
func setupSQLite(t *testing.T) string {
	t.Helper()
	path := filepath.Join(isolate(t), "test.db")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT, first TEXT, last TEXT, deleted_at TEXT)`)
	require.NoError(t, err)
	return path
}

// run executes qictl with the given arguments and returns stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	err := cmd.Execute()
	return out.String(), err
}

func sqliteArgs(path string, args ...string) []string {
	return append([]string{"--driver", "sqlite", "--dsn", path}, args...)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "qictl dev")
	assert.Contains(t, out, "Git commit: none")
}

func TestIndexLifecycle(t *testing.T) {
	path := setupSQLite(t)

	out, err := run(t, "", sqliteArgs(path, "index", "add", "users", "email", "--unique")...)
	require.NoError(t, err)
	assert.Equal(t, "addIndex users_email: ok\n", out)

	out, err = run(t, "", sqliteArgs(path, "index", "add", "users", "last desc", "--where", "deleted_at IS NULL")...)
	require.NoError(t, err)
	assert.Equal(t, "addIndex users_last: ok\n", out)

	out, err = run(t, "", sqliteArgs(path, "index", "show", "users")...)
	require.NoError(t, err)
	var md []*index.Metadata
	require.NoError(t, yaml.Unmarshal([]byte(out), &md))
	byName := make(map[string]*index.Metadata)
	for _, m := range md {
		byName[m.Name] = m
	}
	require.Contains(t, byName, "users_email")
	assert.True(t, byName["users_email"].Unique)
	assert.Equal(t, []string{"email"}, byName["users_email"].Fields)
	require.Contains(t, byName, "users_last")
	assert.False(t, byName["users_last"].Unique)

	out, err = run(t, "", sqliteArgs(path, "index", "remove", "users", "users_email")...)
	require.NoError(t, err)
	assert.Equal(t, "removeIndex users_email: ok\n", out)

	_, err = run(t, "", sqliteArgs(path, "index", "remove", "users", "users_email")...)
	require.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}

func TestIndexRemoveByFields(t *testing.T) {
	path := setupSQLite(t)

	_, err := run(t, "", sqliteArgs(path, "index", "add", "users", "first", "last")...)
	require.NoError(t, err)
	out, err := run(t, "", sqliteArgs(path, "index", "remove", "users", "--fields", "first,last")...)
	require.NoError(t, err)
	assert.Equal(t, "removeIndex users_first_last: ok\n", out)

	_, err = run(t, "", sqliteArgs(path, "index", "remove", "users", "users_first_last", "--fields", "first")...)
	assert.ErrorContains(t, err, "not both")
}

func TestIndexShowMany(t *testing.T) {
	path := setupSQLite(t)
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = run(t, "", sqliteArgs(path, "index", "add", "teams", "name")...)
	require.NoError(t, err)

	out, err := run(t, "", sqliteArgs(path, "index", "show", "users", "teams")...)
	require.NoError(t, err)
	var all map[string][]*index.Metadata
	require.NoError(t, yaml.Unmarshal([]byte(out), &all))
	require.Contains(t, all, "users")
	assert.Empty(t, all["users"])
	require.Len(t, all["teams"], 1)
	assert.Equal(t, "teams_name", all["teams"][0].Name)
}

func TestIndexShowAtlas(t *testing.T) {
	path := setupSQLite(t)

	_, err := run(t, "", sqliteArgs(path, "index", "add", "users", "email", "--unique")...)
	require.NoError(t, err)
	_, err = run(t, "", sqliteArgs(path, "index", "add", "users", "--expr", "lower(first)", "--name", "users_lower_first")...)
	require.NoError(t, err)

	out, err := run(t, "", sqliteArgs(path, "index", "show", "users", "--format", "atlas")...)
	require.NoError(t, err)
	var tables []atlasTable
	require.NoError(t, yaml.Unmarshal([]byte(out), &tables))
	require.Len(t, tables, 1)
	assert.Equal(t, "users", tables[0].Name)
	assert.Equal(t, []string{"email"}, tables[0].Columns)

	byName := make(map[string]atlasIndex)
	for _, idx := range tables[0].Indexes {
		byName[idx.Name] = idx
	}
	require.Contains(t, byName, "users_email")
	assert.True(t, byName["users_email"].Unique)
	assert.Equal(t, []atlasPart{{Column: "email"}}, byName["users_email"].Parts)
	require.Contains(t, byName, "users_lower_first")
	assert.False(t, byName["users_lower_first"].Unique)
	assert.Equal(t, []atlasPart{{Expr: "<expression>"}}, byName["users_lower_first"].Parts)

	_, err = run(t, "", sqliteArgs(path, "index", "show", "users", "--format", "json")...)
	assert.ErrorContains(t, err, `invalid format "json"`)
}

func TestIndexDryRun(t *testing.T) {
	path := setupSQLite(t)

	out, err := run(t, "", sqliteArgs(path, "--dry-run", "index", "add", "users", "first", "last")...)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX \"users_first_last\" ON \"users\" (\"first\", \"last\");\n", out)

	out, err = run(t, "", sqliteArgs(path, "index", "show", "users")...)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestIndexFromFile(t *testing.T) {
	path := setupSQLite(t)
	desc := `
table: users
name: users_lower_email
fields:
  - func: lower
    args: [email]
`
	out, err := run(t, desc, sqliteArgs(path, "--dry-run", "index", "add", "-f", "-")...)
	require.NoError(t, err)
	assert.Equal(t, "CREATE INDEX \"users_lower_email\" ON \"users\" (lower(\"email\"));\n", out)

	_, err = run(t, "table: users\nbogus: true\n", sqliteArgs(path, "index", "add", "-f", "-")...)
	assert.ErrorContains(t, err, "failed to decode")
}

func TestIndexValidation(t *testing.T) {
	path := setupSQLite(t)

	_, err := run(t, "", sqliteArgs(path, "index", "add", "users")...)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))

	_, err = run(t, "", sqliteArgs(path, "index", "add", "users", "email", "--using", "gin")...)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestFunctionUnsupportedOnSQLite(t *testing.T) {
	path := setupSQLite(t)

	_, err := run(t, "", sqliteArgs(path, "function", "drop", "add", "integer")...)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestFunctionDryRunPostgres(t *testing.T) {
	isolate(t)
	pg := []string{"--driver", "pgx", "--dsn", "postgres://localhost:1/none", "--dry-run"}

	out, err := run(t, "", append(pg,
		"function", "create", "add",
		"--param", "a:integer", "--param", "b:integer",
		"--returns", "integer", "--language", "sql",
		"--body", "SELECT a + b", "--option", "immutable=true",
	)...)
	require.NoError(t, err)
	assert.Equal(t, `CREATE OR REPLACE FUNCTION "add"("a" integer, "b" integer) RETURNS integer LANGUAGE sql IMMUTABLE AS $func$ SELECT a + b $func$;`+"\n", out)

	out, err = run(t, "", append(pg, "--schema", "app", "function", "rename", "add", "sum", "integer", "integer")...)
	require.NoError(t, err)
	assert.Equal(t, `ALTER FUNCTION "app"."add"(integer, integer) RENAME TO "sum";`+"\n", out)

	out, err = run(t, "", append(pg, "fn", "drop", "add", "integer", "integer")...)
	require.NoError(t, err)
	assert.Equal(t, `DROP FUNCTION "add"(integer, integer);`+"\n", out)

	desc := `
name: now_utc
parameters: []
returnType: timestamp
language: sql
body: SELECT now() AT TIME ZONE 'utc'
`
	out, err = run(t, desc, append(pg, "function", "create", "-f", "-")...)
	require.NoError(t, err)
	assert.Equal(t, `CREATE OR REPLACE FUNCTION "now_utc"() RETURNS timestamp LANGUAGE sql AS $func$ SELECT now() AT TIME ZONE 'utc' $func$;`+"\n", out)

	// Parameters must be given, even if empty.
	_, err = run(t, "name: f\nreturnType: int\nlanguage: sql\nbody: SELECT 1\n", append(pg, "function", "create", "-f", "-")...)
	require.Error(t, err)
	assert.Equal(t, 2, ExitCode(err))
}

func TestConfigErrors(t *testing.T) {
	isolate(t)

	_, err := run(t, "", "--driver", "oracle", "--dsn", "x", "index", "show", "users")
	assert.ErrorContains(t, err, "invalid database driver")

	_, err = run(t, "", "--driver", "sqlite", "index", "show", "users")
	assert.ErrorContains(t, err, "empty database dsn")
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in   string
		want function.Param
	}{
		{in: "a:integer", want: function.P("a", "integer")},
		{in: "integer", want: function.T("integer")},
		{in: "OUT total:numeric(10,2)", want: function.Param{Name: "total", Type: "numeric(10,2)", Direction: function.Out}},
		{in: "inout x:int", want: function.Param{Name: "x", Type: "int", Direction: function.InOut}},
		{in: "timestamp with time zone", want: function.T("timestamp with time zone")},
		{in: " at: timestamptz ", want: function.P("at", "timestamptz")},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, parseParam(tt.in))
		})
	}
}

func TestCreateFlagsDescriptor(t *testing.T) {
	f := &createFlags{
		returns:   "integer",
		language:  "sql",
		body:      "SELECT 1",
		options:   []string{"strict=true", "parallel=safe"},
		noReplace: true,
	}
	desc, err := f.descriptor(strings.NewReader(""), []string{"one"})
	require.NoError(t, err)
	assert.Equal(t, "one", desc.Name)
	assert.NotNil(t, desc.Parameters)
	assert.Empty(t, desc.Parameters)
	assert.Equal(t, map[string]any{"strict": true, "parallel": "safe", "replace": false}, desc.Options)
	assert.False(t, desc.Replace())

	f.options = []string{"novalue"}
	_, err = f.descriptor(strings.NewReader(""), nil)
	assert.ErrorContains(t, err, "expected key=value")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 1, ExitCode(assert.AnError))
}
