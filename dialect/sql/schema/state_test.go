package schema

import (
	"context"
	"testing"

	"ariga.io/atlas/sql/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/qi/dialect"
	"github.com/syssam/qi/schema/index"
)

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "executing", StateExecuting.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.True(t, StateSucceeded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateExecuting.Terminal())
}

func TestOperationTransitions(t *testing.T) {
	var seen []State
	o := newOperation("addIndex", func(_ context.Context, op string, from, to State) {
		assert.Equal(t, "addIndex", op)
		seen = append(seen, to)
	})
	ctx := context.Background()

	assert.False(t, o.to(ctx, StateExecuting), "idle must validate first")
	assert.True(t, o.to(ctx, StateValidating))
	assert.True(t, o.to(ctx, StateGenerating))
	assert.True(t, o.to(ctx, StateExecuting))
	assert.True(t, o.to(ctx, StateFailed))
	for _, s := range []State{StateIdle, StateValidating, StateSucceeded, StateFailed} {
		assert.False(t, o.to(ctx, s), "terminal state left for %s", s)
	}
	assert.Equal(t, StateFailed, o.state)
	assert.Equal(t, []State{StateValidating, StateGenerating, StateExecuting, StateFailed}, seen)
}

func TestUnquote(t *testing.T) {
	assert.Equal(t, "username", unquote("username"))
	assert.Equal(t, "userName", unquote(`"userName"`))
	assert.Equal(t, `a"b`, unquote(`"a""b"`))
	assert.Equal(t, `"a" || "b"`, unquote(`"a" || "b"`))
	assert.Equal(t, "lower(username)", unquote("lower(username)"))
	assert.Equal(t, `"`, unquote(`"`))
}

func TestAtlasTable(t *testing.T) {
	md := []*index.Metadata{
		{Name: "users_pkey", Unique: true, Primary: true, Fields: []string{"id"}},
		{Name: "users_email", Unique: true, Fields: []string{"email"}},
		{Name: "users_lower_name", Fields: []string{"lower(name)"}},
		{Name: "users_expr", Fields: []string{dialect.ExpressionColumn, "id"}},
	}
	tbl := AtlasTable("users", md)
	assert.Equal(t, "users", tbl.Name)

	require.NotNil(t, tbl.PrimaryKey)
	assert.Equal(t, "users_pkey", tbl.PrimaryKey.Name)
	require.Len(t, tbl.PrimaryKey.Parts, 1)
	assert.Equal(t, "id", tbl.PrimaryKey.Parts[0].C.Name)

	require.Len(t, tbl.Indexes, 3)
	assert.True(t, tbl.Indexes[0].Unique)
	assert.Same(t, tbl, tbl.Indexes[0].Table)
	assert.Equal(t, "email", tbl.Indexes[0].Parts[0].C.Name)

	x, ok := tbl.Indexes[1].Parts[0].X.(*schema.RawExpr)
	require.True(t, ok)
	assert.Equal(t, "lower(name)", x.X)
	assert.Nil(t, tbl.Indexes[1].Parts[0].C)

	parts := tbl.Indexes[2].Parts
	require.Len(t, parts, 2)
	assert.Equal(t, 1, parts[1].SeqNo)
	// Columns are shared between indexes.
	assert.Same(t, tbl.PrimaryKey.Parts[0].C, parts[1].C)

	var names []string
	for _, c := range tbl.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"id", "email"}, names)
}
