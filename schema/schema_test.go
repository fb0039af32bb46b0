package schema_test

import (
	"testing"

	"github.com/chaisql/sats/errors"
	"github.com/chaisql/sats/internal/testutil"
	"github.com/chaisql/sats/schema"
	"github.com/chaisql/sats/types"
	cerrors "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

// newSchema returns a schema with a recursive list, a table and a reducer.
func newSchema(t *testing.T) *schema.Schema {
	t.Helper()

	ts := testutil.ListTypespace()
	user := ts.Add(types.Product(
		types.Field("id", types.IdentityType()),
		types.Field("name", types.StringType),
		types.Field("scores", types.Ref(0)),
	))
	send := ts.Add(types.Product(
		types.Field("text", types.StringType),
		types.Field("to", types.OptionType(types.IdentityType())),
	))

	s, err := schema.New(ts,
		schema.Root{Name: "user", Kind: schema.Table, Ref: user},
		schema.Root{Name: "send_message", Kind: schema.Reducer, Ref: send},
	)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	ts := types.NewTypespace(testutil.Point, types.BoolType)

	tests := []struct {
		name  string
		ts    *types.Typespace
		roots []schema.Root
		check func(error) bool
	}{
		{"duplicate root", ts, []schema.Root{{Name: "a", Ref: 0}, {Name: "a", Ref: 0}}, errors.IsSchemaError},
		{"empty name", ts, []schema.Root{{Ref: 0}}, errors.IsSchemaError},
		{"invalid kind", ts, []schema.Root{{Name: "a", Kind: 7, Ref: 0}}, errors.IsSchemaError},
		{"dangling ref", ts, []schema.Root{{Name: "a", Ref: 5}}, errors.IsUnresolvedRef},
		{"not a product", ts, []schema.Root{{Name: "a", Ref: 1}}, errors.IsSchemaError},
		{"invalid typespace", types.NewTypespace(types.Ref(3)), nil, errors.IsUnresolvedRef},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := schema.New(test.ts, test.roots...)
			require.Truef(t, test.check(err), "%v", err)
		})
	}
}

func TestLookup(t *testing.T) {
	s := newSchema(t)

	r, ok := s.Lookup("user")
	require.True(t, ok)
	require.Equal(t, schema.Table, r.Kind)

	typ, err := s.Type("send_message")
	require.NoError(t, err)
	require.Equal(t, types.Ref(3), typ)

	_, err = s.Type("nope")
	require.True(t, cerrors.Is(err, schema.ErrRootNotFound))
}

func TestMarshal(t *testing.T) {
	s := newSchema(t)

	t.Run("binary", func(t *testing.T) {
		b, err := s.MarshalBinary()
		require.NoError(t, err)

		var got schema.Schema
		require.NoError(t, got.UnmarshalBinary(b))
		require.True(t, s.Typespace.Equal(got.Typespace))
		require.Equal(t, s.Roots, got.Roots)
	})

	t.Run("json", func(t *testing.T) {
		b, err := s.MarshalJSON()
		require.NoError(t, err)

		var got schema.Schema
		require.NoError(t, got.UnmarshalJSON(b))
		require.True(t, s.Typespace.Equal(got.Typespace))
		require.Equal(t, s.Roots, got.Roots)
	})

	t.Run("json layout", func(t *testing.T) {
		s, err := schema.New(types.NewTypespace(types.Product(types.Field("x", types.I32Type))),
			schema.Root{Name: "p", Kind: schema.Table, Ref: 0})
		require.NoError(t, err)

		b, err := s.MarshalJSON()
		require.NoError(t, err)
		require.JSONEq(t, `{
			"typespace": {"types": [{"product": {"elements": [{"name": {"some": "x"}, "algebraic_type": "i32"}]}}]},
			"roots": [{"name": "p", "kind": "table", "ref": 0}]
		}`, string(b))
	})

	t.Run("invalid", func(t *testing.T) {
		var got schema.Schema
		err := got.UnmarshalJSON([]byte(`{"typespace": {"types": ["bool"]}, "roots": [{"name": "p", "kind": "table", "ref": 0}]}`))
		require.True(t, errors.IsSchemaError(err))

		err = got.UnmarshalBinary([]byte{1, 2, 3})
		require.True(t, errors.IsDecodeError(err))
	})
}

func TestHash(t *testing.T) {
	h1, err := newSchema(t).Hash()
	require.NoError(t, err)
	h2, err := newSchema(t).Hash()
	require.NoError(t, err)
	require.Equal(t, h1, h2)

	other, err := schema.New(types.NewTypespace(testutil.Point), schema.Root{Name: "p", Ref: 0})
	require.NoError(t, err)
	h3, err := other.Hash()
	require.NoError(t, err)
	require.NotEqual(t, h1, h3)
}

func TestCompatible(t *testing.T) {
	server := newSchema(t)

	t.Run("same", func(t *testing.T) {
		require.NoError(t, schema.Compatible(server, server))
	})

	t.Run("subset with a different layout", func(t *testing.T) {
		// same user table, with the list defined after the row type
		var ts types.Typespace
		row := ts.Reserve()
		list := ts.Reserve()
		cell := ts.Reserve()
		require.NoError(t, ts.Define(row, types.Product(
			types.Field("id", types.IdentityType()),
			types.Field("name", types.StringType),
			types.Field("scores", list),
		)))
		require.NoError(t, ts.Define(list, types.Sum(types.Variant("nil", types.UnitType()), types.Variant("cons", cell))))
		require.NoError(t, ts.Define(cell, types.Product(types.Field("head", types.I32Type), types.Field("tail", list))))

		client, err := schema.New(&ts, schema.Root{Name: "user", Kind: schema.Table, Ref: row})
		require.NoError(t, err)
		require.NoError(t, schema.Compatible(client, server))

		// the server has a root the client does not know about
		require.Error(t, schema.Compatible(server, client))
	})

	t.Run("kind mismatch", func(t *testing.T) {
		ts := server.Typespace.Clone()
		client, err := schema.New(ts, schema.Root{Name: "user", Kind: schema.Reducer, Ref: 2})
		require.NoError(t, err)
		require.True(t, cerrors.Is(schema.Compatible(client, server), types.ErrIncompatible))
	})

	t.Run("type mismatch", func(t *testing.T) {
		client, err := schema.New(types.NewTypespace(types.Product(types.Field("text", types.BytesType), types.Field("to", types.OptionType(types.IdentityType())))),
			schema.Root{Name: "send_message", Kind: schema.Reducer, Ref: 0})
		require.NoError(t, err)
		err = schema.Compatible(client, server)
		require.True(t, cerrors.Is(err, types.ErrIncompatible))
		require.Contains(t, err.Error(), "send_message")
	})
}
