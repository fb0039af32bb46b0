package commands_test

import (
	"bytes"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chaisql/sats/cmd/sats/commands"
	"github.com/chaisql/sats/encoding/bsatn"
	"github.com/chaisql/sats/internal/testutil"
	"github.com/chaisql/sats/schema"
	"github.com/chaisql/sats/types"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	app := commands.NewApp()
	app.Reader = strings.NewReader(stdin)
	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = io.Discard

	err := app.Run(append([]string{"sats"}, args...))
	return out.String(), err
}

// writeSchema writes the JSON form of a schema with a point table
// and an optional extra root, and returns its path.
func writeSchema(t *testing.T, name string, extra ...types.AlgebraicType) string {
	t.Helper()

	ts := types.NewTypespace(testutil.Point)
	roots := []schema.Root{{Name: "point", Kind: schema.Table, Ref: 0}}
	for _, e := range extra {
		roots = append(roots, schema.Root{Name: "extra", Kind: schema.Reducer, Ref: ts.Add(e)})
	}

	s, err := schema.New(ts, roots...)
	require.NoError(t, err)

	b, err := s.MarshalJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, b, 0600))
	return path
}

func TestEncodeDecode(t *testing.T) {
	path := writeSchema(t, "schema.json")

	out, err := run(t, `{"x": -5, "y": 7}`, "encode", "--schema", path, "--type", "point")
	require.NoError(t, err)
	require.Equal(t, "fbffffff07000000\n", out)

	tests := []struct {
		output string
		want   string
	}{
		{"json", `{"x":-5,"y":7}` + "\n"},
		{"satn", "(x = -5, y = 7)\n"},
		{"pretty", "(\n    x = -5,\n    y = 7,\n)\n"},
	}

	for _, test := range tests {
		t.Run(test.output, func(t *testing.T) {
			out, err := run(t, "fbffffff07000000\n", "decode", "-s", path, "-t", "point", "-o", test.output)
			require.NoError(t, err)
			require.Equal(t, test.want, out)
		})
	}

	t.Run("unknown output", func(t *testing.T) {
		_, err := run(t, "fbffffff07000000", "decode", "-s", path, "-t", "point", "-o", "xml")
		require.Error(t, err)
	})

	t.Run("truncated input", func(t *testing.T) {
		_, err := run(t, "fbffffff", "decode", "-s", path, "-t", "point")
		require.Error(t, err)
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := run(t, `{"x": -5, "y": 7}`, "encode", "-s", path, "-t", "nope")
		require.True(t, errors.Is(err, schema.ErrRootNotFound))
	})
}

func TestHash(t *testing.T) {
	path := writeSchema(t, "schema.json")

	out, err := run(t, `{"x": -5, "y": 7}`, "hash", "-s", path, "-t", "point")
	require.NoError(t, err)

	want, err := bsatn.ContentHash(types.NewTypespace(), testutil.Point, types.NewProductValue(types.I32Value(-5), types.I32Value(7)))
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(want[:])+"\n", out)
}

func TestCheck(t *testing.T) {
	client := writeSchema(t, "client.json")
	server := writeSchema(t, "server.json", types.Product(types.Field("e", testutil.Either)))

	out, err := run(t, "", "check", client, server)
	require.NoError(t, err)
	require.Equal(t, "compatible\n", out)

	// the server lacks the extra root of the client
	_, err = run(t, "", "check", server, client)
	require.True(t, errors.Is(err, types.ErrIncompatible))

	_, err = run(t, "", "check", client)
	require.Error(t, err)
}

func TestRegistry(t *testing.T) {
	schemaPath := writeSchema(t, "schema.json")
	dbPath := filepath.Join(t.TempDir(), "registry.db")

	for _, engine := range []string{"bolt", "pebble"} {
		t.Run(engine, func(t *testing.T) {
			path := dbPath + "." + engine
			flags := []string{"registry", "--engine", engine, "--path", path}

			digest, err := run(t, "", append(flags, "put", "points", schemaPath)...)
			require.NoError(t, err)
			require.Len(t, strings.TrimSpace(digest), 64)

			out, err := run(t, "", append(flags, "list")...)
			require.NoError(t, err)
			require.Contains(t, out, "points")
			require.Contains(t, out, strings.TrimSpace(digest))

			out, err = run(t, "", append(flags, "get", "points")...)
			require.NoError(t, err)

			want, err := os.ReadFile(schemaPath)
			require.NoError(t, err)
			require.JSONEq(t, string(want), out)

			_, err = run(t, "", append(flags, "delete", "points")...)
			require.NoError(t, err)

			_, err = run(t, "", append(flags, "get", "points")...)
			require.Error(t, err)
		})
	}

	t.Run("environment", func(t *testing.T) {
		t.Setenv("SATS_ENGINE", "bolt")
		t.Setenv("SATS_PATH", dbPath+".env")

		_, err := run(t, "", "registry", "put", "points", schemaPath)
		require.NoError(t, err)

		out, err := run(t, "", "registry", "list")
		require.NoError(t, err)
		require.Contains(t, out, "points")
	})

	t.Run("unknown engine", func(t *testing.T) {
		_, err := run(t, "", "registry", "--engine", "nope", "list")
		require.Error(t, err)
	})
}
