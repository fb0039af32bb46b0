package pebble_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/chaisql/sats/engine"
	"github.com/chaisql/sats/engine/enginetest"
	"github.com/chaisql/sats/engine/pebble"
	"github.com/stretchr/testify/require"
)

func builder(t testing.TB) enginetest.Builder {
	return func() (engine.Engine, func()) {
		ng, err := pebble.NewEngine(":memory:", nil)
		require.NoError(t, err)
		return ng, func() { ng.Close() }
	}
}

func TestPebbleEngine(t *testing.T) {
	enginetest.TestSuite(t, builder(t))
}

func TestPebbleEngineSnapshot(t *testing.T) {
	ng, cleanup := builder(t)()
	defer cleanup()

	tx, err := ng.Begin(context.Background(), engine.TxOptions{Writable: true})
	require.NoError(t, err)
	require.NoError(t, tx.CreateStore([]byte("store")))
	require.NoError(t, tx.Commit())

	// a read-only transaction doesn't see writes committed after it began
	rtx, err := ng.Begin(context.Background(), engine.TxOptions{})
	require.NoError(t, err)
	defer rtx.Rollback()

	tx, err = ng.Begin(context.Background(), engine.TxOptions{Writable: true})
	require.NoError(t, err)
	st, err := tx.GetStore([]byte("store"))
	require.NoError(t, err)
	require.NoError(t, st.Put([]byte("foo"), []byte("FOO")))
	require.NoError(t, tx.Commit())

	st, err = rtx.GetStore([]byte("store"))
	require.NoError(t, err)
	_, err = st.Get([]byte("foo"))
	require.ErrorIs(t, err, engine.ErrKeyNotFound)
}

func TestPebbleEngineOnDisk(t *testing.T) {
	ng, err := pebble.NewEngine(filepath.Join(t.TempDir(), "db"), nil)
	require.NoError(t, err)
	require.NoError(t, ng.Close())
	require.Error(t, ng.Close())
}

func BenchmarkPebbleEngineStorePut(b *testing.B) {
	enginetest.BenchmarkStorePut(b, builder(b))
}

func BenchmarkPebbleEngineStoreScan(b *testing.B) {
	enginetest.BenchmarkStoreScan(b, builder(b))
}
