// Package enginetest defines a list of tests that can be used to test
// a complete or partial engine implementation.
package enginetest

import (
	"context"
	"fmt"
	"testing"

	"github.com/chaisql/sats/engine"
	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// Builder is a function that can create an engine on demand and that provides
// a function to cleanup up and remove any created state.
// Tests will use the builder like this:
//
//	ng, cleanup := builder()
//	defer cleanup()
//	...
type Builder func() (engine.Engine, func())

// TestSuite tests an entire engine, transaction and related types
// needed to implement an engine.
func TestSuite(t *testing.T, builder Builder) {
	tests := []struct {
		name string
		test func(*testing.T, Builder)
	}{
		{"Engine", TestEngine},
		{"Transaction/Commit-Rollback", TestTransactionCommitRollback},
		{"Transaction/Stores", TestTransactionStores},
		{"Store/Put", TestStorePut},
		{"Store/Get", TestStoreGet},
		{"Store/Delete", TestStoreDelete},
		{"Store/AscendGreaterOrEqual", TestStoreAscendGreaterOrEqual},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			test.test(t, builder)
		})
	}
}

// TestEngine runs a list of tests against the provided engine.
func TestEngine(t *testing.T, builder Builder) {
	t.Run("Close", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		require.NoError(t, ng.Close())
	})

	t.Run("Begin with canceled context", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := ng.Begin(ctx, engine.TxOptions{Writable: true})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func begin(t testing.TB, ng engine.Engine, writable bool) engine.Transaction {
	t.Helper()

	tx, err := ng.Begin(context.Background(), engine.TxOptions{Writable: writable})
	require.NoError(t, err)
	return tx
}

// update runs fn in a writable transaction and commits it.
func update(t testing.TB, ng engine.Engine, fn func(tx engine.Transaction)) {
	t.Helper()

	tx := begin(t, ng, true)
	defer tx.Rollback()

	fn(tx)
	require.NoError(t, tx.Commit())
}

// TestTransactionCommitRollback runs a list of tests to verify Commit and Rollback
// behaviour of transactions created from the given engine.
func TestTransactionCommitRollback(t *testing.T, builder Builder) {
	ng, cleanup := builder()
	defer cleanup()

	t.Run("Commit on read-only transaction should fail", func(t *testing.T) {
		tx := begin(t, ng, false)
		defer tx.Rollback()

		err := tx.Commit()
		require.True(t, errors.Is(err, engine.ErrTransactionReadOnly))
	})

	t.Run("Commit after rollback should fail", func(t *testing.T) {
		tx := begin(t, ng, true)
		defer tx.Rollback()

		require.NoError(t, tx.Rollback())
		require.Error(t, tx.Commit())
	})

	t.Run("Rollback after commit should not fail", func(t *testing.T) {
		tx := begin(t, ng, true)
		defer tx.Rollback()

		require.NoError(t, tx.Commit())
		require.NoError(t, tx.Rollback())
	})

	t.Run("Commit after commit should fail", func(t *testing.T) {
		tx := begin(t, ng, true)
		defer tx.Rollback()

		require.NoError(t, tx.Commit())
		require.Error(t, tx.Commit())
	})

	t.Run("Rollback after rollback should not fail", func(t *testing.T) {
		tx := begin(t, ng, false)
		defer tx.Rollback()

		require.NoError(t, tx.Rollback())
		require.NoError(t, tx.Rollback())
	})

	t.Run("Read-Only write attempts", func(t *testing.T) {
		update(t, ng, func(tx engine.Transaction) {
			require.NoError(t, tx.CreateStore([]byte("store1")))
		})

		tx := begin(t, ng, false)
		defer tx.Rollback()

		st, err := tx.GetStore([]byte("store1"))
		require.NoError(t, err)

		tests := []struct {
			name string
			fn   func() error
		}{
			{"CreateStore", func() error { return tx.CreateStore([]byte("store")) }},
			{"DropStore", func() error { return tx.DropStore([]byte("store1")) }},
			{"StorePut", func() error { return st.Put([]byte("id"), nil) }},
			{"StoreDelete", func() error { return st.Delete([]byte("id")) }},
		}

		for _, test := range tests {
			t.Run(test.name, func(t *testing.T) {
				err := test.fn()
				require.True(t, errors.Is(err, engine.ErrTransactionReadOnly), "got %v", err)
			})
		}
	})

	t.Run("Commit / Rollback data persistence", func(t *testing.T) {
		tests := []struct {
			name    string
			initFn  func(engine.Transaction) error
			writeFn func(engine.Transaction) error
			readFn  func(engine.Transaction) error
		}{
			{
				"CreateStore",
				nil,
				func(tx engine.Transaction) error { return tx.CreateStore([]byte("store")) },
				func(tx engine.Transaction) error { _, err := tx.GetStore([]byte("store")); return err },
			},
			{
				"DropStore",
				func(tx engine.Transaction) error { return tx.CreateStore([]byte("store")) },
				func(tx engine.Transaction) error { return tx.DropStore([]byte("store")) },
				func(tx engine.Transaction) error { return tx.CreateStore([]byte("store")) },
			},
			{
				"StorePut",
				func(tx engine.Transaction) error { return tx.CreateStore([]byte("store")) },
				func(tx engine.Transaction) error {
					st, err := tx.GetStore([]byte("store"))
					if err != nil {
						return err
					}
					return st.Put([]byte("foo"), []byte("FOO"))
				},
				func(tx engine.Transaction) error {
					st, err := tx.GetStore([]byte("store"))
					if err != nil {
						return err
					}
					_, err = st.Get([]byte("foo"))
					return err
				},
			},
		}

		for _, test := range tests {
			for _, commit := range []bool{false, true} {
				name := test.name + "/rollback"
				if commit {
					name = test.name + "/commit"
				}

				t.Run(name, func(t *testing.T) {
					ng, cleanup := builder()
					defer cleanup()

					if test.initFn != nil {
						update(t, ng, func(tx engine.Transaction) {
							require.NoError(t, test.initFn(tx))
						})
					}

					tx := begin(t, ng, true)
					require.NoError(t, test.writeFn(tx))
					if commit {
						require.NoError(t, tx.Commit())
					} else {
						require.NoError(t, tx.Rollback())
					}

					tx = begin(t, ng, true)
					defer tx.Rollback()

					err := test.readFn(tx)
					if commit {
						require.NoError(t, err)
					} else {
						require.Error(t, err)
					}
				})
			}
		}
	})
}

// TestTransactionStores verifies CreateStore, GetStore and DropStore behaviour.
func TestTransactionStores(t *testing.T, builder Builder) {
	t.Run("Should fail if store not found", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		tx := begin(t, ng, false)
		defer tx.Rollback()

		_, err := tx.GetStore([]byte("store"))
		require.True(t, errors.Is(err, engine.ErrStoreNotFound))
	})

	t.Run("Should fail if store already exists", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		tx := begin(t, ng, true)
		defer tx.Rollback()

		require.NoError(t, tx.CreateStore([]byte("store")))
		err := tx.CreateStore([]byte("store"))
		require.True(t, errors.Is(err, engine.ErrStoreAlreadyExists))
	})

	t.Run("Stores are isolated", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		tx := begin(t, ng, true)
		defer tx.Rollback()

		require.NoError(t, tx.CreateStore([]byte("a")))
		require.NoError(t, tx.CreateStore([]byte("ab")))

		a, err := tx.GetStore([]byte("a"))
		require.NoError(t, err)
		ab, err := tx.GetStore([]byte("ab"))
		require.NoError(t, err)

		require.NoError(t, a.Put([]byte("k"), []byte("a")))
		require.NoError(t, ab.Put([]byte("k"), []byte("ab")))

		require.Equal(t, []string{"k=a"}, scan(t, a, nil))
		require.Equal(t, []string{"k=ab"}, scan(t, ab, nil))
	})

	t.Run("DropStore should remove the store and its keys", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		update(t, ng, func(tx engine.Transaction) {
			require.NoError(t, tx.CreateStore([]byte("store")))
			st, err := tx.GetStore([]byte("store"))
			require.NoError(t, err)
			require.NoError(t, st.Put([]byte("foo"), []byte("FOO")))
		})

		update(t, ng, func(tx engine.Transaction) {
			require.NoError(t, tx.DropStore([]byte("store")))
			_, err := tx.GetStore([]byte("store"))
			require.True(t, errors.Is(err, engine.ErrStoreNotFound))
		})

		update(t, ng, func(tx engine.Transaction) {
			require.NoError(t, tx.CreateStore([]byte("store")))
			st, err := tx.GetStore([]byte("store"))
			require.NoError(t, err)
			require.Empty(t, scan(t, st, nil))
		})
	})

	t.Run("DropStore should fail if store not found", func(t *testing.T) {
		ng, cleanup := builder()
		defer cleanup()

		tx := begin(t, ng, true)
		defer tx.Rollback()

		err := tx.DropStore([]byte("store"))
		require.True(t, errors.Is(err, engine.ErrStoreNotFound))
	})
}

// storeBuilder creates an engine, a writable transaction and a store.
func storeBuilder(t testing.TB, builder Builder) (engine.Store, func()) {
	t.Helper()

	ng, cleanup := builder()
	tx := begin(t, ng, true)

	require.NoError(t, tx.CreateStore([]byte("test")))
	st, err := tx.GetStore([]byte("test"))
	require.NoError(t, err)

	return st, func() {
		tx.Rollback()
		cleanup()
	}
}

// scan returns every pair of the store as "k=v" strings.
func scan(t testing.TB, st engine.Store, start []byte) []string {
	t.Helper()

	var pairs []string
	err := st.AscendGreaterOrEqual(start, func(k, v []byte) error {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, v))
		return nil
	})
	require.NoError(t, err)
	return pairs
}

// TestStorePut verifies Put behaviour.
func TestStorePut(t *testing.T, builder Builder) {
	t.Run("Should insert data", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		require.NoError(t, st.Put([]byte("foo"), []byte("FOO")))

		v, err := st.Get([]byte("foo"))
		require.NoError(t, err)
		require.Equal(t, []byte("FOO"), v)
	})

	t.Run("Should replace existing key", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		require.NoError(t, st.Put([]byte("foo"), []byte("FOO")))
		require.NoError(t, st.Put([]byte("foo"), []byte("BAR")))

		v, err := st.Get([]byte("foo"))
		require.NoError(t, err)
		require.Equal(t, []byte("BAR"), v)
	})

	t.Run("Should fail when key is empty", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		require.Error(t, st.Put(nil, []byte("FOO")))
		require.Error(t, st.Put([]byte(""), []byte("FOO")))
	})

	t.Run("Should copy the value", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		v := []byte("FOO")
		require.NoError(t, st.Put([]byte("foo"), v))
		v[0] = 'X'

		got, err := st.Get([]byte("foo"))
		require.NoError(t, err)
		require.Equal(t, []byte("FOO"), got)
	})
}

// TestStoreGet verifies Get behaviour.
func TestStoreGet(t *testing.T, builder Builder) {
	t.Run("Should fail if not found", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		_, err := st.Get([]byte("id"))
		require.True(t, errors.Is(err, engine.ErrKeyNotFound))
	})

	t.Run("Should return the right key", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		require.NoError(t, st.Put([]byte("foo"), []byte("FOO")))
		require.NoError(t, st.Put([]byte("bar"), []byte("BAR")))

		v, err := st.Get([]byte("foo"))
		require.NoError(t, err)
		require.Equal(t, []byte("FOO"), v)

		v, err = st.Get([]byte("bar"))
		require.NoError(t, err)
		require.Equal(t, []byte("BAR"), v)
	})
}

// TestStoreDelete verifies Delete behaviour.
func TestStoreDelete(t *testing.T, builder Builder) {
	t.Run("Should fail if not found", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		err := st.Delete([]byte("id"))
		require.True(t, errors.Is(err, engine.ErrKeyNotFound))
	})

	t.Run("Should delete the right document", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		require.NoError(t, st.Put([]byte("foo"), []byte("FOO")))
		require.NoError(t, st.Put([]byte("bar"), []byte("BAR")))

		require.NoError(t, st.Delete([]byte("foo")))

		_, err := st.Get([]byte("foo"))
		require.True(t, errors.Is(err, engine.ErrKeyNotFound))

		v, err := st.Get([]byte("bar"))
		require.NoError(t, err)
		require.Equal(t, []byte("BAR"), v)

		err = st.Delete([]byte("foo"))
		require.True(t, errors.Is(err, engine.ErrKeyNotFound))
	})

	t.Run("Deleted keys should not be iterated", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		for _, k := range []string{"a", "b", "c"} {
			require.NoError(t, st.Put([]byte(k), []byte(k)))
		}
		require.NoError(t, st.Delete([]byte("b")))

		require.Equal(t, []string{"a=a", "c=c"}, scan(t, st, nil))
	})
}

// TestStoreAscendGreaterOrEqual verifies iteration order and bounds.
func TestStoreAscendGreaterOrEqual(t *testing.T, builder Builder) {
	t.Run("Should not iterate over an empty store", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		require.Empty(t, scan(t, st, nil))
	})

	tests := []struct {
		name  string
		start []byte
		want  []string
	}{
		{"nil start", nil, []string{"a=1", "b=2", "c=3", "d=4"}},
		{"existing key", []byte("b"), []string{"b=2", "c=3", "d=4"}},
		{"between keys", []byte("bb"), []string{"c=3", "d=4"}},
		{"after last key", []byte("e"), nil},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			st, cleanup := storeBuilder(t, builder)
			defer cleanup()

			// insert out of order
			for _, kv := range [][2]string{{"c", "3"}, {"a", "1"}, {"d", "4"}, {"b", "2"}} {
				require.NoError(t, st.Put([]byte(kv[0]), []byte(kv[1])))
			}

			if diff := cmp.Diff(test.want, scan(t, st, test.start)); diff != "" {
				t.Errorf("unexpected keys (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("Should stop when fn returns an error", func(t *testing.T) {
		st, cleanup := storeBuilder(t, builder)
		defer cleanup()

		for i := 0; i < 10; i++ {
			require.NoError(t, st.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v")))
		}

		stop := errors.New("stop")
		var count int
		err := st.AscendGreaterOrEqual(nil, func(k, v []byte) error {
			count++
			if count == 3 {
				return stop
			}
			return nil
		})
		require.True(t, errors.Is(err, stop))
		require.Equal(t, 3, count)
	})
}
