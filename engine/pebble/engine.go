// Package pebble implements an engine on top of Pebble.
//
// Pebble has a single keyspace: stores are emulated by prefixing every key with the
// name of its store. Writable transactions use indexed batches, read-only
// transactions use snapshots.
package pebble

import (
	"context"
	"sync/atomic"

	"github.com/chaisql/sats/engine"
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
)

const (
	separator   byte = 0x1F
	storeKey         = "__sats.store"
	storePrefix      = 's'
)

// Engine represents a Pebble engine.
type Engine struct {
	DB *pebble.DB

	closed atomic.Bool
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates a Pebble engine. It takes the same argument as Pebble's Open function.
// If path is ":memory:", the database is kept in memory.
func NewEngine(path string, opts *pebble.Options) (*Engine, error) {
	if opts == nil {
		opts = &pebble.Options{}
	}
	if path == ":memory:" {
		opts.FS = vfs.NewMem()
		path = ""
	}

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open pebble database %q", path)
	}

	return &Engine{
		DB: db,
	}, nil
}

// Begin creates a transaction using Pebble's batch API.
func (e *Engine) Begin(ctx context.Context, opts engine.TxOptions) (engine.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Writable {
		b := e.DB.NewIndexedBatch()
		return &Transaction{reader: b, batch: b, writable: true}, nil
	}

	return &Transaction{reader: e.DB.NewSnapshot()}, nil
}

// Close the engine and underlying Pebble database.
// Closing it twice returns an error.
func (e *Engine) Close() error {
	if !e.closed.CompareAndSwap(false, true) {
		return errors.New("engine already closed")
	}

	return e.DB.Close()
}

// A Transaction uses Pebble's batches.
type Transaction struct {
	reader    pebble.Reader
	batch     *pebble.Batch
	writable  bool
	discarded bool
}

// Rollback the transaction. Can be used safely after commit.
func (t *Transaction) Rollback() error {
	if t.discarded {
		return nil
	}

	t.discarded = true
	return t.reader.Close()
}

// Commit the transaction.
func (t *Transaction) Commit() error {
	if t.discarded {
		return errors.WithStack(engine.ErrTransactionDiscarded)
	}

	if !t.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	t.discarded = true
	defer t.batch.Close()

	return t.batch.Commit(pebble.Sync)
}

func buildStoreKey(name []byte) []byte {
	key := make([]byte, 0, len(storeKey)+1+len(name))
	key = append(key, storeKey...)
	key = append(key, separator)
	return append(key, name...)
}

// buildStorePrefix returns the prefix of every key of a store,
// in the form: storePrefix + <sep> + name + <sep>.
func buildStorePrefix(name []byte) []byte {
	prefix := make([]byte, 0, len(name)+3)
	prefix = append(prefix, storePrefix, separator)
	prefix = append(prefix, name...)
	return append(prefix, separator)
}

func (t *Transaction) exists(key []byte) (bool, error) {
	_, closer, err := t.reader.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

// GetStore returns a store by name.
func (t *Transaction) GetStore(name []byte) (engine.Store, error) {
	ok, err := t.exists(buildStoreKey(name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.WithStack(engine.ErrStoreNotFound)
	}

	return &Store{
		tx:     t,
		prefix: buildStorePrefix(name),
	}, nil
}

// CreateStore creates a store.
// If the store already exists, returns engine.ErrStoreAlreadyExists.
func (t *Transaction) CreateStore(name []byte) error {
	if !t.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	key := buildStoreKey(name)
	ok, err := t.exists(key)
	if err != nil {
		return err
	}
	if ok {
		return errors.WithStack(engine.ErrStoreAlreadyExists)
	}

	return t.batch.Set(key, nil, nil)
}

// DropStore deletes the store and all its keys.
func (t *Transaction) DropStore(name []byte) error {
	if !t.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	st, err := t.GetStore(name)
	if err != nil {
		return err
	}

	var keys [][]byte
	err = st.(*Store).iterate(nil, func(k, _ []byte) error {
		keys = append(keys, append([]byte(nil), k...))
		return nil
	})
	if err != nil {
		return err
	}

	for _, k := range keys {
		if err := t.batch.Delete(k, nil); err != nil {
			return err
		}
	}

	return t.batch.Delete(buildStoreKey(name), nil)
}
