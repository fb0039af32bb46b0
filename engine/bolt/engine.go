// Package bolt implements an engine on top of BoltDB. Each store is stored in a dedicated bucket.
package bolt

import (
	"context"
	"os"

	"github.com/chaisql/sats/engine"
	"github.com/cockroachdb/errors"
	bolt "go.etcd.io/bbolt"
)

// Engine represents a BoltDB engine.
type Engine struct {
	DB *bolt.DB
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates a BoltDB engine. It takes the same argument as Bolt's Open function.
func NewEngine(path string, mode os.FileMode, opts *bolt.Options) (*Engine, error) {
	db, err := bolt.Open(path, mode, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "open bolt database %q", path)
	}

	return &Engine{
		DB: db,
	}, nil
}

// Begin creates a transaction using Bolt's transaction API.
func (e *Engine) Begin(ctx context.Context, opts engine.TxOptions) (engine.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tx, err := e.DB.Begin(opts.Writable)
	if err != nil {
		return nil, err
	}

	return &Transaction{
		tx:       tx,
		writable: opts.Writable,
	}, nil
}

// Close the engine and underlying Bolt database.
func (e *Engine) Close() error {
	return e.DB.Close()
}

// A Transaction uses Bolt's transactions.
type Transaction struct {
	tx       *bolt.Tx
	writable bool
}

// Rollback the transaction. Can be used safely after commit.
func (t *Transaction) Rollback() error {
	err := t.tx.Rollback()
	if err != nil && !errors.Is(err, bolt.ErrTxClosed) {
		return err
	}

	return nil
}

// Commit the transaction.
func (t *Transaction) Commit() error {
	if !t.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	err := t.tx.Commit()
	if errors.Is(err, bolt.ErrTxClosed) {
		return errors.WithStack(engine.ErrTransactionDiscarded)
	}
	return err
}

// GetStore returns a store by name. The store uses a Bolt bucket.
func (t *Transaction) GetStore(name []byte) (engine.Store, error) {
	b := t.tx.Bucket(name)
	if b == nil {
		return nil, errors.WithStack(engine.ErrStoreNotFound)
	}

	return &Store{
		bucket: b,
	}, nil
}

// CreateStore creates a bolt bucket.
func (t *Transaction) CreateStore(name []byte) error {
	if !t.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	_, err := t.tx.CreateBucket(name)
	if errors.Is(err, bolt.ErrBucketExists) {
		return errors.WithStack(engine.ErrStoreAlreadyExists)
	}

	return err
}

// DropStore deletes the underlying bucket.
func (t *Transaction) DropStore(name []byte) error {
	if !t.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	err := t.tx.DeleteBucket(name)
	if errors.Is(err, bolt.ErrBucketNotFound) {
		return errors.WithStack(engine.ErrStoreNotFound)
	}

	return err
}

// A Store is an implementation of the engine.Store interface using a bucket.
type Store struct {
	bucket *bolt.Bucket
}

// Put stores a key value pair. If it already exists, it overrides it.
func (s *Store) Put(k, v []byte) error {
	if !s.bucket.Writable() {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	if len(k) == 0 {
		return errors.New("cannot store empty key")
	}

	// bolt keeps a reference to the value until the end of the transaction
	return s.bucket.Put(k, append([]byte(nil), v...))
}

// Get returns a copy of the value associated with the given key.
func (s *Store) Get(k []byte) ([]byte, error) {
	v := s.bucket.Get(k)
	if v == nil {
		return nil, errors.WithStack(engine.ErrKeyNotFound)
	}

	return append([]byte(nil), v...), nil
}

// Delete a key. If not found, returns engine.ErrKeyNotFound.
func (s *Store) Delete(k []byte) error {
	if !s.bucket.Writable() {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	if s.bucket.Get(k) == nil {
		return errors.WithStack(engine.ErrKeyNotFound)
	}

	return s.bucket.Delete(k)
}

// AscendGreaterOrEqual uses the bucket cursor.
func (s *Store) AscendGreaterOrEqual(start []byte, fn func(k, v []byte) error) error {
	c := s.bucket.Cursor()

	var k, v []byte
	if len(start) == 0 {
		k, v = c.First()
	} else {
		k, v = c.Seek(start)
	}

	for ; k != nil; k, v = c.Next() {
		if err := fn(k, v); err != nil {
			return err
		}
	}

	return nil
}
