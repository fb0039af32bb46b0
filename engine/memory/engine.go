// Package memory implements an in-memory engine backed by btrees.
package memory

import (
	"context"
	"sync"

	"github.com/chaisql/sats/engine"
	"github.com/cockroachdb/errors"
	"github.com/google/btree"
)

// The degree of btrees.
const btreeDegree = 12

// Engine stores data in in-memory btrees, one per store.
// It allows multiple readers and one single writer.
type Engine struct {
	closed bool
	stores map[string]*btree.BTree

	mu sync.RWMutex
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates an in-memory engine.
func NewEngine() *Engine {
	return &Engine{
		stores: make(map[string]*btree.BTree),
	}
}

// Begin creates a transaction. Writable transactions wait for the
// other transactions to terminate.
func (ng *Engine) Begin(ctx context.Context, opts engine.TxOptions) (engine.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if opts.Writable {
		ng.mu.Lock()
	} else {
		ng.mu.RLock()
	}

	if ng.closed {
		if opts.Writable {
			ng.mu.Unlock()
		} else {
			ng.mu.RUnlock()
		}
		return nil, errors.New("engine closed")
	}

	return &transaction{ng: ng, writable: opts.Writable}, nil
}

// Close the engine.
func (ng *Engine) Close() error {
	ng.mu.Lock()
	defer ng.mu.Unlock()

	if ng.closed {
		return errors.New("engine already closed")
	}

	ng.closed = true
	return nil
}

type transaction struct {
	ng         *Engine
	writable   bool
	onRollback []func() // undo every mutation
	onCommit   []func() // finalize every mutation
	terminated bool
}

func (tx *transaction) Rollback() error {
	if tx.terminated {
		return nil
	}

	tx.terminated = true

	if !tx.writable {
		tx.ng.mu.RUnlock()
		return nil
	}

	for i := len(tx.onRollback) - 1; i >= 0; i-- {
		tx.onRollback[i]()
	}
	tx.ng.mu.Unlock()
	return nil
}

func (tx *transaction) Commit() error {
	if tx.terminated {
		return errors.WithStack(engine.ErrTransactionDiscarded)
	}

	if !tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	tx.terminated = true

	for _, fn := range tx.onCommit {
		fn()
	}

	tx.ng.mu.Unlock()
	return nil
}

func (tx *transaction) GetStore(name []byte) (engine.Store, error) {
	tr, ok := tx.ng.stores[string(name)]
	if !ok {
		return nil, errors.WithStack(engine.ErrStoreNotFound)
	}

	return &store{tx: tx, tr: tr}, nil
}

func (tx *transaction) CreateStore(name []byte) error {
	if !tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	if _, ok := tx.ng.stores[string(name)]; ok {
		return errors.WithStack(engine.ErrStoreAlreadyExists)
	}

	key := string(name)
	tx.ng.stores[key] = btree.New(btreeDegree)

	tx.onRollback = append(tx.onRollback, func() {
		delete(tx.ng.stores, key)
	})

	return nil
}

func (tx *transaction) DropStore(name []byte) error {
	if !tx.writable {
		return errors.WithStack(engine.ErrTransactionReadOnly)
	}

	key := string(name)
	tr, ok := tx.ng.stores[key]
	if !ok {
		return errors.WithStack(engine.ErrStoreNotFound)
	}

	delete(tx.ng.stores, key)

	tx.onRollback = append(tx.onRollback, func() {
		tx.ng.stores[key] = tr
	})

	return nil
}
