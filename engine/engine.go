// Package engine defines the interfaces of the key/value engines used to persist schemas.
//
// Engines group keys in named stores and expose them through transactions.
// A writable transaction sees its own writes; nothing is visible to other
// transactions until Commit.
package engine

import (
	"context"

	"github.com/cockroachdb/errors"
)

// Common errors returned by the engine implementations.
var (
	// ErrTransactionReadOnly is returned when attempting to call write methods on a read-only transaction.
	ErrTransactionReadOnly = errors.New("transaction is read-only")

	// ErrTransactionDiscarded is returned when calling Commit after a transaction is no longer valid.
	ErrTransactionDiscarded = errors.New("transaction has been discarded")

	// ErrStoreNotFound is returned when the targeted store doesn't exist.
	ErrStoreNotFound = errors.New("store not found")

	// ErrStoreAlreadyExists must be returned when attempting to create a store with the
	// same name as an existing one.
	ErrStoreAlreadyExists = errors.New("store already exists")

	// ErrKeyNotFound is returned when the targeted key doesn't exist.
	ErrKeyNotFound = errors.New("key not found")
)

// An Engine is responsible for storing data.
// Implementations must be safe for concurrent use.
type Engine interface {
	// Begin starts a new transaction.
	Begin(ctx context.Context, opts TxOptions) (Transaction, error)
	// Close the engine after ensuring all the transactions have completed.
	Close() error
}

// TxOptions is used to configure a transaction upon creation.
type TxOptions struct {
	Writable bool
}

// A Transaction provides methods for managing the collection of stores
// and the transaction itself. It is not safe for concurrent use.
type Transaction interface {
	// Rollback discards every mutation done since the beginning of the transaction.
	// It can be called safely after Commit.
	Rollback() error
	// Commit writes every mutation done since the beginning of the transaction.
	Commit() error
	// GetStore returns a store by name, or ErrStoreNotFound.
	GetStore(name []byte) (Store, error)
	// CreateStore creates a store, or returns ErrStoreAlreadyExists.
	CreateStore(name []byte) error
	// DropStore deletes the store and all its keys.
	DropStore(name []byte) error
}

// A Store manages key value pairs, ordered by key.
type Store interface {
	// Put stores a key value pair. If it already exists, it overrides it.
	Put(k, v []byte) error
	// Get returns a copy of the value associated with the given key, or ErrKeyNotFound.
	Get(k []byte) ([]byte, error)
	// Delete a key, or returns ErrKeyNotFound.
	Delete(k []byte) error
	// AscendGreaterOrEqual calls fn for every key greater than or equal to start,
	// in ascending order, until fn returns an error. A nil start iterates over every key.
	// k and v are only valid during the call.
	AscendGreaterOrEqual(start []byte, fn func(k, v []byte) error) error
}
